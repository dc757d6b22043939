package program

// Array is the ordered keyed collection created by generated programs.
type Array struct {
	keys   []interface{}
	values []interface{}
	index  map[interface{}]int
	next   int
}

// NewArray creates an empty array.
func NewArray() *Array {
	return &Array{index: map[interface{}]int{}}
}

// Append adds value under the next integer key.
func (a *Array) Append(value interface{}) {
	a.Set(a.next, value)
}

// Set stores value under key, keeping the first insertion position.
func (a *Array) Set(key, value interface{}) {
	if pos, ok := a.index[key]; ok {
		a.values[pos] = value
		return
	}
	if i, ok := key.(int); ok && i >= a.next {
		a.next = i + 1
	}
	a.index[key] = len(a.keys)
	a.keys = append(a.keys, key)
	a.values = append(a.values, value)
}

// Get returns the value stored under key.
func (a *Array) Get(key interface{}) (interface{}, bool) {
	pos, ok := a.index[key]
	if !ok {
		return nil, false
	}
	return a.values[pos], true
}

// Len returns the number of entries.
func (a *Array) Len() int { return len(a.keys) }

// Keys returns keys in insertion order.
func (a *Array) Keys() []interface{} { return a.keys }

// Values returns values in insertion order.
func (a *Array) Values() []interface{} { return a.values }

// Visit iterates entries in insertion order.
func (a *Array) Visit(f func(key, element any) (bool, error)) error {
	for i, key := range a.keys {
		next, err := f(key, a.values[i])
		if err != nil {
			return err
		}
		if !next {
			break
		}
	}
	return nil
}
