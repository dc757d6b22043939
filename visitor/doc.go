// Package visitor offers callback-based iteration over the collection values
// reaching generated programs: slices, maps (in key order) and ordered arrays.
package visitor
