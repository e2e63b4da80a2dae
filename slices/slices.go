// Package slices contains generic slice helpers missing from the standard library.
package slices

// Pop removes the last element of s and returns it, the shortened slice, and whether there was an element.
func Pop[E any, S ~[]E](s S) (E, S, bool) {
	if len(s) == 0 {
		return *new(E), s, false
	}
	e := s[len(s)-1]
	s = s[:len(s)-1]
	return e, s, true
}

// Last returns the last element of s. It panics if s is empty.
func Last[E any, S ~[]E](s S) E {
	return s[len(s)-1]
}

// Peek returns the last element of s and whether there was one.
func Peek[E any, S ~[]E](s S) (E, bool) {
	if len(s) == 0 {
		return *new(E), false
	}
	return s[len(s)-1], true
}
