// Package optx holds the small helpers used for explicit optional values.
// A nil *T means "not supplied"; a non-nil pointer carries a real value, zero included.
package optx

// Of returns a pointer to a copy of v.
func Of[T any](v T) *T { return &v }

// Or returns *p, or d when p is nil.
func Or[T any](p *T, d T) T {
	if p == nil {
		return d
	}
	return *p
}
