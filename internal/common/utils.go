package common

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T {
	return &v
}

// ValueOr returns *p, or def when p is nil.
func ValueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
