package utils

// Value dereferences p, returning the zero value when p is nil. Used for
// the optional fields on user and application records, which are modelled
// as pointers rather than relying on zero-value sentinels.
func Value[T any](p *T) T {
	if p == nil {
		return *new(T)
	}
	return *p
}

func Ptr[T any](v T) *T {
	return &v
}
