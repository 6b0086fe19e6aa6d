package util

// IntPtr returns a pointer to the given int
func IntPtr(i int) *int {
	return &i
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
