package models

// StringPtr возвращает указатель на строку. Удобно для патчей.
func StringPtr(s string) *string {
	return &s
}

// IntPtr возвращает указатель на int.
func IntPtr(i int) *int {
	return &i
}

// Float64Ptr возвращает указатель на float64.
func Float64Ptr(f float64) *float64 {
	return &f
}
