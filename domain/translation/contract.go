//go:build !debug

package translation

// mustBeValid is a no-op in release builds; NewRequest is the only way to
// construct a populated Request.
func mustBeValid(Request) {}
