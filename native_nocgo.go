//go:build !cgo

package asmloader

// NativeHostTable needs cgo.
func NativeHostTable() (*HostTable, error) {
	return nil, ErrNoNative
}

func enter(uintptr) (int, error) {
	return 0, ErrNoNative
}
