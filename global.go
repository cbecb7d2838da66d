package asmloader

import (
	"sync"
)

var (
	defaultHost *HostTable
	hostErr     error
	hostOnce    sync.Once
)

// DefaultHostTable is the NativeHostTable of this process, built once.
func DefaultHostTable() (*HostTable, error) {
	hostOnce.Do(func() {
		defaultHost, hostErr = NativeHostTable()
	})
	return defaultHost, hostErr
}

// DefaultLoader create a Loader for the host Arch with the DefaultHostTable.
func DefaultLoader() (*Loader, error) {
	t, err := DefaultHostTable()
	if err != nil {
		return nil, err
	}
	return NewLoader(t)
}

// Load a file with the DefaultLoader.
func Load(path string) (*Region, error) {
	l, err := DefaultLoader()
	if err != nil {
		return nil, err
	}
	return l.Load(path)
}
