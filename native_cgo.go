//go:build cgo

package asmloader

/*
#include <stdio.h>
#include <stdlib.h>
#include <stdint.h>

typedef int (*asml_entry_t)(void);

static uintptr_t asml_host_func(int i) {
	switch (i) {
	case 0: return (uintptr_t)&exit;
	case 1: return (uintptr_t)&putchar;
	case 2: return (uintptr_t)&getchar;
	case 3: return (uintptr_t)&printf;
	case 4: return (uintptr_t)&scanf;
	}
	return 0;
}

static int asml_enter(uintptr_t entry) {
	int ret = ((asml_entry_t)entry)();
	fflush(stdout);
	return ret;
}
*/
import "C"

// NativeHostTable returns the libc functions of the running process.
func NativeHostTable() (*HostTable, error) {
	var f [HostFuncCount]uintptr
	for i := range f {
		f[i] = uintptr(C.asml_host_func(C.int(i)))
	}
	return NewHostTable(f[HostExit], f[HostPutchar], f[HostGetchar], f[HostPrintf], f[HostScanf]), nil
}

func enter(entry uintptr) (int, error) {
	return int(C.asml_enter(C.uintptr_t(entry))), nil
}
