package main

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteClosesOutput(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("counts /proc/self/fd")
	}
	fds := func() int {
		e, err := os.ReadDir("/proc/self/fd")
		require.NoError(t, err)
		return len(e)
	}
	dir := t.TempDir()
	before := fds()
	for i := 0; i < 10; i++ {
		require.NoError(t, write(filepath.Join(dir, "stub_test.go"), "asmloader", "stubTest", "stubs/test.nasm", []byte{0x90, 0xc3}))
	}
	assert.Equal(t, before, fds(), "no output left open")
	b, err := os.ReadFile(filepath.Join(dir, "stub_test.go"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(b), "var stubTest = []byte{\n\t0x90, 0xc3,\n}\n"))
}
