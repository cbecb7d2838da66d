//go:build cgo && amd64

package asmloader

import (
	"testing"

	"github.com/ZenLiuCN/fn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecReturn(t *testing.T) {
	r := fn.Panic1(Load("testdata/ret.bin"))
	defer func() { fn.Panic(r.Release()) }()
	_, err := r.Exec()
	require.NoError(t, err)
	assert.Equal(t, byte(Terminator), r.Bytes()[StubSize+1], "terminator survives")
}

func TestExecStatus(t *testing.T) {
	r := fn.Panic1(Load("testdata/answer.bin"))
	defer func() { fn.Panic(r.Release()) }()
	status, err := r.Exec()
	require.NoError(t, err)
	assert.Equal(t, 42, status)
}

func TestExecHostCall(t *testing.T) {
	r := fn.Panic1(Load("testdata/hello.bin"))
	defer func() { fn.Panic(r.Release()) }()
	status, err := r.Exec()
	require.NoError(t, err)
	assert.Equal(t, 7, status)
}

func TestNativeHostTable(t *testing.T) {
	h := fn.Panic1(DefaultHostTable())
	for f := HostFunc(0); f < HostFuncCount; f++ {
		assert.NotZero(t, h.Func(f), f.String())
		assert.False(t, Reloc64.Match(uint64(h.Func(f))), f.String())
	}
	again := fn.Panic1(DefaultHostTable())
	assert.Same(t, h, again)
}
