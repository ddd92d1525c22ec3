package mmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocAndFree(t *testing.T) {
	b, err := Alloc(1 << 16)
	require.NoError(t, err)
	require.Len(t, b, 1<<16)

	// The mapping must be writable end to end.
	b[0] = 0xAA
	b[len(b)-1] = 0x55
	assert.Equal(t, byte(0xAA), b[0])
	assert.Equal(t, byte(0x55), b[len(b)-1])

	require.NoError(t, Free(b))
}

func TestAllocRejectsBadSize(t *testing.T) {
	_, err := Alloc(0)
	assert.Error(t, err)
	_, err = Alloc(-4096)
	assert.Error(t, err)
}

func TestFreeNil(t *testing.T) {
	assert.NoError(t, Free(nil))
}
