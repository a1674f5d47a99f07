package validate

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := OpenRegistry(filepath.Join(t.TempDir(), "conformance.db"))
	require.NoError(t, err)
	t.Cleanup(func() { reg.Close() })
	return reg
}

func TestRegistry_RecordAndCheck(t *testing.T) {
	reg := openTestRegistry(t)

	require.NoError(t, reg.Record("hand.raw", false, 0xDEADBEEF))
	assert.NoError(t, reg.Check("hand.raw", false, 0xDEADBEEF))
}

func TestRegistry_CheckMissing(t *testing.T) {
	reg := openTestRegistry(t)

	err := reg.Check("never-recorded.raw", false, 1)
	assert.ErrorIs(t, err, ErrHashMissing)
}

func TestRegistry_CheckMismatch(t *testing.T) {
	reg := openTestRegistry(t)

	require.NoError(t, reg.Record("hand.raw", true, 0x1111))
	err := reg.Check("hand.raw", true, 0x2222)
	assert.ErrorIs(t, err, ErrHashMismatch)
}

func TestRegistry_TimeShiftKeysAreIndependent(t *testing.T) {
	reg := openTestRegistry(t)

	require.NoError(t, reg.Record("hand.raw", false, 0xAAAA))
	require.NoError(t, reg.Record("hand.raw", true, 0xBBBB))

	assert.NoError(t, reg.Check("hand.raw", false, 0xAAAA))
	assert.NoError(t, reg.Check("hand.raw", true, 0xBBBB))
	assert.ErrorIs(t, reg.Check("hand.raw", false, 0xBBBB), ErrHashMismatch)
}

func TestRegistry_RecordOverwrites(t *testing.T) {
	reg := openTestRegistry(t)

	require.NoError(t, reg.Record("hand.raw", false, 0x1))
	require.NoError(t, reg.Record("hand.raw", false, 0x2))
	assert.NoError(t, reg.Check("hand.raw", false, 0x2))
}
