package types

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulingMode(t *testing.T) {
	assert.Equal(t, "PartialReorder", ModePartialReorder.String())
	assert.Equal(t, "aligned_remove_pad", ModeAlignedRemovePad.ConfigName())

	mode, err := SchedulingModeString("workspace")
	require.NoError(t, err)
	assert.Equal(t, ModeWorkspace, mode)
	_, err = SchedulingModeString("unknown")
	require.Error(t, err)

	assert.Equal(t, 0, ModeNormal.KeyTag())
	assert.Equal(t, 2, ModeWorkspace.KeyTag())
	assert.Equal(t, 2, ModePartialReorder.KeyTag())
	assert.Equal(t, 4, ModeAlignedRemovePad.KeyTag())

	assert.False(t, ModeNormal.NeedsWorkspace())
	assert.False(t, ModeAlignedRemovePad.NeedsWorkspace())
	assert.True(t, ModeWorkspace.NeedsWorkspace())
	assert.True(t, ModePartialReorder.NeedsWorkspace())
}

func TestErrorKinds(t *testing.T) {
	err := errors.Wrapf(ErrSearchFailure, "no ub axis for shape %v", []int{2, 3})
	assert.True(t, errors.Is(err, ErrSearchFailure))
	assert.False(t, errors.Is(err, ErrConfiguration))
	assert.Contains(t, err.Error(), "no ub axis")
}
