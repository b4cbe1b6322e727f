// Package types defines the enums and error kinds shared by the tiling packages.
package types

import (
	"github.com/gomlx/normtiling/internal/utils"
)

// SchedulingMode selects the family of kernels (and so the block/ub search strategies) a tiling decision is
// made for. It is selected once per tiling call, before any search.
type SchedulingMode int

//go:generate go tool enumer -type=SchedulingMode -trimprefix=Mode -output=gen_schedulingmode_enumer.go schedule.go

const (
	// ModeNormal keeps the whole reduction inside the on-chip buffer: the ub split happens on a non-reduce axis.
	ModeNormal SchedulingMode = iota

	// ModeWorkspace stages partial reduction results to external memory: the ub split happens on a reduce axis.
	ModeWorkspace

	// ModePartialReorder is the workspace schedule for multiple reduce axes with a last axis smaller than one
	// DMA block: the first reduce axis whose suffix fits is split without further search.
	ModePartialReorder

	// ModeAlignedRemovePad copies unaligned rows contiguously, pads them in the buffer and removes the padding
	// when writing back.
	ModeAlignedRemovePad
)

// NeedsWorkspace returns whether the mode stages reduction results in workspace memory.
func (m SchedulingMode) NeedsWorkspace() bool {
	return m == ModeWorkspace || m == ModePartialReorder
}

// KeyTag returns the schedule-type digit used in the tiling key.
func (m SchedulingMode) KeyTag() int {
	switch m {
	case ModeWorkspace, ModePartialReorder:
		return 2
	case ModeAlignedRemovePad:
		return 4
	default:
		return 0
	}
}

// ConfigName returns the snake_case name used in reports, e.g. "aligned_remove_pad".
func (m SchedulingMode) ConfigName() string {
	return utils.ToSnakeCase(m.String())
}
