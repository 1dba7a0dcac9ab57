// Package block provides the raw storage layer for rawvec containers: fixed-capacity
// blocks of element slots with manual lifetime management, and the allocator seam that
// block memory is charged through.
package block

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/manualmem/rawvec"
)

// BlockID identifies a live storage block within the Allocator that produced it.
type BlockID int64

// Allocator is the accounting seam that storage blocks charge their memory through.
// The backing slots themselves are ordinary Go allocations so that element values
// remain visible to the garbage collector; the Allocator decides whether a block of
// a given byte size may exist at all, which makes exhaustion a recoverable error
// instead of a process abort.
//
// Allocator implementations are not goroutine-safe. Containers sharing an Allocator
// must be used from a single goroutine or serialized externally.
type Allocator interface {
	// AllocateBlock charges byteSize bytes to this allocator and returns the identity
	// of the new block. It must return an error wrapping rawvec.ErrOutOfMemory if the
	// charge cannot be satisfied, and must leave the allocator's accounting unchanged
	// in that case.
	AllocateBlock(byteSize int) (BlockID, error)
	// FreeBlock returns the charge taken by AllocateBlock. The id and byteSize must
	// match a prior successful AllocateBlock call that has not yet been freed.
	FreeBlock(id BlockID, byteSize int)
}

// SystemAllocator is an Allocator with no memory limit. It tracks aggregate block
// statistics and the peak number of bytes ever outstanding.
type SystemAllocator struct {
	nextID         BlockID
	blockCount     int
	blockBytes     int
	peakBlockBytes int
}

var _ Allocator = &SystemAllocator{}

func NewSystemAllocator() *SystemAllocator {
	return &SystemAllocator{}
}

func (a *SystemAllocator) AllocateBlock(byteSize int) (BlockID, error) {
	if byteSize < 0 {
		panic(fmt.Sprintf("attempted to allocate a block of negative size %d", byteSize))
	}

	a.nextID++
	a.blockCount++
	a.blockBytes += byteSize
	if a.blockBytes > a.peakBlockBytes {
		a.peakBlockBytes = a.blockBytes
	}

	return a.nextID, nil
}

func (a *SystemAllocator) FreeBlock(id BlockID, byteSize int) {
	if id <= 0 || id > a.nextID {
		panic(fmt.Sprintf("attempted to free block %d, which this allocator did not allocate", id))
	}
	if byteSize > a.blockBytes {
		panic(fmt.Sprintf("attempted to free %d bytes with only %d outstanding", byteSize, a.blockBytes))
	}

	a.blockCount--
	a.blockBytes -= byteSize
}

// AddStatistics sums this allocator's block statistics into the statistics currently
// present in the provided rawvec.Statistics object.
func (a *SystemAllocator) AddStatistics(stats *rawvec.Statistics) {
	stats.BlockCount += a.blockCount
	stats.BlockBytes += a.blockBytes
}

// AddDetailedStatistics sums this allocator's block statistics into the statistics
// currently present in the provided rawvec.DetailedStatistics object.
func (a *SystemAllocator) AddDetailedStatistics(stats *rawvec.DetailedStatistics) {
	a.AddStatistics(&stats.Statistics)
	if a.peakBlockBytes > stats.PeakBlockBytes {
		stats.PeakBlockBytes = a.peakBlockBytes
	}
}

// PeakBlockBytes returns the high-water mark of bytes outstanding in this allocator.
// Unlike the live statistics, the peak is never reduced by FreeBlock.
func (a *SystemAllocator) PeakBlockBytes() int {
	return a.peakBlockBytes
}

// BudgetAllocator is an Allocator with a hard byte budget. Allocations that would
// push the outstanding byte total past the budget fail with rawvec.ErrOutOfMemory.
type BudgetAllocator struct {
	inner  SystemAllocator
	budget int
}

var _ Allocator = &BudgetAllocator{}

func NewBudgetAllocator(budget int) *BudgetAllocator {
	if budget < 0 {
		panic(fmt.Sprintf("attempted to create a budget allocator with negative budget %d", budget))
	}
	return &BudgetAllocator{budget: budget}
}

func (a *BudgetAllocator) AllocateBlock(byteSize int) (BlockID, error) {
	if byteSize < 0 {
		panic(fmt.Sprintf("attempted to allocate a block of negative size %d", byteSize))
	}

	if a.inner.blockBytes+byteSize > a.budget {
		return 0, errors.Wrapf(rawvec.ErrOutOfMemory,
			"requested a block of %d bytes with %d of %d budgeted bytes in use",
			byteSize, a.inner.blockBytes, a.budget)
	}

	return a.inner.AllocateBlock(byteSize)
}

func (a *BudgetAllocator) FreeBlock(id BlockID, byteSize int) {
	a.inner.FreeBlock(id, byteSize)
}

// AddStatistics sums this allocator's block statistics into the statistics currently
// present in the provided rawvec.Statistics object.
func (a *BudgetAllocator) AddStatistics(stats *rawvec.Statistics) {
	a.inner.AddStatistics(stats)
}

// Budget returns the hard byte budget this allocator enforces.
func (a *BudgetAllocator) Budget() int {
	return a.budget
}
