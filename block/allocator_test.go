package block_test

import (
	"io"
	"testing"

	"github.com/manualmem/rawvec"
	"github.com/manualmem/rawvec/block"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard))
}

func TestSystemAllocatorTracksPeak(t *testing.T) {
	alloc := block.NewSystemAllocator()

	id1, err := alloc.AllocateBlock(100)
	require.NoError(t, err)
	id2, err := alloc.AllocateBlock(200)
	require.NoError(t, err)
	require.NotEqual(t, id1, id2)

	require.Equal(t, 300, alloc.PeakBlockBytes())

	alloc.FreeBlock(id1, 100)
	require.Equal(t, 300, alloc.PeakBlockBytes())

	var stats rawvec.DetailedStatistics
	stats.Clear()
	alloc.AddDetailedStatistics(&stats)
	require.Equal(t, 1, stats.BlockCount)
	require.Equal(t, 200, stats.BlockBytes)
	require.Equal(t, 300, stats.PeakBlockBytes)

	alloc.FreeBlock(id2, 200)
}

func TestSystemAllocatorFreePreconditions(t *testing.T) {
	alloc := block.NewSystemAllocator()

	id, err := alloc.AllocateBlock(10)
	require.NoError(t, err)

	require.Panics(t, func() { alloc.FreeBlock(id+1, 10) })
	require.Panics(t, func() { alloc.FreeBlock(id, 100) })
	require.Panics(t, func() { _, _ = alloc.AllocateBlock(-1) })

	alloc.FreeBlock(id, 10)
}

func TestBudgetAllocatorEnforcesBudget(t *testing.T) {
	alloc := block.NewBudgetAllocator(250)

	id1, err := alloc.AllocateBlock(100)
	require.NoError(t, err)
	id2, err := alloc.AllocateBlock(100)
	require.NoError(t, err)

	_, err = alloc.AllocateBlock(100)
	require.ErrorIs(t, err, rawvec.ErrOutOfMemory)

	// A failed allocation changes no accounting
	var stats rawvec.Statistics
	alloc.AddStatistics(&stats)
	require.Equal(t, 2, stats.BlockCount)
	require.Equal(t, 200, stats.BlockBytes)

	// Freeing makes room again
	alloc.FreeBlock(id1, 100)
	id3, err := alloc.AllocateBlock(150)
	require.NoError(t, err)

	alloc.FreeBlock(id2, 100)
	alloc.FreeBlock(id3, 150)
}

func TestTrackingAllocatorReportsLeaks(t *testing.T) {
	alloc := block.NewTrackingAllocator(nil, discardLogger())

	id1, err := alloc.AllocateBlock(100)
	require.NoError(t, err)
	id2, err := alloc.AllocateBlock(50)
	require.NoError(t, err)
	require.Equal(t, 2, alloc.OutstandingBlocks())

	alloc.FreeBlock(id1, 100)
	require.Equal(t, 1, alloc.OutstandingBlocks())

	err = alloc.Shutdown()
	require.Error(t, err)

	// The allocator is unusable after shutdown
	require.Panics(t, func() { _, _ = alloc.AllocateBlock(10) })
	require.Panics(t, func() { alloc.FreeBlock(id2, 50) })
}

func TestTrackingAllocatorCleanShutdown(t *testing.T) {
	alloc := block.NewTrackingAllocator(nil, discardLogger())

	id, err := alloc.AllocateBlock(100)
	require.NoError(t, err)
	alloc.FreeBlock(id, 100)

	require.NoError(t, alloc.Shutdown())
}

func TestTrackingAllocatorFreePreconditions(t *testing.T) {
	alloc := block.NewTrackingAllocator(nil, discardLogger())

	id, err := alloc.AllocateBlock(100)
	require.NoError(t, err)

	require.Panics(t, func() { alloc.FreeBlock(id+1, 100) })
	require.Panics(t, func() { alloc.FreeBlock(id, 99) })

	alloc.FreeBlock(id, 100)
	require.NoError(t, alloc.Shutdown())
}

func TestTrackingAllocatorPropagatesInnerFailure(t *testing.T) {
	alloc := block.NewTrackingAllocator(block.NewBudgetAllocator(50), discardLogger())

	_, err := alloc.AllocateBlock(100)
	require.ErrorIs(t, err, rawvec.ErrOutOfMemory)
	require.Equal(t, 0, alloc.OutstandingBlocks())

	require.NoError(t, alloc.Shutdown())
}
