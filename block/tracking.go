package block

import (
	"context"
	"fmt"

	"github.com/dolthub/swiss"
	"github.com/pkg/errors"
	"golang.org/x/exp/slog"
)

type blockRecord struct {
	byteSize int
}

// TrackingAllocator wraps another Allocator and records every outstanding block, so
// that storage leaks (blocks allocated but never released) can be detected and
// reported at teardown.
type TrackingAllocator struct {
	inner       Allocator
	logger      *slog.Logger
	outstanding *swiss.Map[BlockID, blockRecord]
}

var _ Allocator = &TrackingAllocator{}

// NewTrackingAllocator creates a TrackingAllocator around inner. A nil inner defaults
// to a fresh SystemAllocator, and a nil logger defaults to slog.Default().
func NewTrackingAllocator(inner Allocator, logger *slog.Logger) *TrackingAllocator {
	if inner == nil {
		inner = NewSystemAllocator()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TrackingAllocator{
		inner:       inner,
		logger:      logger,
		outstanding: swiss.NewMap[BlockID, blockRecord](42),
	}
}

func (a *TrackingAllocator) AllocateBlock(byteSize int) (BlockID, error) {
	a.panicIfShutDown()

	id, err := a.inner.AllocateBlock(byteSize)
	if err != nil {
		return 0, err
	}

	a.outstanding.Put(id, blockRecord{byteSize: byteSize})
	return id, nil
}

func (a *TrackingAllocator) FreeBlock(id BlockID, byteSize int) {
	a.panicIfShutDown()

	record, ok := a.outstanding.Get(id)
	if !ok {
		panic(fmt.Sprintf("attempted to free block %d, which this allocator is not tracking", id))
	}
	if record.byteSize != byteSize {
		panic(fmt.Sprintf("attempted to free block %d with size %d, but it was allocated with size %d",
			id, byteSize, record.byteSize))
	}

	a.outstanding.Delete(id)
	a.inner.FreeBlock(id, byteSize)
}

// OutstandingBlocks returns the number of blocks allocated through this allocator
// that have not yet been freed.
func (a *TrackingAllocator) OutstandingBlocks() int {
	a.panicIfShutDown()
	return a.outstanding.Count()
}

// Shutdown verifies that every block allocated through this allocator has been freed.
// If any are still outstanding, each one is logged and an error is returned. The
// allocator is unusable afterward; further operations panic.
func (a *TrackingAllocator) Shutdown() error {
	a.panicIfShutDown()

	leaked := a.outstanding.Count()
	if leaked > 0 {
		a.outstanding.Iter(func(id BlockID, record blockRecord) bool {
			a.logger.LogAttrs(context.Background(), slog.LevelError,
				"[UNRELEASED MEMORY] unfreed storage block",
				slog.Int64("blockID", int64(id)),
				slog.Int("byteSize", record.byteSize),
			)
			return false
		})
	}

	a.outstanding = nil
	if leaked > 0 {
		return errors.New("some storage blocks were not released before the shutdown of this allocator!")
	}
	return nil
}

func (a *TrackingAllocator) panicIfShutDown() {
	if a.outstanding == nil {
		panic("attempted to use a tracking allocator after Shutdown()")
	}
}
