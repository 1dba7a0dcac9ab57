// Package vector implements a dynamic array container whose element lifetimes are
// managed manually over raw storage blocks. The container decouples allocated
// capacity from the number of live elements: slots below the live count hold
// constructed elements, slots above it are uninitialized storage that is addressable
// but never read. Element construction, copying, moving, and destruction are driven
// through a Lifetime descriptor, and every multi-element operation either completes
// or unwinds to leave the container exactly as it was.
package vector

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/manualmem/rawvec"
	"github.com/manualmem/rawvec/block"
	pkgerrors "github.com/pkg/errors"
	"golang.org/x/exp/slog"
)

// Vector is a dynamic array of T over a single owned storage block. It is a
// single-owner, non-concurrent value container: no operation is safe to call
// concurrently with a mutating operation on the same Vector.
type Vector[T any] struct {
	data  block.Block[T]
	size  int
	life  Lifetime[T]
	alloc block.Allocator

	logger            *slog.Logger
	growCount         int
	relocatedElements int
}

type vectorConfig struct {
	alloc  block.Allocator
	logger *slog.Logger
}

// Option configures a Vector at construction time.
type Option func(*vectorConfig)

// WithAllocator charges the vector's storage blocks through alloc instead of a
// private SystemAllocator.
func WithAllocator(alloc block.Allocator) Option {
	return func(c *vectorConfig) {
		c.alloc = alloc
	}
}

// WithLogger routes the vector's diagnostic logging to logger instead of
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *vectorConfig) {
		c.logger = logger
	}
}

// New creates an empty Vector with no storage.
func New[T any](life Lifetime[T], options ...Option) *Vector[T] {
	var cfg vectorConfig
	for _, option := range options {
		option(&cfg)
	}
	if cfg.alloc == nil {
		cfg.alloc = block.NewSystemAllocator()
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	return &Vector[T]{
		life:   life,
		alloc:  cfg.alloc,
		logger: cfg.logger,
	}
}

// NewWithSize creates a Vector holding size default-constructed elements in a block
// of exactly that capacity. If construction of any element fails, the elements built
// so far are destroyed and the block is released before the error is returned.
func NewWithSize[T any](life Lifetime[T], size int, options ...Option) (*Vector[T], error) {
	if size < 0 {
		panic(fmt.Sprintf("attempted to create a vector with negative size %d", size))
	}

	v := New[T](life, options...)
	if size == 0 {
		return v, nil
	}

	data, err := block.NewBlock[T](v.alloc, size)
	if err != nil {
		return nil, errors.Wrapf(err, "creating a vector of %d elements", size)
	}

	for i := 0; i < size; i++ {
		if err := v.life.init(data.Index(i)); err != nil {
			destroyRange(v.life, &data, 0, i)
			data.Release(v.alloc)
			return nil, err
		}
	}

	v.data = data
	v.size = size
	rawvec.DebugValidate(v)
	return v, nil
}

// Take is the move construction: it steals other's storage and live elements in O(1)
// and leaves other empty with no storage. Take never fails.
func Take[T any](other *Vector[T]) *Vector[T] {
	out := &Vector[T]{
		life:   other.life,
		alloc:  other.alloc,
		logger: other.logger,
	}
	out.Swap(other)
	return out
}

// Clone is the copy construction: it builds a new Vector whose capacity equals this
// vector's size, copy-constructing every live element. A mid-copy failure destroys
// the partial clone and returns the element's error with this vector untouched.
func (v *Vector[T]) Clone() (*Vector[T], error) {
	out := &Vector[T]{
		life:   v.life,
		alloc:  v.alloc,
		logger: v.logger,
	}
	if v.size == 0 {
		return out, nil
	}

	data, err := copyBlock(v.life, v.alloc, &v.data, v.size)
	if err != nil {
		return nil, err
	}

	out.data = data
	out.size = v.size
	return out, nil
}

// CopyFrom is the copy assignment. It avoids allocating when the source fits in the
// current storage:
//
//  1. A smaller source overwrites the leading slots and destroys the excess.
//  2. A source within capacity overwrites the live slots and copy-constructs the rest
//     into uninitialized storage.
//  3. A larger source is cloned into a fresh block first, so a copy failure leaves
//     this vector untouched; only then is the old storage torn down.
//
// The first two paths give the basic guarantee (on failure every slot still holds a
// valid element, but leading slots may already hold copied values); the third gives
// the strong guarantee. Copying from the vector itself is a no-op.
func (v *Vector[T]) CopyFrom(other *Vector[T]) error {
	if v == other {
		return nil
	}

	switch {
	case other.size < v.size:
		for i := 0; i < other.size; i++ {
			if err := v.assignSlot(v.data.Index(i), other.data.Index(i)); err != nil {
				return err
			}
		}
		destroyRange(v.life, &v.data, other.size, v.size)
		v.size = other.size

	case other.size <= v.Cap():
		for i := 0; i < v.size; i++ {
			if err := v.assignSlot(v.data.Index(i), other.data.Index(i)); err != nil {
				return err
			}
		}
		for i := v.size; i < other.size; i++ {
			if err := v.life.copyInto(v.data.Index(i), other.data.Index(i)); err != nil {
				destroyRange(v.life, &v.data, v.size, i)
				return err
			}
		}
		v.size = other.size

	default:
		data, err := copyBlock(v.life, v.alloc, &other.data, other.size)
		if err != nil {
			return err
		}
		old := v.data
		oldSize := v.size
		v.data = data
		v.size = other.size
		destroyRange(v.life, &old, 0, oldSize)
		old.Release(v.alloc)
	}

	rawvec.DebugValidate(v)
	return nil
}

// MoveFrom is the move assignment: storage is exchanged with other in O(1) and
// nothing can fail. Other ends up holding this vector's previous contents, which is
// acceptable because a move source is on its way out. Moving from the vector itself
// is a no-op.
func (v *Vector[T]) MoveFrom(other *Vector[T]) {
	if v == other {
		return
	}
	v.Swap(other)
}

// Swap exchanges contents with other in constant time. The lifetime, allocator, and
// growth counters travel with the elements they describe, so that every element is
// destroyed by the lifetime that constructed it and every block is released to the
// allocator it was charged against.
func (v *Vector[T]) Swap(other *Vector[T]) {
	v.data.Swap(&other.data)
	v.size, other.size = other.size, v.size
	v.life, other.life = other.life, v.life
	v.alloc, other.alloc = other.alloc, v.alloc
	v.growCount, other.growCount = other.growCount, v.growCount
	v.relocatedElements, other.relocatedElements = other.relocatedElements, v.relocatedElements
}

// Destroy destroys every live element and releases the storage block. The vector is
// empty but still usable afterward; destroying an empty vector is a no-op.
func (v *Vector[T]) Destroy() {
	destroyRange(v.life, &v.data, 0, v.size)
	v.size = 0
	v.data.Release(v.alloc)
}

// Len returns the number of live elements.
func (v *Vector[T]) Len() int {
	return v.size
}

// Cap returns the number of slots in the owned storage block.
func (v *Vector[T]) Cap() int {
	return v.data.Capacity()
}

// At returns the address of the live element at index. Indexing at or past the live
// count is a programming error and panics.
func (v *Vector[T]) At(index int) *T {
	if index < 0 || index >= v.size {
		panic(fmt.Sprintf("element index %d is outside a vector of %d elements", index, v.size))
	}
	return v.data.Index(index)
}

// Set replaces the live element at index with value, destroying the previous element
// first. Ownership of value transfers to the vector.
func (v *Vector[T]) Set(index int, value T) {
	p := v.At(index)
	v.life.destroy(p)
	*p = value
}

// Each calls visit for every live element in index order until visit returns false.
func (v *Vector[T]) Each(visit func(index int, p *T) bool) {
	for i := 0; i < v.size; i++ {
		if !visit(i, v.data.Index(i)) {
			return
		}
	}
}

// Validate performs internal consistency checks on the vector.
func (v *Vector[T]) Validate() error {
	if err := v.data.Validate(); err != nil {
		return err
	}
	if v.size < 0 {
		return pkgerrors.New("this vector has a negative live count")
	}
	if v.size > v.data.Capacity() {
		return pkgerrors.New("this vector counts more live elements than its storage has slots")
	}
	return nil
}

// assignSlot overwrites a live slot with a copy of src. See the slot reuse note on
// Lifetime: the previous element is destroyed first, so a copy failure leaves the
// slot holding a valid zero value rather than a dead gap.
func (v *Vector[T]) assignSlot(dst *T, src *T) error {
	v.life.destroy(dst)
	return v.life.copyInto(dst, src)
}

// moveAssignSlot overwrites a live slot by moving src into it.
func (v *Vector[T]) moveAssignSlot(dst *T, src *T) error {
	v.life.destroy(dst)
	return v.life.moveInto(dst, src)
}

// destroyRange destroys the elements at [from, to) within b.
func destroyRange[T any](life Lifetime[T], b *block.Block[T], from, to int) {
	for i := from; i < to; i++ {
		life.destroy(b.Index(i))
	}
}

// copyBlock copy-constructs the first n live elements of src into a new block of
// capacity n charged to alloc. On failure the partial block is unwound and released.
func copyBlock[T any](life Lifetime[T], alloc block.Allocator, src *block.Block[T], n int) (block.Block[T], error) {
	data, err := block.NewBlock[T](alloc, n)
	if err != nil {
		return block.Block[T]{}, errors.Wrapf(err, "copying %d elements into a new block", n)
	}

	for i := 0; i < n; i++ {
		if err := life.copyInto(data.Index(i), src.Index(i)); err != nil {
			destroyRange(life, &data, 0, i)
			data.Release(alloc)
			return block.Block[T]{}, err
		}
	}

	return data, nil
}
