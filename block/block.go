package block

import (
	"fmt"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/manualmem/rawvec"
	pkgerrors "github.com/pkg/errors"
)

// Block is a handle to storage for exactly Capacity() element slots of type T. The
// block hands out slot addresses but never constructs or destroys elements itself:
// from the block's point of view every slot is uninitialized memory, and whoever owns
// the block is responsible for running element lifetimes before releasing it.
//
// The zero value is a null block with capacity 0 and no storage. Blocks are not
// copyable in any meaningful sense (the copy would alias possibly-live slots);
// ownership is transferred with Swap against a zero block.
type Block[T any] struct {
	slab     []T
	base     unsafe.Pointer
	capacity int
	id       BlockID
}

// NewBlock allocates storage for capacity slots of T, charging the byte size of the
// slab through alloc. A capacity of zero produces a null block and charges nothing.
// Allocation failure propagates from alloc unmodified apart from added context.
func NewBlock[T any](alloc Allocator, capacity int) (Block[T], error) {
	if capacity < 0 {
		panic(fmt.Sprintf("attempted to allocate a block with negative capacity %d", capacity))
	}
	if capacity == 0 {
		return Block[T]{}, nil
	}

	var zero T
	elemSize := int(unsafe.Sizeof(zero))

	// Debug builds reserve extra slots past the addressable range for the
	// corruption canary.
	slabLen := capacity
	if rawvec.DebugMargin > 0 && elemSize > 0 {
		slabLen += (rawvec.DebugMargin + elemSize - 1) / elemSize
	}

	id, err := alloc.AllocateBlock(slabLen * elemSize)
	if err != nil {
		return Block[T]{}, errors.Wrapf(err, "allocating a storage block of %d slots", capacity)
	}

	slab := make([]T, slabLen)
	b := Block[T]{
		slab:     slab,
		base:     unsafe.Pointer(&slab[0]),
		capacity: capacity,
		id:       id,
	}

	if rawvec.DebugMargin > 0 && elemSize > 0 {
		rawvec.WriteMagicValue(b.base, capacity*elemSize)
	}

	return b, nil
}

// Capacity returns the number of element slots this block was allocated for.
func (b *Block[T]) Capacity() int {
	return b.capacity
}

// Base returns the address of the first slot, or nil for a null block.
func (b *Block[T]) Base() unsafe.Pointer {
	return b.base
}

// Slot returns the address of the slot at offset. Offsets up to and including the
// capacity are addressable so that an empty trailing range can be expressed; the
// one-past-the-end address must never be dereferenced as a T. Anything beyond that
// is a programming error and panics.
func (b *Block[T]) Slot(offset int) *T {
	if offset < 0 || offset > b.capacity {
		panic(fmt.Sprintf("slot offset %d is outside a block of capacity %d", offset, b.capacity))
	}
	if offset == b.capacity {
		var zero T
		return (*T)(unsafe.Add(b.base, uintptr(offset)*unsafe.Sizeof(zero)))
	}
	return &b.slab[offset]
}

// Index returns the address of the slot at index. Unlike Slot, the one-past-the-end
// position is not addressable.
func (b *Block[T]) Index(index int) *T {
	if index < 0 || index >= b.capacity {
		panic(fmt.Sprintf("slot index %d is outside a block of capacity %d", index, b.capacity))
	}
	return &b.slab[index]
}

// Swap exchanges storage ownership with other in constant time. It never fails and
// never allocates, which is what lets container-level operations replace storage
// atomically after a relocation has fully succeeded.
func (b *Block[T]) Swap(other *Block[T]) {
	b.slab, other.slab = other.slab, b.slab
	b.base, other.base = other.base, b.base
	b.capacity, other.capacity = other.capacity, b.capacity
	b.id, other.id = other.id, b.id
}

// Release returns the block's charge to alloc and leaves the block null. Releasing a
// null block is a no-op. Release never runs element lifetimes; any live elements must
// have been destroyed by the owner beforehand or their resources leak.
func (b *Block[T]) Release(alloc Allocator) {
	if b.capacity == 0 {
		return
	}

	var zero T
	elemSize := int(unsafe.Sizeof(zero))

	if rawvec.DebugMargin > 0 && elemSize > 0 &&
		!rawvec.ValidateMagicValue(b.base, b.capacity*elemSize) {
		panic(fmt.Sprintf("memory corruption detected past the end of block %d", b.id))
	}

	alloc.FreeBlock(b.id, len(b.slab)*elemSize)
	b.slab = nil
	b.base = nil
	b.capacity = 0
	b.id = 0
}

// Validate performs internal consistency checks on the block handle.
func (b *Block[T]) Validate() error {
	if b.capacity < 0 {
		return pkgerrors.New("this block has a negative capacity")
	}
	if b.capacity == 0 {
		if b.base != nil || b.slab != nil || b.id != 0 {
			return pkgerrors.New("this block has no capacity but still holds storage")
		}
		return nil
	}
	if b.base == nil || len(b.slab) < b.capacity {
		return pkgerrors.New("this block's storage is smaller than its capacity")
	}
	if b.id <= 0 {
		return pkgerrors.New("this block holds storage without an allocator charge")
	}
	return nil
}
