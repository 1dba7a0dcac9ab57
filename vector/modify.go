package vector

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/manualmem/rawvec"
	"github.com/manualmem/rawvec/block"
	"golang.org/x/exp/slog"
)

// InitFunc constructs an element in place at p. The slot is uninitialized storage on
// entry; on error the container treats the slot as never having held an element.
type InitFunc[T any] func(p *T) error

func valueInit[T any](value T) InitFunc[T] {
	return func(p *T) error {
		*p = value
		return nil
	}
}

// Reserve grows the storage block to exactly newCapacity slots, relocating every live
// element. It is a no-op when newCapacity does not exceed the current capacity.
// Relocation follows the lifetime's strategy: a failed copy unwinds the new block and
// leaves the vector untouched, while the move path cannot fail at all.
func (v *Vector[T]) Reserve(newCapacity int) error {
	if newCapacity < 0 {
		panic(fmt.Sprintf("attempted to reserve negative capacity %d", newCapacity))
	}
	if newCapacity <= v.Cap() {
		return nil
	}

	newData, err := block.NewBlock[T](v.alloc, newCapacity)
	if err != nil {
		return errors.Wrapf(err, "reserving %d slots", newCapacity)
	}

	if err := v.relocateInto(&newData, 0, v.size, 0); err != nil {
		newData.Release(v.alloc)
		return err
	}

	v.replaceStorage(&newData)
	rawvec.DebugValidate(v)
	return nil
}

// Append places value at the end of the vector, growing storage if necessary.
// Ownership of value transfers to the vector.
func (v *Vector[T]) Append(value T) error {
	_, err := v.Emplace(valueInit(value))
	return err
}

// Emplace constructs a new element in place at the end of the vector and returns its
// address. If storage is full the vector grows to the next capacity first; a failure
// anywhere leaves the vector exactly as it was.
func (v *Vector[T]) Emplace(construct InitFunc[T]) (*T, error) {
	return v.emplaceBack(construct)
}

// Insert places value at index, shifting the elements at [index, Len()) one slot
// toward the end. Index Len() is the one-past-end position and appends. Ownership of
// value transfers to the vector.
func (v *Vector[T]) Insert(index int, value T) error {
	_, err := v.EmplaceAt(index, valueInit(value))
	return err
}

// EmplaceAt constructs a new element at index and returns its address, shifting the
// elements at [index, Len()) one slot toward the end. Index Len() appends.
//
// When storage must grow, the failure safety is strong: the new element is built at
// its final offset in the new block and the prefix and suffix are relocated around
// it, with any failure unwinding the new block and leaving the vector untouched.
// When the insert happens in place, a failing element move mid-shift downgrades to
// the basic guarantee: every slot still holds a valid element, but the tail may have
// shifted. Lifetimes whose moves cannot fail always get the strong guarantee.
func (v *Vector[T]) EmplaceAt(index int, construct InitFunc[T]) (*T, error) {
	if index < 0 || index > v.size {
		panic(fmt.Sprintf("insert position %d is outside a vector of %d elements", index, v.size))
	}

	if index == v.size {
		return v.emplaceBack(construct)
	}
	if v.size < v.Cap() {
		return v.emplaceInPlace(index, construct)
	}
	return v.emplaceRealloc(index, construct)
}

// PopBack destroys the last live element. Popping an empty vector is a programming
// error and panics.
func (v *Vector[T]) PopBack() {
	if v.size == 0 {
		panic("attempted to pop an element from an empty vector")
	}
	v.size--
	v.life.destroy(v.data.Index(v.size))
}

// Erase removes the element at index, shifting the elements at [index+1, Len()) one
// slot toward the front. The shift moves or copies per the lifetime's relocation
// strategy; on the copy path a mid-shift failure returns the element's error with
// every slot still holding a valid element (basic guarantee). Erasing out of range,
// including from an empty vector, panics.
func (v *Vector[T]) Erase(index int) error {
	if index < 0 || index >= v.size {
		panic(fmt.Sprintf("erase position %d is outside a vector of %d elements", index, v.size))
	}

	if v.life.RelocateByMove() {
		for i := index; i < v.size-1; i++ {
			dst := v.data.Index(i)
			v.life.destroy(dst)
			v.life.mustMoveInto(dst, v.data.Index(i+1))
		}
	} else {
		for i := index; i < v.size-1; i++ {
			if err := v.assignSlot(v.data.Index(i), v.data.Index(i+1)); err != nil {
				return err
			}
		}
	}

	v.size--
	v.life.destroy(v.data.Index(v.size))
	rawvec.DebugValidate(v)
	return nil
}

// Resize changes the live count to newSize. Shrinking destroys the trailing excess;
// growing default-constructs the new trailing slots, reserving more storage first if
// newSize exceeds the current capacity. A failed element construction destroys the
// elements built so far and leaves the live count unchanged.
func (v *Vector[T]) Resize(newSize int) error {
	if newSize < 0 {
		panic(fmt.Sprintf("attempted to resize a vector to negative size %d", newSize))
	}

	if newSize <= v.size {
		destroyRange(v.life, &v.data, newSize, v.size)
		v.size = newSize
		rawvec.DebugValidate(v)
		return nil
	}

	if newSize > v.Cap() {
		if err := v.Reserve(newSize); err != nil {
			return err
		}
	}

	for i := v.size; i < newSize; i++ {
		if err := v.life.init(v.data.Index(i)); err != nil {
			destroyRange(v.life, &v.data, v.size, i)
			return err
		}
	}

	v.size = newSize
	rawvec.DebugValidate(v)
	return nil
}

func (v *Vector[T]) emplaceBack(construct InitFunc[T]) (*T, error) {
	if v.size < v.Cap() {
		p := v.data.Index(v.size)
		if err := construct(p); err != nil {
			var zero T
			*p = zero
			return nil, err
		}
		v.size++
		rawvec.DebugValidate(v)
		return p, nil
	}

	newData, err := block.NewBlock[T](v.alloc, rawvec.NextCapacity(v.Cap()))
	if err != nil {
		return nil, errors.Wrapf(err, "growing a vector of %d elements to append", v.size)
	}

	p := newData.Index(v.size)
	if err := construct(p); err != nil {
		newData.Release(v.alloc)
		return nil, err
	}

	if err := v.relocateInto(&newData, 0, v.size, 0); err != nil {
		v.life.destroy(p)
		newData.Release(v.alloc)
		return nil, err
	}

	v.replaceStorage(&newData)
	v.size++
	rawvec.DebugValidate(v)
	return p, nil
}

// emplaceInPlace inserts into the middle of existing storage. The new value is built
// in a temporary first, the last element is moved into the next free slot to extend
// the live range, the tail is shifted one slot toward the end tail-to-head so that an
// overlapping slot is never read after being overwritten, and finally the temporary
// is moved into the target slot. At every step each live slot holds either its
// original element or a duplicate that is about to be overwritten, never a gap.
func (v *Vector[T]) emplaceInPlace(index int, construct InitFunc[T]) (*T, error) {
	var tmp T
	if err := construct(&tmp); err != nil {
		return nil, err
	}

	if err := v.life.moveInto(v.data.Index(v.size), v.data.Index(v.size-1)); err != nil {
		v.life.destroy(&tmp)
		return nil, err
	}
	v.size++

	for i := v.size - 2; i > index; i-- {
		if err := v.moveAssignSlot(v.data.Index(i), v.data.Index(i-1)); err != nil {
			v.life.destroy(&tmp)
			return nil, err
		}
	}

	if err := v.moveAssignSlot(v.data.Index(index), &tmp); err != nil {
		v.life.destroy(&tmp)
		return nil, err
	}

	rawvec.DebugValidate(v)
	return v.data.Index(index), nil
}

// emplaceRealloc inserts into a full vector. The new element is constructed directly
// at its final offset in the new block, then the prefix [0, index) and suffix
// [index, size) are relocated on either side of it. Each failure point unwinds
// everything constructed in the new block so far and releases it, leaving the
// original storage intact.
func (v *Vector[T]) emplaceRealloc(index int, construct InitFunc[T]) (*T, error) {
	newData, err := block.NewBlock[T](v.alloc, rawvec.NextCapacity(v.Cap()))
	if err != nil {
		return nil, errors.Wrapf(err, "growing a vector of %d elements to insert at %d", v.size, index)
	}

	p := newData.Index(index)
	if err := construct(p); err != nil {
		newData.Release(v.alloc)
		return nil, err
	}

	if err := v.relocateInto(&newData, 0, index, 0); err != nil {
		v.life.destroy(p)
		newData.Release(v.alloc)
		return nil, err
	}

	if err := v.relocateInto(&newData, index, v.size, index+1); err != nil {
		destroyRange(v.life, &newData, 0, index+1)
		newData.Release(v.alloc)
		return nil, err
	}

	v.replaceStorage(&newData)
	v.size++
	rawvec.DebugValidate(v)
	return v.data.Index(index), nil
}

// relocateInto constructs the live range [from, to) of this vector into dst starting
// at dstOffset, using the lifetime's relocation strategy. The move path cannot fail.
// On the copy path a failure destroys the elements constructed in dst so far and
// returns the element's error; the source range is never modified.
func (v *Vector[T]) relocateInto(dst *block.Block[T], from, to, dstOffset int) error {
	if v.life.RelocateByMove() {
		for i := from; i < to; i++ {
			v.life.mustMoveInto(dst.Index(dstOffset+(i-from)), v.data.Index(i))
		}
		return nil
	}

	for i := from; i < to; i++ {
		if err := v.life.copyInto(dst.Index(dstOffset+(i-from)), v.data.Index(i)); err != nil {
			destroyRange(v.life, dst, dstOffset, dstOffset+(i-from))
			return err
		}
	}
	return nil
}

// replaceStorage destroys the old live range, swaps block ownership so the vector
// owns newData, and releases the old block. The caller must already have relocated
// all live elements into newData.
func (v *Vector[T]) replaceStorage(newData *block.Block[T]) {
	destroyRange(v.life, &v.data, 0, v.size)
	v.data.Swap(newData)
	newData.Release(v.alloc)

	v.growCount++
	v.relocatedElements += v.size
	v.logger.LogAttrs(context.Background(), slog.LevelDebug, "replaced vector storage",
		slog.Int("size", v.size),
		slog.Int("capacity", v.data.Capacity()),
	)
}
