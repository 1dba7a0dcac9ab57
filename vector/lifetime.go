package vector

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/manualmem/rawvec"
)

// Lifetime describes how a Vector constructs, copies, moves, and destroys elements of
// type T. Every field is optional; the zero Lifetime describes a plain value type
// with no resources to manage.
//
//   - Init default-constructs an element into an uninitialized slot. When nil, slots
//     are initialized to the zero value, which cannot fail.
//   - Copy copy-constructs dst from src, leaving src untouched. When nil, copying is
//     `*dst = *src`, which cannot fail. Types whose elements must not be duplicated
//     at all set NotCopyable instead.
//   - Move move-constructs dst from src, leaving src in a moved-from state. When nil,
//     the move is `*dst = *src` followed by zeroing src, which cannot fail.
//   - Destroy releases any resources held by an element. When nil it is a no-op.
//     Destroy must tolerate moved-from and zero values: relocation destroys the
//     source range even after its elements were moved out.
//   - NotCopyable marks a move-only element type. Copying operations (Clone,
//     CopyFrom, copy-based relocation) fail with rawvec.ErrNotCopyable, and
//     relocation always moves.
//   - MoveCannotFail declares that the provided Move never returns an error. Setting
//     it when Move can fail is a contract violation; the Vector panics if such a
//     move fails mid-relocation, because at that point both the source and the
//     destination storage would be corrupt.
//
// Slot reuse note: a Vector has no analogue of assignment over a live element. When
// an operation overwrites a live slot (indexed writes, shifting during insert and
// erase, the overwrite phases of CopyFrom), it destroys the slot first and then
// constructs into it.
type Lifetime[T any] struct {
	Init           func(p *T) error
	Copy           func(dst *T, src *T) error
	Move           func(dst *T, src *T) error
	Destroy        func(p *T)
	NotCopyable    bool
	MoveCannotFail bool
}

// RelocateByMove reports which relocation strategy this lifetime selects when live
// elements must be carried into a freshly allocated block: move-construction when the
// move is guaranteed not to fail (or when the type cannot be copied at all, in which
// case moving is the only option), copy-construction otherwise. A failed move would
// corrupt both the source and destination mid-relocation, while a failed copy leaves
// the source intact to unwind to; the choice is fixed per lifetime so that every
// relocation site in the container agrees.
func (l Lifetime[T]) RelocateByMove() bool {
	return l.MoveCannotFail || l.Move == nil || l.NotCopyable
}

func (l Lifetime[T]) init(p *T) error {
	if l.Init == nil {
		var zero T
		*p = zero
		return nil
	}
	return l.Init(p)
}

func (l Lifetime[T]) copyInto(dst *T, src *T) error {
	if l.NotCopyable {
		return errors.WithStack(rawvec.ErrNotCopyable)
	}
	if l.Copy == nil {
		*dst = *src
		return nil
	}
	return l.Copy(dst, src)
}

func (l Lifetime[T]) moveInto(dst *T, src *T) error {
	if l.Move == nil {
		var zero T
		*dst = *src
		*src = zero
		return nil
	}
	return l.Move(dst, src)
}

// mustMoveInto is the relocation move path: the purity rule only routes here when the
// lifetime guarantees the move cannot fail, so a failure is a contract violation.
func (l Lifetime[T]) mustMoveInto(dst *T, src *T) {
	if err := l.moveInto(dst, src); err != nil {
		panic(fmt.Sprintf("a move declared MoveCannotFail returned an error: %v", err))
	}
}

func (l Lifetime[T]) destroy(p *T) {
	if l.Destroy != nil {
		l.Destroy(p)
	}
	// Zero the slot so a dead slot never pins element resources through the GC.
	var zero T
	*p = zero
}
