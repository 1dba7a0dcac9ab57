package rawvec

import "github.com/pkg/errors"

// ErrOutOfMemory is the error returned from Allocator implementations when a requested
// block allocation would exceed the memory available to them
var ErrOutOfMemory error = errors.New("out of memory")

// ErrNotCopyable is the error returned from copying operations when the element
// lifetime does not provide a copy operation
var ErrNotCopyable error = errors.New("element type is not copyable")
