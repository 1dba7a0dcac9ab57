//go:build !debug_rawvec

package rawvec

import "unsafe"

const (
	// DebugMargin is the number of bytes of debug data that should be placed past the
	// last addressable slot of storage blocks managed by rawvec
	DebugMargin int = 0
)

// ValidateMagicValue verifies that the easy-to-identify marker written by WriteMagicValue is still present.
// It returns true if the value is still present and false otherwise.
// This method no-ops unless the debug_rawvec build tag is present.
func ValidateMagicValue(data unsafe.Pointer, offset int) bool {
	return true
}

// WriteMagicValue writes an easy-to-identify marker across DebugMargin bytes at the provided pointer and offset.
// This method no-ops unless the debug_rawvec build tag is present.
func WriteMagicValue(data unsafe.Pointer, offset int) {
}

// DebugValidate will call Validate on the provided object and panics if any errors are returned. This
// method no-ops unless the debug_rawvec build tag is present
func DebugValidate(validatable Validatable) {
}
