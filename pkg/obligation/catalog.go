package obligation

// Category is one of the closed set of obligation categories the core
// produces. No other category is ever emitted.
type Category string

const (
	CategoryPointerDereference Category = "pointer dereference"
	CategoryArrayBounds        Category = "array bounds"
	CategoryPointerAlignment   Category = "Pointer alignment"
	CategoryCodeSeparation     Category = "Code separation"
	CategoryMemoryModel        Category = "Memory model"
)

// The closed (category, message) table. Emitting any other pair is an
// internal contract violation.
const (
	MsgInvalidPointer            = "invalid pointer"
	MsgNullPointer                = "NULL pointer"
	MsgWriteToStringConstant      = "write access to string constant"
	MsgFreeOfNonDynamicMemory     = "free() of non-dynamic memory"
	MsgInvalidatedDynamicObject   = "invalidated dynamic object"
	MsgReadsBetweenStructFields   = "Dereference reads between struct fields"
	MsgOverSizedReadOfStructField = "Over-sized read of struct field"
	MsgMisalignedStructField      = "Misaligned access to struct field"
	MsgUnalignedNonByteArray      = "Unaligned access to non-byte array"
	MsgAccessOutOfBounds          = "Access to object out of bounds"

	MsgArrayBoundsViolated = "array bounds violated"

	MsgUnalignedArrayAccess = "Unaligned access to array"

	MsgCodeAccessedNonCodeType  = "Program code accessed with non-code type"
	MsgDataAccessedCodeType     = "Data object accessed with code type"
	MsgCodeAccessedWriteOrFree  = "Program code accessed in write or free mode"
	MsgCodeAccessedNonZeroOffset = "Program code accessed with non-zero offset"

	MsgIncompatibleBaseType = "Object accessed with incompatible base type"
	MsgIllegalOffset        = "Object accessed with illegal offset"
	MsgOversizedFieldOffset = "Oversized field offset"
)

// catalog maps every valid message to its category, used to validate
// Emit calls against the closed set: emitting an
// unrecognised pair is an internal contract violation, not a silent
// no-op.
var catalog = map[string]Category{
	MsgInvalidPointer:            CategoryPointerDereference,
	MsgNullPointer:                CategoryPointerDereference,
	MsgWriteToStringConstant:      CategoryPointerDereference,
	MsgFreeOfNonDynamicMemory:     CategoryPointerDereference,
	MsgInvalidatedDynamicObject:   CategoryPointerDereference,
	MsgReadsBetweenStructFields:   CategoryPointerDereference,
	MsgOverSizedReadOfStructField: CategoryPointerDereference,
	MsgMisalignedStructField:      CategoryPointerDereference,
	MsgUnalignedNonByteArray:      CategoryPointerDereference,
	MsgAccessOutOfBounds:          CategoryPointerDereference,

	MsgArrayBoundsViolated: CategoryArrayBounds,

	MsgUnalignedArrayAccess: CategoryPointerAlignment,

	MsgCodeAccessedNonCodeType:   CategoryCodeSeparation,
	MsgDataAccessedCodeType:      CategoryCodeSeparation,
	MsgCodeAccessedWriteOrFree:   CategoryCodeSeparation,
	MsgCodeAccessedNonZeroOffset: CategoryCodeSeparation,

	MsgIncompatibleBaseType: CategoryMemoryModel,
	MsgIllegalOffset:        CategoryMemoryModel,
	MsgOversizedFieldOffset: CategoryMemoryModel,
}

// Lookup returns the category for a known message, or ok=false if the
// message is not part of the closed catalog.
func Lookup(message string) (Category, bool) {
	c, ok := catalog[message]
	return c, ok
}

// IsBounds reports whether a (category, message) pair is one the
// no-bounds-check flag should suppress: the array-bounds category and
// the pointer-dereference "out of bounds" message.
func IsBounds(category Category, message string) bool {
	if category == CategoryArrayBounds {
		return true
	}
	return category == CategoryPointerDereference && message == MsgAccessOutOfBounds
}
