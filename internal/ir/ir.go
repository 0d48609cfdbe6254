// Package ir defines the read-only contracts the engine consumes from its
// external collaborators: the IR builder and the class hierarchy loader
// (spec §6). The engine never constructs these objects itself; it only
// reads them through the interfaces below.
package ir

// Type is the IR's primitive type tag. Only the int-like types
// participate in constant propagation (spec §4.2); its transfer function
// ignores variables of every other type. Live-variable analysis tracks
// variables of every type.
type Type int

const (
	TypeOther Type = iota
	TypeByte
	TypeShort
	TypeInt
	TypeChar
	TypeBoolean
	TypeLong
	TypeFloat
	TypeDouble
	TypeReference
)

// CanHoldInt reports whether a value of this type participates in the
// integer constant-propagation lattice.
func (t Type) CanHoldInt() bool {
	switch t {
	case TypeByte, TypeShort, TypeInt, TypeChar, TypeBoolean:
		return true
	default:
		return false
	}
}

func (t Type) String() string {
	switch t {
	case TypeByte:
		return "byte"
	case TypeShort:
		return "short"
	case TypeInt:
		return "int"
	case TypeChar:
		return "char"
	case TypeBoolean:
		return "boolean"
	case TypeLong:
		return "long"
	case TypeFloat:
		return "float"
	case TypeDouble:
		return "double"
	case TypeReference:
		return "reference"
	default:
		return "other"
	}
}

// Var is a local variable or formal parameter. Identity is by pointer:
// two *Var values referring to the same source variable must be the same
// pointer, since CPFact and SetFact key on pointer identity.
type Var struct {
	Name      string
	Type      Type
	Index     int // dense slot index within the owning method
	Parameter bool
}

func (v *Var) String() string { return v.Name }
