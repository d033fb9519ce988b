// Package ir defines the intermediate representation the analyses in
// this module consume: a typed, object-oriented, three-address-form IR
// resembling Java bytecode. Every analysis package only ever sees the
// interfaces and concrete types declared here, never a source or
// bytecode frontend directly; see internal/ssaimport and
// internal/ir/build.go for the two supported ways of obtaining a
// *Method.
package ir

// Kind discriminates primitive and reference shapes. The "int-holding"
// set — the types canHoldInt treats as candidates for constant
// propagation — is {Byte, Short, Int, Char, Boolean}.
type Kind uint8

const (
	Byte Kind = iota
	Short
	Int
	Char
	Boolean
	Long
	Float
	Double
	Reference // named class/interface type
	ArrayKind
	Void
)

// Type is a value's static type. Reference carries ClassName; ArrayKind
// carries Elem. Primitive kinds carry neither.
type Type struct {
	Kind      Kind
	ClassName string // valid when Kind == Reference
	Elem      *Type  // valid when Kind == ArrayKind
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case Reference:
		return t.ClassName
	case ArrayKind:
		return t.Elem.String() + "[]"
	default:
		return [...]string{"byte", "short", "int", "char", "boolean", "long", "float", "double", "ref", "array", "void"}[t.Kind]
	}
}

// CanHoldInt reports whether a variable of this type is a candidate for
// integer constant propagation: canHoldInt(var),
func (t *Type) CanHoldInt() bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case Byte, Short, Int, Char, Boolean:
		return true
	default:
		return false
	}
}

var (
	TypeInt     = &Type{Kind: Int}
	TypeBoolean = &Type{Kind: Boolean}
	TypeByte    = &Type{Kind: Byte}
	TypeShort   = &Type{Kind: Short}
	TypeChar    = &Type{Kind: Char}
	TypeVoid    = &Type{Kind: Void}
)

// RefType returns the (interned-by-caller) reference type named className.
func RefType(className string) *Type { return &Type{Kind: Reference, ClassName: className} }

// ArrayOf returns the array-of-elem type.
func ArrayOf(elem *Type) *Type { return &Type{Kind: ArrayKind, Elem: elem} }

// Field identifies a declared field by its owning class and name; it is
// comparable by identity (one *Field per declaration, shared by all
// accesses) so it can key maps the way instanceMap/staticMap do.
type Field struct {
	DeclClass string
	Name      string
	Type      *Type
	Static    bool
}

// MethodRef identifies a method reference as it appears at a call site,
// prior to dispatch: the declared class of the reference and its
// subsignature (name+param types, return type omitted as Java overload
// resolution has already happened upstream of this IR).
type MethodRef struct {
	DeclClass string
	Subsig    string // e.g. "foo(int,java.lang.String)"
}
