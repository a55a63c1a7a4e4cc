package mp4io

// TypeKind discriminates the variants of Type.
type TypeKind uint8

const (
	TypePrimitive TypeKind = iota
	TypeFixedArray
	TypeString
	TypeOptional
	TypeVariant
	TypeDynArray
	TypeRecord
	TypeBoxes
	TypeRaw
)

// Prim is a fixed width scalar encoding.
type Prim uint8

const (
	PrimU8 Prim = iota
	PrimU16
	PrimU24
	PrimU32
	PrimU64
	PrimI8
	PrimI16
	PrimI32
	PrimI64
	PrimF32
	PrimF64
)

func (p Prim) Size() int {
	switch p {
	case PrimU8, PrimI8:
		return 1
	case PrimU16, PrimI16:
		return 2
	case PrimU24:
		return 3
	case PrimU32, PrimI32, PrimF32:
		return 4
	default:
		return 8
	}
}

// Context is what a Guard can look at: the box header and the sibling
// fields bound so far.
type Context struct {
	Version uint8
	Flags   uint32
	Scope   *Record
}

// Guard decides whether a field is present or which variant applies.
type Guard func(Context) bool

// Type describes how one field value is laid out on the wire.
type Type struct {
	Kind TypeKind
	Prim Prim
	// Elem is the element type of arrays and the wrapped type of Optional.
	Elem *Type
	// Len is the element count of a fixed array.
	Len int
	// CountOf names the earlier sibling holding a dynamic array's length.
	// An empty name means the array runs to the end of the body.
	CountOf string
	// Guard gates Optional and DynArray types.
	Guard  Guard
	Cases  []Case
	Fields []Field
}

// Case is one candidate of a Variant. A nil When always matches.
type Case struct {
	When Guard
	Type *Type
}

type Field struct {
	Name string
	Type *Type
}

func F(name string, t *Type) Field {
	return Field{Name: name, Type: t}
}

func prim(p Prim) *Type { return &Type{Kind: TypePrimitive, Prim: p} }

func U8() *Type  { return prim(PrimU8) }
func U16() *Type { return prim(PrimU16) }
func U24() *Type { return prim(PrimU24) }
func U32() *Type { return prim(PrimU32) }
func U64() *Type { return prim(PrimU64) }
func I8() *Type  { return prim(PrimI8) }
func I16() *Type { return prim(PrimI16) }
func I32() *Type { return prim(PrimI32) }
func I64() *Type { return prim(PrimI64) }
func F32() *Type { return prim(PrimF32) }
func F64() *Type { return prim(PrimF64) }

// Array is n consecutive values of elem.
func Array(elem *Type, n int) *Type {
	return &Type{Kind: TypeFixedArray, Elem: elem, Len: n}
}

// Bytes is a fixed run of n bytes, decoded as []byte.
func Bytes(n int) *Type {
	return Array(U8(), n)
}

// String is a NUL terminated UTF-8 string.
func String() *Type {
	return &Type{Kind: TypeString}
}

// Optional is present only when g holds.
func Optional(g Guard, t *Type) *Type {
	return &Type{Kind: TypeOptional, Elem: t, Guard: g}
}

// Variant picks the first case whose guard holds. The last case should be
// an Otherwise catch-all.
func Variant(cases ...Case) *Type {
	return &Type{Kind: TypeVariant, Cases: cases}
}

func When(g Guard, t *Type) Case {
	return Case{When: g, Type: t}
}

func Otherwise(t *Type) Case {
	return Case{Type: t}
}

// Count is an array whose length is held by the earlier field name.
func Count(name string, elem *Type) *Type {
	return &Type{Kind: TypeDynArray, Elem: elem, CountOf: name}
}

// Remaining is an array of fixed size elements filling the rest of the body.
func Remaining(elem *Type) *Type {
	return &Type{Kind: TypeDynArray, Elem: elem}
}

// Struct is an inline group of fields with its own sibling scope.
func Struct(fields ...Field) *Type {
	return &Type{Kind: TypeRecord, Fields: fields}
}

// Boxes is a list of child boxes filling the rest of the body.
func Boxes() *Type {
	return &Type{Kind: TypeBoxes}
}

// Raw captures the rest of the body verbatim.
func Raw() *Type {
	return &Type{Kind: TypeRaw}
}

// If gates t on g. Dynamic arrays become empty when g fails, every other
// type becomes an Optional.
func (t *Type) If(g Guard) *Type {
	if t.Kind == TypeDynArray {
		c := *t
		c.Guard = g
		return &c
	}
	return Optional(g, t)
}

// FlagSet holds when any bit of mask is set in the box flags.
func FlagSet(mask uint32) Guard {
	return func(c Context) bool { return c.Flags&mask != 0 }
}

func VersionIs(v uint8) Guard {
	return func(c Context) bool { return c.Version == v }
}

// FieldIs holds when the earlier sibling name is present and equals v.
func FieldIs(name string, v uint64) Guard {
	return func(c Context) bool {
		if c.Scope == nil || !c.Scope.Has(name) {
			return false
		}
		return c.Scope.Uint(name) == v
	}
}

func Not(g Guard) Guard {
	return func(c Context) bool { return !g(c) }
}

func And(gs ...Guard) Guard {
	return func(c Context) bool {
		for _, g := range gs {
			if !g(c) {
				return false
			}
		}
		return true
	}
}

// fixedSize reports the encoded size of t when it does not depend on data.
func fixedSize(t *Type) (int, bool) {
	switch t.Kind {
	case TypePrimitive:
		return t.Prim.Size(), true
	case TypeFixedArray:
		n, ok := fixedSize(t.Elem)
		return n * t.Len, ok
	case TypeRecord:
		total := 0
		for _, f := range t.Fields {
			n, ok := fixedSize(f.Type)
			if !ok {
				return 0, false
			}
			total += n
		}
		return total, true
	}
	return 0, false
}

// minSize is a lower bound of the encoded size of t.
func minSize(t *Type) int {
	switch t.Kind {
	case TypePrimitive:
		return t.Prim.Size()
	case TypeFixedArray:
		return minSize(t.Elem) * t.Len
	case TypeString:
		return 1
	case TypeVariant:
		m := -1
		for _, c := range t.Cases {
			if n := minSize(c.Type); m < 0 || n < m {
				m = n
			}
		}
		if m < 0 {
			return 0
		}
		return m
	case TypeRecord:
		total := 0
		for _, f := range t.Fields {
			total += minSize(f.Type)
		}
		return total
	}
	return 0
}

// sizeIn is minSize with the guards of t resolved against the box header
// in c. Guards reading sibling fields see an empty scope.
func sizeIn(t *Type, c Context) int {
	switch t.Kind {
	case TypeOptional:
		if !t.Guard(c) {
			return 0
		}
		return sizeIn(t.Elem, c)
	case TypeVariant:
		cs, err := pickCase(t, c)
		if err != nil {
			return 0
		}
		return sizeIn(cs.Type, c)
	case TypeFixedArray:
		return sizeIn(t.Elem, c) * t.Len
	case TypeRecord:
		inner := Context{Version: c.Version, Flags: c.Flags, Scope: &Record{}}
		total := 0
		for _, f := range t.Fields {
			total += sizeIn(f.Type, inner)
		}
		return total
	}
	return minSize(t)
}

func isByte(t *Type) bool {
	return t.Kind == TypePrimitive && t.Prim == PrimU8
}
