package mp4io

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/ugparu/mp4box/utils/bits/pio"
)

const (
	// maxPrealloc caps slice capacity taken from untrusted count fields.
	maxPrealloc = 1 << 12
	// maxEmptyElems bounds counted arrays whose elements encode to zero
	// bytes, since the body length cannot bound them.
	maxEmptyElems = 1 << 16
)

type decoder struct {
	r       *pio.Reader
	base    int // absolute offset of r's first byte
	version uint8
	flags   uint32
}

func (d *decoder) offset() int {
	return d.base + d.r.Offset()
}

func (d *decoder) context(scope *Record) Context {
	return Context{Version: d.version, Flags: d.flags, Scope: scope}
}

// parseBox reads one complete box from r. base is the absolute offset of
// r's buffer and only feeds error messages.
func parseBox(r *pio.Reader, base int) (*Box, error) {
	start := base + r.Offset()
	tag, body, large, err := readHeader(r)
	if err != nil {
		return nil, parseErr("header", start, err)
	}
	kind := Lookup(tag)
	if kind == nil {
		return nil, parseErr(tag.String(), start, &UnknownBoxError{Tag: tag})
	}

	box := &Box{Kind: kind, LargeSize: large}
	d := &decoder{r: pio.NewReader(body), base: base + r.Offset() - len(body)}
	if kind.Full {
		if box.Version, box.Flags, err = readFullHeader(d.r); err != nil {
			return nil, parseErr(kind.Name, start, parseErr("fullbox", d.offset(), err))
		}
		d.version, d.flags = box.Version, box.Flags
	}
	if box.Fields, err = d.readFields(kind.Fields); err != nil {
		return nil, parseErr(kind.Name, start, err)
	}
	if !d.r.Empty() {
		err = fmt.Errorf("%w: %d bytes left", ErrSizeMismatch, d.r.Len())
		return nil, parseErr(kind.Name, start, parseErr("trailing", d.offset(), err))
	}
	return box, nil
}

func (d *decoder) readFields(fields []Field) (*Record, error) {
	rec := &Record{
		names:  make([]string, 0, len(fields)),
		values: make([]any, 0, len(fields)),
	}
	for _, f := range fields {
		at := d.offset()
		v, err := d.readValue(f.Type, rec)
		if err != nil {
			return nil, parseErr(f.Name, at, err)
		}
		rec.names = append(rec.names, f.Name)
		rec.values = append(rec.values, v)
	}
	return rec, nil
}

func (d *decoder) readValue(t *Type, scope *Record) (any, error) {
	switch t.Kind {
	case TypePrimitive:
		return d.readPrim(t.Prim)
	case TypeFixedArray:
		return d.readArray(t.Elem, t.Len, scope)
	case TypeString:
		return d.readString()
	case TypeOptional:
		if !t.Guard(d.context(scope)) {
			return nil, nil
		}
		return d.readValue(t.Elem, scope)
	case TypeVariant:
		c, err := pickCase(t, d.context(scope))
		if err != nil {
			return nil, err
		}
		return d.readValue(c.Type, scope)
	case TypeDynArray:
		if t.Guard != nil && !t.Guard(d.context(scope)) {
			return emptyArray(t.Elem), nil
		}
		n, err := d.arrayLen(t, scope)
		if err != nil {
			return nil, err
		}
		return d.readArray(t.Elem, n, scope)
	case TypeRecord:
		return d.readFields(t.Fields)
	case TypeBoxes:
		forest := Forest{}
		for !d.r.Empty() {
			box, err := parseBox(d.r, d.base)
			if err != nil {
				return nil, err
			}
			forest = append(forest, box)
		}
		return forest, nil
	case TypeRaw:
		return d.r.Rest(), nil
	}
	return nil, fmt.Errorf("%w: unknown type kind %d", ErrUnmetCondition, t.Kind)
}

func (d *decoder) readPrim(p Prim) (any, error) {
	b, err := d.r.Read(p.Size())
	if err != nil {
		return nil, ErrTruncatedInput
	}
	switch p {
	case PrimU8:
		return b[0], nil
	case PrimU16:
		return pio.U16BE(b), nil
	case PrimU24:
		return pio.U24BE(b), nil
	case PrimU32:
		return pio.U32BE(b), nil
	case PrimU64:
		return pio.U64BE(b), nil
	case PrimI8:
		return int8(b[0]), nil
	case PrimI16:
		return pio.I16BE(b), nil
	case PrimI32:
		return pio.I32BE(b), nil
	case PrimI64:
		return pio.I64BE(b), nil
	case PrimF32:
		return pio.F32BE(b), nil
	case PrimF64:
		return pio.F64BE(b), nil
	}
	return nil, fmt.Errorf("%w: unknown primitive %d", ErrUnmetCondition, p)
}

func (d *decoder) readArray(elem *Type, n int, scope *Record) (any, error) {
	if isByte(elem) {
		b, err := d.r.Read(n)
		if err != nil {
			return nil, ErrTruncatedInput
		}
		return b, nil
	}
	out := make([]any, 0, min(n, maxPrealloc))
	for i := 0; i < n; i++ {
		at := d.offset()
		v, err := d.readValue(elem, scope)
		if err != nil {
			return nil, parseErr(fmt.Sprintf("[%d]", i), at, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (d *decoder) arrayLen(t *Type, scope *Record) (int, error) {
	if t.CountOf == "" {
		size, ok := fixedSize(t.Elem)
		if !ok || size == 0 {
			return 0, fmt.Errorf("%w: trailing array needs fixed size elements", ErrUnmetCondition)
		}
		return d.r.Len() / size, nil
	}
	v, ok := scope.Get(t.CountOf)
	if !ok || v == nil {
		return 0, fmt.Errorf("%w: count field %q is not bound", ErrUnmetCondition, t.CountOf)
	}
	n, _ := toUint64(v)
	m := sizeIn(t.Elem, d.context(scope))
	if m > 0 && n > uint64(d.r.Len()/m) {
		return 0, ErrTruncatedInput
	}
	if m == 0 && n > maxEmptyElems {
		return 0, fmt.Errorf("%w: %s=%d exceeds %d empty elements", ErrUnmetCondition, t.CountOf, n, maxEmptyElems)
	}
	if n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: count %d out of range", ErrUnmetCondition, n)
	}
	return int(n), nil
}

func (d *decoder) readString() (any, error) {
	var b []byte
	for {
		c, err := d.r.U8()
		if err != nil {
			return nil, ErrTruncatedInput
		}
		if c == 0 {
			break
		}
		b = append(b, c)
	}
	return decodeUTF8(b)
}

// decodeUTF8 validates b by leading byte classes and returns it as a string.
func decodeUTF8(b []byte) (string, error) {
	for i := 0; i < len(b); {
		var n int
		switch c := b[i]; {
		case c <= 0x7f:
			n = 1
		case c >= 0xc0 && c <= 0xdf:
			n = 2
		case c >= 0xe0 && c <= 0xef:
			n = 3
		case c >= 0xf0 && c <= 0xf7:
			n = 4
		default:
			return "", ErrInvalidUTF8
		}
		if i+n > len(b) {
			return "", ErrInvalidUTF8
		}
		if n > 1 {
			if _, size := utf8.DecodeRune(b[i : i+n]); size != n {
				return "", ErrInvalidUTF8
			}
		}
		i += n
	}
	return string(b), nil
}

func pickCase(t *Type, c Context) (*Case, error) {
	for i := range t.Cases {
		if t.Cases[i].When == nil || t.Cases[i].When(c) {
			return &t.Cases[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no variant matches version %d flags 0x%06x", ErrUnmetCondition, c.Version, c.Flags)
}

func emptyArray(elem *Type) any {
	if isByte(elem) {
		return []byte{}
	}
	return []any{}
}

type encoder struct {
	*pio.Writer
}

func newEncoder() *encoder {
	return &encoder{Writer: pio.NewWriter(nil)}
}

func (e *encoder) writeBox(b *Box) error {
	if b == nil || b.Kind == nil {
		return parseErr("box", e.Len(), fmt.Errorf("%w: box without kind", ErrUnmetCondition))
	}
	start := beginBox(e.Writer, b.Kind.Tag, b.LargeSize)
	var hdr Context
	if b.Kind.Full {
		writeFullHeader(e.Writer, b.Version, b.Flags)
		hdr.Version, hdr.Flags = b.Version, b.Flags&0x00ffffff
	}
	rec := b.Fields
	if rec == nil {
		rec = &Record{}
	}
	if err := e.writeFields(b.Kind.Fields, rec, hdr); err != nil {
		return parseErr(b.Kind.Name, start, err)
	}
	if err := endBox(e.Writer, start, b.LargeSize); err != nil {
		return parseErr(b.Kind.Name, start, err)
	}
	return nil
}

// writeFields mirrors readFields. Guards see the stored record as scope.
func (e *encoder) writeFields(fields []Field, rec *Record, hdr Context) error {
	ctx := Context{Version: hdr.Version, Flags: hdr.Flags, Scope: rec}
	for _, f := range fields {
		v, _ := rec.Get(f.Name)
		at := e.Len()
		if err := e.writeValue(f.Type, v, ctx); err != nil {
			return parseErr(f.Name, at, err)
		}
	}
	return nil
}

func (e *encoder) writeValue(t *Type, v any, ctx Context) error {
	switch t.Kind {
	case TypePrimitive:
		return e.writePrim(t.Prim, v)
	case TypeFixedArray:
		return e.writeArray(t.Elem, v, t.Len, ctx)
	case TypeString:
		s, ok := v.(string)
		if !ok {
			return typeErr(v)
		}
		if strings.IndexByte(s, 0) >= 0 {
			return fmt.Errorf("%w: embedded NUL", ErrInvalidUTF8)
		}
		if _, err := decodeUTF8([]byte(s)); err != nil {
			return err
		}
		e.PutBytes([]byte(s))
		e.PutU8(0)
		return nil
	case TypeOptional:
		// presence follows the stored value, not the guard
		if v == nil {
			return nil
		}
		return e.writeValue(t.Elem, v, ctx)
	case TypeVariant:
		c, err := pickCase(t, ctx)
		if err != nil {
			return err
		}
		return e.writeValue(c.Type, v, ctx)
	case TypeDynArray:
		n := arrayLen(v)
		if n < 0 {
			return typeErr(v)
		}
		if t.Guard != nil && !t.Guard(ctx) {
			if n > 0 {
				return fmt.Errorf("%w: %d elements stored but the field is gated off", ErrUnmetCondition, n)
			}
			return nil
		}
		if t.CountOf != "" {
			cv, _ := ctx.Scope.Get(t.CountOf)
			count, _ := toUint64(cv)
			if count != uint64(n) {
				return fmt.Errorf("%w: %s=%d, %d elements", ErrCountMismatch, t.CountOf, count, n)
			}
		}
		return e.writeArray(t.Elem, v, -1, ctx)
	case TypeRecord:
		r, ok := v.(*Record)
		if !ok || r == nil {
			return typeErr(v)
		}
		return e.writeFields(t.Fields, r, ctx)
	case TypeBoxes:
		var f Forest
		switch c := v.(type) {
		case Forest:
			f = c
		case []*Box:
			f = c
		case nil:
		default:
			return typeErr(v)
		}
		for _, b := range f {
			if err := e.writeBox(b); err != nil {
				return err
			}
		}
		return nil
	case TypeRaw:
		b, ok := v.([]byte)
		if !ok && v != nil {
			return typeErr(v)
		}
		e.PutBytes(b)
		return nil
	}
	return fmt.Errorf("%w: unknown type kind %d", ErrUnmetCondition, t.Kind)
}

// writeArray writes the elements of v. want is the required length of a
// fixed array, or -1.
func (e *encoder) writeArray(elem *Type, v any, want int, ctx Context) error {
	if isByte(elem) {
		b, ok := v.([]byte)
		if !ok && v != nil {
			return typeErr(v)
		}
		if want >= 0 && len(b) != want {
			return fmt.Errorf("%w: want %d bytes, have %d", ErrUnmetCondition, want, len(b))
		}
		e.PutBytes(b)
		return nil
	}
	s, ok := v.([]any)
	if !ok && v != nil {
		return typeErr(v)
	}
	if want >= 0 && len(s) != want {
		return fmt.Errorf("%w: want %d elements, have %d", ErrUnmetCondition, want, len(s))
	}
	for i, item := range s {
		at := e.Len()
		if err := e.writeValue(elem, item, ctx); err != nil {
			return parseErr(fmt.Sprintf("[%d]", i), at, err)
		}
	}
	return nil
}

func (e *encoder) writePrim(p Prim, v any) error {
	switch p {
	case PrimF32, PrimF64:
		f, ok := toFloat64(v)
		if !ok {
			return typeErr(v)
		}
		if p == PrimF32 {
			e.PutF32(float32(f))
		} else {
			e.PutF64(f)
		}
		return nil
	}
	u, ok := toUint64(v)
	if !ok {
		return typeErr(v)
	}
	if !fits(p, v, u) {
		return fmt.Errorf("%w: %v does not fit in %d bytes", ErrUnmetCondition, v, p.Size())
	}
	switch p {
	case PrimU8, PrimI8:
		e.PutU8(uint8(u))
	case PrimU16, PrimI16:
		e.PutU16(uint16(u))
	case PrimU24:
		e.PutU24(uint32(u))
	case PrimU32, PrimI32:
		e.PutU32(uint32(u))
	default:
		e.PutU64(u)
	}
	return nil
}

// fits checks that the integer v, with bits u, is representable by p.
func fits(p Prim, v any, u uint64) bool {
	var lo int64
	var hi uint64
	switch p {
	case PrimU8:
		hi = math.MaxUint8
	case PrimU16:
		hi = math.MaxUint16
	case PrimU24:
		hi = 1<<24 - 1
	case PrimU32:
		hi = math.MaxUint32
	case PrimU64:
		hi = math.MaxUint64
	case PrimI8:
		lo, hi = math.MinInt8, math.MaxInt8
	case PrimI16:
		lo, hi = math.MinInt16, math.MaxInt16
	case PrimI32:
		lo, hi = math.MinInt32, math.MaxInt32
	case PrimI64:
		lo, hi = math.MinInt64, math.MaxInt64
	}
	switch v.(type) {
	case int8, int16, int32, int64, int:
		n := int64(u)
		if n < 0 {
			return n >= lo
		}
		return uint64(n) <= hi
	}
	return u <= hi
}

func arrayLen(v any) int {
	switch s := v.(type) {
	case nil:
		return 0
	case []byte:
		return len(s)
	case []any:
		return len(s)
	}
	return -1
}

func typeErr(v any) error {
	return fmt.Errorf("%w: unexpected %T value", ErrUnmetCondition, v)
}
