package mp4io

// Record holds decoded field values in declaration order.
//
// Values use plain Go types: the matching scalar for primitives, []byte for
// byte arrays, []any for other arrays, string, *Record for sub-records,
// Forest for nested boxes and nil for an absent optional.
type Record struct {
	names  []string
	values []any
}

func NewRecord() *Record {
	return &Record{}
}

func (r *Record) Len() int {
	return len(r.names)
}

func (r *Record) Names() []string {
	return append([]string(nil), r.names...)
}

func (r *Record) index(name string) int {
	for i, n := range r.names {
		if n == name {
			return i
		}
	}
	return -1
}

// Get returns the value bound to name.
func (r *Record) Get(name string) (any, bool) {
	if r == nil {
		return nil, false
	}
	if i := r.index(name); i >= 0 {
		return r.values[i], true
	}
	return nil, false
}

// Value returns the value bound to name, or nil.
func (r *Record) Value(name string) any {
	v, _ := r.Get(name)
	return v
}

// Has reports whether name is bound to a non-nil value.
func (r *Record) Has(name string) bool {
	v, ok := r.Get(name)
	return ok && v != nil
}

// Set binds name to v, appending the field if it is new.
func (r *Record) Set(name string, v any) *Record {
	if i := r.index(name); i >= 0 {
		r.values[i] = v
		return r
	}
	r.names = append(r.names, name)
	r.values = append(r.values, v)
	return r
}

// Each calls fn for every field in order.
func (r *Record) Each(fn func(name string, v any)) {
	for i, n := range r.names {
		fn(n, r.values[i])
	}
}

// Uint returns an integer field as uint64, zero when absent.
func (r *Record) Uint(name string) uint64 {
	v, _ := r.Get(name)
	u, _ := toUint64(v)
	return u
}

// Int returns an integer field as int64, zero when absent.
func (r *Record) Int(name string) int64 {
	v, _ := r.Get(name)
	u, ok := toUint64(v)
	if !ok {
		return 0
	}
	switch v.(type) {
	case int8, int16, int32, int64, int:
		return int64(u)
	case uint8:
		return int64(uint8(u))
	case uint16:
		return int64(uint16(u))
	case uint32:
		return int64(uint32(u))
	}
	return int64(u)
}

func (r *Record) Bytes(name string) []byte {
	v, _ := r.Get(name)
	b, _ := v.([]byte)
	return b
}

func (r *Record) Str(name string) string {
	v, _ := r.Get(name)
	s, _ := v.(string)
	return s
}

func (r *Record) Record(name string) *Record {
	v, _ := r.Get(name)
	s, _ := v.(*Record)
	return s
}

func (r *Record) Slice(name string) []any {
	v, _ := r.Get(name)
	s, _ := v.([]any)
	return s
}

func (r *Record) Forest(name string) Forest {
	v, _ := r.Get(name)
	f, _ := v.(Forest)
	return f
}

// toUint64 converts any Go integer to its two's complement uint64 bits.
func toUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint8:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case uint64:
		return n, true
	case uint:
		return uint64(n), true
	case int8:
		return uint64(n), true
	case int16:
		return uint64(n), true
	case int32:
		return uint64(n), true
	case int64:
		return uint64(n), true
	case int:
		return uint64(n), true
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	if u, ok := toUint64(v); ok {
		return float64(int64(u)), true
	}
	return 0, false
}
