// Package mp4io parses and serializes ISO base media file format boxes.
//
// Every box kind is described by a field schema (see Kind and Type). One
// engine walks that schema to decode a box body into a Record and walks it
// again to encode the Record, so reading and writing cannot drift apart.
package mp4io

// Tag is a box type four character code. It is compared as raw bytes.
type Tag [4]byte

func (t Tag) String() string {
	b := t
	for i := range b {
		if b[i] == 0 {
			b[i] = ' '
		}
	}
	return string(b[:])
}

// StringToTag converts up to four characters into a Tag, padding with zero.
func StringToTag(tag string) Tag {
	var t Tag
	copy(t[:], tag)
	return t
}

const (
	HeaderSize      = 8
	FullHeaderSize  = 12
	LargeHeaderSize = 16
)

// Box is one parsed box. Version and Flags are only meaningful for kinds
// with a full box header and are kept so the header can be rebuilt.
type Box struct {
	Kind    *Kind
	Version uint8
	Flags   uint32
	Fields  *Record
	// LargeSize keeps the 64-bit size form the box was read with.
	LargeSize bool
}

// NewBox creates an empty box of a registered kind.
func NewBox(tag Tag) (*Box, error) {
	k := Lookup(tag)
	if k == nil {
		return nil, &UnknownBoxError{Tag: tag}
	}
	return &Box{Kind: k, Fields: &Record{}}, nil
}

func (b *Box) Tag() Tag {
	return b.Kind.Tag
}

// Children returns the nested boxes of a container kind, nil otherwise.
func (b *Box) Children() Forest {
	if !b.Kind.Container || b.Fields == nil {
		return nil
	}
	return b.Fields.Forest(ChildrenField)
}

// Size returns the number of bytes the box serializes to.
func (b *Box) Size() (int, error) {
	out, err := b.Marshal()
	if err != nil {
		return 0, err
	}
	return len(out), nil
}

// Marshal serializes the box including its header.
func (b *Box) Marshal() ([]byte, error) {
	w := newEncoder()
	if err := w.writeBox(b); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func (b *Box) String() string {
	return b.Kind.Tag.String()
}

// Forest is an ordered list of sibling boxes.
type Forest []*Box
