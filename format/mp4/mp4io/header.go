package mp4io

import (
	"math"

	"github.com/ugparu/mp4box/utils/bits/pio"
)

// readHeader reads a box header and returns the tag and the bounded body.
func readHeader(r *pio.Reader) (tag Tag, body []byte, large bool, err error) {
	hdr, err := r.Read(HeaderSize)
	if err != nil {
		return tag, nil, false, ErrTruncatedInput
	}
	size := uint64(pio.U32BE(hdr))
	copy(tag[:], hdr[4:8])

	headerLen := uint64(HeaderSize)
	if size == 1 {
		ext, err := r.Read(8)
		if err != nil {
			return tag, nil, false, ErrTruncatedInput
		}
		size = pio.U64BE(ext)
		headerLen = LargeHeaderSize
		large = true
	}
	if size < headerLen {
		return tag, nil, large, ErrInvalidSize
	}

	bodyLen := size - headerLen
	if bodyLen > uint64(r.Len()) {
		return tag, nil, large, ErrTruncatedInput
	}
	body, _ = r.Read(int(bodyLen))
	return tag, body, large, nil
}

func readFullHeader(r *pio.Reader) (version uint8, flags uint32, err error) {
	if version, err = r.U8(); err != nil {
		return 0, 0, ErrTruncatedInput
	}
	if flags, err = r.U24(); err != nil {
		return 0, 0, ErrTruncatedInput
	}
	return version, flags, nil
}

// beginBox writes a header with a placeholder size and returns its offset.
func beginBox(w *pio.Writer, tag Tag, large bool) int {
	start := w.Len()
	if large {
		w.PutU32(1)
		w.PutTag(tag)
		w.PutU64(0)
	} else {
		w.PutU32(0)
		w.PutTag(tag)
	}
	return start
}

// endBox backpatches the size from what was actually written since start.
func endBox(w *pio.Writer, start int, large bool) error {
	size := uint64(w.Len() - start)
	if large {
		w.PatchU64(start+HeaderSize, size)
		return nil
	}
	if size > math.MaxUint32 {
		return ErrInvalidSize
	}
	w.PatchU32(start, uint32(size))
	return nil
}

func writeFullHeader(w *pio.Writer, version uint8, flags uint32) {
	w.PutU8(version)
	w.PutU24(flags & 0x00ffffff)
}
