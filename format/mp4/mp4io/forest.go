package mp4io

import (
	"github.com/ugparu/mp4box/utils/bits/pio"
	"github.com/ugparu/mp4box/utils/logger"
)

// ParseAll decodes every box in buf. The whole buffer must consist of
// complete boxes of registered kinds; any failure discards the result.
// Byte fields of the returned tree alias buf.
func ParseAll(buf []byte) (Forest, error) {
	r := pio.NewReader(buf)
	var forest Forest
	for !r.Empty() {
		at := r.Offset()
		box, err := parseBox(r, 0)
		if err != nil {
			logger.Debugf("mp4io", "parse failed after %d boxes: %v", len(forest), err)
			return nil, err
		}
		logger.Tracef(box, "offset=%d size=%d", at, r.Offset()-at)
		forest = append(forest, box)
	}
	logger.Debugf("mp4io", "parsed %d top level boxes from %d bytes", len(forest), len(buf))
	return forest, nil
}

// WriteAll serializes the forest in order. Box sizes are recomputed from
// the encoded bodies, so edited trees need no extra preparation.
func WriteAll(forest Forest) ([]byte, error) {
	e := newEncoder()
	for _, b := range forest {
		if err := e.writeBox(b); err != nil {
			logger.Debugf("mp4io", "write failed: %v", err)
			return nil, err
		}
	}
	return e.Bytes(), nil
}

// Marshal is WriteAll on f.
func (f Forest) Marshal() ([]byte, error) {
	return WriteAll(f)
}

// Len returns the serialized size of f.
func (f Forest) Len() (int, error) {
	b, err := WriteAll(f)
	return len(b), err
}
