package mp4io

import (
	"math"
	"time"
)

var epoch1904 = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)

// Time reads a field holding seconds since 1904, such as creation_time.
func (r *Record) Time(name string) time.Time {
	return epoch1904.Add(time.Second * time.Duration(r.Uint(name)))
}

// SetTime stores t as seconds since 1904. Times before 1904 store zero.
// Whether the value fits the version's width is checked on write.
func (r *Record) SetTime(name string, t time.Time) *Record {
	if t.Before(epoch1904) {
		return r.Set(name, uint64(0))
	}
	return r.Set(name, uint64(t.Sub(epoch1904)/time.Second))
}

// Fixed32 reads a 16.16 fixed point field: rate, width, height.
func (r *Record) Fixed32(name string) float64 {
	return float64(r.Int(name)) / 65536
}

func (r *Record) SetFixed32(name string, f float64) *Record {
	return r.Set(name, int64(math.Round(f*65536)))
}

// Fixed16 reads an 8.8 fixed point field: volume.
func (r *Record) Fixed16(name string) float64 {
	return float64(r.Int(name)) / 256
}

func (r *Record) SetFixed16(name string, f float64) *Record {
	return r.Set(name, int64(math.Round(f*256)))
}
