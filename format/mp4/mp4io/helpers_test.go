package mp4io

import "github.com/ugparu/mp4box/utils/bits/pio"

func u8(v uint8) []byte { return []byte{v} }

func u16(v uint16) []byte {
	b := make([]byte, 2)
	pio.PutU16BE(b, v)
	return b
}

func u32(v uint32) []byte {
	b := make([]byte, 4)
	pio.PutU32BE(b, v)
	return b
}

func u64(v uint64) []byte {
	b := make([]byte, 8)
	pio.PutU64BE(b, v)
	return b
}

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// mkbox builds a plain box with a correct size.
func mkbox(tag string, body ...[]byte) []byte {
	b := cat(body...)
	return cat(u32(uint32(HeaderSize+len(b))), []byte(tag), b)
}

// mkfull builds a full box with a correct size.
func mkfull(tag string, version uint8, flags uint32, body ...[]byte) []byte {
	vf := make([]byte, 4)
	vf[0] = version
	pio.PutU24BE(vf[1:], flags)
	return mkbox(tag, append([][]byte{vf}, body...)...)
}

func zeros(n int) []byte { return make([]byte, n) }
