package mp4io

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTfhdOptionalFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		flags   uint32
		body    [][]byte
		present []string
	}{
		{
			name:  "no_flags",
			flags: 0,
		},
		{
			name:    "base_data_offset",
			flags:   TFHDBaseDataOffset,
			body:    [][]byte{u64(0x1122334455)},
			present: []string{"base_data_offset"},
		},
		{
			name:    "sample_description_index",
			flags:   TFHDStsdID,
			body:    [][]byte{u32(2)},
			present: []string{"sample_description_index"},
		},
		{
			name:    "defaults_only",
			flags:   TFHDDefaultDuration | TFHDDefaultSize | TFHDDefaultFlags | TFHDDefaultBaseIsMOOF,
			body:    [][]byte{u32(1024), u32(300), u32(SampleNonKeyframe)},
			present: []string{"default_sample_duration", "default_sample_size", "default_sample_flags"},
		},
		{
			name:  "all",
			flags: 0x3b,
			body:  [][]byte{u64(8), u32(1), u32(1024), u32(300), u32(0)},
			present: []string{
				"base_data_offset", "sample_description_index",
				"default_sample_duration", "default_sample_size", "default_sample_flags",
			},
		},
	}

	optional := []string{
		"base_data_offset", "sample_description_index",
		"default_sample_duration", "default_sample_size", "default_sample_flags",
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			input := mkfull("tfhd", 0, tt.flags, append([][]byte{u32(1)}, tt.body...)...)

			forest, err := ParseAll(input)
			require.NoError(t, err)
			tfhd := forest[0]
			require.Equal(t, tt.flags, tfhd.Flags)
			require.Equal(t, uint32(1), tfhd.Fields.Value("track_id"))

			for _, name := range optional {
				require.Equal(t, contains(tt.present, name), tfhd.Fields.Has(name), name)
			}

			out, err := WriteAll(forest)
			require.NoError(t, err)
			require.Equal(t, input, out)
		})
	}
}

func TestTfhdBaseDataOffsetAddsEightBytes(t *testing.T) {
	t.Parallel()

	without, err := ParseAll(mkfull("tfhd", 0, 0, u32(1)))
	require.NoError(t, err)
	with, err := ParseAll(mkfull("tfhd", 0, TFHDBaseDataOffset, u32(1), u64(77)))
	require.NoError(t, err)

	a, err := without[0].Size()
	require.NoError(t, err)
	b, err := with[0].Size()
	require.NoError(t, err)
	require.Equal(t, 16, a)
	require.Equal(t, a+8, b)
	require.Equal(t, uint64(77), with[0].Fields.Uint("base_data_offset"))
}

func mvhdBytes(version uint8) []byte {
	var times [][]byte
	if version == 1 {
		times = [][]byte{u64(1), u64(2), u32(1000), u64(3)}
	} else {
		times = [][]byte{u32(1), u32(2), u32(1000), u32(3)}
	}
	rest := [][]byte{u32(0x00010000), u16(0x0100), zeros(10), zeros(36), zeros(24), u32(2)}
	return mkfull("mvhd", version, 0, append(times, rest...)...)
}

func TestMvhdVersionWidths(t *testing.T) {
	t.Parallel()

	v0, v1 := mvhdBytes(0), mvhdBytes(1)
	require.Len(t, v1, len(v0)+12)

	for _, input := range [][]byte{v0, v1} {
		forest, err := ParseAll(input)
		require.NoError(t, err)
		mvhd := forest[0]
		require.Equal(t, uint64(1000), mvhd.Fields.Uint("timescale"))
		require.Equal(t, uint64(3), mvhd.Fields.Uint("duration"))
		require.Equal(t, int32(0x00010000), mvhd.Fields.Value("rate"))
		require.Equal(t, int16(0x0100), mvhd.Fields.Value("volume"))
		require.Len(t, mvhd.Fields.Slice("matrix"), 3)
		require.Equal(t, uint32(2), mvhd.Fields.Value("next_track_id"))
		if mvhd.Version == 1 {
			require.IsType(t, uint64(0), mvhd.Fields.Value("creation_time"))
		} else {
			require.IsType(t, uint32(0), mvhd.Fields.Value("creation_time"))
		}

		out, err := WriteAll(forest)
		require.NoError(t, err)
		require.Equal(t, input, out)
	}
}

func TestTfdtVersionWidths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		version uint8
		body    []byte
		want    any
	}{
		{name: "v0", version: 0, body: u32(90000), want: uint32(90000)},
		{name: "v1", version: 1, body: u64(1 << 40), want: uint64(1 << 40)},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			input := mkfull("tfdt", tt.version, 0, tt.body)
			forest, err := ParseAll(input)
			require.NoError(t, err)
			require.Equal(t, tt.want, forest[0].Fields.Value("base_media_decode_time"))

			out, err := WriteAll(forest)
			require.NoError(t, err)
			require.Equal(t, input, out)
		})
	}
}

func TestTfdtVersionZeroIsThirtyTwoBits(t *testing.T) {
	t.Parallel()

	_, err := ParseAll(mkfull("tfdt", 0, 0, u64(90000)))
	require.ErrorIs(t, err, ErrSizeMismatch)
	require.Contains(t, err.Error(), "tfdt:0,trailing:16")

	box, err := NewBox(TFDT)
	require.NoError(t, err)
	box.Fields.Set("base_media_decode_time", uint64(1<<32))
	_, err = box.Marshal()
	require.ErrorIs(t, err, ErrUnmetCondition)

	box.Version = 1
	out, err := box.Marshal()
	require.NoError(t, err)
	require.Equal(t, mkfull("tfdt", 1, 0, u64(1<<32)), out)
}

func TestTrunCompositionOffsetSign(t *testing.T) {
	t.Parallel()

	for _, version := range []uint8{0, 1} {
		input := mkfull("trun", version, TRUNSampleCTS, u32(1), u32(0xfffffc00))
		forest, err := ParseAll(input)
		require.NoError(t, err)

		sample := forest[0].Fields.Slice("samples")[0].(*Record)
		require.False(t, sample.Has("sample_duration"))
		require.False(t, sample.Has("sample_size"))
		if version == 1 {
			require.Equal(t, int32(-1024), sample.Value("sample_composition_time_offset"))
			require.Equal(t, int64(-1024), sample.Int("sample_composition_time_offset"))
		} else {
			require.Equal(t, uint32(0xfffffc00), sample.Value("sample_composition_time_offset"))
		}

		out, err := WriteAll(forest)
		require.NoError(t, err)
		require.Equal(t, input, out)
	}
}

func TestTrunWithoutSampleFields(t *testing.T) {
	t.Parallel()

	input := mkfull("trun", 0, TRUNDataOffset, u32(3), u32(112))
	forest, err := ParseAll(input)
	require.NoError(t, err)

	trun := forest[0]
	require.Equal(t, int32(112), trun.Fields.Value("data_offset"))
	require.False(t, trun.Fields.Has("first_sample_flags"))
	samples := trun.Fields.Slice("samples")
	require.Len(t, samples, 3)
	for _, s := range samples {
		require.Equal(t, 4, s.(*Record).Len())
	}

	out, err := WriteAll(forest)
	require.NoError(t, err)
	require.Equal(t, input, out)
}

func TestSencSubsamples(t *testing.T) {
	t.Parallel()

	t.Run("without_subsamples", func(t *testing.T) {
		t.Parallel()
		input := mkfull("senc", 0, 0, u32(2), u64(1), u64(2))
		forest, err := ParseAll(input)
		require.NoError(t, err)

		samples := forest[0].Fields.Slice("samples")
		require.Len(t, samples, 2)
		first := samples[0].(*Record)
		require.Equal(t, u64(1), first.Bytes("iv"))
		require.False(t, first.Has("subsample_count"))
		require.Empty(t, first.Slice("subsamples"))

		out, err := WriteAll(forest)
		require.NoError(t, err)
		require.Equal(t, input, out)
	})

	t.Run("with_subsamples", func(t *testing.T) {
		t.Parallel()
		input := mkfull("senc", 0, SENCUseSubsampleEncryp,
			u32(1), u64(1), u16(2), u16(16), u32(100), u16(8), u32(50))
		forest, err := ParseAll(input)
		require.NoError(t, err)

		sample := forest[0].Fields.Slice("samples")[0].(*Record)
		require.Equal(t, uint16(2), sample.Value("subsample_count"))
		subs := sample.Slice("subsamples")
		require.Len(t, subs, 2)
		require.Equal(t, uint32(50), subs[1].(*Record).Value("cipher_bytes"))

		out, err := WriteAll(forest)
		require.NoError(t, err)
		require.Equal(t, input, out)
	})
}

func TestStszEntrySizes(t *testing.T) {
	t.Parallel()

	t.Run("constant_size", func(t *testing.T) {
		t.Parallel()
		input := mkfull("stsz", 0, 0, u32(512), u32(3))
		forest, err := ParseAll(input)
		require.NoError(t, err)
		require.Empty(t, forest[0].Fields.Slice("entry_sizes"))

		out, err := WriteAll(forest)
		require.NoError(t, err)
		require.Equal(t, input, out)
	})

	t.Run("per_sample", func(t *testing.T) {
		t.Parallel()
		input := mkfull("stsz", 0, 0, u32(0), u32(2), u32(10), u32(20))
		forest, err := ParseAll(input)
		require.NoError(t, err)
		require.Equal(t, []any{uint32(10), uint32(20)}, forest[0].Fields.Slice("entry_sizes"))

		out, err := WriteAll(forest)
		require.NoError(t, err)
		require.Equal(t, input, out)
	})
}

func TestSaizSaio(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
		check func(t *testing.T, b *Box)
	}{
		{
			name:  "saiz_default_size",
			input: mkfull("saiz", 0, SAIXAuxInfoType, []byte("cenc"), u32(0), u8(16), u32(5)),
			check: func(t *testing.T, b *Box) {
				require.Equal(t, uint64(16), b.Fields.Uint("default_sample_info_size"))
				require.Empty(t, b.Fields.Bytes("sample_info_sizes"))
				require.Equal(t, uint32(0x63656e63), b.Fields.Value("aux_info_type"))
			},
		},
		{
			name:  "saiz_per_sample",
			input: mkfull("saiz", 0, 0, u8(0), u32(3), []byte{16, 24, 32}),
			check: func(t *testing.T, b *Box) {
				require.False(t, b.Fields.Has("aux_info_type"))
				require.Equal(t, []byte{16, 24, 32}, b.Fields.Bytes("sample_info_sizes"))
			},
		},
		{
			name:  "saio_v0",
			input: mkfull("saio", 0, 0, u32(2), u32(100), u32(200)),
			check: func(t *testing.T, b *Box) {
				require.Equal(t, []any{uint32(100), uint32(200)}, b.Fields.Slice("offsets"))
			},
		},
		{
			name:  "saio_v1",
			input: mkfull("saio", 1, 0, u32(1), u64(1<<33)),
			check: func(t *testing.T, b *Box) {
				require.Equal(t, []any{uint64(1 << 33)}, b.Fields.Slice("offsets"))
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			forest, err := ParseAll(tt.input)
			require.NoError(t, err)
			tt.check(t, forest[0])

			out, err := WriteAll(forest)
			require.NoError(t, err)
			require.Equal(t, tt.input, out)
		})
	}
}

func hdlrBytes(name []byte) []byte {
	return mkfull("hdlr", 0, 0, u32(0), []byte("soun"), zeros(12), name)
}

func TestHdlrName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  []byte
		want string
		err  error
	}{
		{name: "ascii", raw: []byte("SoundHandler\x00"), want: "SoundHandler"},
		{name: "empty", raw: []byte{0}, want: ""},
		{name: "multibyte", raw: []byte("Vidéo 音 🎬\x00"), want: "Vidéo 音 🎬"},
		{name: "bad_leading_byte", raw: []byte{'a', 0xff, 0}, err: ErrInvalidUTF8},
		{name: "bare_continuation", raw: []byte{0x80, 0}, err: ErrInvalidUTF8},
		{name: "bad_continuation", raw: []byte{0xc3, 0x28, 0}, err: ErrInvalidUTF8},
		{name: "cut_sequence", raw: []byte{'a', 0xe4, 0xb8, 0}, err: ErrInvalidUTF8},
		{name: "missing_terminator", raw: []byte("abc"), err: ErrTruncatedInput},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			input := hdlrBytes(tt.raw)
			forest, err := ParseAll(input)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				require.Nil(t, forest)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, forest[0].Fields.Str("name"))
			require.Equal(t, []byte("soun"), forest[0].Fields.Bytes("handler_type"))

			out, err := WriteAll(forest)
			require.NoError(t, err)
			require.Equal(t, input, out)
		})
	}
}

func TestHdlrNameWrite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
		err   error
	}{
		{name: "embedded_nul", value: "a\x00b", err: ErrInvalidUTF8},
		{name: "invalid_utf8", value: string([]byte{0xfe, 'x'}), err: ErrInvalidUTF8},
		{name: "wrong_type", value: 42, err: ErrUnmetCondition},
		{name: "renamed", value: "Audio"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			forest, err := ParseAll(hdlrBytes([]byte("SoundHandler\x00")))
			require.NoError(t, err)
			forest[0].Fields.Set("name", tt.value)

			out, err := WriteAll(forest)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				require.Nil(t, out)
				return
			}
			require.NoError(t, err)
			require.Equal(t, hdlrBytes([]byte("Audio\x00")), out)
		})
	}
}

func TestFtypBrands(t *testing.T) {
	t.Parallel()

	forest, err := ParseAll(mkbox("ftyp", []byte("isom"), u32(0x200)))
	require.NoError(t, err)
	require.Empty(t, forest[0].Fields.Slice("compatible_brands"))

	_, err = ParseAll(mkbox("ftyp", []byte("isom"), u32(0x200), []byte("iso6"), []byte("mp")))
	require.ErrorIs(t, err, ErrSizeMismatch)
}

func TestOpaqueKindsKeepBytes(t *testing.T) {
	t.Parallel()

	for _, tag := range []string{"mdat", "free", "skip", "dref", "stsd", "udta", "pssh", "edts", "sgpd", "sbgp", "meta"} {
		input := mkbox(tag, []byte{0, 0, 0, 0, 'a', 'n', 'y'})
		forest, err := ParseAll(input)
		require.NoError(t, err, tag)
		require.False(t, forest[0].Kind.Full, tag)
		require.Equal(t, []byte{0, 0, 0, 0, 'a', 'n', 'y'}, forest[0].Fields.Bytes("data"), tag)

		out, err := WriteAll(forest)
		require.NoError(t, err, tag)
		require.Equal(t, input, out, tag)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
