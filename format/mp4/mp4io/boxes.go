package mp4io

// Box types of the built in catalog.
var (
	MOOV = Tag{'m', 'o', 'o', 'v'}
	MVHD = Tag{'m', 'v', 'h', 'd'}
	TRAK = Tag{'t', 'r', 'a', 'k'}
	TKHD = Tag{'t', 'k', 'h', 'd'}
	MDIA = Tag{'m', 'd', 'i', 'a'}
	MDHD = Tag{'m', 'd', 'h', 'd'}
	HDLR = Tag{'h', 'd', 'l', 'r'}
	MINF = Tag{'m', 'i', 'n', 'f'}
	VMHD = Tag{'v', 'm', 'h', 'd'}
	SMHD = Tag{'s', 'm', 'h', 'd'}
	DINF = Tag{'d', 'i', 'n', 'f'}
	DREF = Tag{'d', 'r', 'e', 'f'}
	STBL = Tag{'s', 't', 'b', 'l'}
	STSD = Tag{'s', 't', 's', 'd'}
	STTS = Tag{'s', 't', 't', 's'}
	CTTS = Tag{'c', 't', 't', 's'}
	STSC = Tag{'s', 't', 's', 'c'}
	STSZ = Tag{'s', 't', 's', 'z'}
	STCO = Tag{'s', 't', 'c', 'o'}
	CO64 = Tag{'c', 'o', '6', '4'}
	STSS = Tag{'s', 't', 's', 's'}
	MVEX = Tag{'m', 'v', 'e', 'x'}
	MEHD = Tag{'m', 'e', 'h', 'd'}
	TREX = Tag{'t', 'r', 'e', 'x'}
	MOOF = Tag{'m', 'o', 'o', 'f'}
	MFHD = Tag{'m', 'f', 'h', 'd'}
	TRAF = Tag{'t', 'r', 'a', 'f'}
	TFHD = Tag{'t', 'f', 'h', 'd'}
	TFDT = Tag{'t', 'f', 'd', 't'}
	TRUN = Tag{'t', 'r', 'u', 'n'}
	SENC = Tag{'s', 'e', 'n', 'c'}
	SAIZ = Tag{'s', 'a', 'i', 'z'}
	SAIO = Tag{'s', 'a', 'i', 'o'}
	SIDX = Tag{'s', 'i', 'd', 'x'}
	FTYP = Tag{'f', 't', 'y', 'p'}
	STYP = Tag{'s', 't', 'y', 'p'}
	MDAT = Tag{'m', 'd', 'a', 't'}
	FREE = Tag{'f', 'r', 'e', 'e'}
	SKIP = Tag{'s', 'k', 'i', 'p'}
	UDTA = Tag{'u', 'd', 't', 'a'}
	PSSH = Tag{'p', 's', 's', 'h'}
	EDTS = Tag{'e', 'd', 't', 's'}
	SGPD = Tag{'s', 'g', 'p', 'd'}
	SBGP = Tag{'s', 'b', 'g', 'p'}
	META = Tag{'m', 'e', 't', 'a'}
)

const (
	TFHDBaseDataOffset     = uint32(0x01)
	TFHDStsdID             = uint32(0x02)
	TFHDDefaultDuration    = uint32(0x08)
	TFHDDefaultSize        = uint32(0x10)
	TFHDDefaultFlags       = uint32(0x20)
	TFHDDurationIsEmpty    = uint32(0x010000)
	TFHDDefaultBaseIsMOOF  = uint32(0x020000)
	TRUNDataOffset         = uint32(0x01)
	TRUNFirstSampleFlags   = uint32(0x04)
	TRUNSampleDuration     = uint32(0x100)
	TRUNSampleSize         = uint32(0x200)
	TRUNSampleFlags        = uint32(0x400)
	TRUNSampleCTS          = uint32(0x800)
	SENCUseSubsampleEncryp = uint32(0x02)
	SAIXAuxInfoType        = uint32(0x01)
)

// Sample flag values used in trun, tfhd and trex.
const (
	SampleIsNonSync       uint32 = 0x00010000
	SampleHasDependencies uint32 = 0x01000000
	SampleNoDependencies  uint32 = 0x02000000

	SampleNonKeyframe = SampleHasDependencies | SampleIsNonSync
)

// byVersion selects the 64-bit form for version 1 boxes.
func byVersion(v1, v0 *Type) *Type {
	return Variant(When(VersionIs(1), v1), Otherwise(v0))
}

func matrix() *Type {
	return Array(Array(I32(), 3), 3)
}

func brandFields() []Field {
	return []Field{
		F("major_brand", Bytes(4)),
		F("minor_version", U32()),
		F("compatible_brands", Remaining(Bytes(4))),
	}
}

func auxInfoFields() []Field {
	return []Field{
		F("aux_info_type", U32().If(FlagSet(SAIXAuxInfoType))),
		F("aux_info_type_parameter", U32().If(FlagSet(SAIXAuxInfoType))),
	}
}

func entryTable(entry *Type, name string) []Field {
	return []Field{
		F("entry_count", U32()),
		F(name, Count("entry_count", entry)),
	}
}

func init() {
	kinds := []*Kind{
		container("moov"),
		container("trak"),
		container("mdia"),
		container("minf"),
		container("dinf"),
		container("stbl"),
		container("mvex"),
		container("moof"),
		container("traf"),

		plainBox("ftyp", brandFields()...),
		plainBox("styp", brandFields()...),

		fullBox("mvhd",
			F("creation_time", byVersion(U64(), U32())),
			F("modification_time", byVersion(U64(), U32())),
			F("timescale", U32()),
			F("duration", byVersion(U64(), U32())),
			F("rate", I32()),
			F("volume", I16()),
			F("reserved", Bytes(10)),
			F("matrix", matrix()),
			F("pre_defined", Array(U32(), 6)),
			F("next_track_id", U32()),
		),
		fullBox("tkhd",
			F("creation_time", byVersion(U64(), U32())),
			F("modification_time", byVersion(U64(), U32())),
			F("track_id", U32()),
			F("reserved", U32()),
			F("duration", byVersion(U64(), U32())),
			F("reserved2", Array(U32(), 2)),
			F("layer", I16()),
			F("alternate_group", I16()),
			F("volume", I16()),
			F("reserved3", U16()),
			F("matrix", matrix()),
			F("width", U32()),
			F("height", U32()),
		),
		fullBox("mdhd",
			F("creation_time", byVersion(U64(), U32())),
			F("modification_time", byVersion(U64(), U32())),
			F("timescale", U32()),
			F("duration", byVersion(U64(), U32())),
			F("language", U16()),
			F("pre_defined", U16()),
		),
		fullBox("hdlr",
			F("pre_defined", U32()),
			F("handler_type", Bytes(4)),
			F("reserved", Array(U32(), 3)),
			F("name", String()),
		),
		fullBox("vmhd",
			F("graphics_mode", U16()),
			F("opcolor", Array(U16(), 3)),
		),
		fullBox("smhd",
			F("balance", I16()),
			F("reserved", U16()),
		),

		fullBox("stts", entryTable(Struct(
			F("sample_count", U32()),
			F("sample_delta", U32()),
		), "entries")...),
		fullBox("ctts", entryTable(Struct(
			F("sample_count", U32()),
			F("sample_offset", byVersion(I32(), U32())),
		), "entries")...),
		fullBox("stsc", entryTable(Struct(
			F("first_chunk", U32()),
			F("samples_per_chunk", U32()),
			F("sample_description_index", U32()),
		), "entries")...),
		fullBox("stsz",
			F("sample_size", U32()),
			F("sample_count", U32()),
			F("entry_sizes", Count("sample_count", U32()).If(FieldIs("sample_size", 0))),
		),
		fullBox("stco", entryTable(U32(), "chunk_offsets")...),
		fullBox("co64", entryTable(U64(), "chunk_offsets")...),
		fullBox("stss", entryTable(U32(), "sample_numbers")...),

		fullBox("mehd",
			F("fragment_duration", byVersion(U64(), U32())),
		),
		fullBox("trex",
			F("track_id", U32()),
			F("default_sample_description_index", U32()),
			F("default_sample_duration", U32()),
			F("default_sample_size", U32()),
			F("default_sample_flags", U32()),
		),

		fullBox("mfhd",
			F("seq_num", U32()),
		),
		fullBox("tfhd",
			F("track_id", U32()),
			F("base_data_offset", U64().If(FlagSet(TFHDBaseDataOffset))),
			F("sample_description_index", U32().If(FlagSet(TFHDStsdID))),
			F("default_sample_duration", U32().If(FlagSet(TFHDDefaultDuration))),
			F("default_sample_size", U32().If(FlagSet(TFHDDefaultSize))),
			F("default_sample_flags", U32().If(FlagSet(TFHDDefaultFlags))),
		),
		fullBox("tfdt",
			F("base_media_decode_time", byVersion(U64(), U32())),
		),
		fullBox("trun",
			F("sample_count", U32()),
			F("data_offset", I32().If(FlagSet(TRUNDataOffset))),
			F("first_sample_flags", U32().If(FlagSet(TRUNFirstSampleFlags))),
			F("samples", Count("sample_count", Struct(
				F("sample_duration", U32().If(FlagSet(TRUNSampleDuration))),
				F("sample_size", U32().If(FlagSet(TRUNSampleSize))),
				F("sample_flags", U32().If(FlagSet(TRUNSampleFlags))),
				F("sample_composition_time_offset", byVersion(I32(), U32()).If(FlagSet(TRUNSampleCTS))),
			))),
		),
		fullBox("senc",
			F("sample_count", U32()),
			F("samples", Count("sample_count", Struct(
				F("iv", Bytes(8)),
				F("subsample_count", U16().If(FlagSet(SENCUseSubsampleEncryp))),
				F("subsamples", Count("subsample_count", Struct(
					F("clear_bytes", U16()),
					F("cipher_bytes", U32()),
				)).If(FlagSet(SENCUseSubsampleEncryp))),
			))),
		),
		fullBox("saiz", append(auxInfoFields(),
			F("default_sample_info_size", U8()),
			F("sample_count", U32()),
			F("sample_info_sizes", Count("sample_count", U8()).If(FieldIs("default_sample_info_size", 0))),
		)...),
		fullBox("saio", append(auxInfoFields(),
			F("entry_count", U32()),
			F("offsets", Count("entry_count", byVersion(U64(), U32()))),
		)...),
		fullBox("sidx",
			F("reference_id", U32()),
			F("timescale", U32()),
			F("earliest_presentation_time", byVersion(U64(), U32())),
			F("first_offset", byVersion(U64(), U32())),
			F("reserved", U16()),
			F("reference_count", U16()),
			F("references", Count("reference_count", Struct(
				F("referenced_size", U32()),
				F("subsegment_duration", U32()),
				F("sap", U32()),
			))),
		),

		opaque("mdat"),
		opaque("free"),
		opaque("skip"),
		opaque("dref"),
		opaque("stsd"),
		opaque("udta"),
		opaque("pssh"),
		opaque("edts"),
		opaque("sgpd"),
		opaque("sbgp"),
		opaque("meta"),
	}
	for _, k := range kinds {
		Register(k)
	}
}
