package pltx

// FileMagic is the 4-byte magic that begins every PLTX file.
var FileMagic = []byte{'P', 'L', 'T', 'X'}

// ChunkMagic begins every chunk record.
var ChunkMagic = []byte{'C', 'H', 'N', 'K'}

// IndexMagic begins the index section.
var IndexMagic = []byte{'I', 'D', 'X', 'T'}

// FooterMagic begins the trailing 12-byte footer.
var FooterMagic = []byte{'F', 'T', 'E', 'R'}

const (
	// recordSize is the on-disk size of one (timestamp, value) record.
	recordSize = 16
	// chunkHeaderSize is the size of a chunk's fixed header, magic excluded.
	chunkHeaderSize = 32
	// fileHeaderPrefixSize is the size of the fixed portion of the file header, magic excluded.
	fileHeaderPrefixSize = 12
	// indexEntrySize is the on-disk size of one IndexEntry.
	indexEntrySize = 28
	// footerSize is the size of the trailing footer, magic included.
	footerSize = 12
)

const (
	// CompressionNone indicates an uncompressed chunk payload.
	CompressionNone CompressionTag = 0
	// CompressionZlib indicates a zlib-compressed chunk payload.
	CompressionZlib CompressionTag = 1
	// CompressionLZ4 indicates an LZ4 block-format chunk payload.
	CompressionLZ4 CompressionTag = 2
	// CompressionZstd indicates a zstd-compressed chunk payload.
	CompressionZstd CompressionTag = 3
)

// CompressionTag identifies the compression family applied to chunk payloads
// across an entire file.
type CompressionTag uint8

// String renders the compression tag for logs and error messages.
func (c CompressionTag) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZlib:
		return "zlib"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return "unknown"
	}
}
