package compress

// ZstdCompressor provides Zstandard compression for chunk payloads.
//
// Zstd gives the best compression ratio of the supported codecs, making it
// the right choice when chunks cross a process or machine boundary or are
// retained for later stages. Builds with cgo use the libzstd bindings; pure
// Go builds fall back to the klauspost implementation.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
