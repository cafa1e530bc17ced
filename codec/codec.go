// Package codec defines the codec interface and registry shared by the
// image codecs in this module.
package codec

// Codec compresses and decompresses pixel data. Implementations register
// themselves under both a short name and a transfer syntax UID.
type Codec interface {
	// Encode compresses raw pixel data
	Encode(params EncodeParams) ([]byte, error)

	// Decode decompresses a full compressed frame
	Decode(data []byte) (*DecodeResult, error)

	// UID returns the codec's transfer syntax UID
	UID() string

	// Name returns a short human-readable name
	Name() string
}

// EncodeParams describes one frame of raw pixel data to compress.
type EncodeParams struct {
	PixelData  []byte  // interleaved samples, row-major
	Width      int     // image width in pixels
	Height     int     // image height in pixels
	Components int     // samples per pixel: 1 grayscale, 3 RGB
	Options    Options // codec-specific options, may be nil
}

// Options carries codec-specific encoding options.
type Options interface {
	Validate() error
}

// DecodeResult is one decompressed frame.
type DecodeResult struct {
	PixelData  []byte
	Width      int
	Height     int
	Components int
	BitDepth   int // bits per sample
}

// BaseOptions holds the options every lossy codec understands. A zero
// Quality means the codec's default.
type BaseOptions struct {
	// Quality factor, 1-100, higher is better
	Quality int
}

// Validate checks the quality factor range.
func (o *BaseOptions) Validate() error {
	if o.Quality < 0 || o.Quality > 100 {
		return ErrInvalidQuality
	}
	return nil
}
