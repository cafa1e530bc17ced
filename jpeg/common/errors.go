package common

import "errors"

// Common errors
var (
	ErrInvalidMarker     = errors.New("invalid JPEG marker")
	ErrInvalidSOI        = errors.New("missing SOI marker")
	ErrInvalidSOF        = errors.New("invalid Start of Frame")
	ErrInvalidDHT        = errors.New("invalid Huffman table")
	ErrInvalidDQT        = errors.New("invalid Quantization table")
	ErrInvalidSOS        = errors.New("invalid Start of Scan")
	ErrInvalidData       = errors.New("invalid JPEG data")
	ErrInvalidDimensions = errors.New("invalid image dimensions")
	ErrInvalidComponents = errors.New("invalid number of components")
	ErrInvalidQuality    = errors.New("invalid quality factor")
	ErrHuffmanDecode     = errors.New("Huffman decode error")
	ErrBufferTooSmall    = errors.New("buffer too small")
)
