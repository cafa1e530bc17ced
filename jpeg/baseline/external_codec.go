package baseline

import (
	"fmt"

	"github.com/cocosip/go-dicom/pkg/dicom/transfer"
	"github.com/cocosip/go-dicom/pkg/imaging/codec"
)

// BaselineCodec implements the external codec.Codec interface for JPEG
// Baseline (Process 1), DICOM Transfer Syntax 1.2.840.10008.1.2.4.50
type BaselineCodec struct {
	transferSyntax *transfer.Syntax
	quality        int
}

// NewBaselineCodec creates a new JPEG Baseline codec with the given quality
func NewBaselineCodec(quality int) *BaselineCodec {
	if quality < 1 || quality > 100 {
		quality = 85
	}
	return &BaselineCodec{
		transferSyntax: transfer.JPEGBaseline8Bit,
		quality:        quality,
	}
}

// Name returns the codec name
func (c *BaselineCodec) Name() string {
	return "JPEG Baseline (Process 1)"
}

// TransferSyntax returns the transfer syntax this codec handles
func (c *BaselineCodec) TransferSyntax() *transfer.Syntax {
	return c.transferSyntax
}

// Encode encodes pixel data to JPEG Baseline format
func (c *BaselineCodec) Encode(src *codec.PixelData, dst *codec.PixelData, params codec.Parameters) error {
	if src == nil || dst == nil {
		return fmt.Errorf("source and destination PixelData cannot be nil")
	}

	if len(src.Data) == 0 {
		return fmt.Errorf("source pixel data is empty")
	}

	if src.BitsStored != 8 {
		return fmt.Errorf("JPEG Baseline requires 8-bit samples, got %d", src.BitsStored)
	}

	jpegData, err := Encode(
		src.Data,
		int(src.Width),
		int(src.Height),
		int(src.SamplesPerPixel),
		c.quality,
	)
	if err != nil {
		return fmt.Errorf("JPEG Baseline encode failed: %w", err)
	}

	dst.Data = jpegData
	dst.Width = src.Width
	dst.Height = src.Height
	dst.NumberOfFrames = src.NumberOfFrames
	dst.BitsAllocated = src.BitsAllocated
	dst.BitsStored = src.BitsStored
	dst.HighBit = src.HighBit
	dst.SamplesPerPixel = src.SamplesPerPixel
	dst.PixelRepresentation = src.PixelRepresentation
	dst.PlanarConfiguration = src.PlanarConfiguration
	dst.PhotometricInterpretation = src.PhotometricInterpretation
	dst.TransferSyntaxUID = c.transferSyntax.UID().UID()

	return nil
}

// Decode decodes JPEG Baseline data to uncompressed pixel data
func (c *BaselineCodec) Decode(src *codec.PixelData, dst *codec.PixelData, params codec.Parameters) error {
	if src == nil || dst == nil {
		return fmt.Errorf("source and destination PixelData cannot be nil")
	}

	if len(src.Data) == 0 {
		return fmt.Errorf("source pixel data is empty")
	}

	pixelData, width, height, components, err := Decode(src.Data)
	if err != nil {
		return fmt.Errorf("JPEG Baseline decode failed: %w", err)
	}

	if width != int(src.Width) || height != int(src.Height) {
		return fmt.Errorf("decoded dimensions (%dx%d) don't match expected (%dx%d)",
			width, height, src.Width, src.Height)
	}

	dst.Data = pixelData
	dst.Width = uint16(width)
	dst.Height = uint16(height)
	dst.NumberOfFrames = src.NumberOfFrames
	dst.BitsAllocated = 8
	dst.BitsStored = 8
	dst.HighBit = 7
	dst.SamplesPerPixel = uint16(components)
	dst.PixelRepresentation = src.PixelRepresentation
	dst.PlanarConfiguration = 0 // Always interleaved after decode
	dst.PhotometricInterpretation = src.PhotometricInterpretation
	dst.TransferSyntaxUID = transfer.ExplicitVRLittleEndian.UID().UID()

	return nil
}

// RegisterBaselineCodec registers the JPEG Baseline codec with the global registry
func RegisterBaselineCodec() {
	registry := codec.GetGlobalRegistry()
	registry.RegisterCodec(transfer.JPEGBaseline8Bit, NewBaselineCodec(85))
}
