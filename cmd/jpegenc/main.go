// Command jpegenc encodes a PNG or BMP image to baseline JPEG.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"

	"github.com/cocosip/go-jpeg-encoder/jpeg/baseline"
)

func main() {
	quality := flag.Int("quality", 85, "JPEG quality (1-100)")
	output := flag.String("o", "", "output file (default: input with .jpg extension)")
	gray := flag.Bool("gray", false, "encode as grayscale")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: jpegenc [flags] <input.png|input.bmp>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	input := flag.Arg(0)
	out := *output
	if out == "" {
		out = strings.TrimSuffix(input, filepath.Ext(input)) + ".jpg"
	}

	if err := run(input, out, *quality, *gray); err != nil {
		fmt.Fprintf(os.Stderr, "jpegenc: %v\n", err)
		os.Exit(1)
	}
}

func run(input, output string, quality int, gray bool) error {
	f, err := os.Open(input)
	if err != nil {
		return err
	}
	defer f.Close()

	var img image.Image
	switch strings.ToLower(filepath.Ext(input)) {
	case ".png":
		img, err = png.Decode(f)
	case ".bmp":
		img, err = bmp.Decode(f)
	default:
		return fmt.Errorf("unsupported input format: %s", filepath.Ext(input))
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", input, err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	components := 3
	if gray {
		components = 1
	}

	pixels := make([]byte, width*height*components)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			r, g, b = r>>8, g>>8, b>>8
			if gray {
				// ITU-R BT.601 luma
				luma := (19595*r + 38470*g + 7471*b + 32768) >> 16
				pixels[y*width+x] = byte(luma)
			} else {
				offset := (y*width + x) * 3
				pixels[offset+0] = byte(r)
				pixels[offset+1] = byte(g)
				pixels[offset+2] = byte(b)
			}
		}
	}

	jpegData, err := baseline.Encode(pixels, width, height, components, quality)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	if err := os.WriteFile(output, jpegData, 0o644); err != nil {
		return err
	}

	fmt.Printf("%s: %dx%d -> %s (%d bytes)\n", input, width, height, output, len(jpegData))
	return nil
}
