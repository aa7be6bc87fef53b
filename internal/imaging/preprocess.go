// Package imaging prepares user-selected pictures for upload: it checks the
// declared type and size, then decodes, resizes or crops, and re-encodes them.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"math"

	"github.com/chai2010/webp"
	imgops "github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// MaxSourceBytes is the largest source file accepted.
const MaxSourceBytes = 12 << 20

const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeWebP = "image/webp"
)

var (
	ErrUnsupportedFormat = errors.New("formato no soportado: usá JPG, PNG o WEBP")
	ErrFileTooLarge      = errors.New("la imagen supera los 12 MB")
)

type CropMode int

const (
	// CropFit keeps the aspect ratio and bounds the longer edge.
	CropFit CropMode = iota
	// CropCenterSquare cuts the largest centered square and scales it to Size.
	CropCenterSquare
)

type Format int

const (
	FormatJPEG Format = iota
	FormatWebP
)

func (f Format) ContentType() string {
	if f == FormatWebP {
		return ContentTypeWebP
	}
	return ContentTypeJPEG
}

type Options struct {
	MaxEdge int
	Size    int
	Quality float64
	Crop    CropMode
	Format  Format
}

func AvatarOptions() Options {
	return Options{MaxEdge: 900, Quality: 0.82, Crop: CropFit, Format: FormatJPEG}
}

func LogoOptions() Options {
	return Options{Size: 512, Quality: 0.82, Crop: CropCenterSquare, Format: FormatWebP}
}

// Source is an uploaded file as received from the browser.
type Source struct {
	Data        []byte
	ContentType string
	Size        int64
}

// Image is a re-encoded picture ready for upload.
type Image struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("no se pudo leer la imagen: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

type EncodeError struct {
	Format Format
	Err    error
}

func (e *EncodeError) Error() string {
	if e.Err == nil {
		return "no se pudo generar la imagen"
	}
	return fmt.Sprintf("no se pudo generar la imagen: %v", e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// Validate checks size before type, and never decodes.
func Validate(src Source) error {
	size := src.Size
	if size == 0 {
		size = int64(len(src.Data))
	}
	if size > MaxSourceBytes {
		return ErrFileTooLarge
	}
	switch src.ContentType {
	case ContentTypeJPEG, ContentTypePNG, ContentTypeWebP:
		return nil
	default:
		return ErrUnsupportedFormat
	}
}

func Preprocess(src Source, opts Options) (*Image, error) {
	decoded, _, err := image.Decode(bytes.NewReader(src.Data))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	var out image.Image
	switch opts.Crop {
	case CropCenterSquare:
		size := opts.Size
		if size <= 0 {
			size = 512
		}
		out = imgops.Fill(decoded, size, size, imgops.Center, imgops.Lanczos)
	default:
		maxEdge := opts.MaxEdge
		if maxEdge <= 0 {
			maxEdge = 900
		}
		// Fit returns a copy unchanged when the source already fits.
		out = imgops.Fit(decoded, maxEdge, maxEdge, imgops.Lanczos)
	}

	var buf bytes.Buffer
	quality := encoderQuality(opts.Quality)
	switch opts.Format {
	case FormatWebP:
		err = webp.Encode(&buf, out, &webp.Options{Lossless: false, Quality: float32(quality)})
	default:
		// JPEG has no alpha; flatten onto white so transparent areas stay light.
		bounds := out.Bounds()
		flat := imgops.New(bounds.Dx(), bounds.Dy(), color.White)
		flat = imgops.Overlay(flat, out, image.Pt(0, 0), 1.0)
		out = flat
		err = jpeg.Encode(&buf, out, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		return nil, &EncodeError{Format: opts.Format, Err: err}
	}
	if buf.Len() == 0 {
		return nil, &EncodeError{Format: opts.Format}
	}

	bounds := out.Bounds()
	return &Image{
		Data:        buf.Bytes(),
		ContentType: opts.Format.ContentType(),
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
	}, nil
}

// encoderQuality maps (0,1] onto 1..100.
func encoderQuality(q float64) int {
	if q <= 0 || q > 1 || math.IsNaN(q) {
		q = 0.82
	}
	v := int(math.Round(q * 100))
	if v < 1 {
		v = 1
	}
	return v
}
