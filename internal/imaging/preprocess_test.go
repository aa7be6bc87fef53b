package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/chai2010/webp"
)

func pngSource(t *testing.T, w, h int) Source {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return Source{Data: buf.Bytes(), ContentType: ContentTypePNG, Size: int64(buf.Len())}
}

var (
	red  = color.NRGBA{R: 230, G: 20, B: 20, A: 255}
	blue = color.NRGBA{R: 20, G: 20, B: 230, A: 255}
)

// bandedImage is red across its centered square and blue outside it, so an
// off-center crop shows blue at the output's edges.
func bandedImage(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	side := min(w, h)
	x0, y0 := (w-side)/2, (h-side)/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := blue
			if x >= x0 && x < x0+side && y >= y0 && y < y0+side {
				c = red
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func encodeSource(t *testing.T, img image.Image, contentType string) Source {
	t.Helper()
	var buf bytes.Buffer
	var err error
	switch contentType {
	case ContentTypeJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95})
	case ContentTypeWebP:
		err = webp.Encode(&buf, img, &webp.Options{Lossless: true})
	default:
		err = png.Encode(&buf, img)
	}
	if err != nil {
		t.Fatalf("encode %s fixture: %v", contentType, err)
	}
	return Source{Data: buf.Bytes(), ContentType: contentType, Size: int64(buf.Len())}
}

func decodeOutput(t *testing.T, out *Image) image.Image {
	t.Helper()
	img, _, err := image.Decode(bytes.NewReader(out.Data))
	if err != nil {
		t.Fatalf("decode %s output: %v", out.ContentType, err)
	}
	return img
}

func isRed(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r>>8 > 170 && g>>8 < 90 && b>>8 < 90
}

func isBlue(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return b>>8 > 170 && r>>8 < 90 && g>>8 < 90
}

func decodeConfig(t *testing.T, data []byte) image.Config {
	t.Helper()
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	return cfg
}

func TestValidateRejectsUnsupportedType(t *testing.T) {
	err := Validate(Source{Data: []byte("GIF89a"), ContentType: "image/gif", Size: 6})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestValidateSizeWinsOverType(t *testing.T) {
	for _, ct := range []string{"image/gif", ContentTypeJPEG} {
		err := Validate(Source{ContentType: ct, Size: MaxSourceBytes + 1})
		if !errors.Is(err, ErrFileTooLarge) {
			t.Fatalf("%s: expected ErrFileTooLarge, got %v", ct, err)
		}
	}
}

func TestValidateAcceptsExactLimit(t *testing.T) {
	if err := Validate(Source{ContentType: ContentTypeWebP, Size: MaxSourceBytes}); err != nil {
		t.Fatalf("expected 12 MiB to pass, got %v", err)
	}
}

func TestLogoIsCenteredSquare(t *testing.T) {
	src := pngSource(t, 1200, 600)

	out, err := Preprocess(src, LogoOptions())
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if out.ContentType != ContentTypeWebP {
		t.Fatalf("expected webp, got %s", out.ContentType)
	}
	if out.Width != 512 || out.Height != 512 {
		t.Fatalf("expected 512x512, got %dx%d", out.Width, out.Height)
	}
	cfg := decodeConfig(t, out.Data)
	if cfg.Width != 512 || cfg.Height != 512 {
		t.Fatalf("encoded image is %dx%d", cfg.Width, cfg.Height)
	}
}

func TestLogoCropsFromCenter(t *testing.T) {
	tests := []struct {
		name        string
		w, h        int
		contentType string
	}{
		{"landscape png", 1200, 600, ContentTypePNG},
		{"landscape jpeg", 1200, 600, ContentTypeJPEG},
		{"landscape webp", 1200, 600, ContentTypeWebP},
		{"portrait png", 600, 1200, ContentTypePNG},
		{"portrait jpeg", 600, 1200, ContentTypeJPEG},
		{"portrait webp", 600, 1200, ContentTypeWebP},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Preprocess(encodeSource(t, bandedImage(tt.w, tt.h), tt.contentType), LogoOptions())
			if err != nil {
				t.Fatalf("Preprocess: %v", err)
			}
			img := decodeOutput(t, out)
			if b := img.Bounds(); b.Dx() != 512 || b.Dy() != 512 {
				t.Fatalf("expected 512x512, got %dx%d", b.Dx(), b.Dy())
			}
			// Every point of a centered crop falls inside the red square.
			for _, pt := range []image.Point{{256, 256}, {20, 256}, {491, 256}, {256, 20}, {256, 491}} {
				if c := img.At(pt.X, pt.Y); !isRed(c) {
					t.Fatalf("expected red at %v, got %v", pt, c)
				}
			}
		})
	}
}

func TestAvatarDecodesEverySourceFormat(t *testing.T) {
	for _, contentType := range []string{ContentTypePNG, ContentTypeJPEG, ContentTypeWebP} {
		t.Run(contentType, func(t *testing.T) {
			out, err := Preprocess(encodeSource(t, bandedImage(1200, 600), contentType), AvatarOptions())
			if err != nil {
				t.Fatalf("Preprocess: %v", err)
			}
			if out.ContentType != ContentTypeJPEG || out.Width != 900 || out.Height != 450 {
				t.Fatalf("expected 900x450 jpeg, got %s %dx%d", out.ContentType, out.Width, out.Height)
			}
			// Fit keeps the whole picture: blue edges survive around the red middle.
			img := decodeOutput(t, out)
			if c := img.At(450, 225); !isRed(c) {
				t.Fatalf("expected red center, got %v", c)
			}
			if c := img.At(15, 225); !isBlue(c) {
				t.Fatalf("expected blue left edge, got %v", c)
			}
			if c := img.At(884, 225); !isBlue(c) {
				t.Fatalf("expected blue right edge, got %v", c)
			}
		})
	}
}

func TestAvatarScalesLongerEdge(t *testing.T) {
	src := pngSource(t, 1800, 1200)

	out, err := Preprocess(src, AvatarOptions())
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if out.ContentType != ContentTypeJPEG {
		t.Fatalf("expected jpeg, got %s", out.ContentType)
	}
	if out.Width != 900 || out.Height != 600 {
		t.Fatalf("expected 900x600, got %dx%d", out.Width, out.Height)
	}
	if cfg := decodeConfig(t, out.Data); cfg.Width != 900 {
		t.Fatalf("encoded width %d", cfg.Width)
	}
}

func TestAvatarNeverUpscales(t *testing.T) {
	src := pngSource(t, 320, 200)

	out, err := Preprocess(src, AvatarOptions())
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if out.Width != 320 || out.Height != 200 {
		t.Fatalf("expected source size kept, got %dx%d", out.Width, out.Height)
	}
	if len(out.Data) == 0 {
		t.Fatalf("expected non-empty output")
	}
}

func TestPreprocessDecodeError(t *testing.T) {
	_, err := Preprocess(Source{Data: []byte("not an image"), ContentType: ContentTypeJPEG}, AvatarOptions())
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestEncoderQuality(t *testing.T) {
	tests := map[float64]int{0.82: 82, 1: 100, 0.001: 1, 0: 82, 2: 82}
	for in, want := range tests {
		if got := encoderQuality(in); got != want {
			t.Fatalf("encoderQuality(%v) = %d, want %d", in, got, want)
		}
	}
}
