package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"golang.org/x/image/bmp"
)

func solid(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	return img
}

func TestDecodePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(8, 6)); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}

	img, err := NewDecoder(1024).Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 6 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	if _, ok := img.(*image.RGBA); !ok {
		t.Fatalf("expected RGBA image, got %T", img)
	}
}

func TestDecodeBMP(t *testing.T) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, solid(4, 4)); err != nil {
		t.Fatalf("bmp.Encode() error = %v", err)
	}
	if _, err := NewDecoder(0).Decode(buf.Bytes()); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := NewDecoder(1024).Decode([]byte("definitely not an image")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestDecodeDownscalesLongestEdge(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(400, 100)); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}

	img, err := NewDecoder(200).Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 50 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
}

func TestEncodeJPEGRoundTrip(t *testing.T) {
	raw, err := EncodeJPEG(solid(10, 10))
	if err != nil {
		t.Fatalf("EncodeJPEG() error = %v", err)
	}
	if _, err := NewDecoder(0).Decode(raw); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
}
