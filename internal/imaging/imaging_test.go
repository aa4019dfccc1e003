package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		img.Set(x, x, color.Black)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeDataURL(t *testing.T) {
	payload := pngBytes(t)
	raw := "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)

	got, err := DecodeDataURL(raw)
	if err != nil {
		t.Fatalf("DecodeDataURL failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("decoded payload does not match original")
	}
}

func TestDecodeDataURLIgnoresDescriptor(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("hello"))
	got, err := DecodeDataURL("whatever;nonsense," + payload)
	if err != nil {
		t.Fatalf("DecodeDataURL failed: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("unexpected payload %q", got)
	}
}

func TestDecodeDataURLMalformed(t *testing.T) {
	cases := map[string]string{
		"no comma":      "data:image/png;base64",
		"bad base64":    "data:image/png;base64,not!!valid",
		"empty payload": "data:image/png;base64,",
		"whitespace":    "   ",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeDataURL(raw)
			if !errors.Is(err, ErrMalformedDataURL) {
				t.Fatalf("expected ErrMalformedDataURL, got %v", err)
			}
		})
	}
}

func TestNormalizeToTemp(t *testing.T) {
	path, cleanup, err := NormalizeToTemp(pngBytes(t))
	if err != nil {
		t.Fatalf("NormalizeToTemp failed: %v", err)
	}
	defer cleanup()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read temp file: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Fatalf("temp file is not a png: %v", err)
	}

	cleanup()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("cleanup did not remove the temp file")
	}
}

func TestNormalizeToTempRejectsGarbage(t *testing.T) {
	if _, _, err := NormalizeToTemp([]byte("not an image")); err == nil {
		t.Fatal("expected an error for non-image bytes")
	}
}
