// Package imageio decodes source images, encodes mask snapshots and resizes
// images for the editor.
//
// The only wire format the editor produces is a data URI holding a PNG. Source
// images may be PNG, JPEG, GIF, BMP, TIFF or WebP.
package imageio

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"io"
	"net/url"
	"strings"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// Codec errors.
var (
	// ErrInvalidDataURI is returned when a string is not a data URI.
	ErrInvalidDataURI = errors.New("imageio: invalid data URI")

	// ErrEmptyData is returned when image data is empty.
	ErrEmptyData = errors.New("imageio: empty data")

	// ErrTooLarge is returned when an image declares more than MaxPixels.
	ErrTooLarge = errors.New("imageio: image too large")
)

// MaxPixels bounds the declared width*height of a decoded image.
const MaxPixels = 1 << 26

const pngMediaType = "image/png"

// Decode decodes an image from r, auto-detecting the format. The header is
// checked against MaxPixels before any pixel memory is allocated.
func Decode(r io.Reader) (image.Image, error) {
	var head bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &head))
	if err != nil {
		return nil, fmt.Errorf("imageio: decode: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(io.MultiReader(&head, r))
	if err != nil {
		return nil, fmt.Errorf("imageio: decode: %w", err)
	}
	return img, nil
}

// DecodeBytes decodes an image held in memory.
func DecodeBytes(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	return Decode(bytes.NewReader(data))
}

// EncodePNG writes img as a PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("imageio: encode PNG: %w", err)
	}
	return nil
}

// EncodeDataURI encodes img as a data:image/png;base64 URI.
func EncodeDataURI(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.Grow(len("data:;base64,") + len(pngMediaType) + base64.StdEncoding.EncodedLen(buf.Len()))
	sb.WriteString("data:")
	sb.WriteString(pngMediaType)
	sb.WriteString(";base64,")
	sb.WriteString(base64.StdEncoding.EncodeToString(buf.Bytes()))
	return sb.String(), nil
}

// IsDataURI reports whether s looks like a data URI.
func IsDataURI(s string) bool {
	return len(s) >= 5 && strings.EqualFold(s[:5], "data:")
}

// ParseDataURI returns the media type and payload of a data URI. Both base64
// and percent-encoded payloads are accepted.
func ParseDataURI(s string) (mediaType string, data []byte, err error) {
	if !IsDataURI(s) {
		return "", nil, ErrInvalidDataURI
	}
	meta, payload, ok := strings.Cut(s[5:], ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing ','", ErrInvalidDataURI)
	}

	isBase64 := false
	if m, found := strings.CutSuffix(meta, ";base64"); found {
		meta, isBase64 = m, true
	}
	mediaType, _, _ = strings.Cut(meta, ";")
	if mediaType == "" {
		mediaType = "text/plain"
	}

	if isBase64 {
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// Some producers drop the padding.
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		if err != nil {
			return "", nil, fmt.Errorf("%w: %w", ErrInvalidDataURI, err)
		}
		return mediaType, data, nil
	}

	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidDataURI, err)
	}
	return mediaType, []byte(unescaped), nil
}

// DecodeDataURI decodes the image held in a data URI.
func DecodeDataURI(s string) (image.Image, error) {
	_, data, err := ParseDataURI(s)
	if err != nil {
		return nil, err
	}
	return DecodeBytes(data)
}
