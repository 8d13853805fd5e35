// Package imaging prepares photos for embedding in vision requests:
// downscale, JPEG re-encode, base64 data URI.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxEdge caps the longest edge of an encoded image. 1024px keeps menu text
// legible for the vision model while keeping request payloads small.
const MaxEdge = 1024

const jpegQuality = 80

// Prepare decodes an image (JPEG, PNG, GIF, or WebP), downscales it so the
// longest edge does not exceed MaxEdge, and re-encodes it as a JPEG data
// URI suitable for an image_url content part.
func Prepare(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	img = Downscale(img, MaxEdge)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Downscale scales img so its longest edge is at most maxEdge, preserving
// aspect ratio. Images already within bounds are returned unchanged.
func Downscale(img image.Image, maxEdge int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxEdge && h <= maxEdge {
		return img
	}

	var nw, nh int
	if w > h {
		nw = maxEdge
		nh = h * maxEdge / w
	} else {
		nh = maxEdge
		nw = w * maxEdge / h
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}
