// Package imaging applies the pixel transforms some card layouts need
// before their image is persisted: flip backs are stored upside down and
// split cards may be stored rotated upright.
package imaging

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
)

const jpegQuality = 92

// Rotate returns data rotated clockwise by the given degrees (90 or 180),
// re-encoded in its source format. 90-degree rotation only applies to
// landscape images; an already-portrait image passes through, as does a
// rotation of 0. Bytes that do not decode as JPEG or PNG are returned
// unchanged so the download can still be persisted verbatim; the false
// return tells the caller nothing was transformed.
func Rotate(data []byte, degrees int) ([]byte, bool, error) {
	if degrees != 90 && degrees != 180 {
		return data, false, nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data, false, nil
	}

	b := img.Bounds()
	if degrees == 90 && b.Dx() <= b.Dy() {
		return data, false, nil
	}

	var rotated image.Image
	if degrees == 90 {
		rotated = rotate90(img)
	} else {
		rotated = rotate180(img)
	}

	var buf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&buf, rotated)
	default:
		err = jpeg.Encode(&buf, rotated, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return nil, false, err
	}
	return buf.Bytes(), true, nil
}

// rotate90 rotates clockwise: source (x, y) lands at (maxY-y, x).
func rotate90(src image.Image) image.Image {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(b.Max.Y-1-y, x-b.Min.X, src.At(x, y))
		}
	}
	return dst
}

func rotate180(src image.Image) image.Image {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(b.Max.X-1-x, b.Max.Y-1-y, src.At(x, y))
		}
	}
	return dst
}
