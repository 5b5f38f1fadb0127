package upload

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"

	// decoders for image.Decode
	_ "image/gif"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"platefinder/models"
)

const (
	maxPreviewDimension = 512
	previewQuality      = 85
)

// EncodePreview turns raw file bytes into a data URL. Decodable images are
// orientation-corrected and scaled down to fit maxPreviewDimension; any other
// blob is embedded as-is under its sniffed media type.
func EncodePreview(data []byte) (models.Preview, error) {
	mediaType := mimetype.Detect(data).String()

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return models.Preview{
			MediaType: mediaType,
			DataURL:   dataURL(mediaType, data),
		}, nil
	}

	img = previewImage(img, exifOrientation(data))

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: previewQuality}); err != nil {
		return models.Preview{}, fmt.Errorf("encode preview: %w", err)
	}

	b := img.Bounds()
	return models.Preview{
		MediaType: "image/jpeg",
		DataURL:   dataURL("image/jpeg", buf.Bytes()),
		Width:     b.Dx(),
		Height:    b.Dy(),
	}, nil
}

func dataURL(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// previewImage scales img down before orienting it so the per-pixel
// orientation pass only touches preview-sized images.
func previewImage(img image.Image, orientation int) image.Image {
	return orient(fit(img, maxPreviewDimension), orientation)
}

func exifOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return v
}

// orient applies an EXIF orientation (1-8) so the image displays upright.
func orient(img image.Image, orientation int) image.Image {
	if orientation < 2 || orientation > 8 {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	dw, dh := w, h
	if orientation >= 5 {
		dw, dh = h, w
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var dx, dy int
			switch orientation {
			case 2:
				dx, dy = w-1-x, y
			case 3:
				dx, dy = w-1-x, h-1-y
			case 4:
				dx, dy = x, h-1-y
			case 5:
				dx, dy = y, x
			case 6:
				dx, dy = h-1-y, x
			case 7:
				dx, dy = h-1-y, w-1-x
			case 8:
				dx, dy = y, w-1-x
			}
			dst.Set(dx, dy, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

func fit(img image.Image, limit int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= limit && h <= limit {
		return img
	}

	scale := float64(limit) / float64(w)
	if s := float64(limit) / float64(h); s < scale {
		scale = s
	}
	nw, nh := int(float64(w)*scale), int(float64(h)*scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
