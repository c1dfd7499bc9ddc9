package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/dataset-curator/internal/detection"
)

// MaxCropSide bounds either side of a scaled crop.
const MaxCropSide = 2048

// CropResult contains the cropped image data
type CropResult struct {
	// Region is the source rectangle in pixels, padding included.
	Region      image.Rectangle `json:"-"`
	X1          int             `json:"x1"`
	Y1          int             `json:"y1"`
	X2          int             `json:"x2"`
	Y2          int             `json:"y2"`
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	ImageBase64 string          `json:"image_base64"`
	MimeType    string          `json:"mime_type"`
}

// BoxRect converts a normalized box into a pixel rectangle on an image of the
// given size. pad grows each side by that fraction of the box size. The
// result is clamped to the image and is never empty.
func BoxRect(b detection.BoundingBox, imageWidth, imageHeight int, pad float64) image.Rectangle {
	w, h := b.AbsoluteSize(imageWidth, imageHeight)
	cx := b.CenterX * float64(imageWidth)
	cy := b.CenterY * float64(imageHeight)
	halfW := w/2 + w*pad
	halfH := h/2 + h*pad

	r := image.Rect(
		int(math.Floor(cx-halfW)),
		int(math.Floor(cy-halfH)),
		int(math.Ceil(cx+halfW)),
		int(math.Ceil(cy+halfH)),
	).Intersect(image.Rect(0, 0, imageWidth, imageHeight))

	// Degenerate boxes still yield one pixel.
	if r.Dx() == 0 || r.Dy() == 0 {
		x := clamp(int(cx), 0, imageWidth-1)
		y := clamp(int(cy), 0, imageHeight-1)
		r = image.Rect(x, y, x+1, y+1)
	}
	return r
}

// CropBox cuts the object described by b out of img, optionally scaled, and
// returns it as a base64 PNG. Scaling up is what makes tiny objects
// reviewable; the scaled size is capped at MaxCropSide.
func CropBox(img image.Image, b detection.BoundingBox, pad, scale float64) (*CropResult, error) {
	if pad < 0 {
		return nil, fmt.Errorf("padding must not be negative, got %v", pad)
	}
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("scale must be positive, got %v", scale)
	}

	bounds := img.Bounds()
	r := BoxRect(b, bounds.Dx(), bounds.Dy(), pad).Add(bounds.Min)
	cropped := imaging.Crop(img, r)

	if scale != 1.0 {
		newWidth := clamp(int(math.Round(float64(cropped.Bounds().Dx())*scale)), 1, MaxCropSide)
		newHeight := clamp(int(math.Round(float64(cropped.Bounds().Dy())*scale)), 1, MaxCropSide)
		filter := imaging.Lanczos
		if scale > 1 {
			// Keep pixel edges visible when enlarging small objects.
			filter = imaging.NearestNeighbor
		}
		cropped = imaging.Resize(cropped, newWidth, newHeight, filter)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, cropped); err != nil {
		return nil, fmt.Errorf("failed to encode cropped image: %w", err)
	}

	r = r.Sub(bounds.Min)
	return &CropResult{
		Region:      r,
		X1:          r.Min.X,
		Y1:          r.Min.Y,
		X2:          r.Max.X,
		Y2:          r.Max.Y,
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// CropBoxFile opens the image at path and crops b out of it.
func CropBoxFile(path string, b detection.BoundingBox, pad, scale float64) (*CropResult, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return CropBox(img, b, pad, scale)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
