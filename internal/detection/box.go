package detection

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// LabelExt is the extension of YOLO annotation files.
const LabelExt = ".txt"

var (
	// ErrMalformedLine marks an annotation line that is not five numeric
	// fields with normalized coordinates.
	ErrMalformedLine = errors.New("malformed annotation line")

	// ErrClassOutOfRange marks a class id with no entry in the taxonomy.
	ErrClassOutOfRange = errors.New("class id out of range")
)

// BoundingBox is one ground-truth object in YOLO layout. Coordinates and
// dimensions are fractions of the image width and height.
type BoundingBox struct {
	ClassID int     `json:"class_id"`
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

// AbsoluteSize returns the box size in pixels for an image of the given size.
func (b BoundingBox) AbsoluteSize(imageWidth, imageHeight int) (w, h float64) {
	return b.Width * float64(imageWidth), b.Height * float64(imageHeight)
}

// String formats the box the way it appears in a label file.
func (b BoundingBox) String() string {
	return fmt.Sprintf("%d %g %g %g %g", b.ClassID, b.CenterX, b.CenterY, b.Width, b.Height)
}

// LineError ties a parse failure to its 1-based line number.
type LineError struct {
	Line int
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e LineError) Unwrap() error { return e.Err }

// CoordTolerance is how far a coordinate may stray outside [0,1] before the
// line is rejected. Values within it are clamped; exporters round 1.0 to
// 1.0000001 and similar.
const CoordTolerance = 1e-6

// ParseLine parses "<class> <cx> <cy> <w> <h>".
func ParseLine(line string) (BoundingBox, error) {
	fields := strings.Fields(line)
	if len(fields) != 5 {
		return BoundingBox{}, fmt.Errorf("%w: want 5 fields, got %d", ErrMalformedLine, len(fields))
	}

	// Some exporters write class ids as floats ("0.0").
	cls, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || cls < 0 || cls > math.MaxInt32 || cls != math.Trunc(cls) {
		return BoundingBox{}, fmt.Errorf("%w: invalid class id %q", ErrMalformedLine, fields[0])
	}

	var vals [4]float64
	for i, f := range fields[1:] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return BoundingBox{}, fmt.Errorf("%w: invalid number %q", ErrMalformedLine, f)
		}
		if v < -CoordTolerance || v > 1+CoordTolerance || math.IsNaN(v) {
			return BoundingBox{}, fmt.Errorf("%w: value %q outside [0,1]", ErrMalformedLine, f)
		}
		vals[i] = math.Min(math.Max(v, 0), 1)
	}

	return BoundingBox{
		ClassID: int(cls),
		CenterX: vals[0],
		CenterY: vals[1],
		Width:   vals[2],
		Height:  vals[3],
	}, nil
}

// ParseLabels reads every non-blank line from r. Lines that fail to parse are
// returned as LineErrors alongside the boxes that did parse; the returned
// error is reserved for read failures.
func ParseLabels(r io.Reader) ([]BoundingBox, []LineError, error) {
	var (
		boxes []BoundingBox
		bad   []LineError
	)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		box, err := ParseLine(line)
		if err != nil {
			bad = append(bad, LineError{Line: lineNo, Err: err})
			continue
		}
		boxes = append(boxes, box)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return boxes, bad, nil
}

// ReadLabelFile opens and parses a label file.
func ReadLabelFile(path string) ([]BoundingBox, []LineError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open label %s: %w", path, err)
	}
	defer f.Close()

	boxes, bad, err := ParseLabels(f)
	if err != nil {
		return nil, nil, fmt.Errorf("read label %s: %w", path, err)
	}
	return boxes, bad, nil
}
