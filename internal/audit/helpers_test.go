package audit

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/dataset-curator/internal/dataset"
)

// fixtureImage describes one image in a test dataset. An empty label string
// with noLabel false writes an empty label file.
type fixtureImage struct {
	split   string
	name    string
	width   int
	height  int
	label   string
	noLabel bool
}

func buildDataset(t *testing.T, root string, images []fixtureImage) {
	t.Helper()
	for _, fi := range images {
		imagesDir := filepath.Join(root, fi.split, dataset.ImagesDir)
		labelsDir := filepath.Join(root, fi.split, dataset.LabelsDir)
		for _, d := range []string{imagesDir, labelsDir} {
			if err := os.MkdirAll(d, 0o755); err != nil {
				t.Fatal(err)
			}
		}
		writePNG(t, filepath.Join(imagesDir, fi.name), fi.width, fi.height)
		if fi.noLabel {
			continue
		}
		if err := os.WriteFile(filepath.Join(labelsDir, dataset.LabelName(fi.name)), []byte(fi.label), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func writePNG(t *testing.T, path string, width, height int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}
