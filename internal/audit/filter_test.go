package audit

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/dataset-curator/internal/dataset"
)

func TestFilter_SelectsPairsWithSmallObjects(t *testing.T) {
	root := t.TempDir()
	buildDataset(t, root, []fixtureImage{
		{split: "train", name: "tiny.png", width: 64, height: 64, label: "0 0.5 0.5 0.03 0.03\n"},
		{split: "train", name: "edge.png", width: 64, height: 64, label: "0 0.5 0.5 0.05 0.05\n"},
		{split: "train", name: "tall.png", width: 64, height: 64, label: "0 0.5 0.5 0.03 0.2\n"},
		{split: "train", name: "nolabel.png", width: 64, height: 64, noLabel: true},
		{split: "val", name: "mixed.png", width: 32, height: 32, label: "1 0.5 0.5 0.6 0.6\n2 0.1 0.1 0.01 0.02\n"},
		{split: "test", name: "big.png", width: 32, height: 32, label: "1 0.5 0.5 0.6 0.6\n"},
	})
	out := filepath.Join(t.TempDir(), "small")

	res, err := (&Filter{Threshold: DefaultSmallThreshold}).Run(context.Background(), root, out)
	require.NoError(t, err)

	assert.Equal(t, 6, res.Scanned)
	assert.Equal(t, 1, res.Unlabeled)
	assert.Empty(t, res.Skipped)
	assert.Equal(t, map[string]int{"train": 1, "val": 1}, res.PerSplit)
	require.Len(t, res.Kept, 2)
	assert.Equal(t, filepath.Join(out, "train", "images", "tiny.png"), res.Kept[0].Image)
	assert.Equal(t, filepath.Join(out, "val", "labels", "mixed.txt"), res.Kept[1].Label)

	// Copies are verbatim.
	for _, name := range []string{"images/tiny.png", "labels/tiny.txt"} {
		want, err := os.ReadFile(filepath.Join(root, "train", name))
		require.NoError(t, err)
		got, err := os.ReadFile(filepath.Join(out, "train", name))
		require.NoError(t, err)
		assert.True(t, bytes.Equal(want, got), "%s differs from source", name)
	}

	for _, absent := range []string{"edge.png", "tall.png", "nolabel.png"} {
		assert.NoFileExists(t, filepath.Join(out, "train", "images", absent))
	}
	// Every split directory is mirrored even when nothing qualified.
	assert.DirExists(t, filepath.Join(out, "test", "images"))
	assert.DirExists(t, filepath.Join(out, "test", "labels"))
}

func TestFilter_FlatLayout(t *testing.T) {
	root := t.TempDir()
	buildDataset(t, root, []fixtureImage{
		{name: "a.png", width: 16, height: 16, label: "0 0.5 0.5 0.01 0.01\n"},
		{name: "b.png", width: 16, height: 16, label: "0 0.5 0.5 0.5 0.5\n"},
	})
	out := t.TempDir()

	res, err := (&Filter{Threshold: 0.05}).Run(context.Background(), root, out)
	require.NoError(t, err)
	require.Len(t, res.Kept, 1)
	assert.FileExists(t, filepath.Join(out, dataset.ImagesDir, "a.png"))
	assert.FileExists(t, filepath.Join(out, dataset.LabelsDir, "a.txt"))
	assert.NoFileExists(t, filepath.Join(out, dataset.ImagesDir, "b.png"))
}

func TestFilter_SkipsMalformedLabels(t *testing.T) {
	root := t.TempDir()
	buildDataset(t, root, []fixtureImage{
		{name: "bad.png", width: 16, height: 16, label: "0 0.5 0.5 0.01 0.01\nnot a box\n"},
	})
	out := t.TempDir()

	res, err := (&Filter{Threshold: 0.05}).Run(context.Background(), root, out)
	require.NoError(t, err)
	assert.Empty(t, res.Kept)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, filepath.Join(root, "images", "bad.png"), res.Skipped[0].Pair.Image)
	assert.NoFileExists(t, filepath.Join(out, "images", "bad.png"))
}

func TestFilter_ToleratesExporterRounding(t *testing.T) {
	root := t.TempDir()
	buildDataset(t, root, []fixtureImage{
		{name: "edge.Png", width: 16, height: 16, label: "0 1.0000001 0.5 0.01 0.01\n"},
	})
	out := t.TempDir()

	res, err := (&Filter{Threshold: 0.05}).Run(context.Background(), root, out)
	require.NoError(t, err)
	assert.Empty(t, res.Skipped)
	require.Len(t, res.Kept, 1)
	assert.FileExists(t, filepath.Join(out, dataset.ImagesDir, "edge.Png"))
}

func TestFilter_Errors(t *testing.T) {
	ctx := context.Background()
	for _, th := range []float64{0, -0.1, 1.5} {
		_, err := (&Filter{Threshold: th}).Run(ctx, t.TempDir(), t.TempDir())
		assert.Error(t, err, "threshold %v", th)
	}

	_, err := (&Filter{Threshold: 0.05}).Run(ctx, t.TempDir(), t.TempDir())
	assert.Error(t, err, "dataset without images")
}
