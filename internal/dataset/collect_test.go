package dataset

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollect(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, map[string]string{
		"a.jpg":  "a",
		"b.jpeg": "b",
		"c.png":  "c",
		"d.PNG":  "d",
		"e.gif":  "e",
		"f.jpg":  "f",
	}, "f.jpg")

	res, err := Collect([]string{root}, nil)
	require.NoError(t, err)

	var images []string
	for _, p := range res.Pairs {
		images = append(images, filepath.Base(p.Image))
		assert.Equal(t, filepath.Join(root, LabelsDir, LabelName(p.Image)), p.Label)
	}
	sort.Strings(images)
	assert.Equal(t, []string{"a.jpg", "b.jpeg", "c.png", "d.PNG"}, images)
	assert.Equal(t, []string{filepath.Join(root, ImagesDir, "f.jpg")}, res.Orphans)
	assert.Empty(t, res.SkippedRoots)
}

func TestCollect_MixedCaseExtensions(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, map[string]string{
		"a.Jpg":  "a",
		"b.jpg":  "b",
		"c.pNg":  "c",
		"d.JpEg": "d",
		"e.Gif":  "e",
	}, "d.JpEg")

	res, err := Collect([]string{root}, nil)
	require.NoError(t, err)

	var images []string
	for _, p := range res.Pairs {
		images = append(images, filepath.Base(p.Image))
	}
	assert.Equal(t, []string{"a.Jpg", "b.jpg", "c.pNg"}, images)
	assert.Equal(t, []string{filepath.Join(root, ImagesDir, "d.JpEg")}, res.Orphans)
}

func TestCollect_OrphanLabels(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, map[string]string{"a.jpg": "a", "b.png": "b"}, "b.png")
	for _, name := range []string{"ghost.txt", "z.txt", "notes.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, LabelsDir, name), []byte("0 0.5 0.5 0.1 0.1\n"), 0o644))
	}

	res, err := Collect([]string{root}, nil)
	require.NoError(t, err)
	require.Len(t, res.Pairs, 1)
	assert.Equal(t, []string{filepath.Join(root, ImagesDir, "b.png")}, res.Orphans)
	assert.Equal(t, []string{
		filepath.Join(root, LabelsDir, "ghost.txt"),
		filepath.Join(root, LabelsDir, "z.txt"),
	}, res.OrphanLabels)
}

func TestListImages_CaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.PNG", "a.Jpeg", "c.txt", "d.jpg.bak"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	names, err := ListImages(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.Jpeg", "b.PNG"}, names)
}

func TestCollect_SkipsIncompleteRoots(t *testing.T) {
	good := t.TempDir()
	writeSource(t, good, map[string]string{"x.jpg": "x"})

	noLabels := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(noLabels, ImagesDir), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(noLabels, ImagesDir, "y.jpg"), []byte("y"), 0o644))

	missing := filepath.Join(t.TempDir(), "does-not-exist")

	res, err := Collect([]string{noLabels, good, missing}, nil)
	require.NoError(t, err)
	require.Len(t, res.Pairs, 1)
	assert.Equal(t, filepath.Join(good, ImagesDir, "x.jpg"), res.Pairs[0].Image)
	assert.Equal(t, []string{noLabels, missing}, res.SkippedRoots)
}

func TestCollect_MultipleRootsConcatenate(t *testing.T) {
	r1 := t.TempDir()
	r2 := t.TempDir()
	writeSource(t, r1, map[string]string{"a.jpg": "1", "b.jpg": "2"})
	writeSource(t, r2, map[string]string{"a.jpg": "3"})

	res, err := Collect([]string{r1, r2}, nil)
	require.NoError(t, err)
	assert.Len(t, res.Pairs, 3)
}

func TestCollect_NoRoots(t *testing.T) {
	_, err := Collect(nil, nil)
	assert.Error(t, err)
}

func TestCollect_IgnoresDirectoriesWithImageNames(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, map[string]string{"a.jpg": "a"})
	require.NoError(t, os.MkdirAll(filepath.Join(root, ImagesDir, "nested.jpg"), 0o755))

	res, err := Collect([]string{root}, nil)
	require.NoError(t, err)
	assert.Len(t, res.Pairs, 1)
	assert.Empty(t, res.Orphans)
}

func TestIsImageAndLabelName(t *testing.T) {
	assert.True(t, IsImage("x.jpg"))
	assert.True(t, IsImage("x.JPEG"))
	assert.True(t, IsImage("dir/x.png"))
	assert.False(t, IsImage("x.gif"))
	assert.False(t, IsImage("x.txt"))

	assert.Equal(t, "photo.txt", LabelName("/data/images/photo.jpeg"))
	assert.Equal(t, "a.b.txt", LabelName("a.b.png"))
}

func TestDiscoverSplits(t *testing.T) {
	curated := t.TempDir()
	for _, s := range []string{SplitTrain, SplitTest} {
		require.NoError(t, os.MkdirAll(filepath.Join(curated, s, ImagesDir), 0o755))
	}
	splits, err := DiscoverSplits(curated)
	require.NoError(t, err)
	require.Len(t, splits, 2)
	assert.Equal(t, SplitTrain, splits[0].Name)
	assert.Equal(t, SplitTest, splits[1].Name)
	assert.Equal(t, filepath.Join(SplitTest, ImagesDir, "a.jpg"), splits[1].RelImage("a.jpg"))

	flat := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(flat, ImagesDir), 0o755))
	splits, err = DiscoverSplits(flat)
	require.NoError(t, err)
	require.Len(t, splits, 1)
	assert.Equal(t, "", splits[0].Name)
	assert.Equal(t, filepath.Join(ImagesDir, "a.jpg"), splits[0].RelImage("a.jpg"))

	_, err = DiscoverSplits(t.TempDir())
	assert.Error(t, err)
}
