package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeSource creates <root>/images and <root>/labels and writes one image per
// entry in images. A label is written for every image except those listed in
// orphans.
func writeSource(t *testing.T, root string, images map[string]string, orphans ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ImagesDir), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, LabelsDir), 0o755))

	skip := map[string]bool{}
	for _, o := range orphans {
		skip[o] = true
	}
	for name, content := range images {
		require.NoError(t, os.WriteFile(filepath.Join(root, ImagesDir, name), []byte(content), 0o644))
		if skip[name] {
			continue
		}
		require.NoError(t, os.WriteFile(filepath.Join(root, LabelsDir, LabelName(name)), []byte("0 0.5 0.5 0.1 0.1\n"), 0o644))
	}
}

func makePairs(n int) []Pair {
	pairs := make([]Pair, n)
	for i := range pairs {
		pairs[i] = Pair{
			Image: filepath.Join("images", fmt.Sprintf("img_%04d.jpg", i)),
			Label: filepath.Join("labels", fmt.Sprintf("img_%04d.txt", i)),
		}
	}
	return pairs
}
