package fileutil

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Digest is the 128-bit content fingerprint of a file.
type Digest [md5.Size]byte

// String returns the lowercase hex form of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// HashReader fingerprints everything readable from r.
func HashReader(r io.Reader) (Digest, error) {
	var d Digest
	h := md5.New()
	if _, err := io.Copy(h, r); err != nil {
		return d, err
	}
	copy(d[:], h.Sum(nil))
	return d, nil
}

// HashFile streams the file at path through HashReader. The content is never
// held in memory as a whole.
func HashFile(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	d, err := HashReader(f)
	if err != nil {
		return Digest{}, fmt.Errorf("read %s: %w", path, err)
	}
	return d, nil
}
