package dataset

import (
	"context"
	"log/slog"

	"github.com/ironsheep/dataset-curator/internal/fileutil"
	"github.com/ironsheep/dataset-curator/internal/logging"
	"github.com/ironsheep/dataset-curator/internal/workpool"
)

// Duplicate is a pair dropped because an earlier pair had the same image
// content.
type Duplicate struct {
	Pair     Pair `json:"pair"`
	Original Pair `json:"original"`
}

// DedupResult is the outcome of Deduplicate. Unique and Digests are
// parallel slices. Failed holds pairs whose image could not be read; they are
// neither unique nor duplicates.
type DedupResult struct {
	Unique     []Pair
	Digests    []fileutil.Digest
	Duplicates []Duplicate
	Failed     []PairError
}

// DedupOptions tunes Deduplicate.
type DedupOptions struct {
	Workers int
	Logger  *slog.Logger
}

type hashOutcome struct {
	digest fileutil.Digest
	err    error
}

// Deduplicate keeps the first pair, in input order, for every distinct image
// digest. Hashing runs in parallel; the keep/drop decisions and diagnostics
// follow input order so the outcome is deterministic.
func Deduplicate(ctx context.Context, pairs []Pair, opts DedupOptions) (*DedupResult, error) {
	logger := logging.OrNop(opts.Logger)

	hashes, err := workpool.Map(ctx, pairs, opts.Workers, func(_ context.Context, p Pair) hashOutcome {
		d, err := fileutil.HashFile(p.Image)
		return hashOutcome{digest: d, err: err}
	})
	if err != nil {
		return nil, err
	}

	res := &DedupResult{}
	seen := make(map[fileutil.Digest]Pair, len(pairs))
	for i, p := range pairs {
		h := hashes[i]
		if h.err != nil {
			logger.Error("cannot hash image, skipping", "image", p.Image, "error", h.err)
			res.Failed = append(res.Failed, PairError{Pair: p, Err: h.err})
			continue
		}
		if orig, dup := seen[h.digest]; dup {
			logger.Warn("removed duplicate", "image", p.Image, "original", orig.Image)
			res.Duplicates = append(res.Duplicates, Duplicate{Pair: p, Original: orig})
			continue
		}
		seen[h.digest] = p
		res.Unique = append(res.Unique, p)
		res.Digests = append(res.Digests, h.digest)
	}
	return res, nil
}
