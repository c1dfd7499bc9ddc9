package curate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/ironsheep/dataset-curator/internal/config"
	"github.com/ironsheep/dataset-curator/internal/dataset"
	"github.com/ironsheep/dataset-curator/internal/imaging"
	"github.com/ironsheep/dataset-curator/internal/logging"
	"github.com/ironsheep/dataset-curator/internal/workpool"
)

const (
	// LockName is the lock file created in the output base during a run.
	LockName = ".curator.lock"

	dirPrefix    = "dataset_"
	dirTimestamp = "20060102_150405"
)

// ErrLocked is returned when another run holds the output base lock.
var ErrLocked = errors.New("another curation run is using the output directory")

// Options carries the collaborators of a run. All fields are optional.
type Options struct {
	Logger *slog.Logger

	// Now names the output directory; defaults to time.Now.
	Now func() time.Time

	NewProgress workpool.ProgressFunc
}

// SplitSummary reports one split of the curated dataset.
type SplitSummary struct {
	Name     string `json:"name"`
	Assigned int    `json:"assigned"`
	Written  int    `json:"written"`
	Skipped  int    `json:"skipped"`
}

// Result summarizes a completed run.
type Result struct {
	RunID     string `json:"run_id"`
	OutputDir string `json:"output_dir"`

	// Seed is the shuffle seed actually used, so a run with seed = 0 can be
	// reproduced.
	Seed uint64 `json:"seed"`

	Collected    int      `json:"collected"`
	Orphans      int      `json:"orphans"`
	OrphanLabels int      `json:"orphan_labels"`
	SkippedRoots []string `json:"skipped_roots,omitempty"`
	Duplicates   int      `json:"duplicates"`
	HashFailures int      `json:"hash_failures"`

	Splits   []SplitSummary    `json:"splits"`
	Manifest *dataset.Manifest `json:"manifest"`
}

// Written returns the number of pairs materialized across all splits.
func (r *Result) Written() int {
	total := 0
	for _, s := range r.Splits {
		total += s.Written
	}
	return total
}

// Run executes collect, dedupe, split, normalize, and manifest in order. The
// config must already be valid. Per-pair problems are logged and counted;
// the returned error is reserved for conditions that stop the run.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	runID := uuid.NewString()
	logger := logging.OrNop(opts.Logger).With("run_id", runID)

	if err := os.MkdirAll(cfg.OutputBase, 0o755); err != nil {
		return nil, fmt.Errorf("create output base: %w", err)
	}
	lock := flock.New(filepath.Join(cfg.OutputBase, LockName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, cfg.OutputBase)
	}
	defer func() { _ = lock.Unlock() }()

	outDir := filepath.Join(cfg.OutputBase, dirPrefix+now().Format(dirTimestamp))
	if err := os.Mkdir(outDir, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("output directory %s already exists", outDir)
		}
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	seed := uint64(cfg.Seed)
	if seed == 0 {
		seed = rand.Uint64()
	}
	res := &Result{RunID: runID, OutputDir: outDir, Seed: seed}
	logger.Info("curation started",
		"output", outDir,
		"sources", len(cfg.InputFolders),
		"seed", seed)

	collected, err := dataset.Collect(cfg.InputFolders, logger)
	if err != nil {
		return nil, err
	}
	res.Collected = len(collected.Pairs)
	res.Orphans = len(collected.Orphans)
	res.OrphanLabels = len(collected.OrphanLabels)
	res.SkippedRoots = collected.SkippedRoots
	if len(collected.Pairs) == 0 {
		logger.Warn("no image/label pairs found in any source")
	}

	deduped, err := dataset.Deduplicate(ctx, collected.Pairs, dataset.DedupOptions{
		Workers: cfg.Workers,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	res.Duplicates = len(deduped.Duplicates)
	res.HashFailures = len(deduped.Failed)

	splits := dataset.Split(deduped.Unique, cfg.Ratios(), dataset.NewRand(seed))
	logger.Info("dataset split",
		"train", len(splits.Train),
		"val", len(splits.Val),
		"test", len(splits.Test))

	normalizer := &imaging.Normalizer{
		Width:       cfg.Width(),
		Height:      cfg.Height(),
		Filter:      cfg.ResizeFilter,
		JPEGQuality: cfg.JPEGQuality,
		Workers:     cfg.Workers,
		Logger:      logger,
		NewProgress: opts.NewProgress,
	}
	for _, name := range dataset.SplitNames {
		pairs := splits.ByName(name)
		normalized, err := normalizer.NormalizeSplit(ctx, filepath.Join(outDir, name), pairs)
		if err != nil {
			return nil, fmt.Errorf("normalize %s: %w", name, err)
		}
		res.Splits = append(res.Splits, SplitSummary{
			Name:     name,
			Assigned: len(pairs),
			Written:  len(normalized.Written),
			Skipped:  len(normalized.Skipped),
		})
	}

	manifest := dataset.NewManifest(cfg.ClassNames)
	if err := dataset.WriteManifest(outDir, manifest); err != nil {
		return nil, err
	}
	res.Manifest = &manifest

	logger.Info("curation complete",
		"output", outDir,
		"collected", res.Collected,
		"duplicates", res.Duplicates,
		"written", res.Written())
	return res, nil
}
