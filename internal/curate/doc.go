// Package curate runs one curation pass end to end.
//
// A run collects pairs from every configured source root, drops duplicate
// images by content, shuffles and splits the survivors, resizes each split
// into a new dataset_<YYYYMMDD_HHMMSS> directory under the output base, and
// finally writes data.yaml. Stages run one after another; hashing and
// resizing fan out across workers inside their stage.
//
// Runs against the same output base are serialized with a lock file, and a
// run refuses to reuse an existing dataset directory. Source directories are
// only ever read.
package curate
