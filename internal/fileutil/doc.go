// Package fileutil holds the file primitives shared by curation and audits:
// streamed content digests for deduplication, and temp-file-plus-rename
// writes so no reader ever sees a partially written image, label, or
// manifest.
package fileutil
