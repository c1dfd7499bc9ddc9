// Package imaging handles the pixel side of dataset curation.
//
// Probe reads width, height, and format from an image header without
// decoding pixel data; DimensionCache memoizes those probes keyed by path,
// size, and modification time, so a file rewritten in place is probed again.
//
// Normalizer resizes every pair of a split to one fixed resolution and copies
// its label verbatim. The resize stretches rather than letterboxes, which keeps
// normalized YOLO coordinates valid without rewriting any label.
//
// CropBox cuts a single labeled object, with optional padding, out of an
// image for visual review.
//
// Pixel coordinates are 0-based with the origin at the top-left corner.
// Rectangles include their top-left corner and exclude the bottom-right one.
package imaging
