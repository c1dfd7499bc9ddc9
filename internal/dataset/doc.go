// Package dataset models a YOLO-layout detection dataset on disk and
// implements the curation stages that operate on image/label pairs: pair
// collection across source roots, content-based deduplication, randomized
// train/val/test splitting, and the data.yaml manifest.
//
// # Layout
//
// A source root or a materialized split contains two sibling directories:
//
//	<root>/images/<stem>.{jpg,jpeg,png}
//	<root>/labels/<stem>.txt
//
// A curated dataset holds train/, val/ and test/ splits of that shape plus a
// data.yaml manifest at its top level.
//
// Pairs are path views only. Nothing in this package modifies a source file.
package dataset
