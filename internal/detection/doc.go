// Package detection models YOLO object annotations.
//
// A label file holds one object per line as
//
//	<class_id> <center_x> <center_y> <width> <height>
//
// with all four geometry values relative to the image size. ParseLabels keeps
// well-formed boxes and reports malformed lines with their 1-based line
// number instead of failing the whole file.
//
// Taxonomy maps class ids to names. SmallByArea and SmallByDimensions are
// the two small-object predicates: the first compares pixel area with a
// fraction of the image area, the second requires both relative width and
// height to fall below a threshold. Both comparisons are strict.
package detection
