// Package audit inspects a materialized YOLO dataset after curation.
//
// Two independent passes are provided and they intentionally use different
// notions of "small":
//
//   - Validator flags boxes whose pixel area is below a fraction of the image
//     area, and reports images that have no label file at all.
//   - Filter keeps pairs whose label contains at least one box that is below
//     the threshold in both relative width and relative height, and copies
//     them into a new dataset tree. Unlabeled images are silently ignored.
//
// Both accept the curated train/val/test layout or a flat images/labels
// directory, and neither modifies the dataset they read.
package audit
