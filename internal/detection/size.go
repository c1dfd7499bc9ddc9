package detection

// The validator asks whether an object covers too little of the image area;
// the filter asks whether an object is narrow and short at the same time.
// These are different questions and must not be merged.

// SmallByArea reports whether the box's pixel area is strictly below
// minArea times the image area.
func SmallByArea(b BoundingBox, imageWidth, imageHeight int, minArea float64) bool {
	w, h := b.AbsoluteSize(imageWidth, imageHeight)
	return w*h < minArea*float64(imageWidth)*float64(imageHeight)
}

// SmallByDimensions reports whether both relative width and relative height
// are strictly below threshold.
func SmallByDimensions(b BoundingBox, threshold float64) bool {
	return b.Width < threshold && b.Height < threshold
}

// HasSmallObjects reports whether any box is small by dimensions.
func HasSmallObjects(boxes []BoundingBox, threshold float64) bool {
	for _, b := range boxes {
		if SmallByDimensions(b, threshold) {
			return true
		}
	}
	return false
}
