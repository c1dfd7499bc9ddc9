package detection

import "fmt"

// Taxonomy is the ordered class-name list; a class id indexes into it.
type Taxonomy []string

// Name returns the class name for id, or ErrClassOutOfRange.
func (t Taxonomy) Name(id int) (string, error) {
	if id < 0 || id >= len(t) {
		return "", fmt.Errorf("%w: %d (taxonomy has %d classes)", ErrClassOutOfRange, id, len(t))
	}
	return t[id], nil
}
