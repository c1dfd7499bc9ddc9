package dataset

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

const ratioTolerance = 1e-6

// floorSlack absorbs float error such as 0.29*100 = 28.999999999999996.
const floorSlack = 1e-9

// Ratios are the train/val/test fractions of a split.
type Ratios struct {
	Train float64 `json:"train"`
	Val   float64 `json:"val"`
	Test  float64 `json:"test"`
}

// Validate checks that each ratio is within [0,1] and that they sum to 1.
func (r Ratios) Validate() error {
	for _, v := range []struct {
		name  string
		value float64
	}{{"train", r.Train}, {"val", r.Val}, {"test", r.Test}} {
		if math.IsNaN(v.value) || v.value < 0 || v.value > 1 {
			return fmt.Errorf("split ratio %s=%v must be within [0,1]", v.name, v.value)
		}
	}
	if sum := r.Train + r.Val + r.Test; math.Abs(sum-1) > ratioTolerance {
		return fmt.Errorf("split ratios must sum to 1, got %v", sum)
	}
	return nil
}

// Sizes returns the split sizes for n items. Train and val are floored;
// test takes the remainder.
func (r Ratios) Sizes(n int) (train, val, test int) {
	train = int(math.Floor(float64(n)*r.Train + floorSlack))
	val = int(math.Floor(float64(n)*r.Val + floorSlack))
	if train > n {
		train = n
	}
	if train+val > n {
		val = n - train
	}
	return train, val, n - train - val
}

// Splits holds the three disjoint partitions.
type Splits struct {
	Train []Pair
	Val   []Pair
	Test  []Pair
}

// ByName returns the partition for a split name.
func (s Splits) ByName(name string) []Pair {
	switch name {
	case SplitTrain:
		return s.Train
	case SplitVal:
		return s.Val
	case SplitTest:
		return s.Test
	}
	return nil
}

// Len returns the total number of pairs across all partitions.
func (s Splits) Len() int {
	return len(s.Train) + len(s.Val) + len(s.Test)
}

// NewRand returns a PCG source seeded with seed, or with the clock when seed
// is zero.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Split shuffles a copy of pairs with rng and cuts it per the ratios. The
// input slice is not modified. A nil rng uses a clock-seeded source.
func Split(pairs []Pair, r Ratios, rng *rand.Rand) Splits {
	if rng == nil {
		rng = NewRand(0)
	}
	shuffled := make([]Pair, len(pairs))
	copy(shuffled, pairs)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	train, val, _ := r.Sizes(len(shuffled))
	return Splits{
		Train: shuffled[:train:train],
		Val:   shuffled[train : train+val : train+val],
		Test:  shuffled[train+val:],
	}
}
