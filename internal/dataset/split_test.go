package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatios_Validate(t *testing.T) {
	tests := []struct {
		name    string
		r       Ratios
		wantErr bool
	}{
		{"standard", Ratios{0.7, 0.2, 0.1}, false},
		{"all train", Ratios{1, 0, 0}, false},
		{"thirds", Ratios{1.0 / 3, 1.0 / 3, 1.0 / 3}, false},
		{"sum below one", Ratios{0.7, 0.2, 0.05}, true},
		{"sum above one", Ratios{0.7, 0.3, 0.1}, true},
		{"negative", Ratios{1.1, -0.1, 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSplit_TenPairsSevenTwoOne(t *testing.T) {
	s := Split(makePairs(10), Ratios{0.7, 0.2, 0.1}, NewRand(42))
	assert.Len(t, s.Train, 7)
	assert.Len(t, s.Val, 2)
	assert.Len(t, s.Test, 1)
}

func TestSplit_PartitionCompleteness(t *testing.T) {
	ratios := []Ratios{
		{0.7, 0.2, 0.1},
		{0.8, 0.1, 0.1},
		{0.5, 0.5, 0},
		{0, 0, 1},
		{0.29, 0.36, 0.35},
		{1.0 / 3, 1.0 / 3, 1.0 / 3},
	}
	for _, r := range ratios {
		for _, n := range []int{0, 1, 2, 7, 10, 99, 100, 1001} {
			input := makePairs(n)
			s := Split(input, r, NewRand(uint64(n)+1))

			wantTrain, wantVal, wantTest := r.Sizes(n)
			require.Len(t, s.Train, wantTrain, "ratios %+v n=%d", r, n)
			require.Len(t, s.Val, wantVal, "ratios %+v n=%d", r, n)
			require.Len(t, s.Test, wantTest, "ratios %+v n=%d", r, n)
			require.Equal(t, n, s.Len())

			seen := map[Pair]int{}
			for _, name := range SplitNames {
				for _, p := range s.ByName(name) {
					seen[p]++
				}
			}
			require.Len(t, seen, n)
			for _, p := range input {
				require.Equal(t, 1, seen[p], "pair %v", p)
			}
		}
	}
}

func TestRatios_Sizes(t *testing.T) {
	train, val, test := Ratios{0.29, 0.36, 0.35}.Sizes(100)
	assert.Equal(t, 29, train)
	assert.Equal(t, 36, val)
	assert.Equal(t, 35, test)

	train, val, test = Ratios{0.7, 0.2, 0.1}.Sizes(1)
	assert.Equal(t, 0, train)
	assert.Equal(t, 0, val)
	assert.Equal(t, 1, test)
}

func TestSplit_SeedIsReproducible(t *testing.T) {
	input := makePairs(25)
	a := Split(input, Ratios{0.6, 0.2, 0.2}, NewRand(7))
	b := Split(input, Ratios{0.6, 0.2, 0.2}, NewRand(7))
	assert.Equal(t, a, b)

	c := Split(input, Ratios{0.6, 0.2, 0.2}, NewRand(8))
	assert.NotEqual(t, a.Train, c.Train)
}

func TestSplit_DoesNotModifyInput(t *testing.T) {
	input := makePairs(20)
	orig := append([]Pair(nil), input...)
	Split(input, Ratios{0.5, 0.25, 0.25}, NewRand(3))
	assert.Equal(t, orig, input)
}

func TestSplit_NilRand(t *testing.T) {
	s := Split(makePairs(4), Ratios{0.5, 0.5, 0}, nil)
	assert.Equal(t, 4, s.Len())
}
