package optimize

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCumulativeChoice_SkewsTowardHigherWeight(t *testing.T) {
	c := NewCumulativeChoice([]float64{1, 0, 99})
	rng := rand.New(rand.NewSource(1))

	counts := map[int]int{}
	for i := 0; i < 1000; i++ {
		counts[c.Pick(rng)]++
	}

	assert.Equal(t, 0, counts[1], "zero-weight index must never be picked")
	assert.Greater(t, counts[2], counts[0])
}

func TestCumulativeChoice_AllZeroReturnsNegativeOne(t *testing.T) {
	c := NewCumulativeChoice([]float64{0, 0, 0})
	rng := rand.New(rand.NewSource(1))
	assert.Equal(t, -1, c.Pick(rng))
}

func TestCumulativeChoice_SingleWeight(t *testing.T) {
	c := NewCumulativeChoice([]float64{5})
	rng := rand.New(rand.NewSource(1))
	assert.Equal(t, 0, c.Pick(rng))
}
