package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveSeed_Deterministic(t *testing.T) {
	a := DeriveSeed(42, 3, 7)
	b := DeriveSeed(42, 3, 7)
	assert.Equal(t, a, b)
}

func TestDeriveSeed_VariesByGenerationAndTask(t *testing.T) {
	base := DeriveSeed(42, 0, 0)
	byGen := DeriveSeed(42, 1, 0)
	byTask := DeriveSeed(42, 0, 1)

	assert.NotEqual(t, base, byGen)
	assert.NotEqual(t, base, byTask)
	assert.NotEqual(t, byGen, byTask)
}

func TestDeriveSeed_NonNegative(t *testing.T) {
	for gen := 0; gen < 20; gen++ {
		for task := 0; task < 20; task++ {
			s := DeriveSeed(-999, gen, task)
			assert.GreaterOrEqual(t, s, int64(0))
		}
	}
}

func TestNewRNG_ReproducesSameSequence(t *testing.T) {
	rng1 := NewRNG(1, 2, 3)
	rng2 := NewRNG(1, 2, 3)

	for i := 0; i < 10; i++ {
		assert.Equal(t, rng1.Float64(), rng2.Float64())
	}
}
