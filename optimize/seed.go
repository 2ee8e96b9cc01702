package optimize

import "math/rand"

// DeriveSeed produces a per-(master, generation, task) seed so that every
// parallel fitness evaluation or per-individual mutation gets its own
// independent RNG stream, while the whole run stays reproducible from a
// single master seed. Using a shared *rand.Rand across goroutines would
// both race and make results depend on scheduling order; deriving a
// distinct seed per task avoids both.
//
// The mixing constants are arbitrary large odd numbers chosen only to
// spread bits; this is not a cryptographic hash.
func DeriveSeed(masterSeed int64, generation, taskIndex int) int64 {
	s := masterSeed
	s = s*6364136223846793005 + int64(generation)*1442695040888963407
	s = s*6364136223846793005 + int64(taskIndex)*1442695040888963407
	if s < 0 {
		s = -s
	}
	return s
}

// NewRNG returns a fresh *rand.Rand seeded deterministically from the
// (master, generation, task) triple.
func NewRNG(masterSeed int64, generation, taskIndex int) *rand.Rand {
	return rand.New(rand.NewSource(DeriveSeed(masterSeed, generation, taskIndex)))
}
