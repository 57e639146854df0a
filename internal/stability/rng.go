package stability

import "math/rand/v2"

// nudgeRand builds a generator keyed by the drop seed and a varying
// offset. A pure function of its inputs: replaying the same seed
// reproduces the same corrective sequence. Never an unseeded source.
func nudgeRand(seed int64, offset uint64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), offset))
}
