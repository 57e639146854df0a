package board

const (
	basePegRestitution = 0.55
	basePegFriction    = 0.05
	restitutionJitter  = 0.05
	frictionJitter     = 0.02
)

// pegJitter derives a small per-peg restitution/friction perturbation
// from the lattice indices. A pure function of (row, col): the same peg
// always bounces the same way, but no two neighbors are identical, which
// breaks up perfectly symmetric bounce artifacts.
func pegJitter(row, col int) (restitution, friction float64) {
	h := splitmix64(uint64(row)<<32 | uint64(uint32(col)))
	// two independent values in [-1, 1)
	a := float64(int64(h>>11))/float64(1<<52) - 1
	h = splitmix64(h)
	b := float64(int64(h>>11))/float64(1<<52) - 1

	return basePegRestitution + a*restitutionJitter, basePegFriction + b*frictionJitter
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
