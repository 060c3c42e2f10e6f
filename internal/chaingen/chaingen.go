// Package chaingen builds randomised jchain.Chain instances for testing
// and batch benchmarking, the way internal/flowshop.RandomInstance
// builds randomised flow-shop instances.
package chaingen

import (
	"math/rand"

	"jcdp/internal/jchain"
)

// Params bounds the random chain generated by Random: n factors with
// per-link dimensions in [MinDim, MaxDim] and a per-factor DAG edge
// count in [MinEdges, MaxEdges] driving both cost formulas below.
type Params struct {
	Length             int
	MinDim, MaxDim     int
	MinEdges, MaxEdges int
	MatrixFree         bool
	AvailableMemory    int
}

// Random returns a chain of Params.Length factors with dimensions
// m_i x n_i (n_i = m_{i-1}) drawn uniformly from [MinDim, MaxDim], and
// per-factor tangent/adjoint accumulation costs derived from a random
// edges-in-DAG count: tangent cost scales with the number of inputs
// propagated (edges * N), adjoint with the number of outputs (edges *
// M), matching the standard forward/reverse-mode cost asymmetry.
func Random(p Params, rng *rand.Rand) *jchain.Chain {
	if rng == nil {
		panic("chaingen: nil random source")
	}
	if p.Length <= 0 {
		panic("chaingen: length must be > 0")
	}
	if p.MinDim <= 0 || p.MaxDim < p.MinDim {
		panic("chaingen: invalid dimension bounds")
	}
	if p.MinEdges <= 0 || p.MaxEdges < p.MinEdges {
		panic("chaingen: invalid edge bounds")
	}

	n := p.Length
	dims := make([]int, n+1)
	for i := range dims {
		dims[i] = uniform(rng, p.MinDim, p.MaxDim)
	}

	c := jchain.New(n, p.MatrixFree, p.AvailableMemory)
	for j := 0; j < n; j++ {
		for i := 0; i <= j; i++ {
			jac := c.Jac(j, i)
			jac.M = dims[j+1]
			jac.N = dims[i]
		}
	}
	for i := 0; i < n; i++ {
		jac := c.Jac(i, i)
		edges := uniform(rng, p.MinEdges, p.MaxEdges)
		jac.EdgesInDAG = edges
		jac.TangentFMA = edges * jac.N
		jac.AdjointFMA = edges * jac.M
	}

	return c
}

func uniform(rng *rand.Rand, lo, hi int) int {
	span := hi - lo + 1
	if span <= 1 {
		return lo
	}
	return lo + rng.Intn(span)
}
