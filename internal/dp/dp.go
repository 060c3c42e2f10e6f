// Package dp computes a minimum-FMA sequential elimination order for a
// Jacobian chain by classic interval dynamic programming over
// contiguous bracketings, the same way the matrix-chain-multiplication
// problem is solved. Its result seeds the outer search's upper bound
// before any branch-and-bound work begins.
package dp

import (
	"jcdp/internal/jchain"
	"jcdp/internal/jcseq"
	"jcdp/internal/op"
)

// Solve returns the minimum total-FMA sequential elimination sequence
// for chain, expressed as ACCUMULATION and MULTIPLICATION operations
// (matrix-free ELIMINATION is never used: the DP baseline always
// materialises every sub-Jacobian, matching the classic bracketing
// recurrence). chain is not mutated.
func Solve(chain *jchain.Chain) *jcseq.Sequence {
	n := chain.Length()
	if n == 0 {
		return jcseq.New()
	}

	// accCost[j] is the cheapest mode/FMA to accumulate the single
	// factor j directly.
	accCost := make([]int, n)
	accMode := make([]op.Mode, n)
	for j := 0; j < n; j++ {
		jac := chain.Jac(j, j)
		mode, cost := op.Tangent, jac.TangentFMA
		if (chain.AvailableMemory == 0 || chain.AvailableMemory >= jac.EdgesInDAG) && jac.AdjointFMA < cost {
			mode, cost = op.Adjoint, jac.AdjointFMA
		}
		accCost[j] = cost
		accMode[j] = mode
	}

	// cost[j][i] is the minimum FMA count to accumulate the contiguous
	// sub-range [i, j] (i <= j); split[j][i] records the last factor
	// folded in by the winning multiplication, or -1 for the i == j
	// base case.
	cost := make([][]int, n)
	split := make([][]int, n)
	for i := range cost {
		cost[i] = make([]int, n)
		split[i] = make([]int, n)
	}
	for i := 0; i < n; i++ {
		cost[i][i] = accCost[i]
		split[i][i] = -1
	}

	for width := 1; width < n; width++ {
		for i := 0; i+width < n; i++ {
			j := i + width
			best := -1
			bestK := i
			for k := i; k < j; k++ {
				left := chain.Jac(j, k+1)
				right := chain.Jac(k, i)
				multCost := left.M * right.M * right.N
				total := cost[j][k+1] + cost[k][i] + multCost
				if best == -1 || total < best {
					best = total
					bestK = k
				}
			}
			cost[j][i] = best
			split[j][i] = bestK
		}
	}

	seq := jcseq.New()
	var replay func(i, j int)
	replay = func(i, j int) {
		if i == j {
			seq.PushBack(op.Operation{
				Action: op.Accumulation,
				Mode:   accMode[i],
				J:      i, K: i, I: i,
				FMA: accCost[i],
			})
			return
		}
		k := split[j][i]
		replay(k+1, j)
		replay(i, k)
		left := chain.Jac(j, k+1)
		right := chain.Jac(k, i)
		seq.PushBack(op.Operation{
			Action: op.Multiplication,
			J:      j, K: k, I: i,
			FMA: left.M * right.M * right.N,
		})
	}
	replay(0, n-1)

	return seq
}
