package seqopt

import (
	"jcdp/internal/jchain"
	"jcdp/internal/op"
)

// elimCandidate holds the two ways (tangent/left, adjoint/right) to
// consume the most recently produced sub-Jacobian. Either side may be
// nil when that option is unavailable.
type elimCandidate struct {
	Left  *op.Operation
	Right *op.Operation
}

// candidateList is the append-only, pop-able list E of pending
// elimination candidates threaded through the DFS alongside the
// sequence and chain state.
type candidateList struct {
	rows []elimCandidate
}

func (c *candidateList) push(row elimCandidate) {
	c.rows = append(c.rows, row)
}

func (c *candidateList) pop() {
	c.rows = c.rows[:len(c.rows)-1]
}

func (c *candidateList) clone() *candidateList {
	return &candidateList{rows: append([]elimCandidate(nil), c.rows...)}
}

// cheapestAccumulation picks tangent vs adjoint mode for accumulating
// factor j by raw FMA count, gated by the chain's memory cap. The choice
// is fixed per j before the search descends into Phase B; the search
// never revisits mode per accumulation.
func cheapestAccumulation(chain *jchain.Chain, j int) op.Operation {
	jac := chain.Jac(j, j)
	result := op.Operation{
		Action: op.Accumulation,
		Mode:   op.Tangent,
		J:      j, K: j, I: j,
		FMA: jac.TangentFMA,
	}
	if chain.AvailableMemory == 0 || chain.AvailableMemory >= jac.EdgesInDAG {
		if jac.AdjointFMA < result.FMA {
			result.Mode = op.Adjoint
			result.FMA = jac.AdjointFMA
		}
	}
	return result
}

// pushPossibleEliminations derives the candidate row produced by an
// operation that just accumulated sub-range [opI, opJ]: the left
// (forward) option extends the range by one factor on the right, the
// right (backward) option extends it by one factor on the left. Each
// option is a MULTIPLICATION when a matching accumulated-and-unused
// sub-Jacobian already exists, or (when matrix-free) an ELIMINATION that
// folds in the next single factor directly.
func pushPossibleEliminations(chain *jchain.Chain, opJ, opI int) elimCandidate {
	var row elimCandidate
	n := chain.Length()

	if opJ < n-1 {
		k, i := opJ, opI
		kiJac := chain.Jac(k, i)

		found := -1
		for j := n - 1; j >= k+1; j-- {
			jkJac := chain.Jac(j, k+1)
			if jkJac.IsAccumulated && !jkJac.IsUsed {
				found = j
				break
			}
		}

		if found != -1 {
			jkJac := chain.Jac(found, k+1)
			row.Left = &op.Operation{
				Action: op.Multiplication,
				J:      found, K: k, I: i,
				FMA: jkJac.M * kiJac.M * kiJac.N,
			}
		} else if chain.MatrixFree {
			factor := chain.Jac(k+1, k+1)
			row.Left = &op.Operation{
				Action: op.Elimination,
				Mode:   op.Tangent,
				J:      k + 1, K: k, I: i,
				FMA: factor.EliminationFMA(op.Tangent, kiJac.N),
			}
		}
	}

	if opI > 0 {
		k, j := opI-1, opJ
		jkJac := chain.Jac(j, k+1)

		found := -1
		for i := 0; i <= k; i++ {
			kiJac := chain.Jac(k, i)
			if kiJac.IsAccumulated && !kiJac.IsUsed {
				found = i
				break
			}
		}

		if found != -1 {
			kiJac := chain.Jac(k, found)
			row.Right = &op.Operation{
				Action: op.Multiplication,
				J:      j, K: k, I: found,
				FMA: jkJac.M * kiJac.M * kiJac.N,
			}
		} else if chain.MatrixFree {
			factor := chain.Jac(k, k)
			if chain.AvailableMemory == 0 || chain.AvailableMemory >= factor.EdgesInDAG {
				row.Right = &op.Operation{
					Action: op.Elimination,
					Mode:   op.Adjoint,
					J:      j, K: k, I: k,
					FMA: factor.EliminationFMA(op.Adjoint, jkJac.M),
				}
			}
		}
	}

	return row
}
