// Package jchain models the mutable state of a Jacobian chain during
// elimination search: which sub-Jacobians are accumulated, which have
// already been consumed by a multiplication, and their dimensions.
package jchain

import "jcdp/internal/op"

// Jacobian is the record held for each sub-range [i, j] of the chain.
// TangentFMA and AdjointFMA are only meaningful for single-factor
// entries (I == J): the cost of accumulating that factor's local
// Jacobian in forward or reverse mode. Multi-factor entries are only
// ever accumulated by a MULTIPLICATION or ELIMINATION operation, whose
// cost is derived from M/N/EdgesInDAG rather than stored here.
type Jacobian struct {
	M, N          int
	EdgesInDAG    int
	IsAccumulated bool
	IsUsed        bool

	TangentFMA int
	AdjointFMA int
}

// AccumulationFMA returns the cost of materialising this (single-factor)
// Jacobian directly, in the given mode.
func (j *Jacobian) AccumulationFMA(mode op.Mode) int {
	if mode == op.Tangent {
		return j.TangentFMA
	}
	return j.AdjointFMA
}

// EliminationFMA returns the cost of folding this (single-factor)
// Jacobian directly into a wider contraction of the given companion
// dimension, without materialising it on its own.
func (j *Jacobian) EliminationFMA(mode op.Mode, companion int) int {
	return j.AccumulationFMA(mode) * companion
}

// Chain is the mutable view of a Jacobian chain of n factors during
// search. Jacobians are stored in a triangular table indexed [j][i]
// with i <= j.
type Chain struct {
	n               int
	jac             [][]Jacobian
	MatrixFree      bool
	AvailableMemory int // 0 disables the memory gate
}

// New allocates a chain of n factors. Dimensions and costs must be
// populated by the caller (see internal/chaingen) before the chain is
// used in search.
func New(n int, matrixFree bool, availableMemory int) *Chain {
	jac := make([][]Jacobian, n)
	for j := range jac {
		jac[j] = make([]Jacobian, j+1)
	}
	return &Chain{n: n, jac: jac, MatrixFree: matrixFree, AvailableMemory: availableMemory}
}

// Length returns the number of original factors in the chain.
func (c *Chain) Length() int {
	return c.n
}

// Jac returns the Jacobian record for sub-range [i, j].
func (c *Chain) Jac(j, i int) *Jacobian {
	return &c.jac[j][i]
}

// Clone returns a deep copy, used at task-spawn boundaries so that
// concurrent search branches never share mutable state.
func (c *Chain) Clone() *Chain {
	out := &Chain{n: c.n, MatrixFree: c.MatrixFree, AvailableMemory: c.AvailableMemory}
	out.jac = make([][]Jacobian, len(c.jac))
	for i, row := range c.jac {
		out.jac[i] = append([]Jacobian(nil), row...)
	}
	return out
}

func (c *Chain) memoryOK(jac *Jacobian) bool {
	return c.AvailableMemory == 0 || c.AvailableMemory >= jac.EdgesInDAG
}

// Apply mutates chain state to realise o, returning false (and leaving
// state unchanged) when o's preconditions are not met.
func (c *Chain) Apply(o op.Operation) bool {
	switch o.Action {
	case op.Accumulation:
		jac := c.Jac(o.J, o.J)
		if jac.IsAccumulated {
			return false
		}
		if o.Mode == op.Adjoint && !c.memoryOK(jac) {
			return false
		}
		jac.IsAccumulated = true
		return true

	case op.Multiplication:
		left := c.Jac(o.J, o.K+1)
		right := c.Jac(o.K, o.I)
		if !left.IsAccumulated || left.IsUsed || !right.IsAccumulated || right.IsUsed {
			return false
		}
		left.IsUsed = true
		right.IsUsed = true
		c.Jac(o.J, o.I).IsAccumulated = true
		return true

	case op.Elimination:
		if !c.MatrixFree {
			return false
		}
		var factor, existing *Jacobian
		if o.Mode == op.Tangent {
			factor = c.Jac(o.J, o.J)
			existing = c.Jac(o.K, o.I)
		} else {
			factor = c.Jac(o.K, o.I) // K == I
			existing = c.Jac(o.J, o.K+1)
			if !c.memoryOK(factor) {
				return false
			}
		}
		result := c.Jac(o.J, o.I)
		if factor.IsAccumulated || !existing.IsAccumulated || existing.IsUsed || result.IsAccumulated {
			return false
		}
		existing.IsUsed = true
		result.IsAccumulated = true
		return true
	}
	return false
}

// Revert undoes exactly the state bits set by the paired Apply.
func (c *Chain) Revert(o op.Operation) {
	switch o.Action {
	case op.Accumulation:
		c.Jac(o.J, o.J).IsAccumulated = false

	case op.Multiplication:
		c.Jac(o.J, o.K+1).IsUsed = false
		c.Jac(o.K, o.I).IsUsed = false
		c.Jac(o.J, o.I).IsAccumulated = false

	case op.Elimination:
		if o.Mode == op.Tangent {
			c.Jac(o.K, o.I).IsUsed = false
		} else {
			c.Jac(o.J, o.K+1).IsUsed = false
		}
		c.Jac(o.J, o.I).IsAccumulated = false
	}
}
