package jchain

import (
	"testing"

	"jcdp/internal/op"
)

func fourFactorChain(matrixFree bool) *Chain {
	c := New(4, matrixFree, 0)
	for j := 0; j < 4; j++ {
		for i := 0; i <= j; i++ {
			jac := c.Jac(j, i)
			jac.M = 8
			jac.N = 8
		}
		diag := c.Jac(j, j)
		diag.EdgesInDAG = 4
		diag.TangentFMA = 32
		diag.AdjointFMA = 40
	}
	return c
}

func TestAccumulationRejectsSecondApply(t *testing.T) {
	c := fourFactorChain(true)
	o := op.Operation{Action: op.Accumulation, Mode: op.Tangent, J: 0, K: 0, I: 0}
	if !c.Apply(o) {
		t.Fatalf("first accumulation of factor 0 should succeed")
	}
	if c.Apply(o) {
		t.Errorf("re-accumulating an already-accumulated factor must fail")
	}
}

func TestMultiplicationRequiresBothSidesAccumulatedAndUnused(t *testing.T) {
	c := fourFactorChain(true)
	acc := func(j int) op.Operation { return op.Operation{Action: op.Accumulation, Mode: op.Tangent, J: j, K: j, I: j} }

	mult := op.Operation{Action: op.Multiplication, J: 1, K: 0, I: 0}
	if c.Apply(mult) {
		t.Fatalf("multiplication must fail before its operands are accumulated")
	}

	c.Apply(acc(0))
	c.Apply(acc(1))
	if !c.Apply(mult) {
		t.Fatalf("multiplication should succeed once both single factors are accumulated")
	}
	if !c.Jac(1, 0).IsAccumulated {
		t.Errorf("multiplication must mark its result range accumulated")
	}
	if c.Apply(mult) {
		t.Errorf("operands are now used; re-applying the same multiplication must fail")
	}
}

func TestApplyRevertRoundTrip(t *testing.T) {
	c := fourFactorChain(true)
	before := c.Clone()

	o := op.Operation{Action: op.Accumulation, Mode: op.Tangent, J: 2, K: 2, I: 2}
	if !c.Apply(o) {
		t.Fatalf("accumulation should succeed")
	}
	c.Revert(o)

	if c.Jac(2, 2).IsAccumulated != before.Jac(2, 2).IsAccumulated {
		t.Errorf("Revert must restore exactly the state bits Apply set")
	}
}

func TestEliminationRequiresMatrixFree(t *testing.T) {
	c := fourFactorChain(false)
	c.Apply(op.Operation{Action: op.Accumulation, Mode: op.Tangent, J: 1, K: 1, I: 1})
	c.Apply(op.Operation{Action: op.Accumulation, Mode: op.Tangent, J: 0, K: 0, I: 0})

	elim := op.Operation{Action: op.Elimination, Mode: op.Tangent, J: 1, K: 0, I: 0}
	if c.Apply(elim) {
		t.Errorf("ELIMINATION must be rejected when the chain is not matrix-free")
	}
}

func TestTangentEliminationFoldsSingleFactorIntoExistingRange(t *testing.T) {
	c := fourFactorChain(true)
	// Accumulate factor 0 into [0,0], simulating a previously-extended
	// range [0,0] that a tangent elimination of factor 1 will extend to [0,1].
	c.Apply(op.Operation{Action: op.Accumulation, Mode: op.Tangent, J: 0, K: 0, I: 0})

	elim := op.Operation{Action: op.Elimination, Mode: op.Tangent, J: 1, K: 0, I: 0}
	if !c.Apply(elim) {
		t.Fatalf("tangent elimination should fold factor 1 into the accumulated [0,0] range")
	}
	if !c.Jac(1, 0).IsAccumulated {
		t.Errorf("elimination must mark its result range [0,1] accumulated")
	}
	if !c.Jac(0, 0).IsUsed {
		t.Errorf("elimination must mark the extended existing range used")
	}
}
