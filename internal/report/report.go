// Package report renders solved sequences as text and Graphviz DOT, and
// writes the batch benchmark CSVs, the way the source's
// jcdp::util::write_dot and src/jcdp_batch.cpp do.
package report

import (
	"fmt"
	"io"

	"jcdp/internal/jcseq"
	"jcdp/internal/op"
)

// WriteSchedule writes one op.Operation.ScheduleLine per operation,
// preceded by the sequence's overall makespan. Per spec.md §7, a
// sentinel sequence (no feasible schedule under the memory cap) is
// reported as infeasible rather than as a bogus makespan.
func WriteSchedule(w io.Writer, name string, seq *jcseq.Sequence) error {
	if seq.IsSentinel() {
		_, err := fmt.Fprintf(w, "%s: infeasible (no schedule fits the memory cap)\n", name)
		return err
	}
	if _, err := fmt.Fprintf(w, "%s: makespan %d\n", name, seq.Makespan()); err != nil {
		return err
	}
	for i := 0; i < seq.Len(); i++ {
		if _, err := fmt.Fprintln(w, seq.At(i).ScheduleLine()); err != nil {
			return err
		}
	}
	return nil
}

// WriteDOT renders seq as a Graphviz DOT graph: one node per operation,
// labelled with its action/mode/FMA, one edge per ≺-precedence pair. A
// sentinel sequence is rendered as a single note node instead.
func WriteDOT(w io.Writer, graphName string, seq *jcseq.Sequence) error {
	if _, err := fmt.Fprintf(w, "digraph %s {\n", graphName); err != nil {
		return err
	}
	if seq.IsSentinel() {
		if _, err := fmt.Fprintln(w, `  n0 [label="infeasible: no schedule fits the memory cap"];`); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w, "}")
		return err
	}
	for i := 0; i < seq.Len(); i++ {
		o := seq.At(i)
		label := fmt.Sprintf("%s %s\\n(%d,%d,%d)\\nfma=%d", o.Action, o.Mode, o.I, o.K, o.J, o.FMA)
		if o.IsScheduled {
			label += fmt.Sprintf("\\nt%d [%d-%d]", o.Thread, o.StartTime, o.End())
		}
		if _, err := fmt.Fprintf(w, "  n%d [label=\"%s\"];\n", i, label); err != nil {
			return err
		}
	}
	for i := 0; i < seq.Len(); i++ {
		for j := 0; j < seq.Len(); j++ {
			if i == j {
				continue
			}
			if op.Precedes(seq.At(i), seq.At(j)) {
				if _, err := fmt.Fprintf(w, "  n%d -> n%d;\n", i, j); err != nil {
					return err
				}
			}
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}
