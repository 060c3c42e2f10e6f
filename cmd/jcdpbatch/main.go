// Command jcdpbatch generates chains_per_length chains of every length
// in [chain_min_length, chain_max_length] and, for each, solves it for
// every usable thread count t = 1..length, writing one CSV row per
// chain with the columns from spec.md §6: BnB_BnB/t/finished,
// BnB_BnB/t, BnB_List/t, DP/t, DP_BnB/t. This mirrors
// src/jcdp_batch.cpp's `while (jcgen.next(chain))` sampling loop,
// trimmed of the GPU-scheduler columns (see DESIGN.md).
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"

	"jcdp/internal/chaingen"
	"jcdp/internal/config"
	"jcdp/internal/coordinator"
	"jcdp/internal/jchain"
	"jcdp/internal/report"
	"jcdp/internal/sa"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: jcdpbatch <config-path> [output-prefix]")
		os.Exit(-1)
	}

	cfg, err := config.Load(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "jcdpbatch:", err)
		os.Exit(-1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "jcdpbatch:", err)
		os.Exit(-1)
	}

	outputPrefix := "results"
	if len(os.Args) > 2 {
		outputPrefix = os.Args[2]
	}

	rng := rand.New(rand.NewSource(cfg.ChainSeed))
	pipelineCfg := coordinator.Config{
		TimeBudget:         cfg.TimeToSolve,
		ScheduleTimeBudget: cfg.TimeToSolve,
		InnerScheduler:     coordinator.InnerScheduler(cfg.InnerScheduler),
		SAConfig:           sa.DefaultConfig(),
		SASeed:             cfg.ChainSeed,
	}

	for length := cfg.ChainMinLength; length <= cfg.ChainMaxLength; length++ {
		outputPath := fmt.Sprintf("%s%d.csv", outputPrefix, length)
		f, err := os.Create(outputPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "jcdpbatch:", err)
			os.Exit(1)
		}

		writer, err := report.NewBatchCSV(f, length)
		if err != nil {
			fmt.Fprintln(os.Stderr, "jcdpbatch:", err)
			f.Close()
			os.Exit(1)
		}

		fmt.Printf("solving %d chain(s) of length %d -> %s\n", cfg.ChainsPerLength, length, outputPath)

		for sample := 0; sample < cfg.ChainsPerLength; sample++ {
			chain := chaingen.Random(chaingen.Params{
				Length:          length,
				MinDim:          cfg.ChainMinDim,
				MaxDim:          cfg.ChainMaxDim,
				MinEdges:        1,
				MaxEdges:        cfg.ChainMaxDim,
				MatrixFree:      cfg.MatrixFree,
				AvailableMemory: cfg.AvailableMemory,
			}, rng)

			row, err := solveRow(chain, pipelineCfg, length)
			if err != nil {
				fmt.Fprintln(os.Stderr, "jcdpbatch:", err)
				f.Close()
				os.Exit(1)
			}
			if err := writer.WriteRow(row); err != nil {
				fmt.Fprintln(os.Stderr, "jcdpbatch:", err)
				f.Close()
				os.Exit(1)
			}
		}

		if err := writer.Flush(); err != nil {
			fmt.Fprintln(os.Stderr, "jcdpbatch:", err)
			f.Close()
			os.Exit(1)
		}
		f.Close()
	}
}

// solveRow runs the full pipeline against chain for every usable-thread
// count t = 1..length and packs the results into one report.Row.
func solveRow(chain *jchain.Chain, pipelineCfg coordinator.Config, length int) (report.Row, error) {
	row := report.Row{
		BnBBnBFinished: make([]bool, length),
		BnBBnB:         make([]int, length),
		BnBList:        make([]int, length),
		DP:             make([]int, length),
		DPBnB:          make([]int, length),
	}
	for t := 1; t <= length; t++ {
		outcome, err := coordinator.Solve(context.Background(), chain, pipelineCfg, t)
		if err != nil {
			return report.Row{}, err
		}
		row.BnBBnBFinished[t-1] = outcome.BnBFinished
		row.BnBBnB[t-1] = outcome.BnBMakespan
		row.BnBList[t-1] = outcome.ListMakespan
		row.DP[t-1] = outcome.DPMakespan
		row.DPBnB[t-1] = outcome.DPBnBMakespan
	}
	return row, nil
}
