// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command pmudemo is a small driver that exercises package perf against
// real workloads: a branch-misprediction-penalty sweep and a one-shot
// counter dump for an arbitrary event list.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hwcounters/pmubench/envinfo"
	"github.com/hwcounters/pmubench/events"
	"github.com/hwcounters/pmubench/perf"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pmudemo",
		Short: "Exercise hardware performance counters against sample workloads",
	}
	root.AddCommand(newBranchCurveCmd(), newCountCmd(), newEnvCmd())
	return root
}

func newEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Print host and build identification",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), envinfo.Summary())
			return nil
		},
	}
}

func newBranchCurveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "branchcurve",
		Short: "Sweep branch predictability and report the mispredict cycle penalty",
		RunE: func(cmd *cobra.Command, args []string) error {
			samples, err := measureBranchCurve()
			if err != nil {
				return err
			}
			peak := branchCurveRatio(samples)
			fmt.Fprintf(cmd.OutOrStdout(), "peak cycles/branch-miss: %.2f\n", peak)
			return nil
		},
	}
}

func newCountCmd() *cobra.Command {
	var iterations int
	cmd := &cobra.Command{
		Use:   "count [event...]",
		Short: "Count events over a spin loop of the given length",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := make([]events.Kind, 0, len(args))
			for _, name := range args {
				k, ok := events.ParseKind(name)
				if !ok {
					return fmt.Errorf("pmudemo: unknown event %q", name)
				}
				kinds = append(kinds, k)
			}

			s := perf.NewSession()
			defer s.Close()
			for _, k := range kinds {
				if err := s.AddEvent(k); err != nil {
					return err
				}
			}
			if err := s.Open(); err != nil {
				return err
			}
			if err := s.Start(); err != nil {
				return err
			}
			for i := 0; i < iterations; i++ {
			}
			if err := s.Stop(); err != nil {
				return err
			}

			counts, err := s.Counters()
			if err != nil {
				return err
			}
			for i, name := range s.EventNames() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %d\n", name, counts[i])
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&iterations, "iterations", 10_000_000, "spin-loop iteration count")
	return cmd
}
