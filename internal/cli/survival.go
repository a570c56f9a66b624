//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var survivalCmd = &cobra.Command{
	Use:   "survival <set-id>",
	Short: "Run survival risk prediction over a sample set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := newBenchmark()
		if err != nil {
			return err
		}
		defer b.Close()
		run, err := b.RunSurvival(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("run %s: evaluated %d/%d samples (%d skipped)\n",
			run.RunID, run.Evaluated, run.Total, run.Skipped)
		keys := make([]string, 0, len(run.Summary))
		for key := range run.Summary {
			if strings.HasPrefix(key, "c_index_") {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)
		printSummary(run.Summary, append(keys, "missing_ground_truth"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(survivalCmd)
}
