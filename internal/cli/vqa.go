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

	"github.com/spf13/cobra"
)

var vqaCmd = &cobra.Command{
	Use:   "vqa <set-id>",
	Short: "Run multiple-choice question answering over a sample set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := newBenchmark()
		if err != nil {
			return err
		}
		defer b.Close()
		run, err := b.RunVQA(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("run %s: evaluated %d/%d samples (%d skipped)\n",
			run.RunID, run.Evaluated, run.Total, run.Skipped)
		printSummary(run.Summary, []string{"accuracy_mean", "pass_rate"})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(vqaCmd)
}
