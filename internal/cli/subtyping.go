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

	"github.com/spf13/cobra"

	"trpc.group/trpc-go/slidebench/stats/crossval"
)

var (
	subtypingClasses    []string
	subtypingClassifier string
	subtypingFolds      int
	subtypingNeighbors  int
	subtypingResamples  int
)

var subtypingCmd = &cobra.Command{
	Use:   "subtyping <embedding-dir>",
	Short: "Score slide embeddings with cross-validated subtype classification",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		factory, err := classifierFactory(subtypingClassifier, subtypingNeighbors)
		if err != nil {
			return err
		}
		b, err := newBenchmarkWithStats(subtypingFolds, subtypingResamples)
		if err != nil {
			return err
		}
		defer b.Close()
		scoreReport, err := b.RunSubtyping(cmd.Context(), args[0], subtypingClasses, factory)
		if err != nil {
			return err
		}
		fmt.Printf("scored %d embeddings across %d folds\n", scoreReport.Examples, scoreReport.Folds)
		keys := make([]string, 0, len(scoreReport.Metrics))
		for key := range scoreReport.Metrics {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		printSummary(scoreReport.Metrics, keys)
		if scoreReport.AUROC != nil {
			fmt.Printf("bootstrap macro AUROC: %.4f [%.4f, %.4f] over %d resamples\n",
				scoreReport.AUROC.Mean, scoreReport.AUROC.Lower, scoreReport.AUROC.Upper, scoreReport.AUROC.Resamples)
		}
		return nil
	},
}

// classifierFactory maps a classifier name to a crossval factory.
func classifierFactory(name string, neighbors int) (crossval.Factory, error) {
	switch name {
	case "knn":
		return func() crossval.Classifier { return crossval.NewKNN(neighbors) }, nil
	case "logistic":
		return func() crossval.Classifier { return crossval.NewLogistic(0.1, 500) }, nil
	default:
		return nil, fmt.Errorf("unknown classifier %q, want knn or logistic", name)
	}
}

func init() {
	subtypingCmd.Flags().StringSliceVar(&subtypingClasses, "classes", nil, "ordered subtype class names (required)")
	subtypingCmd.Flags().StringVar(&subtypingClassifier, "classifier", "knn", "classifier: knn or logistic")
	subtypingCmd.Flags().IntVar(&subtypingFolds, "folds", 5, "requested cross-validation fold count")
	subtypingCmd.Flags().IntVar(&subtypingNeighbors, "neighbors", 5, "neighbor count for the knn classifier")
	subtypingCmd.Flags().IntVar(&subtypingResamples, "bootstrap", 1000, "bootstrap resample count")
	_ = subtypingCmd.MarkFlagRequired("classes")
	rootCmd.AddCommand(subtypingCmd)
}
