//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

// Package cli implements the slidebench command tree.
package cli

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"trpc.group/trpc-go/slidebench/log"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "slidebench",
	Short: "slidebench evaluates vision-language oracles on whole-slide image benchmarks",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		log.SetLevel(viper.GetString("log-level"))
		return nil
	},
}

// Execute runs the command tree.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (e.g., slidebench.yaml)")

	flags := rootCmd.PersistentFlags()
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.Int("workers", 4, "number of concurrent evaluation workers")
	flags.Int("max-retries", 2, "retries after a low-quality response")
	flags.Float64("accuracy-threshold", 0.5, "quality score below which a response is retried")
	flags.Int("timeout-seconds", 600, "per-attempt timeout in seconds")
	flags.Bool("overwrite", false, "re-evaluate samples with a persisted result")
	flags.Int64("seed", 42, "seed for fold shuffling and bootstrap resampling")
	flags.String("sets-dir", "samplesets", "directory holding sample set files")
	flags.String("results-dir", "results", "directory holding result files")
	flags.String("predictions-dir", "predictions", "directory for survival prediction CSVs")
	flags.String("clinical-csv", "", "clinical metadata CSV for ground-truth joins")
	flags.String("model", "gpt-4o", "oracle model name")
	flags.String("base-url", "", "oracle API base URL")

	for _, name := range []string{
		"log-level", "workers", "max-retries", "accuracy-threshold",
		"timeout-seconds", "overwrite", "seed", "sets-dir", "results-dir",
		"predictions-dir", "clinical-csv", "model", "base-url",
	} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// loadConfig reads the optional config file; flags override its values.
func loadConfig() error {
	if cfgFile == "" {
		return nil
	}
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return err
	}
	return nil
}
