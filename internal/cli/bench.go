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
	"time"

	"github.com/spf13/viper"

	"trpc.group/trpc-go/slidebench/bench"
	"trpc.group/trpc-go/slidebench/evalresult"
	resultlocal "trpc.group/trpc-go/slidebench/evalresult/local"
	"trpc.group/trpc-go/slidebench/groundtruth"
	"trpc.group/trpc-go/slidebench/harness"
	"trpc.group/trpc-go/slidebench/oracle"
	"trpc.group/trpc-go/slidebench/oracle/openai"
	"trpc.group/trpc-go/slidebench/sampleset"
	setlocal "trpc.group/trpc-go/slidebench/sampleset/local"
)

// newBenchmark assembles a Benchmark from the merged configuration.
func newBenchmark(extra ...bench.Option) (*bench.Benchmark, error) {
	opts := []bench.Option{
		bench.WithSeed(viper.GetInt64("seed")),
		bench.WithPredictionDir(viper.GetString("predictions-dir")),
		bench.WithHarnessOptions(harnessOptions()...),
	}
	if path := viper.GetString("clinical-csv"); path != "" {
		truth, err := groundtruth.NewCSVLookup(path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, bench.WithGroundTruth(truth))
	}
	opts = append(opts, extra...)
	return bench.New(newOracle(), newSetManager(), newResultManager(), opts...)
}

// newBenchmarkWithStats assembles a Benchmark with run-specific statistics
// parameters on top of the shared configuration.
func newBenchmarkWithStats(folds, resamples int) (*bench.Benchmark, error) {
	return newBenchmark(
		bench.WithFolds(folds),
		bench.WithBootstrapResamples(resamples),
	)
}

// harnessOptions translates the external knobs into harness options.
// max-retries counts retries, so the attempt budget is one higher.
func harnessOptions() []harness.Option {
	return []harness.Option{
		harness.WithWorkers(viper.GetInt("workers")),
		harness.WithMaxAttempts(viper.GetInt("max-retries") + 1),
		harness.WithQualityThreshold(viper.GetFloat64("accuracy-threshold")),
		harness.WithTimeout(time.Duration(viper.GetInt("timeout-seconds")) * time.Second),
		harness.WithOverwrite(viper.GetBool("overwrite")),
	}
}

// newOracle builds the OpenAI-backed oracle. The API key comes from the
// OPENAI_API_KEY environment variable.
func newOracle() oracle.Oracle {
	var opts []openai.Option
	if baseURL := viper.GetString("base-url"); baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	return openai.New(viper.GetString("model"), opts...)
}

func newSetManager() sampleset.Manager {
	return setlocal.New(sampleset.WithBaseDir(viper.GetString("sets-dir")))
}

func newResultManager() evalresult.Manager {
	return resultlocal.New(evalresult.WithBaseDir(viper.GetString("results-dir")))
}

// printSummary writes aggregate metrics to stdout in stable order.
func printSummary(summary map[string]float64, keys []string) {
	for _, key := range keys {
		if v, ok := summary[key]; ok {
			fmt.Printf("%s: %.4f\n", key, v)
		}
	}
}
