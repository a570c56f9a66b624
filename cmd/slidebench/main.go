//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

// Command slidebench runs whole-slide benchmark evaluations.
package main

import "trpc.group/trpc-go/slidebench/internal/cli"

func main() {
	cli.Execute()
}
