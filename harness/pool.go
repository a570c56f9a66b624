//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

package harness

import (
	"context"
	"sync"
)

// evalTask carries one sample's work through the ants pool.
type evalTask[T any] struct {
	idx      int
	ctx      context.Context
	sampleID string
	h        *Harness[T]
	run      ItemFunc[T]
	quality  QualityFunc[T]
	results  []*ItemResult[T]
	wg       *sync.WaitGroup
}

func (t *evalTask[T]) reset() {
	t.idx = 0
	t.ctx = nil
	t.sampleID = ""
	t.h = nil
	t.run = nil
	t.quality = nil
	t.results = nil
	t.wg = nil
}

// runTask is the pool function shared by all workers.
func (h *Harness[T]) runTask(args any) {
	task, ok := args.(*evalTask[T])
	if !ok {
		panic("harness pool args type error")
	}
	wg := task.wg
	defer func() {
		wg.Done()
		task.reset()
		h.taskPool.Put(task)
	}()
	task.results[task.idx] = task.h.evaluateOne(task.ctx, task.sampleID, task.run, task.quality)
}
