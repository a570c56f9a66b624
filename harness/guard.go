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
	"errors"
	"fmt"
	"time"
)

// AttemptFunc produces one attempt's payload. Implementations must honor
// context cancellation at their blocking boundaries (typically the oracle call).
type AttemptFunc[T any] func(ctx context.Context) (T, error)

// Invoke runs fn under a hard wall-clock deadline. When the deadline expires
// the call is abandoned and OutcomeTimeout is returned immediately; the
// underlying goroutine may keep running but can never block the caller
// (its reply channel is buffered) and its context is cancelled so
// well-behaved callees unwind on their own.
//
// The deadline is scoped to this single call. Nothing here touches
// process-global state, so concurrent workers cannot corrupt each
// other's deadlines.
func Invoke[T any](ctx context.Context, timeout time.Duration, fn AttemptFunc[T]) *Outcome[T] {
	if timeout <= 0 {
		return &Outcome[T]{Kind: OutcomeFailure, Err: fmt.Errorf("invalid timeout %s", timeout)}
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)

	type reply struct {
		value T
		err   error
	}
	done := make(chan reply, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- reply{err: fmt.Errorf("attempt panicked: %v", r)}
			}
		}()
		value, err := fn(callCtx)
		done <- reply{value: value, err: err}
	}()

	select {
	case r := <-done:
		cancel()
		if r.err != nil {
			if errors.Is(r.err, context.DeadlineExceeded) {
				return &Outcome[T]{Kind: OutcomeTimeout, Err: r.err}
			}
			return &Outcome[T]{Kind: OutcomeFailure, Err: r.err}
		}
		return &Outcome[T]{Kind: OutcomeSuccess, Value: r.value}
	case <-callCtx.Done():
		cancel()
		err := callCtx.Err()
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return &Outcome[T]{Kind: OutcomeTimeout, Err: err}
		}
		// Parent context cancellation is a failure, not a per-attempt timeout.
		return &Outcome[T]{Kind: OutcomeFailure, Err: err}
	}
}
