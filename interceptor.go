package fetchax

import "context"

// Interceptor transforms a value on its way through a request.  Request
// interceptors receive the resolved *Config before it is dispatched, and
// response interceptors receive the *http.Response before it is parsed.
//
// An interceptor may block; the next interceptor in a chain only runs once
// it returns.  A returned error aborts the request.
type Interceptor[T any] func(ctx context.Context, v T) (T, error)

// RejectedInterceptor receives the error a request is about to fail with,
// and returns the error the request should fail with instead.  It may
// return its argument unchanged, a wrapped error, or a different error
// altogether.  Returning nil keeps the argument.
type RejectedInterceptor func(ctx context.Context, err error) error

// Chain composes interceptors into one, which applies them in order,
// each receiving the previous one's output.  Nil interceptors are skipped.
// If every interceptor is nil, Chain returns nil.
//
// The first error stops the chain and is returned as is.
func Chain[T any](interceptors ...Interceptor[T]) Interceptor[T] {
	steps := make([]Interceptor[T], 0, len(interceptors))
	for _, i := range interceptors {
		if i != nil {
			steps = append(steps, i)
		}
	}
	switch len(steps) {
	case 0:
		return nil
	case 1:
		return steps[0]
	}
	return func(ctx context.Context, v T) (T, error) {
		var err error
		for _, step := range steps {
			v, err = step(ctx, v)
			if err != nil {
				return v, err
			}
		}
		return v, nil
	}
}

// ChainRejected composes RejectedInterceptors the way Chain composes
// Interceptors.  Each step sees the error produced by the step before it.
func ChainRejected(interceptors ...RejectedInterceptor) RejectedInterceptor {
	steps := make([]Interceptor[error], 0, len(interceptors))
	for _, i := range interceptors {
		if i == nil {
			continue
		}
		i := i
		steps = append(steps, func(ctx context.Context, err error) (error, error) {
			if replaced := i(ctx, err); replaced != nil {
				return replaced, nil
			}
			return err, nil
		})
	}
	chained := Chain(steps...)
	if chained == nil {
		return nil
	}
	return func(ctx context.Context, err error) error {
		// steps never fail, the evolving value is the first result
		out, _ := chained(ctx, err)
		return out
	}
}
