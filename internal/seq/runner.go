package seq

import "context"

// Job is a deferred operation. It is invoked at most once by [RunSequential].
type Job[T any] func(ctx context.Context) (T, error)

type runOptions struct {
	stopOnFailure bool
	onSettled     func(i int, err error)
}

// Option configures [RunSequential].
type Option func(*runOptions)

// StopOnFailure makes the runner return as soon as a job fails.
//
// The result then only holds slots for the jobs that completed before the failure.
func StopOnFailure() Option {
	return func(o *runOptions) { o.stopOnFailure = true }
}

// OnSettled registers a callback invoked after each job returns, in job order, with the job's error (nil on success).
func OnSettled(fn func(i int, err error)) Option {
	return func(o *runOptions) { o.onSettled = fn }
}

// RunSequential runs jobs in index order. Job i+1 does not start until job i has returned.
//
// Each result slot holds a pointer to the job's value, or nil when the job failed.
// Without [StopOnFailure] the result has the same length as jobs.
func RunSequential[T any](ctx context.Context, jobs []Job[T], opts ...Option) []*T {
	o := runOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	results := make([]*T, 0, len(jobs))
	for i, job := range jobs {
		v, err := job(ctx)
		if o.onSettled != nil {
			o.onSettled(i, err)
		}

		if err != nil {
			if o.stopOnFailure {
				break
			}
			results = append(results, nil)
			continue
		}
		results = append(results, &v)
	}
	return results
}

// Values returns the settled values of results in order, dropping failed (nil) slots.
func Values[T any](results []*T) []T {
	values := make([]T, 0, len(results))
	for _, r := range results {
		if r != nil {
			values = append(values, *r)
		}
	}
	return values
}
