// Package bulk processes an ordered list of submissions one at a time and
// folds each outcome into a queue state that can be rendered as progress.
package bulk

import (
	"context"
	"errors"
)

var ErrCancelled = errors.New("cancelled before submission")

// Task is one unit of work. ID is what failures are reported by.
type Task[T any] struct {
	ID      string
	Payload T
}

type Result struct {
	TaskID string
	Err    error
}

func (r Result) OK() bool {
	return r.Err == nil
}

// Queue is the state after zero or more results have been reduced into it.
type Queue[T any] struct {
	Tasks     []Task[T]
	Results   []Result
	Completed int
	Total     int
}

func NewQueue[T any](tasks []Task[T]) Queue[T] {
	return Queue[T]{Tasks: tasks, Total: len(tasks)}
}

// Reduce returns q with r appended. q is not modified.
func Reduce[T any](q Queue[T], r Result) Queue[T] {
	results := make([]Result, len(q.Results), len(q.Results)+1)
	copy(results, q.Results)
	q.Results = append(results, r)
	q.Completed = len(q.Results)
	return q
}

func (q Queue[T]) Progress() (completed, total int) {
	return q.Completed, q.Total
}

func (q Queue[T]) Done() bool {
	return q.Completed >= q.Total
}

// Next is the first task without a result.
func (q Queue[T]) Next() (Task[T], bool) {
	if q.Completed >= len(q.Tasks) {
		return Task[T]{}, false
	}
	return q.Tasks[q.Completed], true
}

type Failure struct {
	TaskID string `json:"task_id"`
	Error  string `json:"error"`
}

type Summary struct {
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Failures  []Failure `json:"failures,omitempty"`
}

func (q Queue[T]) Summary() Summary {
	var s Summary
	for _, r := range q.Results {
		if r.OK() {
			s.Succeeded++
			continue
		}
		s.Failed++
		s.Failures = append(s.Failures, Failure{TaskID: r.TaskID, Error: r.Err.Error()})
	}
	return s
}

type Executor[T any] func(ctx context.Context, task Task[T]) error

// ProgressFunc observes the queue after every reduction.
type ProgressFunc[T any] func(q Queue[T])

// Run executes tasks in order, one at a time. A failed task does not stop the
// queue; cancelling ctx marks every remaining task ErrCancelled.
func Run[T any](ctx context.Context, tasks []Task[T], exec Executor[T], onProgress ProgressFunc[T]) Queue[T] {
	q := NewQueue(tasks)
	for {
		task, ok := q.Next()
		if !ok {
			return q
		}

		var err error
		if ctx.Err() != nil {
			err = ErrCancelled
		} else {
			err = exec(ctx, task)
		}

		q = Reduce(q, Result{TaskID: task.ID, Err: err})
		if onProgress != nil {
			onProgress(q)
		}
	}
}
