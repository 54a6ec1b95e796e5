package editor

import (
	"context"
	"sync"
)

// TaskKind identifies what a task resolves.
type TaskKind string

const (
	TaskImage      TaskKind = "image"
	TaskBackground TaskKind = "background"
	TaskLoad       TaskKind = "load"
)

// Task is a single-shot asynchronous operation started by the controller.
type Task struct {
	kind   TaskKind
	target string
	gen    uint64

	ctx    context.Context
	cancel context.CancelFunc

	once sync.Once
	done chan struct{}
	err  error
}

func newTask(ctx context.Context, kind TaskKind, target string, gen uint64) *Task {
	ctx, cancel := context.WithCancel(ctx)
	return &Task{
		kind:   kind,
		target: target,
		gen:    gen,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// completedTask returns a task that has already finished with err.
func completedTask(kind TaskKind, target string, gen uint64, err error) *Task {
	t := newTask(context.Background(), kind, target, gen)
	t.finish(err)
	return t
}

// Kind returns what the task resolves.
func (t *Task) Kind() TaskKind { return t.kind }

// Target returns the id of the image, or the source of the background, the
// task resolves.
func (t *Task) Target() string { return t.target }

// Generation returns the controller generation the task was started under.
func (t *Task) Generation() uint64 { return t.gen }

// Done is closed when the task has finished.
func (t *Task) Done() <-chan struct{} { return t.done }

// Err returns the outcome once Done is closed, and nil before.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Wait blocks until the task finishes or ctx is done.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel aborts the underlying fetch. The task still finishes; a cancelled
// task reports STALE_COMPLETION if its result was superseded, or the fetch
// error otherwise.
func (t *Task) Cancel() { t.cancel() }

func (t *Task) finish(err error) {
	t.once.Do(func() {
		t.err = err
		t.cancel()
		close(t.done)
	})
}
