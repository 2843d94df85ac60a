package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/roach88/hypertoe/internal/game"
)

// Loop is the single-writer event loop around a game.Engine.
//
// Thread-safety model:
//   - Enqueue(), Do(), Query(), AfterFunc(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine, once
//   - tasks and game listeners run on the Run goroutine only
type Loop struct {
	game    *game.Engine
	clock   *Clock
	queue   *taskQueue
	stopped chan struct{}
	logger  *slog.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the loop's logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(lp *Loop) { lp.logger = l }
}

// New creates the game engine with gameOpts and the loop as its scheduler.
// Any scheduler in gameOpts is overridden.
func New(gameOpts []game.Option, opts ...Option) *Loop {
	l := &Loop{
		clock:   NewClock(),
		queue:   newTaskQueue(),
		stopped: make(chan struct{}),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.game = game.New(append(slices.Clone(gameOpts), game.WithScheduler(l))...)
	return l
}

// AfterFunc implements game.Scheduler. The timer goroutine only enqueues;
// fn runs on the loop.
func (l *Loop) AfterFunc(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, func() {
		l.Enqueue("timer", func(*game.Engine) { fn() })
	})
	return func() { t.Stop() }
}

// Enqueue schedules fn without waiting. It returns false once the loop is
// stopped.
func (l *Loop) Enqueue(name string, fn func(*game.Engine)) bool {
	return l.queue.Enqueue(&Task{Name: name, Fn: fn})
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, name string, fn func(*game.Engine)) error {
	t := &Task{Name: name, Fn: fn, done: make(chan struct{})}
	if !l.queue.Enqueue(t) {
		return newStoppedError(name)
	}
	select {
	case <-t.done:
		return t.err
	case <-l.stopped:
		// The task may have finished just before Run returned.
		select {
		case <-t.done:
			return t.err
		default:
			return newStoppedError(name)
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Query runs fn on the loop and returns its result.
func Query[T any](ctx context.Context, l *Loop, fn func(*game.Engine) T) (T, error) {
	result := make(chan T, 1)
	err := l.Do(ctx, "query", func(g *game.Engine) { result <- fn(g) })
	if err != nil {
		var zero T
		return zero, err
	}
	return <-result, nil
}

// SubmitMove submits a human move through the loop.
func (l *Loop) SubmitMove(ctx context.Context, cell, player int) (game.MoveResult, error) {
	return Query(ctx, l, func(g *game.Engine) game.MoveResult {
		return g.SubmitMove(cell, player)
	})
}

// Run processes tasks until ctx is cancelled or Stop is called.
// Returns ctx.Err() on cancellation and nil after Stop.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("loop starting")
	defer close(l.stopped)

	for {
		if t, ok := l.queue.TryDequeue(); ok {
			l.execute(t)
			continue
		}

		select {
		case <-ctx.Done():
			l.logger.Info("loop stopping: context cancelled")
			l.queue.Close()
			return ctx.Err()

		case <-l.queue.Wait():
			// A closed queue keeps this case ready; stop once it is drained.
			if l.queue.Closed() && l.queue.Len() == 0 {
				l.logger.Info("loop stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the queue. Run drains the remaining tasks, then returns.
func (l *Loop) Stop() {
	l.queue.Close()
}

// Done is closed when Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.stopped
}

// Seq returns the clock value of the last task started.
func (l *Loop) Seq() int64 {
	return l.clock.Current()
}

// execute runs one task. A panic is logged and reported to a waiting
// caller; the loop keeps going.
func (l *Loop) execute(t *Task) {
	seq := l.clock.Next()
	defer func() {
		if r := recover(); r != nil {
			t.err = &RuntimeError{
				Code:    ErrCodeTaskPanic,
				Message: fmt.Sprint(r),
				Task:    t.Name,
				Seq:     seq,
			}
			l.logger.Error("task failed", "seq", seq, "task", t.Name, "error", t.err)
		}
		if t.done != nil {
			close(t.done)
		}
	}()
	t.Fn(l.game)
}
