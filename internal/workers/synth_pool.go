package workers

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// Pool runs blocking jobs on a fixed set of workers. The offline speech
// engine blocks for the whole synthesis, so requests hand the work off here
// and await the result instead of stalling the handler goroutine.
type Pool struct {
	NumWorkers int
	Logger     *logrus.Logger

	tasks chan task
}

type task struct {
	fn   func() error
	done chan error
}

// Start spawns the workers. The pool drains until ctx is canceled.
func (p *Pool) Start(ctx context.Context) {
	if p.NumWorkers <= 0 {
		p.NumWorkers = 2
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}
	p.tasks = make(chan task)

	for i := 0; i < p.NumWorkers; i++ {
		go p.run(ctx, i+1)
	}
	p.Logger.WithField("workers", p.NumWorkers).Debug("synthesis pool started")
}

func (p *Pool) run(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-p.tasks:
			t.done <- t.fn()
		}
	}
}

// Do submits fn and waits for it to finish. Submission blocks until a worker
// is free; both the wait for a slot and the wait for completion honor ctx.
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	if p.tasks == nil {
		return errors.New("pool not started")
	}

	t := task{fn: fn, done: make(chan error, 1)}
	select {
	case p.tasks <- t:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
