package main

import (
	"errors"
	"math/rand/v2"
	"net"

	"github.com/rs/zerolog"
)

// Dispatcher accepts connections and hands each one to a worker queue.
// With the random strategy every worker owns a queue and one is picked
// uniformly at random per connection; with the shared strategy all workers
// drain a single queue. Queues are unbounded, so a worker held by a slow
// peer never stalls the accept loop.
type Dispatcher struct {
	queues  []*connQueue
	workers []*Worker
	pick    func(n int) int
	log     zerolog.Logger
}

func NewDispatcher(cfg *Config, resources *ResourceMap, log zerolog.Logger) *Dispatcher {
	d := &Dispatcher{
		pick: rand.IntN,
		log:  log,
	}
	nqueues := cfg.Workers
	if cfg.Dispatch == dispatchShared {
		nqueues = 1
	}
	for i := 0; i < nqueues; i++ {
		d.queues = append(d.queues, newConnQueue())
	}
	opts := WorkerOptions{
		AllowedMethods: cfg.AllowedMethods,
		MaxRequestSize: cfg.MaxRequestSize,
		ReadTimeout:    cfg.ReadTimeout,
	}
	for i := 0; i < cfg.Workers; i++ {
		q := d.queues[i%nqueues]
		d.workers = append(d.workers, NewWorker(i, q.Out, resources, opts, log))
	}
	return d
}

// Start launches the workers. They run for the life of the process.
func (d *Dispatcher) Start() {
	for _, w := range d.workers {
		go w.Run()
	}
	d.log.Info().Int("workers", len(d.workers)).Int("queues", len(d.queues)).Msg("workers started")
}

func (d *Dispatcher) enqueue(conn net.Conn) {
	i := 0
	if len(d.queues) > 1 {
		i = d.pick(len(d.queues))
	}
	d.queues[i].In <- conn
}

// Serve accepts connections from ln until ln is closed. Accept errors are
// logged and never stop the loop.
func (d *Dispatcher) Serve(ln net.Listener) error {
	d.log.Info().Str("addr", ln.Addr().String()).Msg("listening")
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				d.log.Info().Msg("listener closed")
				return nil
			}
			d.log.Error().Err(err).Msg("accept error")
			continue
		}
		d.enqueue(conn)
	}
}
