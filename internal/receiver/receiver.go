// Package receiver implements the receiver-side worker fan-out: one pinned
// goroutine per physical core, each running an independent, thread-local
// detector, with "first listener to decode wins" coordination.
package receiver

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MIAOUS-group/go-port-contention/internal/affinity"
	"github.com/MIAOUS-group/go-port-contention/internal/detector"
	"github.com/MIAOUS-group/go-port-contention/internal/frame"
	"github.com/MIAOUS-group/go-port-contention/internal/logging"
	"github.com/MIAOUS-group/go-port-contention/internal/sampler"
)

// Controller coordinates the per-core listener goroutines for one request.
type Controller struct {
	Cores          int
	RequestTimeout time.Duration
	Params         detector.Params
	Logger         logging.Logger

	// SampleObserver, if set, is called with each median-smoothed sample
	// (nanoseconds) fed to a listener's detector. Used to export a latency histogram
	// without coupling this package to the telemetry package.
	SampleObserver func(ns float64)
}

// New builds a receiver Controller.
func New(cores int, requestTimeout time.Duration, params detector.Params, logger logging.Logger) *Controller {
	if logger == nil {
		logger = logging.Default()
	}
	return &Controller{
		Cores:          cores,
		RequestTimeout: requestTimeout,
		Params:         params,
		Logger:         logger.With(logging.Subsystem("receiver")),
	}
}

// Listen blocks until one listener decodes a frame, every listener times
// out, or ctx is cancelled. It returns the decoded request (InitSeq == 0 on
// timeout) and the index of the winning core, or -1 on timeout.
func (c *Controller) Listen(ctx context.Context) (frame.DecodedRequest, int) {
	var finished atomic.Bool
	var winner atomic.Pointer[frame.DecodedRequest]
	var winningCore atomic.Int64
	winningCore.Store(-1)

	listenCtx, cancel := context.WithTimeout(ctx, c.RequestTimeout)
	defer cancel()

	var wg sync.WaitGroup
	for core := 0; core < c.Cores; core++ {
		wg.Add(1)
		go func(core int) {
			defer wg.Done()
			if err := affinity.PinCurrentThreadTo(core); err != nil {
				c.Logger.Warn("pin failed",
					logging.Field{Key: "core", Value: core},
					logging.Field{Key: "error", Value: err})
			}
			c.listen(listenCtx, core, &finished, &winner, &winningCore)
		}(core)
	}
	wg.Wait()

	if d := winner.Load(); d != nil {
		return *d, int(winningCore.Load())
	}
	return frame.DecodedRequest{InitSeq: 0}, -1
}

// listen runs one listener's independent detector loop until it decodes a
// frame, the context is cancelled, or another listener already won.
func (c *Controller) listen(ctx context.Context, core int, finished *atomic.Bool, winner *atomic.Pointer[frame.DecodedRequest], winningCore *atomic.Int64) {
	det, err := detector.New(c.Params)
	if err != nil {
		c.Logger.Error("build detector", logging.Field{Key: "error", Value: err})
		return
	}
	var s sampler.Sampler

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if finished.Load() {
			return
		}

		point := s.Next()
		if c.SampleObserver != nil {
			c.SampleObserver(point)
		}
		if err := det.ParseNewPoint(point); err != nil {
			c.Logger.Error("parse sample",
				logging.Field{Key: "error", Value: err},
				logging.Field{Key: "core", Value: core})
			return
		}
		if det.Ready() {
			break
		}
	}

	if !finished.CompareAndSwap(false, true) {
		return
	}
	decoded := frame.RequestFrameFromBits(det.Bits()).Decode()
	winningCore.Store(int64(core))
	winner.Store(&decoded)
}
