// Package sender implements the sender-side worker fan-out: one pinned
// goroutine per physical core, all transmitting the same DataFrame
// simultaneously to maximize the receiver's measurable port pressure.
package sender

import (
	"context"
	"sync"
	"time"

	"github.com/MIAOUS-group/go-port-contention/internal/affinity"
	"github.com/MIAOUS-group/go-port-contention/internal/frame"
	"github.com/MIAOUS-group/go-port-contention/internal/logging"
	"github.com/MIAOUS-group/go-port-contention/internal/physical"
)

// Controller transmits DataFrames across every physical core.
type Controller struct {
	Cores       int
	BitDuration time.Duration
	Logger      logging.Logger
}

// New builds a sender Controller bound to the given core count and bit
// duration.
func New(cores int, bitDuration time.Duration, logger logging.Logger) *Controller {
	if logger == nil {
		logger = logging.Default()
	}
	return &Controller{
		Cores:       cores,
		BitDuration: bitDuration,
		Logger:      logger.With(logging.Subsystem("sender")),
	}
}

// Send encodes data into a DataFrame at sequenceNumber and transmits it
// identically from one pinned worker goroutine per physical core, joining
// all workers before returning.
func (c *Controller) Send(ctx context.Context, data byte, sequenceNumber int) {
	f := frame.EncodeData(data, sequenceNumber)
	bits := make([]bool, frame.DataFrameSize)
	copy(bits, f.Bits[:])

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
			physical.SendSequence(ctx, bits, c.BitDuration)
		}(core)
	}
	wg.Wait()
}
