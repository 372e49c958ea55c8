// Package controlloop implements the half-duplex sender-side control loop:
// wait for a request frame, pause briefly for the peer's send/listen
// handoff, then answer with the indexed payload byte.
package controlloop

import (
	"context"
	"time"

	"github.com/MIAOUS-group/go-port-contention/internal/logging"
	"github.com/MIAOUS-group/go-port-contention/internal/receiver"
	"github.com/MIAOUS-group/go-port-contention/internal/sender"
	"github.com/MIAOUS-group/go-port-contention/internal/telemetry"
)

// Loop ties a receiver and sender controller together into the request/
// response cycle.
type Loop struct {
	Receiver     *receiver.Controller
	Sender       *sender.Controller
	HandoffDelay time.Duration
	TestSequence [16]byte
	Reporter     telemetry.Reporter
	Logger       logging.Logger
}

// Run executes the loop until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		decoded, winner := l.Receiver.Listen(ctx)
		if l.Reporter != nil {
			l.Reporter.ReportRequest(telemetry.RequestEvent{
				Valid:           decoded.Valid(),
				InitSeq:         decoded.InitSeq,
				SequenceNumber:  decoded.SequenceNumber,
				TimedOut:        winner < 0,
				WinningListener: winner,
			})
		}

		if !decoded.Valid() {
			l.Logger.Debug("invalid or absent request frame, listening again")
			continue
		}

		select {
		case <-time.After(l.HandoffDelay):
		case <-ctx.Done():
			return ctx.Err()
		}

		data := l.TestSequence[decoded.SequenceNumber]
		l.Sender.Send(ctx, data, decoded.SequenceNumber)
		if l.Reporter != nil {
			l.Reporter.ReportSend(telemetry.SendEvent{
				SequenceNumber: decoded.SequenceNumber,
				Data:           data,
				Cores:          l.Sender.Cores,
			})
		}
	}
}
