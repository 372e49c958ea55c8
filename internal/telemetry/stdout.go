package telemetry

import "github.com/MIAOUS-group/go-port-contention/internal/logging"

// LogReporter logs request/send events through a structured logger instead
// of (or in addition to) feeding the Hub. Useful when -web-addr is unset.
type LogReporter struct {
	logger logging.Logger
}

// NewLogReporter builds a reporter that writes to the provided logger.
func NewLogReporter(logger logging.Logger) LogReporter {
	if logger == nil {
		logger = logging.Default()
	}
	return LogReporter{logger: logger}
}

func (r LogReporter) ReportRequest(event RequestEvent) {
	r.logger.Info("request frame",
		logging.Subsystem("telemetry"),
		logging.Field{Key: "valid", Value: event.Valid},
		logging.Field{Key: "sequence_number", Value: event.SequenceNumber},
		logging.Field{Key: "timed_out", Value: event.TimedOut},
	)
}

func (r LogReporter) ReportSend(event SendEvent) {
	r.logger.Info("data frame sent",
		logging.Subsystem("telemetry"),
		logging.Field{Key: "sequence_number", Value: event.SequenceNumber},
		logging.Field{Key: "cores", Value: event.Cores},
	)
}

// MultiReporter fans out events to multiple destinations.
type MultiReporter []Reporter

func (m MultiReporter) ReportRequest(event RequestEvent) {
	for _, r := range m {
		r.ReportRequest(event)
	}
}

func (m MultiReporter) ReportSend(event SendEvent) {
	for _, r := range m {
		r.ReportSend(event)
	}
}
