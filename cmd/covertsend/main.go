// Command covertsend runs the port-contention covert channel's
// request/response control loop: listen for a request frame, answer it
// with the indexed payload byte, and repeat until interrupted.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/MIAOUS-group/go-port-contention/internal/config"
	"github.com/MIAOUS-group/go-port-contention/internal/controlloop"
	"github.com/MIAOUS-group/go-port-contention/internal/detector"
	"github.com/MIAOUS-group/go-port-contention/internal/discovery"
	"github.com/MIAOUS-group/go-port-contention/internal/logging"
	"github.com/MIAOUS-group/go-port-contention/internal/receiver"
	"github.com/MIAOUS-group/go-port-contention/internal/sender"
	"github.com/MIAOUS-group/go-port-contention/internal/telemetry"
)

func main() {
	const configPath = "covertsend.json"

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg, err = config.ParseFlags(os.Args[1:], os.Getenv, cfg)
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}

	logger := logging.New(logging.Info, logging.Text, os.Stderr)
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var reporter telemetry.Reporter = telemetry.NewLogReporter(logger)
	var sampleObserver func(float64)
	if cfg.WebAddr != "" {
		hub := telemetry.NewHub(256, logger)
		reporter = telemetry.MultiReporter{reporter, hub}
		sampleObserver = func(ns float64) { telemetry.SampleLatencyNs.Observe(ns) }

		ws := telemetry.NewWebServer(cfg.WebAddr, hub, logger)
		go ws.Start(ctx)
		logger.Info("telemetry listening", logging.Field{Key: "addr", Value: cfg.WebAddr})
	}

	if cfg.DiscoveryPort > 0 {
		if err := discovery.Advertise(ctx, cfg.DiscoveryInstance, cfg.DiscoveryPort, logger); err != nil {
			logger.Warn("mdns advertise failed", logging.Field{Key: "error", Value: err})
		}
		go func() {
			peers, err := discovery.Browse(ctx, cfg.DiscoveryTimeout)
			if err != nil {
				logger.Warn("mdns browse failed", logging.Field{Key: "error", Value: err})
				return
			}
			for _, p := range peers {
				logger.Info("discovered peer",
					logging.Field{Key: "instance", Value: p.Instance},
					logging.Field{Key: "hostname", Value: p.Hostname},
					logging.Field{Key: "port", Value: p.Port})
			}
		}()
	}

	params := detector.Params{
		Kind:            cfg.Detector,
		ThresholdJump:   cfg.ThresholdJump,
		DenStreamLambda: cfg.DenStreamLambda,
		DenStreamEps:    cfg.DenStreamEps,
		DenStreamBeta:   cfg.DenStreamBeta,
		DenStreamMu:     cfg.DenStreamMu,
	}

	recv := receiver.New(cfg.PhyCores, cfg.RequestTimeout, params, logger)
	recv.SampleObserver = sampleObserver
	send := sender.New(cfg.PhyCores, cfg.BitDuration, logger)

	loop := &controlloop.Loop{
		Receiver:     recv,
		Sender:       send,
		HandoffDelay: cfg.HandoffDelay,
		TestSequence: cfg.TestSequence,
		Reporter:     reporter,
		Logger:       logger,
	}

	logger.Info("starting covert channel",
		logging.Field{Key: "phy_cores", Value: cfg.PhyCores},
		logging.Field{Key: "detector", Value: cfg.Detector})

	if err := loop.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("run loop: %v", err)
	}
}
