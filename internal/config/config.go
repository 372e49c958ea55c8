// Package config layers command-line flags, environment variables, and a
// persisted JSON document into one resolved Config, following the
// flag+JSON+env configuration pattern common to this codebase's cmd/
// binaries.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config is the fully-resolved configuration passed to every constructor
// in the covert-channel core.
type Config struct {
	PhyCores       int
	BitDuration    time.Duration
	RequestTimeout time.Duration
	DataTimeout    time.Duration
	HandoffDelay   time.Duration

	Detector        string
	ThresholdJump   int
	DenStreamLambda float64
	DenStreamEps    float64
	DenStreamBeta   float64
	DenStreamMu     float64

	TestSequence [16]byte
	WebAddr      string

	DiscoveryInstance string
	DiscoveryPort     int
	DiscoveryTimeout  time.Duration
}

// persistentConfig is the on-disk JSON document.
type persistentConfig struct {
	PhyCores        int     `json:"phy_cores"`
	Detector        string  `json:"detector"`
	ThresholdJump   int     `json:"threshold_jump"`
	DenStreamLambda float64 `json:"denstream_lambda"`
	DenStreamEps    float64 `json:"denstream_eps"`
	DenStreamBeta   float64 `json:"denstream_beta"`
	DenStreamMu     float64 `json:"denstream_mu"`
	TestSequence      string `json:"test_sequence"`
	WebAddr           string `json:"web_addr"`
	DiscoveryInstance string `json:"discovery_instance"`
	DiscoveryPort     int    `json:"discovery_port"`
}

// Default returns the compile-time defaults for the covert channel.
func Default() Config {
	return Config{
		PhyCores:        4,
		BitDuration:     1 * time.Millisecond,
		RequestTimeout:  50 * time.Millisecond,
		DataTimeout:     70 * time.Millisecond,
		HandoffDelay:    2 * time.Millisecond,
		Detector:        "threshold",
		ThresholdJump:   1350,
		DenStreamLambda: 0.25,
		DenStreamEps:    25,
		DenStreamBeta:   0.2,
		DenStreamMu:     2,
		TestSequence:    [16]byte{'a', 'z', 'e', 'r', 't', 'y', 'u', 'i', 'o', 'p', 'q', 's', 'd', 'f', 'g', 'h'},

		DiscoveryInstance: defaultInstanceName(),
		DiscoveryPort:     7777,
		DiscoveryTimeout:  3 * time.Second,
	}
}

func defaultInstanceName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "covertsend"
	}
	return "covertsend on " + host
}

func defaultPersistent(cfg Config) persistentConfig {
	return persistentConfig{
		PhyCores:        cfg.PhyCores,
		Detector:        cfg.Detector,
		ThresholdJump:   cfg.ThresholdJump,
		DenStreamLambda: cfg.DenStreamLambda,
		DenStreamEps:    cfg.DenStreamEps,
		DenStreamBeta:   cfg.DenStreamBeta,
		DenStreamMu:     cfg.DenStreamMu,
		TestSequence:    string(cfg.TestSequence[:]),
		WebAddr:         cfg.WebAddr,

		DiscoveryInstance: cfg.DiscoveryInstance,
		DiscoveryPort:     cfg.DiscoveryPort,
	}
}

func fromPersistent(p persistentConfig, base Config) Config {
	cfg := base
	if p.PhyCores > 0 {
		cfg.PhyCores = p.PhyCores
	}
	if p.Detector != "" {
		cfg.Detector = p.Detector
	}
	if p.ThresholdJump != 0 {
		cfg.ThresholdJump = p.ThresholdJump
	}
	if p.DenStreamLambda != 0 {
		cfg.DenStreamLambda = p.DenStreamLambda
	}
	if p.DenStreamEps != 0 {
		cfg.DenStreamEps = p.DenStreamEps
	}
	if p.DenStreamBeta != 0 {
		cfg.DenStreamBeta = p.DenStreamBeta
	}
	if p.DenStreamMu != 0 {
		cfg.DenStreamMu = p.DenStreamMu
	}
	if len(p.TestSequence) == 16 {
		copy(cfg.TestSequence[:], p.TestSequence)
	}
	cfg.WebAddr = p.WebAddr
	if p.DiscoveryInstance != "" {
		cfg.DiscoveryInstance = p.DiscoveryInstance
	}
	if p.DiscoveryPort > 0 {
		cfg.DiscoveryPort = p.DiscoveryPort
	}
	return cfg
}

func loadOrCreatePersistent(path string) (persistentConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		p := defaultPersistent(Default())
		data, marshalErr := json.MarshalIndent(p, "", "  ")
		if marshalErr != nil {
			return p, marshalErr
		}
		if writeErr := os.WriteFile(path, data, 0o644); writeErr != nil {
			return p, writeErr
		}
		return p, nil
	}
	if err != nil {
		return persistentConfig{}, err
	}
	var p persistentConfig
	if err := json.Unmarshal(data, &p); err != nil {
		return persistentConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return p, nil
}

// Load reads path if it exists, otherwise creates it with the compiled-in
// defaults, and returns the resolved Config.
func Load(path string) (Config, error) {
	p, err := loadOrCreatePersistent(path)
	if err != nil {
		return Config{}, err
	}
	return fromPersistent(p, Default()), nil
}

func envOr(getenv func(string) string, key, fallback string) string {
	if getenv == nil {
		return fallback
	}
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return fallback
}

// ParseFlags overlays command-line flags onto cfg, with environment
// variables as the fallback default for flags a caller doesn't set
// explicitly.
func ParseFlags(args []string, getenv func(string) string, cfg Config) (Config, error) {
	fs := flag.NewFlagSet("covertsend", flag.ContinueOnError)

	phyCores := fs.Int("phy-cores", cfg.PhyCores, "number of physical cores to pin workers to")
	detectorKind := fs.String("detector", cfg.Detector, "bit detector: threshold or denstream")
	webAddr := fs.String("web-addr", envOr(getenv, "COVERT_WEB_ADDR", cfg.WebAddr), "telemetry HTTP listen address, empty to disable")
	testSeq := fs.String("test-sequence", envOr(getenv, "COVERT_TEST_SEQUENCE", string(cfg.TestSequence[:])), "16-byte payload table indexed by sequence number")
	discoveryInstance := fs.String("discovery-instance", cfg.DiscoveryInstance, "mDNS instance name advertised for peer discovery")
	discoveryPort := fs.Int("discovery-port", cfg.DiscoveryPort, "mDNS advertised port, 0 to disable advertising")
	discoveryOff := fs.Bool("no-discovery", false, "disable mDNS peer advertise/browse entirely")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	cfg.PhyCores = *phyCores
	cfg.Detector = *detectorKind
	cfg.WebAddr = *webAddr
	if len(*testSeq) != 16 {
		return cfg, fmt.Errorf("test-sequence must be exactly 16 bytes, got %d", len(*testSeq))
	}
	copy(cfg.TestSequence[:], *testSeq)
	cfg.DiscoveryInstance = *discoveryInstance
	cfg.DiscoveryPort = *discoveryPort
	if *discoveryOff {
		cfg.DiscoveryPort = 0
	}

	return cfg, nil
}
