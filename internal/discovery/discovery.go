// Package discovery advertises and locates covert-channel peers over mDNS.
// It plays no part in the wire protocol itself, which remains a pure
// IP-less port-contention channel; it exists only so an operator can find
// the paired process on the local network for out-of-band setup.
package discovery

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/grandcat/zeroconf"

	"github.com/MIAOUS-group/go-port-contention/internal/logging"
)

const serviceType = "_portcontention._tcp"

// Peer represents a discovered covert-channel process.
type Peer struct {
	Instance  string
	Hostname  string
	Addresses []net.IP
	Port      int
}

// Advertise registers this process on the local network under instance name
// until ctx is cancelled. Failures to register are retried with exponential
// backoff, mirroring go-ampio-server's reconnect policy around its
// socketcan backend.
func Advertise(ctx context.Context, instance string, port int, logger logging.Logger) error {
	if logger == nil {
		logger = logging.Default()
	}
	var server *zeroconf.Server
	operation := func() error {
		s, err := zeroconf.Register(instance, serviceType, "local.", port, nil, nil)
		if err != nil {
			return fmt.Errorf("register mdns service: %w", err)
		}
		server = s
		return nil
	}

	boff := backoff.NewExponentialBackOff()
	boff.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(operation, boff); err != nil {
		return err
	}
	logger.Info("mdns advertised", logging.Field{Key: "instance", Value: instance}, logging.Field{Key: "port", Value: port})

	go func() {
		<-ctx.Done()
		server.Shutdown()
	}()
	return nil
}

// Browse performs a blocking mDNS browse for covert-channel peers and
// returns deduplicated entries, retrying the initial resolver setup with
// exponential backoff before giving up.
func Browse(ctx context.Context, timeout time.Duration) ([]Peer, error) {
	var resolver *zeroconf.Resolver
	operation := func() error {
		r, err := zeroconf.NewResolver(nil)
		if err != nil {
			return fmt.Errorf("resolver error: %w", err)
		}
		resolver = r
		return nil
	}
	boff := backoff.NewExponentialBackOff()
	boff.MaxElapsedTime = 10 * time.Second
	if err := backoff.Retry(operation, boff); err != nil {
		return nil, err
	}

	browseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	resultMap := make(map[string]Peer)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case e, ok := <-entries:
				if !ok {
					close(done)
					return
				}
				if e == nil {
					continue
				}
				addrs := make([]net.IP, 0, len(e.AddrIPv4)+len(e.AddrIPv6))
				addrs = append(addrs, e.AddrIPv4...)
				addrs = append(addrs, e.AddrIPv6...)
				key := fmt.Sprintf("%s|%d", e.HostName, e.Port)
				resultMap[key] = Peer{
					Instance:  cleanInstance(e.Instance),
					Hostname:  e.HostName,
					Addresses: addrs,
					Port:      e.Port,
				}
			case <-browseCtx.Done():
				close(done)
				return
			}
		}
	}()

	if err := resolver.Browse(browseCtx, serviceType, "local.", entries); err != nil {
		return nil, fmt.Errorf("browse error: %w", err)
	}
	<-done

	out := make([]Peer, 0, len(resultMap))
	for _, p := range resultMap {
		out = append(out, p)
	}
	return out, nil
}

func cleanInstance(s string) string {
	return strings.ReplaceAll(s, `\ `, " ")
}
