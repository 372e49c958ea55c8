// Command portspam-toy is a manual verification tool for the physical
// layer: it saturates (bit=1) or idles (bit=0) every physical core for a
// few seconds, letting an operator confirm port contention with an
// external profiler. It is not part of the core covert-channel library.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/MIAOUS-group/go-port-contention/internal/affinity"
	"github.com/MIAOUS-group/go-port-contention/internal/physical"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: portspam-toy 0|1")
		os.Exit(1)
	}
	bit, err := strconv.Atoi(os.Args[1])
	if err != nil || (bit != 0 && bit != 1) {
		fmt.Fprintf(os.Stderr, "invalid parameter %q, please enter 0 or 1\n", os.Args[1])
		os.Exit(1)
	}

	const cores = 4
	const duration = 3 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	var wg sync.WaitGroup
	for core := 0; core < cores; core++ {
		wg.Add(1)
		go func(core int) {
			defer wg.Done()
			_ = affinity.PinCurrentThreadTo(core)
			for ctx.Err() == nil {
				if bit == 1 {
					physical.SendOne(ctx, physical.BitDuration)
				} else {
					physical.SendZero(ctx, physical.BitDuration)
				}
			}
		}(core)
	}
	wg.Wait()
}
