//go:build linux

// Package affinity pins the calling goroutine's OS thread to a specific
// logical CPU, giving each sender/receiver worker exclusive-ish access to a
// physical core.
package affinity

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// PinCurrentThreadTo locks the calling goroutine to its OS thread and pins
// that thread to the given logical CPU. The goroutine must not migrate for
// the pin to matter, so callers should treat this as a one-way commitment
// for the lifetime of the goroutine.
func PinCurrentThreadTo(cpu int) error {
	runtime.LockOSThread()
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("pin to cpu %d: %w", cpu, err)
	}
	return nil
}
