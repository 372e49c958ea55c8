//go:build !linux

package affinity

import "runtime"

// PinCurrentThreadTo locks the calling goroutine to its OS thread. CPU
// affinity is Linux-only (unix.SchedSetaffinity has no portable analogue),
// so on other platforms this only provides the thread-lock half of the
// contract; the port-contention timing model still assumes Linux.
func PinCurrentThreadTo(cpu int) error {
	runtime.LockOSThread()
	return nil
}
