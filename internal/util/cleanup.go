package util

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var (
	cleanupMu  sync.Mutex
	cleanups   []func()
	handlerSet bool
)

// OnInterrupt registers a cleanup to run when the process is interrupted.
// The first call installs the signal handler. Cleanups run in reverse
// registration order, then the process exits.
func OnInterrupt(fn func()) {
	cleanupMu.Lock()
	defer cleanupMu.Unlock()

	cleanups = append(cleanups, fn)
	if handlerSet {
		return
	}
	handlerSet = true

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sig
		fmt.Println("\nInterrupt received. Cleaning up...")

		cleanupMu.Lock()
		fns := make([]func(), len(cleanups))
		copy(fns, cleanups)
		cleanupMu.Unlock()

		for i := len(fns) - 1; i >= 0; i-- {
			fns[i]()
		}

		fmt.Println("Exiting due to interrupt.")
		os.Exit(1)
	}()
}

// RemoveIfEmpty deletes dir when it contains no entries.
func RemoveIfEmpty(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	if len(entries) == 0 {
		if err := os.Remove(dir); err == nil {
			fmt.Printf("Removed empty output folder: %s\n", dir)
		}
	}
}
