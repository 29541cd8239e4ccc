package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

var errAlreadyRunning = errors.New("another instance is running")

// managePIDFile writes the current PID to path, optionally holding an
// exclusive lock. The returned cleanup releases the lock and removes the file.
func managePIDFile(path string, lock bool) (func(), error) {
	// First attempt creates the file exclusively
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if !os.IsExist(err) {
			return nil, fmt.Errorf("cannot create PID file: %w", err)
		}

		// File exists, refuse only if its process is still alive
		if lock {
			if err := checkStalePID(path); err != nil {
				return nil, err
			}
		}

		// Reuse it, truncating the old PID
		file, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return nil, fmt.Errorf("cannot open PID file: %w", err)
		}
	}

	// Non-blocking exclusive lock, held for the process lifetime
	if lock {
		if err = syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
			file.Close()
			if errors.Is(err, syscall.EWOULDBLOCK) {
				return nil, errAlreadyRunning
			}
			return nil, fmt.Errorf("lock failed: %w", err)
		}
	}

	// Write current PID
	if _, err = fmt.Fprintf(file, "%d\n", os.Getpid()); err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("cannot write PID: %w", err)
	}

	// Flush so other instances read a complete PID
	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("cannot sync PID file: %w", err)
	}

	cleanup := func() {
		if lock {
			// Closing the file releases it too
			syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
		}
		file.Close()
		os.Remove(path)
	}

	return cleanup, nil
}

// checkStalePID allows reuse of a PID file whose process is gone and
// refuses when the recorded process is still alive
func checkStalePID(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read existing PID file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		// Corrupted content is overwritten
		return nil
	}
	// A restart that reuses our own PID is not a conflict
	if pid == os.Getpid() {
		return nil
	}

	// FindProcess never fails on Unix
	proc, _ := os.FindProcess(pid)
	// Signal 0 probes for existence without delivering anything
	err = proc.Signal(syscall.Signal(0))
	switch {
	case err == nil:
		return fmt.Errorf("%w (pid %d)", errAlreadyRunning, pid)
	case errors.Is(err, os.ErrProcessDone), errors.Is(err, syscall.ESRCH):
		// Defunct process, the file is stale
		return nil
	default:
		// Alive but owned by another user
		return fmt.Errorf("process %d exists but cannot verify ownership: %v", pid, err)
	}
}
