/*
Package app signal handling implementation provides graceful shutdown for
the wbclean application. The first SIGINT or SIGTERM stops dispatching new
files while in-flight engine invocations wind down, so the partial summary
still prints; a second signal exits immediately.
*/
package app

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/saraf/clean-whiteboard-images/pkg/logger"
)

// signalState tracks the state of signal handling
type signalState struct {
	shutdownInitiated atomic.Bool
}

// setupSignalHandling initializes signal handling for graceful shutdown
func (a *App) setupSignalHandling() {
	state := &signalState{}

	a.log.Debug("Initializing signal handlers")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGHUP,
	)

	go a.handleSignals(sigChan, state)
}

// handleSignals processes incoming system signals. SIGHUP gets the same
// treatment as an interrupt: when the terminal goes away the run should
// stop and leave no half-written outputs behind.
func (a *App) handleSignals(sigChan chan os.Signal, state *signalState) {
	for sig := range sigChan {
		a.log.WithFields(logger.Fields{
			"signal": sig.String(),
		}).Debug("Received system signal")

		if !state.shutdownInitiated.CompareAndSwap(false, true) {
			a.handleForcedShutdown()
			return
		}

		a.handleGracefulShutdown(sig)
	}
}

// handleGracefulShutdown stops dispatch and lets in-flight engine
// invocations finish recording their outcomes.
func (a *App) handleGracefulShutdown(sig os.Signal) {
	a.log.WithFields(logger.Fields{
		"signal": sig.String(),
	}).Warn("Interrupt received, stopping dispatch (interrupt again to force quit)")

	a.cancel()
}

// handleForcedShutdown exits immediately without waiting for in-flight
// work to settle.
func (a *App) handleForcedShutdown() {
	a.log.Warn("Forced shutdown")

	if a.progress != nil {
		a.progress.Stop()
	}

	os.Exit(1)
}
