// Package crash installs a best-effort signal handler that logs a stack
// trace before the process goes down. Grounded on the original
// artic::ls::crash::setup_crash_handler (original_source/lsp/src/crash.cpp):
// same signal set, same "log then let the process die" intent, translated to
// Go's os/signal + runtime/debug instead of C's signal()/b_stacktrace.
package crash

import (
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
)

// Install starts a goroutine that logs and exits(2) if the process receives
// any of the fatal signals the original handler covered. Unlike the C
// original, a caught SIGSEGV/SIGBUS/SIGILL/SIGFPE here is most likely one
// forwarded by something other than the Go runtime's own fault handling
// (which bypasses os/signal for true memory faults), but the logging intent
// carries over: get a stack trace to stderr/the log file before the process
// is gone.
func Install() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGSEGV, syscall.SIGABRT, syscall.SIGFPE, syscall.SIGILL, syscall.SIGBUS)

	go func() {
		sig := <-sigs
		log.Printf("=== CRASH DETECTED ===\nSignal: %v\n%s", sig, debug.Stack())
		os.Exit(2)
	}()
}
