//go:build windows

package main

import "os"

// shutdownSignals trigger a graceful shutdown of the server.
// syscall.SIGTERM is never delivered on Windows.
var shutdownSignals = []os.Signal{os.Interrupt}
