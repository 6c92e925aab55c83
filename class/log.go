package class

import (
	"io"
	"log"
	"os"
)

// Debug toggles verbose logging of class loading and initialization,
// mirroring wasm/log.go's PrintDebugInfo / validate/log.go's debug switch:
// discard by default, switch to stderr when asked.
var Debug = false

var logger = log.New(io.Discard, "", log.Lshortfile)

// SetDebugMode flips the destination of the package logger between
// io.Discard and os.Stderr.
func SetDebugMode(enabled bool) {
	Debug = enabled
	if enabled {
		logger.SetOutput(os.Stderr)
	} else {
		logger.SetOutput(io.Discard)
	}
}
