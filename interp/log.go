package interp

import (
	"io"
	"log"
	"os"
)

// Debug toggles verbose logging of method dispatch, mirroring class/log.go's
// discard-by-default switch.
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
