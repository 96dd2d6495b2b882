//go:build windows

package out

import "os"

var resumeSignals []os.Signal
