package log

import (
	"testing"
)

// TestingLogger returns a Logger which writes to STDOUT if test(s) are being
// run with the verbose (-v) flag, NopLogger otherwise.
//
// NOTE:
// - A call to NewTestingLogger() must be made inside a test (not in the init func)
// because verbose flag only set at the time of testing.
func TestingLogger() Logger {
	if testing.Verbose() {
		return MustNewDefaultLogger(LogFormatPlain, LogLevelDebug)
	}

	return NewNopLogger()
}
