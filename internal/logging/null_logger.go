package logging

// NullLogger drops every message. Inject it wherever a dbshift.Logger
// is required but output is unwanted, typically in tests and when
// embedding the engine as a library.
type NullLogger struct{}

// NewNullLogger creates a NullLogger.
func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

func (l *NullLogger) Verbose(format string, args ...interface{}) {}

func (l *NullLogger) Info(format string, args ...interface{}) {}

func (l *NullLogger) Error(format string, args ...interface{}) {}
