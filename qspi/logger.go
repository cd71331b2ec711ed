package qspi

// Logger is the logging interface shared by this module. Messages are
// accompanied by alternating key/value pairs.
//
// Example implementation using the standard library:
//
//	type stdLogger struct{}
//
//	func (l stdLogger) Debug(msg string, kv ...interface{}) {
//		log.Printf("DEBUG: %s %v", msg, kv)
//	}
//
//	func (l stdLogger) Info(msg string, kv ...interface{}) {
//		log.Printf("INFO: %s %v", msg, kv)
//	}
//
//	func (l stdLogger) Error(msg string, kv ...interface{}) {
//		log.Printf("ERROR: %s %v", msg, kv)
//	}
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}
