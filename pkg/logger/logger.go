package logger

// LoggerInstance is a logging backend. The package-level functions fan
// out to every registered backend.
type LoggerInstance interface {
	Log(message string, keyvals ...any)
	Debug(message string, keyvals ...any)
	Info(message string, keyvals ...any)
	Warn(message string, keyvals ...any)
	Error(message string, keyvals ...any)
	Fatal(message string, keyvals ...any)
}

var backends []LoggerInstance

// Init registers the logging backends. Call it once at process start;
// logging before Init is a silent no-op.
func Init(instances ...LoggerInstance) {
	backends = instances
}

func dispatch(emit func(LoggerInstance)) {
	for _, backend := range backends {
		emit(backend)
	}
}

// Log writes a message at the backend's default level.
func Log(message string, keyvals ...any) {
	dispatch(func(b LoggerInstance) { b.Log(message, keyvals...) })
}

// Debug writes a message at DEBUG level.
func Debug(message string, keyvals ...any) {
	dispatch(func(b LoggerInstance) { b.Debug(message, keyvals...) })
}

// Info writes a message at INFO level.
func Info(message string, keyvals ...any) {
	dispatch(func(b LoggerInstance) { b.Info(message, keyvals...) })
}

// Warn writes a message at WARN level.
func Warn(message string, keyvals ...any) {
	dispatch(func(b LoggerInstance) { b.Warn(message, keyvals...) })
}

// Error writes a message at ERROR level.
func Error(message string, keyvals ...any) {
	dispatch(func(b LoggerInstance) { b.Error(message, keyvals...) })
}

// Fatal writes a message at FATAL level and terminates the process.
func Fatal(message string, keyvals ...any) {
	dispatch(func(b LoggerInstance) { b.Fatal(message, keyvals...) })
}
