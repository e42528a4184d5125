package ports

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	// Critical reports conditions more severe than Error, such as a failed
	// rollback that leaves a transaction in an unknown state.
	Critical(msg string, args ...any)
}
