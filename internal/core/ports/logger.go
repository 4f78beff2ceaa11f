package ports

// Logger defines the interface for logging.
// args are slog-style key/value pairs attached to the message.
//
//go:generate mockgen -source=logger.go -destination=mocks/mock_logger.go -package=mocks
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(err error)
}
