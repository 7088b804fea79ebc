package sqlite

import "log/slog"

// Tracer observes the interesting lifecycle events of a Conn. All
// methods are called synchronously on the calling goroutine, so
// implementations should return quickly.
type Tracer interface {
	// Query is called once per successfully prepared statement.
	Query(sql string)
	// BeginTx is called when a transaction opens.
	BeginTx(mode TxMode)
	// Commit is called when a transaction commits; err is the COMMIT
	// failure, if any.
	Commit(err error)
	// Rollback is called when a transaction rolls back; err is the
	// ROLLBACK failure, if any.
	Rollback(err error)
}

// LogTracer is a Tracer that writes events to a slog.Logger at debug
// level, errors at error level.
type LogTracer struct {
	Logger *slog.Logger
}

func (t LogTracer) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.Default()
}

func (t LogTracer) Query(sql string) {
	t.logger().Debug("sqlite query", "sql", sql)
}

func (t LogTracer) BeginTx(mode TxMode) {
	t.logger().Debug("sqlite begin", "mode", mode.String())
}

func (t LogTracer) Commit(err error) {
	if err != nil {
		t.logger().Error("sqlite commit failed", "err", err)
		return
	}
	t.logger().Debug("sqlite commit")
}

func (t LogTracer) Rollback(err error) {
	if err != nil {
		t.logger().Error("sqlite rollback failed", "err", err)
		return
	}
	t.logger().Debug("sqlite rollback")
}
