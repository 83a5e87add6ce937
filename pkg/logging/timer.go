package logging

import "time"

// TimedOperation logs the duration of an operation when it ends.
type TimedOperation struct {
	logger Logger
	msg    string
	start  time.Time
	fields []Field
}

// StartTimer begins timing an operation
func StartTimer(logger Logger, msg string, fields ...Field) *TimedOperation {
	return &TimedOperation{logger: OrNop(logger), msg: msg, start: time.Now(), fields: fields}
}

// Elapsed reports the time since StartTimer.
func (t *TimedOperation) Elapsed() time.Duration {
	return time.Since(t.start)
}

// End logs the operation at debug level with its duration and any extra fields.
func (t *TimedOperation) End(extra ...Field) time.Duration {
	elapsed := t.Elapsed()
	fields := make([]Field, 0, len(t.fields)+len(extra)+1)
	fields = append(fields, t.fields...)
	fields = append(fields, extra...)
	t.logger.Debug(t.msg, append(fields, Latency(elapsed))...)
	return elapsed
}

// EndError logs the operation as an error with its duration
func (t *TimedOperation) EndError(err error) time.Duration {
	elapsed := t.Elapsed()
	t.logger.Error(t.msg, append(append([]Field{}, t.fields...), Latency(elapsed), Error(err))...)
	return elapsed
}
