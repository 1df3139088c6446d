package logger

import "fmt"

// LogBatchProgress logs progress through the filtered tweet list
func LogBatchProgress(log Logger, start, end, total int) {
	percentage := 0.0
	if total > 0 {
		percentage = float64(start) / float64(total) * 100
	}

	log.InfoWithFields("Batch started", map[string]interface{}{
		"start":      start,
		"end":        end,
		"total":      total,
		"percentage": fmt.Sprintf("%.2f%%", percentage),
	})
}

// LogComponentStart logs when a component starts
func LogComponentStart(log Logger, component string, config map[string]interface{}) {
	l := log.WithField("component", component)
	if len(config) > 0 {
		l = l.WithFields(config)
	}
	l.Info("Component started")
}

// NewNopLogger creates a no-operation logger
func NewNopLogger() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (n nopLogger) Debug(msg string)                                          {}
func (n nopLogger) Info(msg string)                                           {}
func (n nopLogger) Warn(msg string)                                           {}
func (n nopLogger) Error(msg string)                                          {}
func (n nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n nopLogger) WithError(err error) Logger                                { return n }
func (n nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
