package log

import (
	"context"
	"io"
	"log"
	"os"
)

// CslLogger ghi log ra console, bỏ qua các dòng có mức thấp hơn min.
type CslLogger struct {
	min Level
	out *log.Logger
}

func NewCslLogger(level string) (*CslLogger, error) {
	return NewCslLoggerTo(os.Stderr, level), nil
}

func NewCslLoggerTo(w io.Writer, level string) *CslLogger {
	return &CslLogger{
		min: ParseLevel(level),
		out: log.New(w, "", log.LstdFlags),
	}
}

func (l *CslLogger) write(lvl Level, format string, args ...interface{}) {
	if lvl > l.min {
		return
	}
	l.out.Printf("["+lvl.String()+"] "+format, args...)
}

func (l *CslLogger) Info(ctx context.Context, format string, args ...interface{}) {
	l.write(LevelInfo, format, args...)
}

func (l *CslLogger) Alert(ctx context.Context, format string, args ...interface{}) {
	l.write(LevelAlert, format, args...)
}

func (l *CslLogger) Error(ctx context.Context, format string, args ...interface{}) {
	l.write(LevelError, format, args...)
}

func (l *CslLogger) Warn(ctx context.Context, format string, args ...interface{}) {
	l.write(LevelWarn, format, args...)
}

func (l *CslLogger) Debug(ctx context.Context, format string, args ...interface{}) {
	l.write(LevelDebug, format, args...)
}

func (l *CslLogger) Critical(ctx context.Context, format string, args ...interface{}) {
	l.write(LevelCritical, format, args...)
}

func (l *CslLogger) Emergency(ctx context.Context, format string, args ...interface{}) {
	l.write(LevelEmergency, format, args...)
}

func (l *CslLogger) Notice(ctx context.Context, format string, args ...interface{}) {
	l.write(LevelNotice, format, args...)
}
