package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger keeps the key/value call style used across the service
// (logger.Info("msg", "key", value)) on top of a zap SugaredLogger.
type Logger struct {
	config *LoggerConfig
	sugar  *zap.SugaredLogger
}

func NewLogger() *Logger {
	return NewWithWriter(DefaultConfig(), os.Stdout)
}

// NewWithWriter builds a logger writing to w. Tests use it with a buffer.
func NewWithWriter(cfg *LoggerConfig, w io.Writer) *Logger {
	core := zapcore.NewCore(newEncoder(cfg.Format), zapcore.AddSync(w), cfg.ZapLevel())
	base := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return &Logger{config: cfg, sugar: base.Sugar()}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{config: &LoggerConfig{Level: "error", Format: "json"}, sugar: zap.NewNop().Sugar()}
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, keysAndValues...)
}

func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

// With returns a child logger that always carries the given fields.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{config: l.config, sugar: l.sugar.With(keysAndValues...)}
}

// Named adds a name segment, e.g. "posting" or "http".
func (l *Logger) Named(name string) *Logger {
	return &Logger{config: l.config, sugar: l.sugar.Named(name)}
}

func (l *Logger) Sync() error {
	return l.sugar.Sync()
}
