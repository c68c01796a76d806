package logging

import (
	"io"
	"os"
	"sort"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger = newLogger(zapcore.Lock(os.Stdout))
)

func newLogger(w zapcore.WriteSyncer) *zap.Logger {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "time"
	enc.MessageKey = "message"
	enc.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	return zap.New(zapcore.NewCore(zapcore.NewJSONEncoder(enc), w, level))
}

// SetOutput redirects log lines to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	logger = newLogger(zapcore.AddSync(w))
	mu.Unlock()
}

// SetLevel accepts debug, info, warn or error.
func SetLevel(s string) error {
	if s == "" {
		return nil
	}
	return level.UnmarshalText([]byte(s))
}

// SetRunID tags every following line with run_id.
func SetRunID(id string) {
	mu.Lock()
	logger = logger.With(zap.String("run_id", id))
	mu.Unlock()
}

// Sync flushes buffered entries.
func Sync() {
	mu.RLock()
	_ = logger.Sync()
	mu.RUnlock()
}

func Log(lvl zapcore.Level, msg string, fields map[string]any) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if ce := l.Check(lvl, msg); ce != nil {
		ce.Write(toZap(fields)...)
	}
}

func Debug(msg string, fields map[string]any) { Log(zapcore.DebugLevel, msg, fields) }
func Info(msg string, fields map[string]any)  { Log(zapcore.InfoLevel, msg, fields) }
func Warn(msg string, fields map[string]any)  { Log(zapcore.WarnLevel, msg, fields) }
func Error(msg string, fields map[string]any) { Log(zapcore.ErrorLevel, msg, fields) }

func toZap(fields map[string]any) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]zap.Field, 0, len(keys)+1)
	out = append(out, zap.Namespace("fields"))
	for _, k := range keys {
		out = append(out, zap.Any(k, fields[k]))
	}
	return out
}
