package log

import (
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the structured logger used by readers, filters and the CLI.
type Log interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	With(fields ...Field) Log
	Enabled(level Level) bool
}

type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel resolves a level name; unknown names fall back to info.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

type Field struct {
	Key   string
	Type  FieldType
	Value any
}

type FieldType uint8

const (
	UnknownType FieldType = iota
	BoolType
	DurationType
	IntType
	Int64Type
	StringType
	ErrorType
)

func Any(key string, val any) Field { return Field{Key: key, Type: UnknownType, Value: val} }

func Bool(key string, val bool) Field { return Field{Key: key, Type: BoolType, Value: val} }

func Duration(key string, val time.Duration) Field {
	return Field{Key: key, Type: DurationType, Value: val}
}

func Int(key string, val int) Field { return Field{Key: key, Type: IntType, Value: val} }

func Int64(key string, val int64) Field { return Field{Key: key, Type: Int64Type, Value: val} }

func String(key string, val string) Field { return Field{Key: key, Type: StringType, Value: val} }

func Error(val error) Field { return Field{Key: "error", Type: ErrorType, Value: val} }

var _ Log = (*Logger)(nil)

// Logger implements Log on top of zap.
type Logger struct {
	zapLogger *zap.Logger
	level     zap.AtomicLevel
}

// New builds a JSON logger writing to stderr.
func New(level Level) *Logger {
	atom := zap.NewAtomicLevelAt(toZapLevel(level))
	config := zap.Config{
		Level:            atom,
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}
	zapLogger, err := config.Build()
	if err != nil {
		panic(err)
	}
	return &Logger{zapLogger: zapLogger, level: atom}
}

// NewWithCore wraps an existing zap core, typically an observer in tests.
func NewWithCore(core zapcore.Core) *Logger {
	atom := zap.NewAtomicLevelAt(zap.DebugLevel)
	for _, l := range []zapcore.Level{zap.DebugLevel, zap.InfoLevel, zap.WarnLevel, zap.ErrorLevel} {
		if core.Enabled(l) {
			atom.SetLevel(l)
			break
		}
	}
	return &Logger{zapLogger: zap.New(core), level: atom}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zapLogger: zap.NewNop(), level: zap.NewAtomicLevelAt(zap.FatalLevel)}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.zapLogger.Debug(msg, toZapFields(fields)...) }
func (l *Logger) Info(msg string, fields ...Field)  { l.zapLogger.Info(msg, toZapFields(fields)...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.zapLogger.Warn(msg, toZapFields(fields)...) }
func (l *Logger) Error(msg string, fields ...Field) { l.zapLogger.Error(msg, toZapFields(fields)...) }

func (l *Logger) With(fields ...Field) Log {
	return &Logger{zapLogger: l.zapLogger.With(toZapFields(fields)...), level: l.level}
}

func (l *Logger) Enabled(level Level) bool { return l.level.Enabled(toZapLevel(level)) }

// SetLevel changes the level of this logger and of every logger derived from
// it with With.
func (l *Logger) SetLevel(level Level) { l.level.SetLevel(toZapLevel(level)) }

// Sync flushes buffered entries.
func (l *Logger) Sync() error { return l.zapLogger.Sync() }

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case LevelDebug:
		return zap.DebugLevel
	case LevelWarn:
		return zap.WarnLevel
	case LevelError:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

func toZapFields(fields []Field) []zap.Field {
	zapFields := make([]zap.Field, len(fields))
	for i, f := range fields {
		switch f.Type {
		case BoolType:
			zapFields[i] = zap.Bool(f.Key, f.Value.(bool))
		case DurationType:
			zapFields[i] = zap.Duration(f.Key, f.Value.(time.Duration))
		case IntType:
			zapFields[i] = zap.Int(f.Key, f.Value.(int))
		case Int64Type:
			zapFields[i] = zap.Int64(f.Key, f.Value.(int64))
		case StringType:
			zapFields[i] = zap.String(f.Key, f.Value.(string))
		case ErrorType:
			err, _ := f.Value.(error)
			zapFields[i] = zap.NamedError(f.Key, err)
		default:
			zapFields[i] = zap.Any(f.Key, f.Value)
		}
	}
	return zapFields
}
