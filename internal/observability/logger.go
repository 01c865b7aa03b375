// File: internal/observability/logger.go
package observability

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/xkilldash9x/framesmith/internal/config"
)

var (
	// globalLogger is swapped atomically so components can fetch it from any goroutine.
	globalLogger atomic.Pointer[zap.Logger]
	// globalLevel is shared by every core so the verbosity can change after startup.
	globalLevel = zap.NewAtomicLevel()
	once        sync.Once
)

// ANSI escape sequences for level colors.
const (
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorWhite   = "\x1b[37m"
	colorReset   = "\x1b[0m"
)

var colorMap = map[string]string{
	"red":     colorRed,
	"green":   colorGreen,
	"yellow":  colorYellow,
	"blue":    colorBlue,
	"magenta": colorMagenta,
	"cyan":    colorCyan,
	"white":   colorWhite,
}

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// Initialize builds the global logger once. Console output goes to
// consoleWriter; when cfg.LogFile is set, a JSON copy is written to a
// rotating file as well.
func Initialize(cfg config.LoggerConfig, consoleWriter zapcore.WriteSyncer) {
	once.Do(func() {
		if err := globalLevel.UnmarshalText([]byte(cfg.Level)); err != nil {
			globalLevel.SetLevel(zap.InfoLevel)
		}

		cores := []zapcore.Core{zapcore.NewCore(newEncoder(cfg), consoleWriter, globalLevel)}
		if cfg.LogFile != "" {
			rotator := &lumberjack.Logger{
				Filename:   cfg.LogFile,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   cfg.Compress,
			}
			fileEncoder := newEncoder(config.LoggerConfig{Format: "json"})
			cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(rotator), globalLevel))
		}

		opts := []zap.Option{zap.AddStacktrace(zap.ErrorLevel)}
		if cfg.AddSource {
			opts = append(opts, zap.AddCaller())
		}

		logger := zap.New(zapcore.NewTee(cores...), opts...)
		if cfg.ServiceName != "" {
			logger = logger.Named(cfg.ServiceName)
		}
		globalLogger.Store(logger)
		zap.ReplaceGlobals(logger)
		zap.RedirectStdLog(logger)
	})
}

// InitializeLogger writes console logs to stderr. Stdout is reserved for
// command output such as converted documents and generated code.
func InitializeLogger(cfg config.LoggerConfig) {
	Initialize(cfg, zapcore.Lock(os.Stderr))
}

// SetLevel changes the verbosity of the global logger at runtime.
func SetLevel(l zapcore.Level) {
	globalLevel.SetLevel(l)
}

// ResetForTest clears the global logger so a test can initialize its own.
// Only tests should call it.
func ResetForTest() {
	globalLogger.Store(nil)
	globalLevel = zap.NewAtomicLevel()
	once = sync.Once{}
}

func newEncoder(cfg config.LoggerConfig) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)

	if cfg.Format != "console" {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewJSONEncoder(ec)
	}

	ec.EncodeLevel = colorLevelEncoder(cfg.Colors)
	// "framesmith.pipeline." reads as a prefix on the single console line.
	ec.EncodeName = func(name string, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(name + ".")
	}
	return zapcore.NewConsoleEncoder(ec)
}

func colorLevelEncoder(colors config.ColorConfig) zapcore.LevelEncoder {
	byLevel := map[zapcore.Level]string{
		zapcore.DebugLevel:  colors.Debug,
		zapcore.InfoLevel:   colors.Info,
		zapcore.WarnLevel:   colors.Warn,
		zapcore.ErrorLevel:  colors.Error,
		zapcore.DPanicLevel: colors.DPanic,
		zapcore.PanicLevel:  colors.Panic,
		zapcore.FatalLevel:  colors.Fatal,
	}
	return func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		label := strings.ToUpper(level.String())
		if code := colorMap[byLevel[level]]; code != "" {
			enc.AppendString(code + label + colorReset)
			return
		}
		enc.AppendString(label)
	}
}

// GetLogger returns the global logger, or a development logger when
// initialization has not happened yet (as in most unit tests).
func GetLogger() *zap.Logger {
	if logger := globalLogger.Load(); logger != nil {
		return logger
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l.Named("fallback")
}

// Component returns the global logger scoped to one subsystem.
func Component(name string) *zap.Logger {
	return GetLogger().Named(name)
}

// Sync flushes buffered entries. Errors from syncing a terminal are expected
// on several platforms and are not reported.
func Sync() {
	logger := globalLogger.Load()
	if logger == nil {
		return
	}
	if err := logger.Sync(); err != nil && !ignorableSyncError(err) {
		fmt.Fprintln(os.Stderr, "Error: failed to sync logger:", err)
	}
}

func ignorableSyncError(err error) bool {
	msg := err.Error()
	for _, s := range []string{"/dev/stdout", "/dev/stderr", "invalid argument", "inappropriate ioctl", "operation not supported"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
