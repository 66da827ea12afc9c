// Package logger 全局 zap 日志，同时接管 hertz 的 hlog 输出
package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzzap "github.com/hertz-contrib/logger/zap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"FinTrack/config"
)

var (
	// Logger Init 之前为 Nop，测试中无需初始化
	Logger = zap.NewNop()
	output io.Closer
)

func Init() {
	cfg := config.Cfg

	level, err := zapcore.ParseLevel(cfg.LoggerLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	atom := zap.NewAtomicLevelAt(level)

	ws, openErr := writeSyncer(cfg.LoggerOutputPath)

	hz := hertzzap.NewLogger(
		hertzzap.WithCoreEnc(encoder(cfg)),
		hertzzap.WithCoreWs(ws),
		hertzzap.WithCoreLevel(atom),
		hertzzap.WithZapOptions(
			zap.AddCaller(),
			zap.AddStacktrace(zapcore.ErrorLevel),
			zap.Fields(
				zap.String("service", cfg.ServiceName),
				zap.String("env", cfg.Environment),
			),
		),
	)
	hlog.SetLogger(hz)
	hlog.SetLevel(hlogLevel(level))

	Logger = hz.Logger()
	if openErr != nil {
		Logger.Warn("Failed to open log file, writing to stdout",
			zap.String("path", cfg.LoggerOutputPath),
			zap.Error(openErr),
		)
	}
	Logger.Debug("Logger ready",
		zap.Stringer("level", level),
		zap.String("format", cfg.LoggerFormat),
	)
}

func Sync() {
	_ = Logger.Sync()
	if output != nil {
		_ = output.Close()
	}
}

// Ctx 附带当前 span 的 trace_id，便于和链路对齐
func Ctx(ctx context.Context) *zap.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return Logger
	}
	return Logger.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}

func encoder(cfg config.Config) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeCaller = zapcore.ShortCallerEncoder

	if cfg.IsDevelopment() || strings.EqualFold(cfg.LoggerFormat, "text") {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(ec)
	}
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(ec)
}

func writeSyncer(path string) (zapcore.WriteSyncer, error) {
	if path == "" || strings.EqualFold(path, "stdout") {
		return zapcore.AddSync(os.Stdout), nil
	}
	if strings.EqualFold(path, "stderr") {
		return zapcore.AddSync(os.Stderr), nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return zapcore.AddSync(os.Stdout), err
	}
	output = f
	return zapcore.AddSync(f), nil
}

func hlogLevel(l zapcore.Level) hlog.Level {
	switch {
	case l <= zapcore.DebugLevel:
		return hlog.LevelDebug
	case l == zapcore.InfoLevel:
		return hlog.LevelInfo
	case l == zapcore.WarnLevel:
		return hlog.LevelWarn
	default:
		return hlog.LevelError
	}
}
