package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// keyFamilyDepth 键名保留的段数，其余段（手机号哈希、用户 ID）折叠为 *
const keyFamilyDepth = 2

// Hook 为每条命令和 pipeline 记录 span 与耗时
type Hook struct {
	tracer   trace.Tracer
	base     []attribute.KeyValue
	commands metric.Int64Counter
	duration metric.Float64Histogram
}

// NewHook 创建 Hook，指标在 meter 上注册
func NewHook(serviceName string, db int, meter metric.Meter) (*Hook, error) {
	commands, err := meter.Int64Counter(
		"redis.commands.total",
		metric.WithDescription("Redis commands by family and outcome"),
		metric.WithUnit("{command}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"redis.command.duration",
		metric.WithDescription("Redis command latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05, 0.25, 1),
	)
	if err != nil {
		return nil, err
	}

	return &Hook{
		tracer: otel.Tracer(serviceName + ".redis"),
		base: []attribute.KeyValue{
			semconv.DBSystemRedis,
			semconv.DBRedisDBIndex(db),
		},
		commands: commands,
		duration: duration,
	}, nil
}

func (h *Hook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h *Hook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		family := KeyFamily(firstKey(cmd))
		attrs := append(h.base[:len(h.base):len(h.base)],
			semconv.DBOperation(cmd.Name()),
			attribute.String("db.redis.key_family", family),
		)

		ctx, span := h.tracer.Start(ctx, cmd.Name(),
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		started := time.Now()
		err := next(ctx, cmd)
		h.finish(ctx, span, cmd.Name(), family, started, err)
		return err
	}
}

func (h *Hook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		names := make([]string, 0, len(cmds))
		for _, cmd := range cmds {
			names = append(names, cmd.Name())
		}

		ctx, span := h.tracer.Start(ctx, "pipeline",
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(h.base...),
			trace.WithAttributes(
				attribute.StringSlice("db.redis.pipeline.commands", names),
			),
		)
		defer span.End()

		family := ""
		if len(cmds) > 0 {
			family = KeyFamily(firstKey(cmds[0]))
		}

		started := time.Now()
		err := next(ctx, cmds)
		h.finish(ctx, span, "pipeline", family, started, err)
		return err
	}
}

func (h *Hook) finish(ctx context.Context, span trace.Span, op, family string, started time.Time, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, redis.Nil):
		outcome = "miss"
	default:
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	attrs := metric.WithAttributes(
		attribute.String("redis.command", op),
		attribute.String("redis.key_family", family),
		attribute.String("redis.outcome", outcome),
	)
	h.commands.Add(ctx, 1, attrs)
	h.duration.Record(ctx, time.Since(started).Seconds(), attrs)
}

func firstKey(cmd redis.Cmder) string {
	args := cmd.Args()
	if len(args) < 2 {
		return ""
	}
	key, _ := args[1].(string)
	return key
}

// KeyFamily 把 fint:captcha:<hash>:contact 折叠成 fint:captcha:*
func KeyFamily(key string) string {
	if key == "" {
		return ""
	}
	parts := strings.SplitN(key, ":", keyFamilyDepth+1)
	if len(parts) <= keyFamilyDepth {
		return key
	}
	return strings.Join(parts[:keyFamilyDepth], ":") + ":*"
}

// Instrument 注册指标并挂载 Hook
func Instrument(client *redis.Client, serviceName string) error {
	hook, err := NewHook(serviceName, client.Options().DB, otel.Meter(serviceName+".redis"))
	if err != nil {
		return err
	}
	client.AddHook(hook)
	return nil
}
