package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics OpenTelemetry 指标集合
type OTelMetrics struct {
	// 短信相关指标
	SMSSentTotal    metric.Int64Counter
	SMSSendDuration metric.Float64Histogram

	// 引导流程指标
	OnboardingDecisionTotal metric.Int64Counter
	OnboardingStepTotal     metric.Int64Counter
	StatusFetchDuration     metric.Float64Histogram
	StatusFetchRetryTotal   metric.Int64Counter
	StatusCacheTotal        metric.Int64Counter
}

var (
	// 全局指标实例
	metrics *OTelMetrics
	// meter 用于创建指标
	meter = otel.Meter("fintrack")
)

// InitMetrics 初始化 OpenTelemetry 指标
func InitMetrics() error {
	var err error

	m := &OTelMetrics{}

	m.SMSSentTotal, err = meter.Int64Counter(
		"sms_sent_total",
		metric.WithDescription("Total number of SMS sent"),
		metric.WithUnit("{sms}"),
	)
	if err != nil {
		return err
	}

	m.SMSSendDuration, err = meter.Float64Histogram(
		"sms_send_duration_seconds",
		metric.WithDescription("Time spent sending SMS in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	m.OnboardingDecisionTotal, err = meter.Int64Counter(
		"onboarding_decision_total",
		metric.WithDescription("Onboarding navigation evaluations by target and reason"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return err
	}

	m.OnboardingStepTotal, err = meter.Int64Counter(
		"onboarding_step_completed_total",
		metric.WithDescription("Completed onboarding steps"),
		metric.WithUnit("{step}"),
	)
	if err != nil {
		return err
	}

	m.StatusFetchDuration, err = meter.Float64Histogram(
		"onboarding_status_fetch_duration_seconds",
		metric.WithDescription("Time spent resolving registration status"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	m.StatusFetchRetryTotal, err = meter.Int64Counter(
		"onboarding_status_fetch_retry_total",
		metric.WithDescription("Retried registration status fetches"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return err
	}

	m.StatusCacheTotal, err = meter.Int64Counter(
		"onboarding_status_cache_total",
		metric.WithDescription("Registration status cache lookups by result"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return err
	}

	metrics = m
	return nil
}

// GetMetrics 获取全局指标实例，未初始化时为 nil
func GetMetrics() *OTelMetrics {
	return metrics
}

// RecordSMSSent 记录短信发送结果
func (m *OTelMetrics) RecordSMSSent(ctx context.Context, template, provider, status string, duration float64) {
	attrs := metric.WithAttributes(
		attribute.String("template", template),
		attribute.String("provider", provider),
		attribute.String("status", status),
	)
	m.SMSSentTotal.Add(ctx, 1, attrs)
	m.SMSSendDuration.Record(ctx, duration, attrs)
}

// RecordDecision 记录一次导航评估
func (m *OTelMetrics) RecordDecision(ctx context.Context, target, reason string) {
	m.OnboardingDecisionTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("target", target),
		attribute.String("reason", reason),
	))
}

// RecordStepCompleted 记录步骤完成
func (m *OTelMetrics) RecordStepCompleted(ctx context.Context, step string) {
	m.OnboardingStepTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("step", step)))
}

// RecordStatusFetch 记录状态查询耗时
func (m *OTelMetrics) RecordStatusFetch(ctx context.Context, source string, duration float64, success bool) {
	m.StatusFetchDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("source", source),
		attribute.Bool("success", success),
	))
}

// RecordStatusFetchRetry 记录状态查询重试
func (m *OTelMetrics) RecordStatusFetchRetry(ctx context.Context, attempt int) {
	m.StatusFetchRetryTotal.Add(ctx, 1, metric.WithAttributes(attribute.Int("attempt", attempt)))
}

// RecordStatusCache 记录缓存命中情况，result 取 hit、miss、error
func (m *OTelMetrics) RecordStatusCache(ctx context.Context, result string) {
	m.StatusCacheTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
