package metrics

import (
	"context"
)

// 以下包级函数在指标未初始化时静默忽略，供命令行客户端和测试直接调用

// RecordSMSSent 记录短信发送成功
func RecordSMSSent(ctx context.Context, template, provider string, duration float64) {
	if m := GetMetrics(); m != nil {
		m.RecordSMSSent(ctx, template, provider, "success", duration)
	}
}

// RecordSMSFailed 记录短信发送失败
func RecordSMSFailed(ctx context.Context, template, provider string, duration float64) {
	if m := GetMetrics(); m != nil {
		m.RecordSMSSent(ctx, template, provider, "failed", duration)
	}
}

// RecordDecision 记录导航评估
func RecordDecision(ctx context.Context, target, reason string) {
	if m := GetMetrics(); m != nil {
		m.RecordDecision(ctx, target, reason)
	}
}

// RecordStepCompleted 记录步骤完成
func RecordStepCompleted(ctx context.Context, step string) {
	if m := GetMetrics(); m != nil {
		m.RecordStepCompleted(ctx, step)
	}
}

// RecordStatusFetch 记录状态查询
func RecordStatusFetch(ctx context.Context, source string, duration float64, success bool) {
	if m := GetMetrics(); m != nil {
		m.RecordStatusFetch(ctx, source, duration, success)
	}
}

// RecordStatusFetchRetry 记录状态查询重试
func RecordStatusFetchRetry(ctx context.Context, attempt int) {
	if m := GetMetrics(); m != nil {
		m.RecordStatusFetchRetry(ctx, attempt)
	}
}

// RecordStatusCache 记录缓存查询结果
func RecordStatusCache(ctx context.Context, result string) {
	if m := GetMetrics(); m != nil {
		m.RecordStatusCache(ctx, result)
	}
}
