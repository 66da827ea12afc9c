package model

// 事件类型
const (
	EventStepCompleted       = "onboarding.step_completed"
	EventOnboardingCompleted = "onboarding.completed"
)

// OnboardingEvent 引导事件消息，步骤完成和整体完成共用
type OnboardingEvent struct {
	MessageID  string `json:"message_id"` // 幂等键
	EventType  string `json:"event_type"`
	UserID     int64  `json:"user_id"` // users.public_id
	Step       string `json:"step,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
