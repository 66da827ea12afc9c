package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"FinTrack/config"
	"FinTrack/internal/cache"
	"FinTrack/internal/repository/repositorytest"
	"FinTrack/pkg/slider"
	"FinTrack/pkg/sms"
	"FinTrack/storage/redis"
)

type publishedEvent struct {
	userID int64
	step   string
}

// capturePublisher 记录发布的事件
type capturePublisher struct {
	mu        sync.Mutex
	steps     []publishedEvent
	completed []int64
	err       error
}

func (p *capturePublisher) PublishStepCompleted(_ context.Context, userID int64, step string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.steps = append(p.steps, publishedEvent{userID: userID, step: step})
	return p.err
}

func (p *capturePublisher) PublishOnboardingCompleted(_ context.Context, userID int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed = append(p.completed, userID)
	return p.err
}

type env struct {
	mr       *miniredis.Miniredis
	store    *repositorytest.MemoryStore
	reg      *RegistrationService
	steps    *StepService
	events   *capturePublisher
	smsCalls *sms.MockClient
}

func setup(t *testing.T) *env {
	t.Helper()

	prev := config.Cfg
	config.Cfg.EncryptionKey = "0123456789abcdef0123456789abcdef"
	config.Cfg.PhoneHashSalt = "salt"
	config.Cfg.CaptchaExpireSeconds = 120
	config.Cfg.CaptchaMaxDaily = 5
	config.Cfg.CaptchaSliderThreshold = 2
	config.Cfg.ContactVerifyPhone = true
	config.Cfg.SMSSignName = "FinTrack"
	config.Cfg.SMSTemplateCode = "SMS_CODE"
	config.Cfg.SMSWelcomeTemplateCode = "SMS_WELCOME"
	t.Cleanup(func() { config.Cfg = prev })

	mr := miniredis.RunT(t)
	c := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })
	redis.SetClient(c)

	mock := sms.NewMockClient()
	sms.SetClient(mock)
	slider.SetClient(&slider.MockClient{})

	store := repositorytest.NewMemoryStore()
	reg := NewRegistrationService(store, cache.NewCircuitBreaker("test", 3, time.Minute))
	events := &capturePublisher{}

	return &env{
		mr:       mr,
		store:    store,
		reg:      reg,
		steps:    NewStepService(store, reg, events),
		events:   events,
		smsCalls: mock,
	}
}

func configVerify(t *testing.T, on bool) {
	t.Helper()
	prev := config.Cfg.ContactVerifyPhone
	config.Cfg.ContactVerifyPhone = on
	t.Cleanup(func() { config.Cfg.ContactVerifyPhone = prev })
}
