package queue

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinTrack/internal/model"
	"FinTrack/pkg/errors"
	"FinTrack/pkg/snowflake"
	"FinTrack/storage/mq"
	"FinTrack/storage/redis"
)

func setupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	c := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })
	redis.SetClient(c)
	return mr
}

type published struct {
	exchange   string
	routingKey string
	messageID  string
	body       model.OnboardingEvent
}

func capture(out *[]published) PublishFunc {
	return func(_ context.Context, exchange, routingKey, messageID string, body interface{}) error {
		*out = append(*out, published{exchange, routingKey, messageID, body.(model.OnboardingEvent)})
		return nil
	}
}

func TestProducer(t *testing.T) {
	require.NoError(t, snowflake.Init(1, 1))

	var sent []published
	p := NewProducer(capture(&sent))
	p.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	require.NoError(t, p.PublishStepCompleted(context.Background(), 42, "address"))
	require.NoError(t, p.PublishOnboardingCompleted(context.Background(), 42))

	require.Len(t, sent, 2)
	assert.Equal(t, mq.ExchangeEvents, sent[0].exchange)
	assert.Equal(t, "onboarding.step.address", sent[0].routingKey)
	assert.Equal(t, model.EventStepCompleted, sent[0].body.EventType)
	assert.Equal(t, "address", sent[0].body.Step)
	assert.Equal(t, "2026-01-02T03:04:05Z", sent[0].body.OccurredAt)
	assert.Equal(t, sent[0].messageID, sent[0].body.MessageID)

	assert.Equal(t, mq.RoutingKeyOnboardingCompleted, sent[1].routingKey)
	assert.Equal(t, model.EventOnboardingCompleted, sent[1].body.EventType)
	assert.NotEqual(t, sent[0].messageID, sent[1].messageID)
}

func TestProducerPublishError(t *testing.T) {
	require.NoError(t, snowflake.Init(1, 1))

	boom := stderrors.New("channel closed")
	p := NewProducer(func(context.Context, string, string, string, interface{}) error { return boom })
	assert.ErrorIs(t, p.PublishStepCompleted(context.Background(), 1, "profile"), boom)
}

type fakeInvalidator struct{ users []string }

func (f *fakeInvalidator) Invalidate(_ context.Context, userID string) error {
	f.users = append(f.users, userID)
	return nil
}

type fakeWelcome struct {
	calls int
	err   error
}

func (f *fakeWelcome) SendWelcome(context.Context, int64) error {
	f.calls++
	return f.err
}

func body(t *testing.T, e model.OnboardingEvent) []byte {
	t.Helper()
	b, err := json.Marshal(e)
	require.NoError(t, err)
	return b
}

func TestStatusInvalidateHandler(t *testing.T) {
	inv := &fakeInvalidator{}
	h := StatusInvalidateHandler(inv)

	require.NoError(t, h(context.Background(), body(t, model.OnboardingEvent{MessageID: "m1", UserID: 7, Step: "profile"})))
	require.NoError(t, h(context.Background(), body(t, model.OnboardingEvent{MessageID: "m1", UserID: 7, Step: "profile"})))
	assert.Equal(t, []string{"7", "7"}, inv.users)

	err := h(context.Background(), []byte("{"))
	assert.True(t, errors.IsSkipMessageError(err))
}

func TestWelcomeHandlerOnce(t *testing.T) {
	setupRedis(t)
	sender := &fakeWelcome{}
	h := WelcomeHandler(sender)
	msg := body(t, model.OnboardingEvent{MessageID: "m2", UserID: 7, EventType: model.EventOnboardingCompleted})

	require.NoError(t, h(context.Background(), msg))
	err := h(context.Background(), msg)
	assert.True(t, errors.IsSkipMessageError(err))
	assert.Equal(t, 1, sender.calls)
}

func TestWelcomeHandlerRetryAfterFailure(t *testing.T) {
	setupRedis(t)
	sender := &fakeWelcome{err: stderrors.New("sms down")}
	h := WelcomeHandler(sender)
	msg := body(t, model.OnboardingEvent{MessageID: "m3", UserID: 7})

	err := h(context.Background(), msg)
	require.Error(t, err)
	assert.False(t, errors.IsSkipMessageError(err))

	sender.err = nil
	require.NoError(t, h(context.Background(), msg))
	assert.Equal(t, 2, sender.calls)
}
