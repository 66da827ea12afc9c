package onboarding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakySource struct {
	failures int
	err      error
	calls    int
	state    CompletionState
}

func (f *flakySource) FetchCompletionState(context.Context, string) (CompletionState, error) {
	f.calls++
	if f.calls <= f.failures {
		return CompletionState{}, f.err
	}
	return f.state, nil
}

func fastPolicy(attempts uint) RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     attempts,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	}
}

func TestRetryingSourceRecovers(t *testing.T) {
	src := &flakySource{failures: 2, err: errors.New("timeout"), state: state(true, true, false, false)}
	rs := NewRetryingSource(src, fastPolicy(3))

	got, err := rs.FetchCompletionState(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, state(true, true, false, false), got)
	assert.Equal(t, 3, src.calls)
}

func TestRetryingSourceHonoursCeiling(t *testing.T) {
	boom := errors.New("timeout")
	src := &flakySource{failures: 10, err: boom}
	rs := NewRetryingSource(src, fastPolicy(4))

	_, err := rs.FetchCompletionState(context.Background(), "7")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 4, src.calls)
}

func TestRetryingSourceStopsOnPermanent(t *testing.T) {
	notFound := errors.New("404")
	src := &flakySource{failures: 10, err: PermanentError(notFound)}
	rs := NewRetryingSource(src, fastPolicy(5))

	_, err := rs.FetchCompletionState(context.Background(), "7")
	require.Error(t, err)
	assert.True(t, IsPermanent(err))
	assert.ErrorIs(t, err, notFound)
	assert.Equal(t, 1, src.calls)
}

func TestRetryingSourceContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &flakySource{failures: 10, err: errors.New("timeout")}
	rs := NewRetryingSource(src, RetryPolicy{MaxAttempts: 5, InitialInterval: time.Second})

	_, err := rs.FetchCompletionState(ctx, "7")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, src.calls)
}

func TestRetryingSourceZeroAttempts(t *testing.T) {
	src := &flakySource{failures: 10, err: errors.New("timeout")}
	rs := NewRetryingSource(src, RetryPolicy{})

	_, err := rs.FetchCompletionState(context.Background(), "7")
	assert.Error(t, err)
	assert.Equal(t, 1, src.calls)
}

func TestPermanentErrorNil(t *testing.T) {
	assert.NoError(t, PermanentError(nil))
	assert.False(t, IsPermanent(errors.New("x")))
}

func TestRetryingSourceInSession(t *testing.T) {
	src := &flakySource{failures: 1, err: errors.New("reset"), state: state(true, false, false, false)}
	nav := &recordingNavigator{}
	s := NewSession("7", NewRetryingSource(src, fastPolicy(3)), newEffect(nav))

	out := s.Visit(context.Background(), "/onboarding/settings")
	assert.True(t, out.Navigated())
	assert.Equal(t, StepAddress, out.Decision.Target)
}
