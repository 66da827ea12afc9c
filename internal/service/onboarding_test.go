package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinTrack/internal/onboarding"
	pkgerrors "FinTrack/pkg/errors"
)

func staticSource(state onboarding.CompletionState, err error) onboarding.StatusSource {
	return onboarding.StatusSourceFunc(func(context.Context, string) (onboarding.CompletionState, error) {
		return state, err
	})
}

func newOnboarding(source onboarding.StatusSource, opts ...onboarding.Option) *OnboardingService {
	return NewOnboardingService(source, onboarding.NewSequencer(onboarding.DefaultRoutes(), opts...))
}

func TestNextStepNavigates(t *testing.T) {
	svc := newOnboarding(staticSource(onboarding.CompletionState{HasProfile: true}, nil))

	data, err := svc.NextStep(context.Background(), "42", "/onboarding/profile")
	require.NoError(t, err)
	assert.Equal(t, ActionNavigate, data.Action)
	assert.Equal(t, "address", data.Target)
	assert.Equal(t, "/onboarding/address", data.Path)
	assert.Equal(t, "evaluated", data.Reason)
	assert.Equal(t, "address", data.Status.NextStep)
}

func TestNextStepStaysOnCurrentPath(t *testing.T) {
	svc := newOnboarding(staticSource(onboarding.CompletionState{HasProfile: true}, nil))

	data, err := svc.NextStep(context.Background(), "42", "/onboarding/address")
	require.NoError(t, err)
	assert.Equal(t, ActionNone, data.Action)
	assert.Empty(t, data.Target)
}

func TestNextStepCompletedOutsideOnboarding(t *testing.T) {
	done := onboarding.CompletionState{HasProfile: true, HasAddress: true, HasContact: true, HasSettings: true}
	svc := newOnboarding(staticSource(done, nil))

	data, err := svc.NextStep(context.Background(), "42", "/onboarding/settings")
	require.NoError(t, err)
	assert.Equal(t, "main-landing", data.Target)

	data, err = svc.NextStep(context.Background(), "42", "/main/dashboard")
	require.NoError(t, err)
	assert.Equal(t, ActionNone, data.Action)
}

func TestNextStepFailClosed(t *testing.T) {
	svc := newOnboarding(staticSource(onboarding.CompletionState{}, errors.New("timeout")))

	data, err := svc.NextStep(context.Background(), "42", "/onboarding/profile")
	require.NoError(t, err)
	assert.Equal(t, ActionNone, data.Action)
	assert.Equal(t, "fetch_failed", data.Reason)
}

func TestNextStepRejectsBadUserID(t *testing.T) {
	svc := newOnboarding(staticSource(onboarding.CompletionState{}, nil))

	_, err := svc.NextStep(context.Background(), "me", "/")
	assert.ErrorIs(t, err, pkgerrors.InvalidUserID)
}

func TestNextStepStrictOrder(t *testing.T) {
	skipped := onboarding.CompletionState{HasProfile: true, HasContact: true}
	strict := newOnboarding(staticSource(skipped, nil), onboarding.WithStrictOrder())

	data, err := strict.NextStep(context.Background(), "42", "/onboarding/profile")
	require.NoError(t, err)
	assert.Equal(t, "address", data.Target)
}

func TestNextStepThroughRegistration(t *testing.T) {
	e := setup(t)
	seedProfile(t, e, 42)
	svc := NewOnboardingService(
		onboarding.NewRetryingSource(e.reg, onboarding.DefaultRetryPolicy()),
		onboarding.NewSequencer(onboarding.DefaultRoutes()),
	)

	data, err := svc.NextStep(context.Background(), "42", "/onboarding/profile")
	require.NoError(t, err)
	assert.Equal(t, "/onboarding/address", data.Path)
}
