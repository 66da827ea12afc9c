package onboarding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletionStateNormalize(t *testing.T) {
	assert.Equal(t, state(false, false, false, false), state(false, true, true, true).Normalize())
	assert.Equal(t, state(true, false, false, false), state(true, false, true, true).Normalize())
	assert.Equal(t, state(true, true, false, false), state(true, true, false, true).Normalize())
	assert.Equal(t, state(true, true, true, true), state(true, true, true, true).Normalize())

	assert.True(t, state(true, true, false, false).Valid())
	assert.False(t, state(false, false, false, true).Valid())
}

func TestCompletionStateNextStep(t *testing.T) {
	assert.Equal(t, StepProfile, state(false, false, false, false).NextStep())
	assert.Equal(t, StepAddress, state(true, false, false, false).NextStep())
	assert.Equal(t, StepContact, state(true, true, false, false).NextStep())
	assert.Equal(t, StepSettings, state(true, true, true, false).NextStep())
	assert.Equal(t, StepMainLanding, state(true, true, true, true).NextStep())
	assert.True(t, state(true, true, true, true).Complete())
	assert.False(t, state(true, true, true, false).Done(StepMainLanding))
}

func TestParseStep(t *testing.T) {
	for _, s := range destinations {
		got, err := ParseStep(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := ParseStep("dashboard")
	assert.Error(t, err)
	assert.Equal(t, "none", StepNone.String())
}

func TestRoutes(t *testing.T) {
	r := DefaultRoutes()
	require.NoError(t, r.Validate())

	step, ok := r.StepOf("/onboarding/contact")
	assert.True(t, ok)
	assert.Equal(t, StepContact, step)

	_, ok = r.StepOf("/onboarding/contact/")
	assert.False(t, ok)

	assert.True(t, r.WithinOnboarding("/onboarding/anything"))
	assert.True(t, r.WithinOnboarding("/app/onboarding/profile"))
	assert.False(t, r.WithinOnboarding("/main/dashboard"))

	dup := r
	dup.Address = dup.Profile
	assert.Error(t, dup.Validate())

	inside := r
	inside.MainLanding = "/onboarding/done"
	assert.Error(t, inside.Validate())

	empty := r
	empty.Settings = ""
	assert.Error(t, empty.Validate())
}
