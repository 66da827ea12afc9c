package onboarding

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNavigator struct {
	mu    sync.Mutex
	calls []Decision
	err   error
}

func (n *recordingNavigator) GoTo(_ context.Context, step Step, path string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, Decision{Target: step, Path: path})
	return n.err
}

func (n *recordingNavigator) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

func newEffect(nav Navigator) *NavigationEffect {
	return NewNavigationEffect(NewSequencer(DefaultRoutes()), nav)
}

func TestEffectNavigatesOncePerInput(t *testing.T) {
	ctx := context.Background()
	nav := &recordingNavigator{}
	effect := newEffect(nav)
	r := DefaultRoutes()

	out := effect.Observe(ctx, Succeeded(state(false, false, false, false)), r.Settings)
	require.True(t, out.Navigated())
	assert.Equal(t, StepProfile, out.Decision.Target)

	for i := 0; i < 3; i++ {
		out = effect.Observe(ctx, Succeeded(state(false, false, false, false)), r.Settings)
		assert.Equal(t, ReasonUnchanged, out.Reason)
	}
	assert.Equal(t, 1, nav.count())
	assert.Equal(t, []Decision{{Target: StepProfile, Path: r.Profile}}, nav.calls)
}

func TestEffectConcurrentIdenticalInput(t *testing.T) {
	ctx := context.Background()
	nav := &recordingNavigator{}
	effect := newEffect(nav)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			effect.Observe(ctx, Succeeded(state(true, true, true, true)), "/onboarding/settings")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, nav.count())
}

func TestEffectPendingNeverNavigates(t *testing.T) {
	ctx := context.Background()
	nav := &recordingNavigator{}
	effect := newEffect(nav)
	r := DefaultRoutes()

	for _, p := range []string{r.Profile, r.Address, r.Contact, r.Settings, r.MainLanding, "/anything"} {
		out := effect.Observe(ctx, Pending(), p)
		assert.Equal(t, ReasonPending, out.Reason)
		assert.ErrorIs(t, out.Err, ErrDataUnavailable)
		assert.False(t, out.Navigated())
	}
	assert.Zero(t, nav.count())
}

func TestEffectFailedFetchIsAbsorbed(t *testing.T) {
	ctx := context.Background()
	nav := &recordingNavigator{}
	effect := newEffect(nav)
	r := DefaultRoutes()

	boom := errors.New("connection refused")
	out := effect.Observe(ctx, Failed(boom), r.Settings)
	assert.Equal(t, ReasonFetchFailed, out.Reason)
	assert.ErrorIs(t, out.Err, boom)
	assert.Zero(t, nav.count())

	out = effect.Observe(ctx, Failed(nil), r.Settings)
	assert.ErrorIs(t, out.Err, ErrFetchFailed)

	// 失败不影响记忆，之后成功的结果正常评估
	out = effect.Observe(ctx, Succeeded(state(false, false, false, false)), r.Settings)
	assert.True(t, out.Navigated())
	assert.Equal(t, 1, nav.count())
}

func TestEffectPendingKeepsMemo(t *testing.T) {
	ctx := context.Background()
	nav := &recordingNavigator{}
	effect := newEffect(nav)
	r := DefaultRoutes()

	input := state(true, false, false, false)
	effect.Observe(ctx, Succeeded(input), r.Contact)
	effect.Observe(ctx, Pending(), r.Contact)
	out := effect.Observe(ctx, Succeeded(input), r.Contact)

	assert.Equal(t, ReasonUnchanged, out.Reason)
	assert.Equal(t, 1, nav.count())
}

func TestEffectNoActionIsMemoized(t *testing.T) {
	ctx := context.Background()
	nav := &recordingNavigator{}
	effect := newEffect(nav)
	r := DefaultRoutes()

	out := effect.Observe(ctx, Succeeded(state(true, true, true, true)), r.MainLanding)
	assert.Equal(t, ReasonEvaluated, out.Reason)
	assert.False(t, out.Navigated())

	out = effect.Observe(ctx, Succeeded(state(true, true, true, true)), r.MainLanding)
	assert.Equal(t, ReasonUnchanged, out.Reason)
	assert.Zero(t, nav.count())
}

func TestEffectNavigateFailureAllowsRetry(t *testing.T) {
	ctx := context.Background()
	nav := &recordingNavigator{err: errors.New("history locked")}
	effect := newEffect(nav)
	r := DefaultRoutes()

	out := effect.Observe(ctx, Succeeded(state(true, true, false, false)), r.Address)
	assert.Equal(t, ReasonNavigateFailed, out.Reason)
	assert.Equal(t, StepContact, out.Decision.Target)
	assert.False(t, out.Navigated())

	nav.err = nil
	out = effect.Observe(ctx, Succeeded(state(true, true, false, false)), r.Address)
	assert.True(t, out.Navigated())
	assert.Equal(t, 2, nav.count())
}

func TestEffectReportsInvalidState(t *testing.T) {
	ctx := context.Background()
	nav := &recordingNavigator{}
	effect := newEffect(nav)

	out := effect.Observe(ctx, Succeeded(state(false, true, false, false)), "/main/dashboard")
	assert.ErrorIs(t, out.Err, ErrInvalidState)
	assert.Equal(t, StepProfile, out.Decision.Target)
}

func TestEffectReset(t *testing.T) {
	ctx := context.Background()
	nav := &recordingNavigator{}
	effect := newEffect(nav)

	effect.Observe(ctx, Succeeded(state(false, false, false, false)), "/main/dashboard")
	effect.Reset()
	effect.Observe(ctx, Succeeded(state(false, false, false, false)), "/main/dashboard")

	assert.Equal(t, 2, nav.count())
}

func TestNavigatorFunc(t *testing.T) {
	var got Step
	nav := NavigatorFunc(func(_ context.Context, step Step, _ string) error {
		got = step
		return nil
	})
	effect := newEffect(nav)
	effect.Observe(context.Background(), Succeeded(state(true, true, true, false)), "/onboarding/contact")
	assert.Equal(t, StepSettings, got)
}

func TestEffectSkipsSupersededNavigation(t *testing.T) {
	ctx := context.Background()
	nav := &recordingNavigator{}
	effect := newEffect(nav)
	r := DefaultRoutes()

	out := effect.observe(ctx, Succeeded(state(false, false, false, false)), r.Settings, func(Decision) bool { return false })
	assert.Equal(t, ReasonStale, out.Reason)
	assert.Equal(t, StepProfile, out.Decision.Target)
	assert.False(t, out.Navigated())
	assert.Zero(t, nav.count())

	out = effect.Observe(ctx, Succeeded(state(false, false, false, false)), r.Settings)
	assert.True(t, out.Navigated())
	assert.Equal(t, 1, nav.count())
}

func TestEffectNavigatorMayObserveAgain(t *testing.T) {
	ctx := context.Background()
	r := DefaultRoutes()
	var effect *NavigationEffect
	var inner Outcome
	effect = newEffect(NavigatorFunc(func(ctx context.Context, step Step, path string) error {
		inner = effect.Observe(ctx, Succeeded(state(true, false, false, false)), path)
		return nil
	}))

	done := make(chan Outcome, 1)
	go func() {
		done <- effect.Observe(ctx, Succeeded(state(true, false, false, false)), r.Profile)
	}()

	select {
	case out := <-done:
		assert.True(t, out.Navigated())
		assert.Equal(t, StepAddress, out.Decision.Target)
		assert.Equal(t, ReasonEvaluated, inner.Reason)
		assert.False(t, inner.Navigated())
	case <-time.After(2 * time.Second):
		t.Fatal("Observe blocked inside GoTo")
	}
}
