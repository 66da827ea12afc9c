package onboarding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func state(p, a, c, s bool) CompletionState {
	return CompletionState{HasProfile: p, HasAddress: a, HasContact: c, HasSettings: s}
}

func TestSequencerDecide(t *testing.T) {
	r := DefaultRoutes()
	seq := NewSequencer(r)

	tests := []struct {
		name  string
		state CompletionState
		path  string
		want  Step
	}{
		{"fresh user already on profile", state(false, false, false, false), r.Profile, StepNone},
		{"fresh user on settings", state(false, false, false, false), r.Settings, StepProfile},
		{"fresh user on landing", state(false, false, false, false), r.MainLanding, StepProfile},
		{"address done goes to contact", state(true, true, false, false), r.Address, StepContact},
		{"address done already on contact", state(true, true, false, false), r.Contact, StepNone},
		{"profile only goes to address", state(true, false, false, false), r.Contact, StepAddress},
		{"profile only already on address", state(true, false, false, false), r.Address, StepNone},
		{"contact done goes to settings", state(true, true, true, false), r.Contact, StepSettings},
		{"contact done already on settings", state(true, true, true, false), r.Settings, StepNone},
		{"complete on settings", state(true, true, true, true), r.Settings, StepMainLanding},
		{"complete on profile", state(true, true, true, true), r.Profile, StepMainLanding},
		{"complete on landing", state(true, true, true, true), r.MainLanding, StepNone},
		{"complete outside onboarding", state(true, true, true, true), "/main/accounts", StepNone},
		{"incomplete outside onboarding", state(true, true, false, false), "/main/accounts", StepContact},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := seq.Decide(tt.state, tt.path)
			assert.Equal(t, tt.want, d.Target)
			assert.Equal(t, r.Path(tt.want), d.Path)
			assert.Equal(t, tt.want != StepNone, d.Navigate())
		})
	}
}

func TestSequencerKeepsRuleOrder(t *testing.T) {
	r := DefaultRoutes()
	seq := NewSequencer(r)

	// 有地址无联系方式时第二条规则先命中
	d := seq.Decide(state(true, true, false, true), r.Address)
	assert.Equal(t, StepContact, d.Target)

	// 跳过地址直接有联系方式：第三条规则要求补地址
	d = seq.Decide(state(true, false, true, false), r.Settings)
	assert.Equal(t, StepAddress, d.Target)

	// 没有资料但其余都有：第一条规则
	d = seq.Decide(state(false, true, true, true), r.Settings)
	assert.Equal(t, StepProfile, d.Target)

	// 已在 address 页时第三条不命中，落到第五条
	d = seq.Decide(state(true, false, false, true), r.Address)
	assert.Equal(t, StepMainLanding, d.Target)
}

func TestSequencerStrictOrder(t *testing.T) {
	r := DefaultRoutes()
	loose := NewSequencer(r)
	strict := NewSequencer(r, WithStrictOrder())

	assert.True(t, strict.Strict())
	assert.False(t, loose.Strict())

	// 资料 + 地址 + 设置，缺联系方式，停在 contact：
	// 宽松模式因 settings 为真跳到主页，严格模式留在 contact
	inconsistent := state(true, true, false, true)
	assert.Equal(t, StepMainLanding, loose.Decide(inconsistent, r.Contact).Target)
	assert.Equal(t, StepNone, strict.Decide(inconsistent, r.Contact).Target)

	// 只有资料和设置，停在 address：宽松模式会因 settings 跳到主页，严格模式留在 address
	skipped := state(true, false, false, true)
	assert.Equal(t, StepMainLanding, loose.Decide(skipped, r.Address).Target)
	assert.Equal(t, StepNone, strict.Decide(skipped, r.Address).Target)

	// 严格模式对合法状态与宽松模式一致
	for _, s := range []CompletionState{
		state(false, false, false, false),
		state(true, false, false, false),
		state(true, true, false, false),
		state(true, true, true, false),
		state(true, true, true, true),
	} {
		for _, p := range []string{r.Profile, r.Address, r.Contact, r.Settings, r.MainLanding} {
			assert.Equal(t, loose.Decide(s, p), strict.Decide(s, p), "state %+v path %s", s, p)
		}
	}
}

func TestSequencerNeverTargetsCurrentPath(t *testing.T) {
	r := DefaultRoutes()
	// landing 位于引导区段内属于错误配置，但决策仍不能指向当前路径
	r.MainLanding = "/onboarding/done"
	seq := NewSequencer(r)

	d := seq.Decide(state(true, true, true, true), r.MainLanding)
	assert.False(t, d.Navigate())
	assert.Equal(t, NoAction, d)
}

func TestSequencerCustomRoutes(t *testing.T) {
	r := Routes{
		Profile:     "/welcome/me",
		Address:     "/welcome/where",
		Contact:     "/welcome/phone",
		Settings:    "/welcome/prefs",
		MainLanding: "/home",
		Section:     "/welcome",
	}
	seq := NewSequencer(r)

	d := seq.Decide(state(true, true, true, true), "/welcome/prefs")
	assert.Equal(t, Decision{Target: StepMainLanding, Path: "/home"}, d)

	d = seq.Decide(state(false, false, false, false), "/onboarding/profile")
	assert.Equal(t, Decision{Target: StepProfile, Path: "/welcome/me"}, d)
}
