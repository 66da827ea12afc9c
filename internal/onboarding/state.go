package onboarding

// CompletionState 四个必填步骤的完成情况
type CompletionState struct {
	HasProfile  bool `json:"hasProfile"`
	HasAddress  bool `json:"hasAddress"`
	HasContact  bool `json:"hasContact"`
	HasSettings bool `json:"hasSettings"`
}

// Normalize 按 profile → address → contact → settings 的顺序，
// 清除前置步骤未完成的标记
func (s CompletionState) Normalize() CompletionState {
	n := s
	if !n.HasProfile {
		n.HasAddress = false
	}
	if !n.HasAddress {
		n.HasContact = false
	}
	if !n.HasContact {
		n.HasSettings = false
	}
	return n
}

// Valid 状态是否符合预期顺序
func (s CompletionState) Valid() bool {
	return s == s.Normalize()
}

// Complete 四步是否全部完成
func (s CompletionState) Complete() bool {
	return s.HasProfile && s.HasAddress && s.HasContact && s.HasSettings
}

// Done 指定步骤是否已完成
func (s CompletionState) Done(step Step) bool {
	switch step {
	case StepProfile:
		return s.HasProfile
	case StepAddress:
		return s.HasAddress
	case StepContact:
		return s.HasContact
	case StepSettings:
		return s.HasSettings
	case StepMainLanding:
		return s.Complete()
	}
	return false
}

// NextStep 按预期顺序返回第一个未完成的步骤，全部完成时返回 main-landing。
// 仅用于展示，导航决策以 Sequencer 为准。
func (s CompletionState) NextStep() Step {
	for _, step := range Steps {
		if !s.Done(step) {
			return step
		}
	}
	return StepMainLanding
}
