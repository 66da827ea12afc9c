package onboarding

// Decision 一次评估的结果，零值表示不导航
type Decision struct {
	Target Step   `json:"target"`
	Path   string `json:"path,omitempty"`
}

// NoAction 不导航
var NoAction = Decision{}

// Navigate 是否需要导航
func (d Decision) Navigate() bool {
	return d.Target != StepNone
}

// Sequencer 根据完成情况和当前路径决定下一步
type Sequencer struct {
	routes Routes
	strict bool
}

// Option Sequencer 选项
type Option func(*Sequencer)

// WithStrictOrder 评估前先 Normalize，违反顺序的组合按最早缺失的步骤处理
func WithStrictOrder() Option {
	return func(s *Sequencer) {
		s.strict = true
	}
}

// NewSequencer 创建 Sequencer
func NewSequencer(routes Routes, opts ...Option) *Sequencer {
	s := &Sequencer{routes: routes}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes 返回路由表
func (s *Sequencer) Routes() Routes {
	return s.routes
}

// Strict 是否启用严格顺序
func (s *Sequencer) Strict() bool {
	return s.strict
}

// Decide 规则按优先级依次匹配，首个命中即返回。
// 注意第二条规则先于第三条：已有地址但无联系方式时去 contact。
func (s *Sequencer) Decide(state CompletionState, currentPath string) Decision {
	if s.strict {
		state = state.Normalize()
	}

	r := s.routes
	var target Step
	switch {
	case !state.HasProfile && currentPath != r.Profile:
		target = StepProfile
	case state.HasProfile && state.HasAddress && !state.HasContact && currentPath != r.Contact:
		target = StepContact
	case state.HasProfile && !state.HasAddress && currentPath != r.Address:
		target = StepAddress
	case state.HasProfile && state.HasContact && state.HasAddress && !state.HasSettings && currentPath != r.Settings:
		target = StepSettings
	case state.HasSettings && r.WithinOnboarding(currentPath):
		target = StepMainLanding
	default:
		return NoAction
	}

	path := r.Path(target)
	if path == currentPath {
		return NoAction
	}
	return Decision{Target: target, Path: path}
}
