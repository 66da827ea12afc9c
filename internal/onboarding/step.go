// Package onboarding 决定新用户在引导流程中的下一步去向。
//
// 四个必填步骤按 profile → address → contact → settings 的顺序完成，
// 全部完成后进入主页面。本包只做决策和导航副作用的编排，
// 不直接访问存储或网络，数据来源通过 StatusSource 注入。
package onboarding

import (
	"fmt"
	"strings"
)

// Step 符号化的导航目标
type Step string

const (
	StepNone        Step = ""
	StepProfile     Step = "profile"
	StepAddress     Step = "address"
	StepContact     Step = "contact"
	StepSettings    Step = "settings"
	StepMainLanding Step = "main-landing"
)

// Steps 四个必填步骤，按预期完成顺序排列
var Steps = []Step{StepProfile, StepAddress, StepContact, StepSettings}

var destinations = []Step{StepProfile, StepAddress, StepContact, StepSettings, StepMainLanding}

func (s Step) String() string {
	if s == StepNone {
		return "none"
	}
	return string(s)
}

// ParseStep 解析步骤名
func ParseStep(v string) (Step, error) {
	switch Step(v) {
	case StepProfile, StepAddress, StepContact, StepSettings, StepMainLanding:
		return Step(v), nil
	}
	return StepNone, fmt.Errorf("unknown onboarding step %q", v)
}

// Routes 符号目标到具体路径的映射，由外层路由提供
type Routes struct {
	Profile     string
	Address     string
	Contact     string
	Settings    string
	MainLanding string
	// Section 引导区段前缀，用于判断当前路径是否仍在引导流程内
	Section string
}

// DefaultRoutes 默认路由
func DefaultRoutes() Routes {
	return Routes{
		Profile:     "/onboarding/profile",
		Address:     "/onboarding/address",
		Contact:     "/onboarding/contact",
		Settings:    "/onboarding/settings",
		MainLanding: "/main/dashboard",
		Section:     "/onboarding",
	}
}

// Path 返回步骤对应的路径，StepNone 返回空串
func (r Routes) Path(s Step) string {
	switch s {
	case StepProfile:
		return r.Profile
	case StepAddress:
		return r.Address
	case StepContact:
		return r.Contact
	case StepSettings:
		return r.Settings
	case StepMainLanding:
		return r.MainLanding
	}
	return ""
}

// StepOf 根据路径反查步骤，路径需完全相等
func (r Routes) StepOf(path string) (Step, bool) {
	for _, s := range destinations {
		if p := r.Path(s); p != "" && p == path {
			return s, true
		}
	}
	return StepNone, false
}

// WithinOnboarding 当前路径是否位于引导区段内
func (r Routes) WithinOnboarding(path string) bool {
	if r.Section == "" {
		return false
	}
	return strings.Contains(path, r.Section)
}

// Validate 检查路由表完整且互不重复
func (r Routes) Validate() error {
	seen := make(map[string]Step, 5)
	for _, s := range destinations {
		p := r.Path(s)
		if p == "" {
			return fmt.Errorf("route for step %s is empty", s)
		}
		if prev, ok := seen[p]; ok {
			return fmt.Errorf("steps %s and %s share route %q", prev, s, p)
		}
		seen[p] = s
	}
	if r.WithinOnboarding(r.MainLanding) {
		return fmt.Errorf("main landing route %q lies inside onboarding section %q", r.MainLanding, r.Section)
	}
	return nil
}
