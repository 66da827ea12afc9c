package onboarding

import (
	"errors"
)

// Status 状态查询的进度
type Status int

const (
	StatusPending Status = iota
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

var (
	// ErrDataUnavailable 状态尚未返回
	ErrDataUnavailable = errors.New("onboarding: completion state not available yet")
	// ErrFetchFailed 状态获取失败
	ErrFetchFailed = errors.New("onboarding: completion state fetch failed")
	// ErrInvalidState 完成情况违反预期顺序
	ErrInvalidState = errors.New("onboarding: completion state violates step order")
)

// Result 一次状态查询的结果
type Result struct {
	Status Status
	State  CompletionState
	Err    error
}

// Pending 查询进行中
func Pending() Result {
	return Result{Status: StatusPending}
}

// Succeeded 查询成功
func Succeeded(state CompletionState) Result {
	return Result{Status: StatusSucceeded, State: state}
}

// Failed 查询失败，err 为空时使用 ErrFetchFailed
func Failed(err error) Result {
	if err == nil {
		err = ErrFetchFailed
	}
	return Result{Status: StatusFailed, Err: err}
}
