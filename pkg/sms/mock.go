package sms

import (
	"context"
	"errors"
	"sync"
)

type MockCall struct {
	Phone         string
	SignName      string
	TemplateCode  string
	TemplateParam string
}

// MockClient 记录调用的短信客户端，SMS_PROVIDER=mock 时使用
type MockClient struct {
	mu    sync.Mutex
	calls []MockCall

	failNext bool
}

func NewMockClient() *MockClient {
	return &MockClient{}
}

// FailNext 下一次调用返回错误
func (m *MockClient) FailNext() {
	m.mu.Lock()
	m.failNext = true
	m.mu.Unlock()
}

// Calls 已发生调用的副本
func (m *MockClient) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

func (m *MockClient) SendSingle(ctx context.Context, phone, signName, templateCode, templateParam string) (*SendResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{
		Phone:         phone,
		SignName:      signName,
		TemplateCode:  templateCode,
		TemplateParam: templateParam,
	})

	if m.failNext {
		m.failNext = false
		return nil, errors.New("mock sms send failure")
	}

	return &SendResponse{
		MessageID: "mock-message-id",
		Code:      "OK",
		RequestID: "mock-request-id",
		Provider:  "mock",
		Template:  templateCode,
	}, nil
}
