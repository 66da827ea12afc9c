// Package apiclient 是引导接口的 HTTP 客户端，供终端客户端和其他服务使用
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"FinTrack/config"
	"FinTrack/internal/model"
	"FinTrack/internal/model/dto"
	"FinTrack/internal/onboarding"
)

// APIError 服务端返回的业务错误
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Temporary 5xx 可以重试
func (e *APIError) Temporary() bool {
	return e.StatusCode >= 500
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithAccessToken 设置 Bearer token
func WithAccessToken(token string) Option {
	return func(c *Client) { c.accessToken = token }
}

type Client struct {
	baseURL     string
	accessToken string
	timeout     time.Duration
	http        *client.Client
}

// New 创建客户端，超时默认取 API_TIMEOUT_MS
func New(baseURL string, opts ...Option) (*Client, error) {
	hc, err := client.NewClient(
		client.WithDialTimeout(5*time.Second),
		client.WithMaxConnsPerHost(16),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: config.Cfg.APITimeout(),
		http:    hc,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout <= 0 {
		c.timeout = 10 * time.Second
	}
	return c, nil
}

// SetAccessToken 刷新令牌后替换
func (c *Client) SetAccessToken(token string) {
	c.accessToken = token
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		req.Header.SetContentTypeBytes([]byte("application/json"))
		req.SetBody(raw)
	}

	if err := c.http.DoTimeout(ctx, req, resp, c.timeout); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		if resp.StatusCode() >= 400 {
			return &APIError{StatusCode: resp.StatusCode(), Message: string(resp.Body())}
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode() >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode()}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode data: %w", err)
	}
	return nil
}

// GetRegistrationStatus GET /v1/user/status/:userId
func (c *Client) GetRegistrationStatus(ctx context.Context, userID string) (*dto.UserStatusData, error) {
	var data dto.UserStatusData
	if err := c.do(ctx, consts.MethodGet, "/v1/user/status/"+url.PathEscape(userID), nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// FetchCompletionState 实现 onboarding.StatusSource，4xx 不重试
func (c *Client) FetchCompletionState(ctx context.Context, userID string) (onboarding.CompletionState, error) {
	data, err := c.GetRegistrationStatus(ctx, userID)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Temporary() {
			return onboarding.CompletionState{}, onboarding.PermanentError(err)
		}
		return onboarding.CompletionState{}, err
	}
	return onboarding.CompletionState{
		HasProfile:  data.IsUser,
		HasAddress:  data.IsAddress,
		HasContact:  data.IsContact,
		HasSettings: data.IsSettings,
	}, nil
}

// NextStep GET /v1/onboarding/next
func (c *Client) NextStep(ctx context.Context, path string) (*dto.NextStepData, error) {
	var data dto.NextStepData
	if err := c.do(ctx, consts.MethodGet, "/v1/onboarding/next?path="+url.QueryEscape(path), nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) CreateProfile(ctx context.Context, req dto.CreateProfileRequest) (*dto.ProfileData, error) {
	var data dto.ProfileData
	if err := c.do(ctx, consts.MethodPost, "/v1/user/users", req, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) AddAddress(ctx context.Context, req dto.AddAddressRequest) (*dto.AddressData, error) {
	var data dto.AddressData
	if err := c.do(ctx, consts.MethodPost, "/v1/user/address", req, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) VerifySlider(ctx context.Context, req dto.VerifySliderRequest) (*dto.VerifySliderData, error) {
	var data dto.VerifySliderData
	if err := c.do(ctx, consts.MethodPost, "/v1/user/contact/verify-slider", req, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) SendContactCode(ctx context.Context, req dto.SendContactCodeRequest) (*dto.SendContactCodeData, error) {
	var data dto.SendContactCodeData
	if err := c.do(ctx, consts.MethodPost, "/v1/user/contact/code", req, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) AddContact(ctx context.Context, req dto.AddContactRequest) (*dto.ContactData, error) {
	var data dto.ContactData
	if err := c.do(ctx, consts.MethodPost, "/v1/user/contact", req, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) AddSettings(ctx context.Context, req dto.AddSettingsRequest) (*dto.SettingsData, error) {
	var data dto.SettingsData
	if err := c.do(ctx, consts.MethodPost, "/v1/user/settings", req, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) Countries(ctx context.Context) ([]model.Country, error) {
	var data []model.Country
	err := c.do(ctx, consts.MethodGet, "/v1/constant/countries", nil, &data)
	return data, err
}

func (c *Client) Cities(ctx context.Context, countryID int64) ([]model.City, error) {
	var data []model.City
	err := c.do(ctx, consts.MethodGet, "/v1/constant/cities?countryId="+strconv.FormatInt(countryID, 10), nil, &data)
	return data, err
}

func (c *Client) Currencies(ctx context.Context) ([]model.Currency, error) {
	var data []model.Currency
	err := c.do(ctx, consts.MethodGet, "/v1/constant/currencies", nil, &data)
	return data, err
}

func (c *Client) Languages(ctx context.Context) ([]model.Language, error) {
	var data []model.Language
	err := c.do(ctx, consts.MethodGet, "/v1/constant/languages", nil, &data)
	return data, err
}

// RefreshToken 换取新令牌并更新客户端使用的 access token
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenPairData, error) {
	var data dto.TokenPairData
	if err := c.do(ctx, consts.MethodPost, "/v1/auth/token/refresh", dto.RefreshTokenRequest{RefreshToken: refreshToken}, &data); err != nil {
		return nil, err
	}
	c.SetAccessToken(data.AccessToken)
	return &data, nil
}

var _ onboarding.StatusSource = (*Client)(nil)
