package errors

import (
	stderrors "errors"
)

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// 通用错误。
var (
	InvalidRequest  = Definition{Code: "INVALID_REQUEST", Message: "Invalid request"}
	Unauthorized    = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	ForbiddenUser   = Definition{Code: "FORBIDDEN_USER", Message: "User ID does not match the authenticated user"}
	InvalidUserID   = Definition{Code: "INVALID_USER_ID", Message: "Invalid user ID format"}
	UserNotFound    = Definition{Code: "USER_NOT_FOUND", Message: "User not found"}
	TooManyRequests = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many requests"}
	CSRFInvalid     = Definition{Code: "CSRF_INVALID", Message: "CSRF token invalid"}
	InternalError   = Definition{Code: "INTERNAL_ERROR", Message: "Internal error"}
)

// 验证码相关错误。
var (
	CaptchaRateLimited         = Definition{Code: "CAPTCHA_RATE_LIMITED", Message: "Captcha rate limited"}
	VerificationCodeExpired    = Definition{Code: "VERIFICATION_CODE_EXPIRED", Message: "Verification code expired"}
	VerificationCodeInvalid    = Definition{Code: "VERIFICATION_CODE_INVALID", Message: "Verification code invalid"}
	VerificationSliderRequired = Definition{Code: "VERIFICATION_SLIDER_REQUIRED", Message: "Slider verification required"}
	VerificationSliderFailed   = Definition{Code: "VERIFICATION_SLIDER_FAILED", Message: "Slider verification failed"}
	SMSUnavailable             = Definition{Code: "SMS_UNAVAILABLE", Message: "SMS service unavailable"}
)

// 引导流程错误。
var (
	OnboardingStepInvalid   = Definition{Code: "ONBOARDING_STEP_INVALID", Message: "Onboarding step invalid"}
	StepPrerequisiteMissing = Definition{Code: "STEP_PREREQUISITE_MISSING", Message: "A previous onboarding step is not completed"}
	StepAlreadyCompleted    = Definition{Code: "STEP_ALREADY_COMPLETED", Message: "Onboarding step already completed"}
	StatusUnavailable       = Definition{Code: "STATUS_UNAVAILABLE", Message: "Registration status unavailable"}
)

// 个人资料错误。
var (
	UsernameInvalid      = Definition{Code: "USERNAME_INVALID", Message: "Username must be at least 3 characters"}
	UsernameTaken        = Definition{Code: "USERNAME_TAKEN", Message: "Username already taken"}
	NameInvalid          = Definition{Code: "NAME_INVALID", Message: "Names must be at least 2 characters"}
	RecoveryEmailInvalid = Definition{Code: "RECOVERY_EMAIL_INVALID", Message: "Invalid email address"}
)

// 地址错误。
var (
	CountryNotFound = Definition{Code: "COUNTRY_NOT_FOUND", Message: "Country not found"}
	CityNotFound    = Definition{Code: "CITY_NOT_FOUND", Message: "City not found in country"}
	AddressInvalid  = Definition{Code: "ADDRESS_INVALID", Message: "Address is required"}
)

// 联系方式错误。
var (
	InvalidPhone           = Definition{Code: "INVALID_PHONE", Message: "Invalid phone number format"}
	PhoneAlreadyRegistered = Definition{Code: "PHONE_ALREADY_REGISTERED", Message: "Phone already registered"}
)

// 偏好设置错误。
var (
	CurrencyNotFound = Definition{Code: "CURRENCY_NOT_FOUND", Message: "Currency not found"}
	LanguageNotFound = Definition{Code: "LANGUAGE_NOT_FOUND", Message: "Language not found"}
	ThemeInvalid     = Definition{Code: "THEME_INVALID", Message: "Theme must be light, dark or system"}
)

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	InvalidRequest.Code:             InvalidRequest,
	Unauthorized.Code:               Unauthorized,
	ForbiddenUser.Code:              ForbiddenUser,
	InvalidUserID.Code:              InvalidUserID,
	UserNotFound.Code:               UserNotFound,
	TooManyRequests.Code:            TooManyRequests,
	CSRFInvalid.Code:                CSRFInvalid,
	InternalError.Code:              InternalError,
	CaptchaRateLimited.Code:         CaptchaRateLimited,
	VerificationCodeExpired.Code:    VerificationCodeExpired,
	VerificationCodeInvalid.Code:    VerificationCodeInvalid,
	VerificationSliderRequired.Code: VerificationSliderRequired,
	VerificationSliderFailed.Code:   VerificationSliderFailed,
	SMSUnavailable.Code:             SMSUnavailable,
	OnboardingStepInvalid.Code:      OnboardingStepInvalid,
	StepPrerequisiteMissing.Code:    StepPrerequisiteMissing,
	StepAlreadyCompleted.Code:       StepAlreadyCompleted,
	StatusUnavailable.Code:          StatusUnavailable,
	UsernameInvalid.Code:            UsernameInvalid,
	UsernameTaken.Code:              UsernameTaken,
	NameInvalid.Code:                NameInvalid,
	RecoveryEmailInvalid.Code:       RecoveryEmailInvalid,
	CountryNotFound.Code:            CountryNotFound,
	CityNotFound.Code:               CityNotFound,
	AddressInvalid.Code:             AddressInvalid,
	InvalidPhone.Code:               InvalidPhone,
	PhoneAlreadyRegistered.Code:     PhoneAlreadyRegistered,
	CurrencyNotFound.Code:           CurrencyNotFound,
	LanguageNotFound.Code:           LanguageNotFound,
	ThemeInvalid.Code:               ThemeInvalid,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}

// As 从错误链中取出 Definition
func As(err error) (Definition, bool) {
	var def Definition
	if stderrors.As(err, &def) {
		return def, true
	}
	return Definition{}, false
}

// SkipMessageError 表示消息已处理或无需处理，消费者应直接 Ack
type SkipMessageError struct {
	Reason string
}

func (e *SkipMessageError) Error() string {
	return "skip message: " + e.Reason
}

// Skip 构造 SkipMessageError
func Skip(reason string) error {
	return &SkipMessageError{Reason: reason}
}

// IsSkipMessageError 判断是否为可跳过的消息错误
func IsSkipMessageError(err error) bool {
	var target *SkipMessageError
	return stderrors.As(err, &target)
}
