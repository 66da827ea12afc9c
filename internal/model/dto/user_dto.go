package dto

// ========== 引导步骤 DTO ==========
// 字段命名与前端保持一致（camelCase）

// CreateProfileRequest 创建用户资料
type CreateProfileRequest struct {
	UserID        string `json:"userId"`
	Username      string `json:"username"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	DisplayName   string `json:"displayName"`
	RecoveryEmail string `json:"recoveryEmail"`
}

// ProfileData 用户资料
type ProfileData struct {
	UserID        string `json:"userId"`
	Username      string `json:"username"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	DisplayName   string `json:"displayName"`
	RecoveryEmail string `json:"recoveryEmail"`
}

// AddAddressRequest 添加地址
type AddAddressRequest struct {
	UserID    string `json:"userId"`
	CountryID int64  `json:"countryId"`
	CityID    int64  `json:"cityId"`
	Address   string `json:"address"`
}

// AddressData 地址
type AddressData struct {
	UserID    string `json:"userId"`
	CountryID int64  `json:"countryId"`
	CityID    int64  `json:"cityId"`
	Address   string `json:"address"`
}

// SendContactCodeRequest 发送手机验证码
type SendContactCodeRequest struct {
	UserID      string `json:"userId"`
	PhoneNumber string `json:"phoneNumber"`
	SliderToken string `json:"sliderToken,omitempty"`
}

// SendContactCodeData 验证码发送结果
type SendContactCodeData struct {
	ExpiresIn int `json:"expiresIn"`
}

// VerifySliderRequest 滑块验证请求
type VerifySliderRequest struct {
	PhoneNumber        string `json:"phoneNumber"`
	CaptchaVerifyParam string `json:"captchaVerifyParam"`
}

// VerifySliderData 滑块验证结果
type VerifySliderData struct {
	SliderToken string `json:"sliderToken"`
	ExpiresIn   int    `json:"expiresIn"`
}

// AddContactRequest 添加联系方式
type AddContactRequest struct {
	UserID      string `json:"userId"`
	PhoneNumber string `json:"phoneNumber"`
	Code        string `json:"code,omitempty"`
}

// ContactData 联系方式，手机号脱敏
type ContactData struct {
	UserID       string `json:"userId"`
	NumberMasked string `json:"numberMasked"`
	Verified     bool   `json:"verified"`
}

// AddSettingsRequest 偏好设置
type AddSettingsRequest struct {
	UserID          string `json:"userId"`
	BaseCurrencyID  int64  `json:"baseCurrencyId"`
	ThemePreference string `json:"themePreference"`
	LanguageID      int64  `json:"languageId"`
}

// SettingsData 偏好设置
type SettingsData struct {
	UserID          string `json:"userId"`
	BaseCurrencyID  int64  `json:"baseCurrencyId"`
	ThemePreference string `json:"themePreference"`
	LanguageID      int64  `json:"languageId"`
}

// UserStatusData 注册状态，对应前端 getRegistrationStatus
type UserStatusData struct {
	IsUser     bool   `json:"isUser"`
	IsAddress  bool   `json:"isAddress"`
	IsContact  bool   `json:"isContact"`
	IsSettings bool   `json:"isSettings"`
	NextStep   string `json:"nextStep"`
}

// NextStepData 下一步导航决策
type NextStepData struct {
	Action      string         `json:"action"` // navigate, none
	Target      string         `json:"target,omitempty"`
	Path        string         `json:"path,omitempty"`
	CurrentPath string         `json:"currentPath"`
	Reason      string         `json:"reason"`
	Status      UserStatusData `json:"status"`
}
