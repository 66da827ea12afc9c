package model

// Theme 界面主题
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Valid 是否为支持的主题
func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	}
	return false
}

// DefaultBaseCurrencyID 未指定时的基础货币
const DefaultBaseCurrencyID int64 = 1

// Settings 用户偏好设置，引导最后一步
type Settings struct {
	BaseModel
	UserID          int64 `gorm:"uniqueIndex;not null" json:"user_id"`
	BaseCurrencyID  int64 `gorm:"not null;default:1" json:"base_currency_id"`
	LanguageID      int64 `gorm:"not null" json:"language_id"`
	ThemePreference Theme `gorm:"type:varchar(16);not null;default:'system'" json:"theme_preference"`
}

func (Settings) TableName() string {
	return "user_settings"
}
