package model

// Country 国家
type Country struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"type:varchar(64);not null" json:"name"`
	ISOCode   string `gorm:"uniqueIndex;type:char(2);not null" json:"isoCode"`
	Emoji     string `gorm:"type:varchar(16)" json:"emoji"`
	PhoneCode string `gorm:"type:varchar(8);not null" json:"phoneCode"`
}

// City 城市
type City struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	CountryID int64  `gorm:"not null;index" json:"countryId"`
	Name      string `gorm:"type:varchar(64);not null" json:"name"`
}

// Currency 货币
type Currency struct {
	ID     int64  `gorm:"primaryKey" json:"id"`
	Code   string `gorm:"uniqueIndex;type:char(3);not null" json:"code"`
	Name   string `gorm:"type:varchar(64);not null" json:"name"`
	Symbol string `gorm:"type:varchar(8)" json:"symbol"`
}

// Language 界面语言
type Language struct {
	ID   int64  `gorm:"primaryKey" json:"id"`
	Code string `gorm:"uniqueIndex;type:varchar(8);not null" json:"code"`
	Name string `gorm:"type:varchar(64);not null" json:"name"`
}

// SeedCountries 初始国家数据
var SeedCountries = []Country{
	{ID: 1, Name: "Pakistan", ISOCode: "PK", Emoji: "🇵🇰", PhoneCode: "+92"},
	{ID: 2, Name: "United States", ISOCode: "US", Emoji: "🇺🇸", PhoneCode: "+1"},
	{ID: 3, Name: "United Kingdom", ISOCode: "GB", Emoji: "🇬🇧", PhoneCode: "+44"},
	{ID: 4, Name: "Germany", ISOCode: "DE", Emoji: "🇩🇪", PhoneCode: "+49"},
	{ID: 5, Name: "United Arab Emirates", ISOCode: "AE", Emoji: "🇦🇪", PhoneCode: "+971"},
}

// SeedCities 初始城市数据
var SeedCities = []City{
	{ID: 1, CountryID: 1, Name: "Karachi"},
	{ID: 2, CountryID: 1, Name: "Lahore"},
	{ID: 3, CountryID: 1, Name: "Islamabad"},
	{ID: 4, CountryID: 2, Name: "New York"},
	{ID: 5, CountryID: 2, Name: "San Francisco"},
	{ID: 6, CountryID: 3, Name: "London"},
	{ID: 7, CountryID: 3, Name: "Manchester"},
	{ID: 8, CountryID: 4, Name: "Berlin"},
	{ID: 9, CountryID: 4, Name: "Munich"},
	{ID: 10, CountryID: 5, Name: "Dubai"},
}

// SeedCurrencies 初始货币数据，ID 1 为默认基础货币
var SeedCurrencies = []Currency{
	{ID: 1, Code: "USD", Name: "US Dollar", Symbol: "$"},
	{ID: 2, Code: "PKR", Name: "Pakistani Rupee", Symbol: "₨"},
	{ID: 3, Code: "GBP", Name: "Pound Sterling", Symbol: "£"},
	{ID: 4, Code: "EUR", Name: "Euro", Symbol: "€"},
	{ID: 5, Code: "AED", Name: "UAE Dirham", Symbol: "د.إ"},
}

// SeedLanguages 初始语言数据
var SeedLanguages = []Language{
	{ID: 1, Code: "en", Name: "English"},
	{ID: 2, Code: "ur", Name: "Urdu"},
	{ID: 3, Code: "de", Name: "Deutsch"},
	{ID: 4, Code: "ar", Name: "العربية"},
}
