package model

// Address 用户地址，每个用户一条
type Address struct {
	BaseModel
	UserID    int64  `gorm:"uniqueIndex;not null" json:"user_id"` // users.public_id
	CountryID int64  `gorm:"not null;index" json:"country_id"`
	CityID    int64  `gorm:"not null" json:"city_id"`
	Line      string `gorm:"column:address;type:varchar(255);not null" json:"address"`
}

func (Address) TableName() string {
	return "user_addresses"
}
