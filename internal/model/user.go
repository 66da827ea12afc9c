package model

// User 用户资料，对应引导第一步 profile
type User struct {
	BaseModel
	PublicID      int64  `gorm:"uniqueIndex;not null" json:"public_id"` // 认证服务签发的用户 ID
	Username      string `gorm:"uniqueIndex;type:varchar(64);not null" json:"username"`
	FirstName     string `gorm:"type:varchar(64);not null" json:"first_name"`
	LastName      string `gorm:"type:varchar(64);not null" json:"last_name"`
	DisplayName   string `gorm:"type:varchar(64);not null" json:"display_name"`
	RecoveryEmail string `gorm:"type:varchar(255);not null" json:"recovery_email"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// Completion 引导各步骤在库中的完成情况
type Completion struct {
	IsUser     bool `gorm:"column:is_user"`
	IsAddress  bool `gorm:"column:is_address"`
	IsContact  bool `gorm:"column:is_contact"`
	IsSettings bool `gorm:"column:is_settings"`
}
