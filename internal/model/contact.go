package model

import "time"

// Contact 用户联系方式，手机号只保存密文和哈希
type Contact struct {
	BaseModel
	UserID      int64      `gorm:"uniqueIndex;not null" json:"user_id"`
	PhoneCipher []byte     `gorm:"type:bytea;not null" json:"-"`
	PhoneHash   string     `gorm:"uniqueIndex;type:char(64);not null" json:"-"`
	Verified    bool       `gorm:"not null;default:false" json:"verified"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`
}

func (Contact) TableName() string {
	return "user_contacts"
}
