package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"

	"FinTrack/internal/model"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate 违反唯一约束
	ErrDuplicate = errors.New("duplicate record")
)

// Store 引导流程用到的持久化操作
type Store interface {
	Completion(ctx context.Context, userID int64) (*model.Completion, error)

	UsernameTaken(ctx context.Context, username string) (bool, error)
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, publicID int64) (*model.User, error)

	UpsertAddress(ctx context.Context, address *model.Address) error

	// PhoneOwner 返回持有该手机号哈希的用户，不存在时返回 ErrNotFound
	PhoneOwner(ctx context.Context, phoneHash string) (int64, error)
	UpsertContact(ctx context.Context, contact *model.Contact) error
	GetContact(ctx context.Context, userID int64) (*model.Contact, error)

	UpsertSettings(ctx context.Context, settings *model.Settings) error

	Countries(ctx context.Context) ([]model.Country, error)
	Cities(ctx context.Context, countryID int64) ([]model.City, error)
	GetCity(ctx context.Context, cityID int64) (*model.City, error)
	Currencies(ctx context.Context) ([]model.Currency, error)
	Languages(ctx context.Context) ([]model.Language, error)
	CountryExists(ctx context.Context, id int64) (bool, error)
	CurrencyExists(ctx context.Context, id int64) (bool, error)
	LanguageExists(ctx context.Context, id int64) (bool, error)
}

// GormStore 基于 gorm 的 Store 实现
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// 完成状态紧跟在写入之后读取，固定走主库
const completionSQL = `
SELECT
	EXISTS (SELECT 1 FROM users WHERE public_id = @uid AND deleted_at IS NULL) AS is_user,
	EXISTS (SELECT 1 FROM user_addresses WHERE user_id = @uid AND deleted_at IS NULL) AS is_address,
	EXISTS (SELECT 1 FROM user_contacts WHERE user_id = @uid AND deleted_at IS NULL) AS is_contact,
	EXISTS (SELECT 1 FROM user_settings WHERE user_id = @uid AND deleted_at IS NULL) AS is_settings`

func (s *GormStore) Completion(ctx context.Context, userID int64) (*model.Completion, error) {
	var c model.Completion
	err := s.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Raw(completionSQL, map[string]interface{}{"uid": userID}).
		Scan(&c).Error
	if err != nil {
		return nil, fmt.Errorf("query completion: %w", err)
	}
	return &c, nil
}

func (s *GormStore) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return s.exists(ctx, &model.User{}, "username = ?", username)
}

func (s *GormStore) CreateUser(ctx context.Context, user *model.User) error {
	return translate(s.db.WithContext(ctx).Create(user).Error)
}

func (s *GormStore) GetUser(ctx context.Context, publicID int64) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("public_id = ?", publicID).Take(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) UpsertAddress(ctx context.Context, address *model.Address) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"country_id", "city_id", "address", "updated_at"}),
	}).Create(address).Error
}

func (s *GormStore) PhoneOwner(ctx context.Context, phoneHash string) (int64, error) {
	var contact model.Contact
	err := s.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Select("user_id").
		Where("phone_hash = ?", phoneHash).
		Take(&contact).Error
	if err != nil {
		return 0, translate(err)
	}
	return contact.UserID, nil
}

// UpsertContact phone_hash 冲突时返回 ErrDuplicate
func (s *GormStore) UpsertContact(ctx context.Context, contact *model.Contact) error {
	return translate(s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"phone_cipher", "phone_hash", "verified", "verified_at", "updated_at"}),
	}).Create(contact).Error)
}

func (s *GormStore) GetContact(ctx context.Context, userID int64) (*model.Contact, error) {
	var contact model.Contact
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Take(&contact).Error; err != nil {
		return nil, translate(err)
	}
	return &contact, nil
}

func (s *GormStore) UpsertSettings(ctx context.Context, settings *model.Settings) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"base_currency_id", "language_id", "theme_preference", "updated_at"}),
	}).Create(settings).Error
}

func (s *GormStore) Countries(ctx context.Context) ([]model.Country, error) {
	var rows []model.Country
	err := s.db.WithContext(ctx).Order("name").Find(&rows).Error
	return rows, err
}

func (s *GormStore) Cities(ctx context.Context, countryID int64) ([]model.City, error) {
	var rows []model.City
	err := s.db.WithContext(ctx).Where("country_id = ?", countryID).Order("name").Find(&rows).Error
	return rows, err
}

func (s *GormStore) GetCity(ctx context.Context, cityID int64) (*model.City, error) {
	var city model.City
	if err := s.db.WithContext(ctx).Take(&city, cityID).Error; err != nil {
		return nil, translate(err)
	}
	return &city, nil
}

func (s *GormStore) Currencies(ctx context.Context) ([]model.Currency, error) {
	var rows []model.Currency
	err := s.db.WithContext(ctx).Order("code").Find(&rows).Error
	return rows, err
}

func (s *GormStore) Languages(ctx context.Context) ([]model.Language, error) {
	var rows []model.Language
	err := s.db.WithContext(ctx).Order("id").Find(&rows).Error
	return rows, err
}

func (s *GormStore) CountryExists(ctx context.Context, id int64) (bool, error) {
	return s.exists(ctx, &model.Country{}, "id = ?", id)
}

func (s *GormStore) CurrencyExists(ctx context.Context, id int64) (bool, error) {
	return s.exists(ctx, &model.Currency{}, "id = ?", id)
}

func (s *GormStore) LanguageExists(ctx context.Context, id int64) (bool, error) {
	return s.exists(ctx, &model.Language{}, "id = ?", id)
}

func (s *GormStore) exists(ctx context.Context, m interface{}, query string, args ...interface{}) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(m).Where(query, args...).Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// translate 依赖 gorm.Config.TranslateError 把驱动错误转换为 gorm 错误
func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	}
	return err
}
