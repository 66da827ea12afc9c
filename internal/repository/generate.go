package repository

import (
	"fmt"

	"gorm.io/gen"

	"FinTrack/internal/model"
	"FinTrack/storage/database"
)

// UserQuerier 用户资料查询
type UserQuerier interface {
	// GetByPublicID 根据认证服务的用户 ID 查询
	//
	// SELECT * FROM @@table WHERE public_id = @publicID LIMIT 1
	GetByPublicID(publicID int64) (*gen.T, error)

	// GetByUsername 根据用户名查询
	//
	// SELECT * FROM @@table WHERE username = @username LIMIT 1
	GetByUsername(username string) (*gen.T, error)
}

// ContactQuerier 联系方式查询
type ContactQuerier interface {
	// GetByPhoneHash 根据手机号哈希查询
	//
	// SELECT * FROM @@table WHERE phone_hash = @phoneHash LIMIT 1
	GetByPhoneHash(phoneHash string) (*gen.T, error)

	// ListUnverified 未完成验证码校验的联系方式
	//
	// SELECT * FROM @@table
	// WHERE verified = false
	// {{if limit > 0}}
	// LIMIT @limit
	// {{end}}
	ListUnverified(limit int) ([]*gen.T, error)
}

// CompletionQuerier 引导完成度统计
type CompletionQuerier interface {
	// CountCompleted 已完成全部引导的用户数
	//
	// SELECT COUNT(*) FROM @@table s
	// WHERE EXISTS (SELECT 1 FROM user_contacts c WHERE c.user_id = s.user_id)
	CountCompleted() (int64, error)
}

// CityQuerier 城市查询
type CityQuerier interface {
	// ListByCountry 某国家下的城市
	//
	// SELECT * FROM @@table WHERE country_id = @countryID ORDER BY name
	ListByCountry(countryID int64) ([]*gen.T, error)
}

// DefaultQueryPath gen 输出目录
const DefaultQueryPath = "./internal/repository/query"

// Generate 根据模型和查询接口生成类型安全的查询代码
func Generate(outPath string) error {
	if outPath == "" {
		outPath = DefaultQueryPath
	}

	if err := database.Init(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	db := database.DB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:           outPath,
		ModelPkgPath:      "FinTrack/internal/model",
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    false,
		FieldSignable:     false,
		FieldWithIndexTag: false,
		FieldWithTypeTag:  true,
	})

	g.UseDB(db)

	g.ApplyBasic(
		&model.User{},
		&model.Address{},
		&model.Contact{},
		&model.Settings{},
		&model.Country{},
		&model.City{},
		&model.Currency{},
		&model.Language{},
	)

	g.ApplyInterface(func(UserQuerier) {}, &model.User{})
	g.ApplyInterface(func(ContactQuerier) {}, &model.Contact{})
	g.ApplyInterface(func(CompletionQuerier) {}, &model.Settings{})
	g.ApplyInterface(func(CityQuerier) {}, &model.City{})

	g.Execute()

	return nil
}
