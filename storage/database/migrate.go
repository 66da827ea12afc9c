package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"FinTrack/internal/model"
	"FinTrack/pkg/logger"
)

// Migrate 运行数据库迁移，创建所有表
func Migrate() error {
	db := DB()
	if db == nil {
		return gorm.ErrInvalidDB
	}

	logger.Logger.Info("Starting database migration...")

	err := db.AutoMigrate(
		&model.User{},
		&model.Address{},
		&model.Contact{},
		&model.Settings{},
		&model.Country{},
		&model.City{},
		&model.Currency{},
		&model.Language{},
	)
	if err != nil {
		logger.Logger.Error("Database migration failed", zap.Error(err))
		return err
	}

	logger.Logger.Info("Database migration completed successfully")
	return nil
}

// Seed 写入常量表，已存在的行保持不变
func Seed() error {
	db := DB()
	if db == nil {
		return gorm.ErrInvalidDB
	}

	return db.Transaction(func(tx *gorm.DB) error {
		skip := tx.Clauses(clause.OnConflict{DoNothing: true})
		for _, rows := range []interface{}{
			&model.SeedCountries,
			&model.SeedCities,
			&model.SeedCurrencies,
			&model.SeedLanguages,
		} {
			if err := skip.Create(rows).Error; err != nil {
				logger.Logger.Error("Failed to seed constants", zap.Error(err))
				return err
			}
		}
		return nil
	})
}
