package database

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"

	"FinTrack/config"
	dbotel "FinTrack/pkg/database"
	"FinTrack/pkg/logger"
)

var (
	db     *gorm.DB
	dbOnce sync.Once
	dbErr  error
)

func Init() error {
	dbOnce.Do(func() {
		cfg := config.Cfg
		gormCfg := &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
			PrepareStmt:                              true,
			SkipDefaultTransaction:                   true,
			TranslateError:                           true,
		}

		var gormDB *gorm.DB
		gormDB, dbErr = gorm.Open(postgres.Open(cfg.GetDSN()), gormCfg)
		if dbErr != nil {
			logger.Logger.Error("Failed to open database", zap.String("host", cfg.PostgreSQLHost), zap.Error(dbErr))
			return
		}

		if err := registerReplicas(gormDB, cfg.PostgreSQLReplicas); err != nil {
			dbErr = err
			logger.Logger.Error("Failed to register read replicas", zap.Error(err))
			return
		}

		if cfg.OTelEnabled {
			if err := dbotel.WithDefaultOTELPlugin(gormDB, cfg.ServiceName); err != nil {
				logger.Logger.Warn("Failed to instrument database", zap.Error(err))
			}
		}

		sqlDB, err := gormDB.DB()
		if err != nil {
			dbErr = err
			logger.Logger.Error("Failed to get sql.DB from gorm", zap.Error(err))
			return
		}

		configureConnectionPool(sqlDB)

		if err := sqlDB.Ping(); err != nil {
			dbErr = err
			logger.Logger.Error("Failed to ping database", zap.Error(err))
			return
		}

		db = gormDB
		if err := Migrate(); err != nil {
			dbErr = err
			return
		}
		if err := Seed(); err != nil {
			dbErr = err
			return
		}
		logger.Logger.Info("Database initialized successfully",
			zap.Int("replicas", len(cfg.PostgreSQLReplicas)),
		)
	})

	return dbErr
}

// registerReplicas 只读查询走副本，写入和显式 dbresolver.Write 的读走主库
func registerReplicas(gormDB *gorm.DB, replicas []string) error {
	if len(replicas) == 0 {
		return nil
	}

	dialectors := make([]gorm.Dialector, 0, len(replicas))
	for _, dsn := range replicas {
		dialectors = append(dialectors, postgres.Open(dsn))
	}

	cfg := config.Cfg
	return gormDB.Use(
		dbresolver.Register(dbresolver.Config{
			Replicas:          dialectors,
			Policy:            dbresolver.RandomPolicy{},
			TraceResolverMode: cfg.IsDevelopment(),
		}).
			SetMaxIdleConns(cfg.PostgreSQLMaxIdle).
			SetMaxOpenConns(cfg.PostgreSQLMaxOpen).
			SetConnMaxIdleTime(10 * time.Minute).
			SetConnMaxLifetime(2 * time.Hour),
	)
}

func DB() *gorm.DB {
	return db
}

func Close(ctx context.Context) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- sqlDB.Close()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func configureConnectionPool(sqlDB *sql.DB) {
	cfg := config.Cfg

	sqlDB.SetMaxIdleConns(cfg.PostgreSQLMaxIdle)
	sqlDB.SetMaxOpenConns(cfg.PostgreSQLMaxOpen)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)
	sqlDB.SetConnMaxLifetime(2 * time.Hour)
}
