package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"homepro-server/config"
	"homepro-server/models"
)

// activeSlotIndex enforces the no-double-booking invariant at the storage layer.
const activeSlotIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_active_slot
	ON bookings (provider_id, service_date, service_time)
	WHERE status IN ('pending', 'confirmed', 'in_progress')`

// Open connects to Postgres and configures the connection pool
func Open(cfg config.DatabaseConfig, log zerolog.Logger) (*gorm.DB, error) {
	if cfg.URL == "" {
		return nil, errors.New("database url is empty")
	}

	db, err := gorm.Open(postgres.Open(cfg.URL), GormConfig(log, cfg.SlowThreshold))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL database: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("✅ Successfully connected to database")
	return db, nil
}

// GormConfig is shared by the Postgres connection and test databases
func GormConfig(log zerolog.Logger, slowThreshold time.Duration) *gorm.Config {
	level := logger.Warn
	if log.GetLevel() <= zerolog.DebugLevel {
		level = logger.Info
	}

	return &gorm.Config{
		Logger: logger.New(
			gormWriter{log: log.With().Str("component", "gorm").Logger()},
			logger.Config{
				SlowThreshold:             slowThreshold,
				LogLevel:                  level,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Close releases the connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the database is reachable
func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Migrate creates or updates database tables and indexes
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Address{},
		&models.ServiceCategory{},
		&models.Provider{},
		&models.ProviderAvailability{},
		&models.Booking{},
		&models.Payment{},
		&models.Review{},
		&models.RefreshToken{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err := db.Exec(activeSlotIndex).Error; err != nil {
		return fmt.Errorf("create active slot index: %w", err)
	}

	return nil
}

// IsUniqueViolation reports whether err was caused by a unique constraint
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

type gormWriter struct {
	log zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Debug().Msgf(format, args...)
}
