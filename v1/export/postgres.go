package export

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// ExportedRecord is the archive row written by PostgresSink. A log row is
// stored once per (source, table, rowid); re-exporting the same log is a no-op.
type ExportedRecord struct {
	ID          uint64          `gorm:"primaryKey"`
	Source      string          `gorm:"not null;uniqueIndex:idx_kismet_records_origin,priority:1"`
	SourceTable string          `gorm:"column:source_table;not null;uniqueIndex:idx_kismet_records_origin,priority:2"`
	RowID       int64           `gorm:"column:row_id;not null;uniqueIndex:idx_kismet_records_origin,priority:3"`
	Version     int             `gorm:"not null"`
	Payload     json.RawMessage `gorm:"type:jsonb;not null"`
	ExportedAt  time.Time       `gorm:"not null"`
}

// TableName sets the archive table name.
func (ExportedRecord) TableName() string {
	return "kismet_records"
}

// PostgresSink archives envelopes into the kismet_records table.
type PostgresSink struct {
	mu     sync.Mutex
	db     *gorm.DB
	closed bool
}

// NewPostgresSink connects and migrates the archive table.
func NewPostgresSink(ctx context.Context, cfg PostgresConfig) (*PostgresSink, error) {
	if cfg.Host == "" || cfg.DbName == "" {
		return nil, fmt.Errorf("%w: postgres host and database are required", ErrMissingConfig)
	}

	db, err := connectToPostgres(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).AutoMigrate(&ExportedRecord{}); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("failed to migrate kismet_records: %w", err)
	}
	return &PostgresSink{db: db}, nil
}

// connectToPostgres opens the database with GORM and a small pool.
func connectToPostgres(cfg PostgresConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DbName, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgresSQL database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get PostgresSQL database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(time.Minute)
	return db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// Name returns "postgres".
func (s *PostgresSink) Name() string { return SinkPostgres }

// Write inserts the batch in one statement, ignoring rows already archived.
func (s *PostgresSink) Write(ctx context.Context, batch []Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}
	rows, err := toRows(batch, time.Now().UTC())
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func toRows(batch []Envelope, now time.Time) ([]ExportedRecord, error) {
	rows := make([]ExportedRecord, 0, len(batch))
	for _, env := range batch {
		payload, err := json.Marshal(env.Record)
		if err != nil {
			return nil, fmt.Errorf("encode %s rowid %d: %w", env.Table, env.RowID, err)
		}
		rows = append(rows, ExportedRecord{
			Source:      env.Source,
			SourceTable: env.Table,
			RowID:       env.RowID,
			Version:     env.Version,
			Payload:     payload,
			ExportedAt:  now,
		})
	}
	return rows, nil
}

// Close closes the connection pool.
func (s *PostgresSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
