package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/thehillman215/vectorbid/internal/apierrors"
	"github.com/thehillman215/vectorbid/internal/domain"
)

// Store is the append-only export audit trail, backed by Postgres.
type Store struct {
	db *gorm.DB
}

// Open connects to dsn and runs schema migrations from migrationsPath
// (a `file://` source understood by golang-migrate), mirroring the
// teacher's Connect+AutoMigrate split but using versioned migrations
// instead of gorm.AutoMigrate so the schema change history is explicit.
// An empty migrationsPath falls back to gorm.AutoMigrate.
func Open(dsn, migrationsPath string) (*Store, error) {
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("audit: connect: %w", err)
	}

	if migrationsPath != "" {
		if err := runMigrations(dsn, migrationsPath); err != nil {
			return nil, fmt.Errorf("audit: migrate: %w", err)
		}
	} else if err := gormDB.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("audit: automigrate: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("audit: underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &Store{db: gormDB}, nil
}

func runMigrations(dsn, migrationsPath string) error {
	m, err := migrate.New("file://"+migrationsPath, dsn)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

// Append writes one signed export as a new row. The table is
// append-only: Store exposes no Update or Delete.
func (s *Store) Append(ctx context.Context, record domain.ExportRecord) error {
	entry := Entry{
		ExportID:     record.ExportID,
		ArtifactHash: record.ArtifactHash,
		Signature:    record.Signature,
		CtxID:        record.CtxID,
		PilotID:      record.PilotID,
		IssuedAt:     record.IssuedAt,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return apierrors.NewInternal("audit.Append", "failed to persist export audit entry", err)
	}
	return nil
}

// ByExportID looks up the audit entry for a previously issued export,
// used to re-verify a signature without recomputing the rendering.
func (s *Store) ByExportID(ctx context.Context, exportID string) (domain.ExportRecord, error) {
	var entry Entry
	err := s.db.WithContext(ctx).Where("export_id = ?", exportID).First(&entry).Error
	if err != nil {
		return domain.ExportRecord{}, apierrors.NewNotFound("audit.ByExportID", "export not found: "+exportID)
	}
	return domain.ExportRecord{
		ExportID:     entry.ExportID,
		ArtifactHash: entry.ArtifactHash,
		Signature:    entry.Signature,
		IssuedAt:     entry.IssuedAt,
		CtxID:        entry.CtxID,
		PilotID:      entry.PilotID,
	}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
