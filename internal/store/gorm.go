package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Store persists pages.
type Store interface {
	Create(ctx context.Context, title string, payload []byte) (*Page, error)
	Load(ctx context.Context, id string) (*Page, error)
	Save(ctx context.Context, id string, payload []byte) (uint64, error)
	List(ctx context.Context) ([]Summary, error)
}

// Option configures a GormStore.
type Option func(*GormStore)

// WithEncoding sets the encoding of newly written content.
func WithEncoding(e Encoding) Option {
	return func(s *GormStore) { s.encoding = e }
}

// WithLogger sets the logger used for the store and its SQL trace.
func WithLogger(l zerolog.Logger) Option {
	return func(s *GormStore) { s.logger = l }
}

// GormStore stores pages in SQLite through gorm.
type GormStore struct {
	db       *gorm.DB
	encoding Encoding
	logger   zerolog.Logger
}

var _ Store = (*GormStore)(nil)

// Open opens or creates the SQLite database at dsn and migrates the pages
// table.
func Open(ctx context.Context, dsn string, opts ...Option) (*GormStore, error) {
	s := &GormStore{encoding: EncodingJSON, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: newQueryLogger(s.logger)})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dsn, err)
	}
	gs, err := New(ctx, db, opts...)
	if err != nil {
		if sqlDB, derr := db.DB(); derr == nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}
	return gs, nil
}

// New wraps an open gorm connection and migrates the pages table.
func New(ctx context.Context, db *gorm.DB, opts ...Option) (*GormStore, error) {
	s := &GormStore{db: db, encoding: EncodingJSON, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	if _, err := ParseEncoding(string(s.encoding)); err != nil {
		return nil, err
	}
	// SQLite allows a single writer.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.WithContext(ctx).AutoMigrate(&pageRecord{}); err != nil {
		return nil, fmt.Errorf("migrate pages: %w", err)
	}
	return s, nil
}

// Encoding returns the encoding used for writes.
func (s *GormStore) Encoding() Encoding { return s.encoding }

// Create stores a new page at version 1.
func (s *GormStore) Create(ctx context.Context, title string, payload []byte) (*Page, error) {
	title = strings.TrimSpace(title)
	content, err := s.encoding.encode(payload)
	if err != nil {
		return nil, err
	}
	rec := pageRecord{
		ID:       uuid.NewString(),
		Title:    title,
		Content:  content,
		Encoding: string(s.encoding),
		Version:  1,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	s.logger.Debug().Str("page", rec.ID).Str("encoding", rec.Encoding).Msg("page created")
	return s.page(&rec)
}

// Load returns the page with id.
func (s *GormStore) Load(ctx context.Context, id string) (*Page, error) {
	var rec pageRecord
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, notFound(id, err)
	}
	return s.page(&rec)
}

// Save replaces the content of page id and returns its new version.
func (s *GormStore) Save(ctx context.Context, id string, payload []byte) (uint64, error) {
	content, err := s.encoding.encode(payload)
	if err != nil {
		return 0, err
	}
	var version uint64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&pageRecord{}).Where("id = ?", id).Updates(map[string]any{
			"content":  content,
			"encoding": string(s.encoding),
			"version":  gorm.Expr("version + 1"),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", ErrPageNotFound, id)
		}
		return tx.Model(&pageRecord{}).Where("id = ?", id).Select("version").Scan(&version).Error
	})
	if err != nil {
		return 0, err
	}
	return version, nil
}

// Rename changes the title of page id.
func (s *GormStore) Rename(ctx context.Context, id, title string) error {
	res := s.db.WithContext(ctx).Model(&pageRecord{}).Where("id = ?", id).Update("title", strings.TrimSpace(title))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrPageNotFound, id)
	}
	return nil
}

// Delete removes page id.
func (s *GormStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&pageRecord{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrPageNotFound, id)
	}
	return nil
}

// List returns all pages, most recently updated first.
func (s *GormStore) List(ctx context.Context) ([]Summary, error) {
	var recs []pageRecord
	err := s.db.WithContext(ctx).
		Select("id", "title", "version", "updated_at").
		Order("updated_at DESC").Order("title").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	out := make([]Summary, len(recs))
	for i := range recs {
		out[i] = recs[i].summary()
	}
	return out, nil
}

// Close closes the underlying connection.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) page(rec *pageRecord) (*Page, error) {
	payload, err := Encoding(rec.Encoding).decode(rec.Content)
	if err != nil {
		return nil, fmt.Errorf("page %s: %w", rec.ID, err)
	}
	return &Page{
		ID:        rec.ID,
		Title:     rec.Title,
		Payload:   payload,
		Version:   rec.Version,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}, nil
}

func notFound(id string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrPageNotFound, id)
	}
	return err
}
