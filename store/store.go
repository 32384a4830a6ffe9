// Package store archives computed reports in a sqlite database.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/etnz/realized"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned by Get for an unknown report id.
var ErrNotFound = errors.New("report not found")

// Modes of an archived report.
const (
	Merged   = "merged"
	Category = "category"
)

// Report is an archived computation.
type Report struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	Baseline       string    `gorm:"size:10" json:"baseline"`
	From           string    `gorm:"size:10;index" json:"from"`
	To             string    `gorm:"size:10" json:"to"`
	// Period identifies the window, e.g. "2025-02" or "2025-Q1".
	Period         string    `gorm:"size:24;index" json:"period"`
	Mode           string    `gorm:"size:16" json:"mode"`
	TotalRealized  string    `json:"totalRealized"`
	TotalDividends string    `json:"totalDividends"`
	Issues         int       `json:"issues"`
	Summaries      []Summary `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"summary"`
	// Payload is the JSON encoded result.
	Payload   []byte    `json:"-"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

// Summary is the archived summary of one account category.
type Summary struct {
	ID             uint   `gorm:"primaryKey" json:"-"`
	ReportID       string `gorm:"size:36;index" json:"-"`
	Category       string `gorm:"size:16" json:"category"`
	TotalRealized  string `json:"totalRealized"`
	TotalDividends string `json:"totalDividends"`
}

// Store is the report archive.
type Store struct {
	db *gorm.DB
}

// Open opens, creating it if needed, the sqlite archive at dsn.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.AutoMigrate(&Report{}, &Summary{}); err != nil {
		return nil, fmt.Errorf("failed to auto migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save archives res computed in mode (Merged or Category) and returns the new report.
func (s *Store) Save(ctx context.Context, res *realized.Result, mode string) (*Report, error) {
	payload, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	r := &Report{
		ID:             uuid.NewString(),
		Baseline:       res.Window.Baseline.String(),
		From:           res.Window.Range.From.String(),
		To:             res.Window.Range.To.String(),
		Period:         res.Window.Range.Identifier(),
		Mode:           mode,
		TotalRealized:  res.TotalRealized().String(),
		TotalDividends: res.TotalDividends().String(),
		Issues:         len(res.Issues),
		Payload:        payload,
	}
	for _, sum := range res.Summary {
		r.Summaries = append(r.Summaries, Summary{
			Category:       sum.Category.String(),
			TotalRealized:  sum.TotalRealized.String(),
			TotalDividends: sum.TotalDividends.String(),
		})
	}
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, fmt.Errorf("saving report: %w", err)
	}
	return r, nil
}

// List returns the most recent reports first, at most limit if positive.
func (s *Store) List(ctx context.Context, limit int) ([]Report, error) {
	query := s.db.WithContext(ctx).Preload("Summaries").Omit("Payload").Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var reports []Report
	if err := query.Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	return reports, nil
}

// Get returns the report id, with its payload.
func (s *Store) Get(ctx context.Context, id string) (*Report, error) {
	var r Report
	err := s.db.WithContext(ctx).Preload("Summaries").First(&r, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting report %s: %w", id, err)
	}
	return &r, nil
}
