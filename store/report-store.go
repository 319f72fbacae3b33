package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/krishkalaria12/remake/models"
	"gorm.io/gorm"
)

var ErrIncompleteReport = errors.New("report is missing owner, notes or content")

// ReportStore persists generated reports.
type ReportStore interface {
	// Create inserts a report and returns the stored row, including its
	// server-assigned id and creation time.
	Create(ctx context.Context, report models.Report) (*models.Report, error)
	// ListByOwner returns every report of userID, newest first.
	ListByOwner(ctx context.Context, userID string) ([]models.Report, error)
}

type GormReportStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewReportStore(db *gorm.DB) *GormReportStore {
	return &GormReportStore{db: db, now: time.Now}
}

func (s *GormReportStore) Create(ctx context.Context, report models.Report) (*models.Report, error) {
	if report.UserID == "" || report.RawInput == "" || report.ReportContent == "" {
		return nil, ErrIncompleteReport
	}

	report.ID = ""
	// postgres timestamps keep microseconds
	report.CreatedAt = s.now().UTC().Truncate(time.Microsecond)

	// the insert runs in its own transaction; on error nothing is visible
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&report).Error
	})
	if err != nil {
		return nil, fmt.Errorf("insert report: %w", err)
	}

	return &report, nil
}

func (s *GormReportStore) ListByOwner(ctx context.Context, userID string) ([]models.Report, error) {
	reports := []models.Report{}
	if userID == "" {
		return reports, nil
	}

	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	return reports, nil
}
