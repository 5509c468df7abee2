package repository

import (
	"context"
	"errors"

	"reportes-ciudadanos/internal/models"

	"gorm.io/gorm"
)

// ErrNotFound is returned when no report has the requested id.
var ErrNotFound = errors.New("record not found")

// ReportStore owns report rows. Each call is a short unit of work; writes to
// the same row are serialized by the database and the last one wins.
type ReportStore interface {
	Create(ctx context.Context, r *models.Report) error
	List(ctx context.Context, status *models.ReportStatus) ([]models.Report, error)
	Get(ctx context.Context, id uint) (*models.Report, error)
	UpdateStatus(ctx context.Context, id uint, status models.ReportStatus, reason *string) error
	CountByStatus(ctx context.Context) (map[models.ReportStatus]int64, error)
}

type gormReportStore struct {
	db *gorm.DB
}

func NewReportStore(db *gorm.DB) ReportStore {
	return &gormReportStore{db: db}
}

func (s *gormReportStore) Create(ctx context.Context, r *models.Report) error {
	return s.db.WithContext(ctx).Create(r).Error
}

// List returns reports newest first, optionally restricted to one status.
func (s *gormReportStore) List(ctx context.Context, status *models.ReportStatus) ([]models.Report, error) {
	q := s.db.WithContext(ctx).Order("fecha_creacion desc").Order("id desc")
	if status != nil {
		q = q.Where("estado = ?", *status)
	}

	reports := []models.Report{}
	if err := q.Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

func (s *gormReportStore) Get(ctx context.Context, id uint) (*models.Report, error) {
	var r models.Report
	err := s.db.WithContext(ctx).First(&r, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateStatus writes status and reason together. A nil reason clears the
// column.
func (s *gormReportStore) UpdateStatus(ctx context.Context, id uint, status models.ReportStatus, reason *string) error {
	res := s.db.WithContext(ctx).
		Model(&models.Report{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"estado":        status,
			"razon_rechazo": reason,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormReportStore) CountByStatus(ctx context.Context) (map[models.ReportStatus]int64, error) {
	var rows []struct {
		Estado   models.ReportStatus
		Cantidad int64
	}
	err := s.db.WithContext(ctx).
		Model(&models.Report{}).
		Select("estado, COUNT(*) AS cantidad").
		Group("estado").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.ReportStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Estado] = row.Cantidad
	}
	return counts, nil
}
