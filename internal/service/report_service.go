package service

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"reportes-ciudadanos/internal/apperr"
	"reportes-ciudadanos/internal/auth"
	"reportes-ciudadanos/internal/metrics"
	"reportes-ciudadanos/internal/models"
	"reportes-ciudadanos/internal/repository"
	"reportes-ciudadanos/internal/storage"
)

const (
	MinAddressLen   = 5
	MinCommentLen   = 10
	MinReasonLen    = 10
	DefaultMaxPhoto = 5 * 1024 * 1024

	// ForbiddenMessage is the fixed body text for role denials.
	ForbiddenMessage = "Sin permiso"
)

type PhotoStore interface {
	Save(original string, data []byte) (string, error)
	Remove(name string) error
}

type StatsCache interface {
	// Get returns the cached value and the generation it was looked up in.
	Get(ctx context.Context) (*models.Statistics, int64, bool)
	// Set stores stats for gen; values for a superseded generation are never served.
	Set(ctx context.Context, gen int64, stats models.Statistics)
	Invalidate(ctx context.Context)
}

// Photo is an uploaded file as received at the boundary.
type Photo struct {
	Filename string
	Data     []byte
}

type CreateReportInput struct {
	Address   string
	Comment   string
	Email     string
	Latitude  string
	Longitude string
	Photo     *Photo
}

type ReportService struct {
	reports  repository.ReportStore
	photos   PhotoStore
	cache    StatsCache
	maxPhoto int64
	now      func() time.Time
}

// NewReportService wires the lifecycle operations. cache may be nil.
func NewReportService(reports repository.ReportStore, photos PhotoStore, cache StatsCache, maxPhoto int64) *ReportService {
	if maxPhoto <= 0 {
		maxPhoto = DefaultMaxPhoto
	}
	return &ReportService{
		reports:  reports,
		photos:   photos,
		cache:    cache,
		maxPhoto: maxPhoto,
		now:      time.Now,
	}
}

func requireUser(id auth.Identity) error {
	if !id.Authenticated() {
		return apperr.Unauthorized("login required")
	}
	return nil
}

func requireAdmin(id auth.Identity) error {
	if err := requireUser(id); err != nil {
		return err
	}
	if !id.IsAdmin() {
		return apperr.Forbidden(ForbiddenMessage)
	}
	return nil
}

func trimmedLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

// List returns reports newest first. An empty filter or "Todos" returns all.
func (s *ReportService) List(ctx context.Context, id auth.Identity, filter string) ([]models.Report, error) {
	if err := requireUser(id); err != nil {
		return nil, err
	}

	var status *models.ReportStatus
	if filter = strings.TrimSpace(filter); filter != "" && filter != models.FilterAll {
		st := models.ReportStatus(filter)
		status = &st
	}

	reports, err := s.reports.List(ctx, status)
	if err != nil {
		return nil, apperr.Internal("error listing reports", err)
	}
	return reports, nil
}

// Create validates the submission, writes the photo and then the row. The
// photo is removed again if the row cannot be stored.
func (s *ReportService) Create(ctx context.Context, id auth.Identity, in CreateReportInput) (uint, error) {
	if err := requireUser(id); err != nil {
		return 0, err
	}
	if err := s.validate(in); err != nil {
		return 0, err
	}
	lat, lng, err := parseCoordinates(in.Latitude, in.Longitude)
	if err != nil {
		return 0, err
	}

	name, err := s.photos.Save(in.Photo.Filename, in.Photo.Data)
	if err != nil {
		return 0, apperr.Internal("error saving photo", err)
	}

	report := &models.Report{
		Address:   strings.TrimSpace(in.Address),
		Comment:   strings.TrimSpace(in.Comment),
		Photo:     name,
		Email:     optional(in.Email),
		Latitude:  lat,
		Longitude: lng,
		Status:    models.StatusPending,
		CreatedAt: s.now(),
	}
	report.AuthorEmail = optional(id.Email)

	if err := s.reports.Create(ctx, report); err != nil {
		if rmErr := s.photos.Remove(name); rmErr != nil {
			log.Printf("failed to remove orphan photo %s: %v", name, rmErr)
		}
		return 0, apperr.Internal("error creating report", err)
	}

	metrics.ReportsCreated.Inc()
	s.invalidate(ctx)
	return report.ID, nil
}

func (s *ReportService) validate(in CreateReportInput) error {
	if trimmedLen(in.Address) < MinAddressLen {
		return apperr.InvalidInput("address too short")
	}
	if trimmedLen(in.Comment) < MinCommentLen {
		return apperr.InvalidInput("comment too short")
	}
	if in.Photo == nil {
		return apperr.InvalidInput("missing photo")
	}
	if in.Photo.Filename == "" {
		return apperr.InvalidInput("no file selected")
	}
	if !storage.Allowed(in.Photo.Filename) {
		return apperr.InvalidInput("disallowed file type")
	}
	if int64(len(in.Photo.Data)) > s.maxPhoto {
		return apperr.TooLarge("photo exceeds the maximum size")
	}
	return nil
}

func parseCoordinates(latRaw, lngRaw string) (*float64, *float64, error) {
	latRaw, lngRaw = strings.TrimSpace(latRaw), strings.TrimSpace(lngRaw)
	if latRaw == "" && lngRaw == "" {
		return nil, nil, nil
	}
	if latRaw == "" || lngRaw == "" {
		return nil, nil, apperr.InvalidInput("invalid coordinates")
	}

	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil || lat < -90 || lat > 90 {
		return nil, nil, apperr.InvalidInput("invalid coordinates")
	}
	lng, err := strconv.ParseFloat(lngRaw, 64)
	if err != nil || lng < -180 || lng > 180 {
		return nil, nil, apperr.InvalidInput("invalid coordinates")
	}
	return &lat, &lng, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (s *ReportService) Get(ctx context.Context, id auth.Identity, reportID uint) (*models.Report, error) {
	if err := requireUser(id); err != nil {
		return nil, err
	}

	report, err := s.reports.Get(ctx, reportID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("report not found")
	}
	if err != nil {
		return nil, apperr.Internal("error loading report", err)
	}
	return report, nil
}

// UpdateStatus moves a report to a new status. Only Rechazado keeps a
// reason; every other status clears it.
func (s *ReportService) UpdateStatus(ctx context.Context, id auth.Identity, reportID uint, status models.ReportStatus, reason string) error {
	if err := requireAdmin(id); err != nil {
		return err
	}
	if !status.Valid() {
		return apperr.InvalidInput("invalid status")
	}

	var stored *string
	if status == models.StatusRejected {
		if trimmedLen(reason) < MinReasonLen {
			return apperr.InvalidInput("rejection reason required")
		}
		r := strings.TrimSpace(reason)
		stored = &r
	}

	err := s.reports.UpdateStatus(ctx, reportID, status, stored)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("report not found")
	}
	if err != nil {
		return apperr.Internal("error updating status", err)
	}

	metrics.StatusChanges.WithLabelValues(string(status)).Inc()
	s.invalidate(ctx)
	return nil
}

// Statistics counts reports per status. Unknown statuses only add to Total.
func (s *ReportService) Statistics(ctx context.Context, id auth.Identity) (models.Statistics, error) {
	if err := requireAdmin(id); err != nil {
		return models.Statistics{}, err
	}

	gen := int64(-1)
	if s.cache != nil {
		cached, g, ok := s.cache.Get(ctx)
		if ok {
			return *cached, nil
		}
		gen = g
	}

	counts, err := s.reports.CountByStatus(ctx)
	if err != nil {
		return models.Statistics{}, apperr.Internal("error computing statistics", err)
	}

	var stats models.Statistics
	for status, n := range counts {
		stats.Add(status, n)
	}

	if s.cache != nil {
		s.cache.Set(ctx, gen, stats)
	}
	return stats, nil
}

func (s *ReportService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}
