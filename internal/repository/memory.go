package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"reportes-ciudadanos/internal/auth"
	"reportes-ciudadanos/internal/models"
)

// MemoryUserStore is an in-process UserStore used by tests.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: map[string]models.User{}}
}

func (s *MemoryUserStore) Create(_ context.Context, email, password string, role models.UserRole) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[email]; ok {
		return false, nil
	}
	parsed, ok := models.ParseRole(string(role))
	if !ok {
		return false, fmt.Errorf("unknown role %q", role)
	}
	role = parsed
	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}
	u := models.User{Email: email, PasswordHash: hash, Role: role}
	u.ID = uint(len(s.users) + 1)
	s.users[email] = u
	return true, nil
}

func (s *MemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[email]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// MemoryReportStore is an in-process ReportStore used by tests.
type MemoryReportStore struct {
	mu      sync.Mutex
	nextID  uint
	reports map[uint]models.Report

	// CreateErr, when set, is returned by Create.
	CreateErr error
}

func NewMemoryReportStore() *MemoryReportStore {
	return &MemoryReportStore{reports: map[uint]models.Report{}}
}

func (s *MemoryReportStore) Create(_ context.Context, r *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.CreateErr != nil {
		return s.CreateErr
	}
	s.nextID++
	r.ID = s.nextID
	s.reports[r.ID] = *r
	return nil
}

func (s *MemoryReportStore) List(_ context.Context, status *models.ReportStatus) ([]models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Report{}
	for _, r := range s.reports {
		if status == nil || r.Status == *status {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryReportStore) Get(_ context.Context, id uint) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (s *MemoryReportStore) UpdateStatus(_ context.Context, id uint, status models.ReportStatus, reason *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reports[id]
	if !ok {
		return ErrNotFound
	}
	r.Status = status
	r.RejectionReason = reason
	s.reports[id] = r
	return nil
}

func (s *MemoryReportStore) CountByStatus(_ context.Context) (map[models.ReportStatus]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := map[models.ReportStatus]int64{}
	for _, r := range s.reports {
		counts[r.Status]++
	}
	return counts, nil
}

// Put stores r as-is, bypassing validation. Tests use it to seed rows such as
// unknown statuses.
func (s *MemoryReportStore) Put(r models.Report) uint {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	r.ID = s.nextID
	s.reports[r.ID] = r
	return r.ID
}
