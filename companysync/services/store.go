package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/natserract/zohosync/pkg/zoho"
)

// CompanyStore persists companies. Find methods return zoho.ErrNotFound when
// no company matches.
type CompanyStore interface {
	FindByZohoID(ctx context.Context, zohoID string) (*Company, error)
	FindByTitle(ctx context.Context, title string) (*Company, error)
	Create(ctx context.Context, c *Company) error
	Update(ctx context.Context, c *Company) error
	List(ctx context.Context) ([]Company, error)
}

var _ CompanyStore = (*MemoryCompanyStore)(nil)

// MemoryCompanyStore keeps companies in memory. Like the Postgres store it
// rejects a second company with the same Zoho ID.
type MemoryCompanyStore struct {
	mu        sync.Mutex
	companies map[uuid.UUID]Company
}

func NewMemoryCompanyStore() *MemoryCompanyStore {
	return &MemoryCompanyStore{companies: make(map[uuid.UUID]Company)}
}

func (s *MemoryCompanyStore) FindByZohoID(_ context.Context, zohoID string) (*Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.sorted() {
		if c.ZohoID != nil && *c.ZohoID == zohoID {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: company with zoho id %s", zoho.ErrNotFound, zohoID)
}

// FindByTitle returns the oldest company with exactly this title.
func (s *MemoryCompanyStore) FindByTitle(_ context.Context, title string) (*Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.sorted() {
		if c.Title != nil && *c.Title == title {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: company titled %q", zoho.ErrNotFound, title)
}

func (s *MemoryCompanyStore) Create(_ context.Context, c *Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[c.ID]; ok {
		return fmt.Errorf("company %s already exists", c.ID)
	}
	if err := s.checkZohoID(c); err != nil {
		return err
	}
	s.companies[c.ID] = *c
	return nil
}

func (s *MemoryCompanyStore) Update(_ context.Context, c *Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[c.ID]; !ok {
		return fmt.Errorf("%w: company %s", zoho.ErrNotFound, c.ID)
	}
	if err := s.checkZohoID(c); err != nil {
		return err
	}
	s.companies[c.ID] = *c
	return nil
}

func (s *MemoryCompanyStore) List(_ context.Context) ([]Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(), nil
}

func (s *MemoryCompanyStore) checkZohoID(c *Company) error {
	if c.ZohoID == nil {
		return nil
	}
	for id, other := range s.companies {
		if id != c.ID && other.ZohoID != nil && *other.ZohoID == *c.ZohoID {
			return fmt.Errorf("company with zoho id %s already exists", *c.ZohoID)
		}
	}
	return nil
}

// sorted returns the companies by creation time. Callers hold mu.
func (s *MemoryCompanyStore) sorted() []Company {
	out := make([]Company, 0, len(s.companies))
	for _, c := range s.companies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
