package property

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/evcraddock/estatebi/internal/preprocess"
)

// ErrMissingRequired is returned when a manual create lacks city or price.
var ErrMissingRequired = errors.New("city and price are required")

// Service provides property business logic for manual edits.
type Service struct {
	repo *Repository
	now  func() time.Time
}

// NewService creates a property service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create stores a manually entered property. Type and status are
// normalized, and a PROP-prefixed code is assigned when none is given.
func (s *Service) Create(ctx context.Context, p *Property) (*Property, error) {
	if p.City == "" || !(p.Price > 0) {
		return nil, ErrMissingRequired
	}

	p.City = preprocess.NormalizeCity(p.City)
	p.Type = string(preprocess.NormalizeType(p.Type))
	p.Status = string(preprocess.NormalizeStatus(p.Status))
	if p.PropertyCode == "" {
		p.PropertyCode = fmt.Sprintf("PROP%d", s.now().UnixMilli())
	}

	saved, err := s.repo.Insert(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("saving property: %w", err)
	}

	return saved, nil
}

// Update applies c to property id, normalizing city, type and status the
// same way uploads do.
func (s *Service) Update(ctx context.Context, id int64, c Changes) error {
	if c.City != nil {
		city := preprocess.NormalizeCity(*c.City)
		c.City = &city
	}
	if c.Type != nil {
		t := string(preprocess.NormalizeType(*c.Type))
		c.Type = &t
	}
	if c.Status != nil {
		st := string(preprocess.NormalizeStatus(*c.Status))
		c.Status = &st
	}
	return s.repo.Update(ctx, id, c)
}
