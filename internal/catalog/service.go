// Package catalog implements the product catalog: listing, lookup, literal
// substring search and validated full-record writes.
package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/saajjewels/storefront/internal/apperr"
	"github.com/saajjewels/storefront/internal/domain"
)

const MsgProductNotFound = "Product not found"

// Service is stateless; one call serves one request.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List returns every product
func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperr.Storage(err, "Error fetching products")
	}
	return rows, nil
}

// Get returns the product with the given id
func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, ErrProductNotFound) {
		return nil, apperr.NotFound(ErrProductNotFound, MsgProductNotFound)
	}
	if err != nil {
		return nil, apperr.Storage(err, "Error fetching product")
	}
	return p, nil
}

// Search matches q literally against name, category and description.
// A blank query returns an empty result without touching storage.
func (s *Service) Search(ctx context.Context, q string) ([]domain.Product, error) {
	term := strings.TrimSpace(q)
	if term == "" {
		zap.L().Debug("empty search query, returning empty result")
		return []domain.Product{}, nil
	}

	rows, err := s.repo.Search(ctx, term)
	if err != nil {
		return nil, apperr.Storage(err, "Error searching products")
	}
	zap.L().Debug("product search",
		zap.String("query", term),
		zap.Int("found", len(rows)))
	return rows, nil
}

// Create validates d and stores a new product. uploadedURL, when set,
// overrides the image supplied in d.
func (s *Service) Create(ctx context.Context, d Draft, uploadedURL string) (*domain.Product, error) {
	p, err := d.normalize(uploadedURL)
	if err != nil {
		return nil, err
	}

	now := s.now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := s.repo.Create(ctx, &p); err != nil {
		zap.L().Error("failed to create product", zap.String("name", p.Name), zap.Error(err))
		return nil, apperr.Storage(err, "Error creating product")
	}
	return &p, nil
}

// Update replaces every field of product id with the validated draft and
// refreshes its update timestamp. Partial drafts are rejected.
func (s *Service) Update(ctx context.Context, id int64, d Draft, uploadedURL string) (*domain.Product, error) {
	p, err := d.normalize(uploadedURL)
	if err != nil {
		return nil, err
	}

	p.ID = id
	p.UpdatedAt = s.now()
	err = s.repo.Replace(ctx, &p)
	if errors.Is(err, ErrProductNotFound) {
		return nil, apperr.NotFound(ErrProductNotFound, MsgProductNotFound)
	}
	if err != nil {
		zap.L().Error("failed to update product", zap.Int64("id", id), zap.Error(err))
		return nil, apperr.Storage(err, "Error updating product")
	}
	return &p, nil
}

// Delete removes product id. The existence check and the delete are two
// statements; a concurrent delete in between still reports success.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		zap.L().Error("failed to delete product", zap.Int64("id", id), zap.Error(err))
		return apperr.Storage(err, "Error deleting product")
	}
	zap.L().Info("product deleted", zap.Int64("id", id))
	return nil
}
