package catalog

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/saajjewels/storefront/internal/domain"
	"github.com/saajjewels/storefront/pkg/common"
)

// ErrProductNotFound is returned when an identifier does not resolve to a row
var ErrProductNotFound = errors.New("product not found")

// Repository is the product storage used by Service
type Repository interface {
	// FindAll returns every product in store order
	FindAll(ctx context.Context) ([]domain.Product, error)

	// FindByID returns ErrProductNotFound when id does not exist
	FindByID(ctx context.Context, id int64) (*domain.Product, error)

	// Search returns products whose name, category or description contain
	// term case-insensitively. term is matched literally.
	Search(ctx context.Context, term string) ([]domain.Product, error)

	Create(ctx context.Context, p *domain.Product) error

	// Replace overwrites every mutable column of p.ID in one statement and
	// reloads p. Returns ErrProductNotFound when no row matched.
	Replace(ctx context.Context, p *domain.Product) error

	Delete(ctx context.Context, id int64) error
}

// GormRepository is the GORM implementation of Repository
type GormRepository struct {
	DB *gorm.DB
}

// NewGormRepository creates a new GORM-based repository
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{DB: db}
}

func (r *GormRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	rows := make([]domain.Product, 0)
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "query products")
	}
	return rows, nil
}

func (r *GormRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "query product %d", id)
	}
	return &p, nil
}

func (r *GormRepository) Search(ctx context.Context, term string) ([]domain.Product, error) {
	pattern := common.ContainsPattern(term)
	db := r.DB.WithContext(ctx).Model(&domain.Product{})
	if strings.EqualFold(db.Dialector.Name(), "postgres") {
		db = db.Where(`name ILIKE ? ESCAPE '\' OR category ILIKE ? ESCAPE '\' OR description ILIKE ? ESCAPE '\'`,
			pattern, pattern, pattern)
	} else {
		pattern = strings.ToLower(pattern)
		db = db.Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(category) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern)
	}

	rows := make([]domain.Product, 0)
	if err := db.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "search products")
	}
	return rows, nil
}

func (r *GormRepository) Create(ctx context.Context, p *domain.Product) error {
	return errors.Wrap(r.DB.WithContext(ctx).Create(p).Error, "create product")
}

func (r *GormRepository) Replace(ctx context.Context, p *domain.Product) error {
	res := r.DB.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"name":             p.Name,
		"original_price":   p.OriginalPrice,
		"discounted_price": p.DiscountedPrice,
		"image":            p.Image,
		"description":      p.Description,
		"category":         p.Category,
		"updated_at":       p.UpdatedAt,
	})
	if res.Error != nil {
		return errors.Wrapf(res.Error, "update product %d", p.ID)
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	fresh, err := r.FindByID(ctx, p.ID)
	if err != nil {
		return err
	}
	*p = *fresh
	return nil
}

func (r *GormRepository) Delete(ctx context.Context, id int64) error {
	return errors.Wrapf(r.DB.WithContext(ctx).Where("id = ?", id).Delete(&domain.Product{}).Error, "delete product %d", id)
}
