package catalog

import (
	"context"

	"gorm.io/gorm"

	"github.com/wifstudio/catalog-mirror/pkg/db/models"
)

const attributeRowsQuery = `
SELECT pa.product_id,
       ak.key_name,
       a.value
FROM product_attributes pa
JOIN attributes a ON a.id = pa.attribute_id
JOIN attribute_keys ak ON ak.id = a.key_id
WHERE pa.product_id IN ?
ORDER BY pa.product_id, ak.key_name, a.value
`

type attributeRow struct {
	ProductID int64  `gorm:"column:product_id"`
	KeyName   string `gorm:"column:key_name"`
	Value     string `gorm:"column:value"`
}

// Repository serves read access to the mirrored catalog.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListProducts returns products in display order. A zero limit means no limit.
func (r *Repository) ListProducts(ctx context.Context, limit, offset int) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Order("display_order ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	var rows []models.Product
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountProducts returns the total mirrored product count.
func (r *Repository) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByID loads one product row.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// AttributesForProducts loads the attribute pairs for the given products,
// keyed by product id.
func (r *Repository) AttributesForProducts(ctx context.Context, productIDs []int64) (map[int64][]AttributeDTO, error) {
	out := make(map[int64][]AttributeDTO, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	var rows []attributeRow
	if err := r.db.WithContext(ctx).Raw(attributeRowsQuery, productIDs).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ProductID] = append(out[row.ProductID], AttributeDTO{Key: row.KeyName, Value: row.Value})
	}
	return out, nil
}
