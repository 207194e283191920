package mirror

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wifstudio/catalog-mirror/pkg/db/models"
)

// Repository persists the mirror tables. Mutations take the transaction of
// the phase they belong to; each phase commits as one unit.
type Repository struct{}

// NewRepository constructs the mirror repository.
func NewRepository() *Repository {
	return &Repository{}
}

// ExternalIDMapWithTx returns the external-id to surrogate-id mapping for
// every product that carries an external id.
func (r *Repository) ExternalIDMapWithTx(tx *gorm.DB) (map[string]int64, error) {
	var rows []models.Product
	if err := tx.Select("id", "external_id").Where("external_id IS NOT NULL").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		if row.ExternalID != nil {
			out[*row.ExternalID] = row.ID
		}
	}
	return out, nil
}

// InsertProductWithTx creates a product row and fills in its surrogate id.
func (r *Repository) InsertProductWithTx(tx *gorm.DB, product *models.Product) error {
	return tx.Create(product).Error
}

// UpdateProductWithTx rewrites every mutable field of the row, including
// zero values. Updates are issued even when nothing changed; an unchanged
// snapshot must still produce an identical mirror.
func (r *Repository) UpdateProductWithTx(tx *gorm.DB, id int64, product *models.Product) error {
	return tx.Model(&models.Product{}).Where("id = ?", id).Updates(map[string]any{
		"title":          product.Title,
		"description":    product.Description,
		"price":          product.Price,
		"quantity":       product.Quantity,
		"currency":       product.Currency,
		"images":         product.Images,
		"main_image_url": product.MainImageURL,
		"display_order":  product.DisplayOrder,
	}).Error
}

// DeleteProductsWithTx removes the products whose external ids disappeared
// from the remote snapshot. Links go with them via cascade.
func (r *Repository) DeleteProductsWithTx(tx *gorm.DB, externalIDs []string) (int64, error) {
	if len(externalIDs) == 0 {
		return 0, nil
	}
	res := tx.Where("external_id IN ?", externalIDs).Delete(&models.Product{})
	return res.RowsAffected, res.Error
}

// FindAttributeKeyWithTx looks up a key by name; nil when absent.
func (r *Repository) FindAttributeKeyWithTx(tx *gorm.DB, keyName string) (*models.AttributeKey, error) {
	var key models.AttributeKey
	err := tx.Where("key_name = ?", keyName).First(&key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &key, nil
}

// InsertAttributeKeyWithTx creates a key row and fills in its id.
func (r *Repository) InsertAttributeKeyWithTx(tx *gorm.DB, key *models.AttributeKey) error {
	return tx.Create(key).Error
}

// FindAttributeWithTx looks up a (key, value) pair; nil when absent.
func (r *Repository) FindAttributeWithTx(tx *gorm.DB, keyID int64, value string) (*models.Attribute, error) {
	var attr models.Attribute
	err := tx.Where("key_id = ? AND value = ?", keyID, value).First(&attr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attr, nil
}

// InsertAttributeWithTx creates an attribute row and fills in its id.
func (r *Repository) InsertAttributeWithTx(tx *gorm.DB, attr *models.Attribute) error {
	return tx.Create(attr).Error
}

// InsertLinkWithTx inserts a (product, attribute) link. An existing pair is
// reported as created=false with no error. The conflict is resolved in the
// statement itself: letting the insert fail would abort the surrounding
// Postgres transaction and poison the rest of the link phase.
func (r *Repository) InsertLinkWithTx(tx *gorm.DB, productID, attributeID int64) (bool, error) {
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.ProductAttribute{ProductID: productID, AttributeID: attributeID})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
