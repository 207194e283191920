package catalog

import (
	"github.com/wifstudio/catalog-mirror/pkg/db/models"
)

// AttributeDTO is one normalized key/value pair attached to a product.
type AttributeDTO struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ProductDTO is the storefront read model for one mirrored product.
type ProductDTO struct {
	ID           int64          `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Price        string         `json:"price"`
	Quantity     int            `json:"quantity"`
	Currency     string         `json:"currency"`
	Images       []string       `json:"images"`
	MainImageURL *string        `json:"main_image_url,omitempty"`
	DisplayOrder int            `json:"display_order"`
	Attributes   []AttributeDTO `json:"attributes"`
}

// NewProductDTO maps a mirror row and its attributes into the read model.
func NewProductDTO(product *models.Product, attributes []AttributeDTO) *ProductDTO {
	if product == nil {
		return nil
	}
	images := append([]string(nil), product.Images...)
	if images == nil {
		images = []string{}
	}
	if attributes == nil {
		attributes = []AttributeDTO{}
	}
	return &ProductDTO{
		ID:           product.ID,
		Title:        product.Title,
		Description:  product.Description,
		Price:        product.Price.StringFixed(2),
		Quantity:     product.Quantity,
		Currency:     product.Currency,
		Images:       images,
		MainImageURL: product.MainImageURL,
		DisplayOrder: product.DisplayOrder,
		Attributes:   attributes,
	}
}
