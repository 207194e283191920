package models

import (
	"time"

	"github.com/shopspring/decimal"

	dbtypes "github.com/wifstudio/catalog-mirror/pkg/db/types"
)

// Product mirrors one remote inventory item. ID is the locally minted
// surrogate key; ExternalID is the remote record id and is nullable only for
// rows that predate the external id column.
type Product struct {
	ID           int64              `gorm:"column:id;primaryKey;autoIncrement"`
	ExternalID   *string            `gorm:"column:external_id;uniqueIndex"`
	Title        string             `gorm:"column:title;not null"`
	Description  string             `gorm:"column:description"`
	Price        decimal.Decimal    `gorm:"column:price;type:numeric(10,2);not null"`
	Quantity     int                `gorm:"column:quantity;not null;default:0"`
	Currency     string             `gorm:"column:currency;not null;default:'USD'"`
	Images       dbtypes.StringList `gorm:"column:images;type:text"`
	MainImageURL *string            `gorm:"column:main_image_url"`
	DisplayOrder int                `gorm:"column:display_order;not null;default:0"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
