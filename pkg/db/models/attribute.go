package models

// AttributeKey is a deduplicated attribute name ("Color", "Material").
// Rows are append-only; the sync pipeline never deletes them.
type AttributeKey struct {
	ID      int64  `gorm:"column:id;primaryKey;autoIncrement"`
	KeyName string `gorm:"column:key_name;uniqueIndex;not null"`
}

// Attribute is a deduplicated (key, value) pair.
type Attribute struct {
	ID    int64  `gorm:"column:id;primaryKey;autoIncrement"`
	KeyID int64  `gorm:"column:key_id;not null;uniqueIndex:idx_attributes_key_value"`
	Value string `gorm:"column:value;not null;uniqueIndex:idx_attributes_key_value"`
}

// ProductAttribute links a product to an attribute it exhibits. The pair is
// unique; orphaned links are removed by cascade when a product is deleted.
type ProductAttribute struct {
	ProductID   int64 `gorm:"column:product_id;not null;uniqueIndex:idx_product_attributes_pair"`
	AttributeID int64 `gorm:"column:attribute_id;not null;uniqueIndex:idx_product_attributes_pair"`
}
