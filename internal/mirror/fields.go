package mirror

// Field names of the remote inventory base.
const (
	fieldItemName    = "Item Name"
	fieldDescription = "Description"
	fieldPrice       = "Price"
	fieldQuantity    = "Quantity"
	fieldImages      = "Images"

	fieldKey          = "Key"
	fieldValue        = "Value"
	fieldRelatedItems = "Related Inventory Items"
)

// The base prices everything in USD ('$' in the remote schema).
const defaultCurrency = "USD"
