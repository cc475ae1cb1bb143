package model

// Product is a stock-keeping unit. SKU is immutable after creation and
// products are never deleted, only deactivated.
type Product struct {
	BaseModel
	SKU      string  `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku" validate:"required,max=50"`
	Name     string  `gorm:"type:varchar(255);not null" json:"name" validate:"required,max=255"`
	Length   float64 `gorm:"default:0" json:"length" validate:"gte=0"`
	Width    float64 `gorm:"default:0" json:"width" validate:"gte=0"`
	Height   float64 `gorm:"default:0" json:"height" validate:"gte=0"`
	Weight   float64 `gorm:"default:0" json:"weight" validate:"gte=0"`
	IsActive bool    `gorm:"default:true" json:"is_active"`
}
