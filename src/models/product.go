package models

import (
	"pbs/src/types"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Product is a bookable photography package. Price is kept in minor units
// (cents) so it can be compared against processor amounts without rounding.
type Product struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	Title       string `gorm:"uniqueIndex" json:"title"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price"`
	Duration    string `json:"duration,omitempty"`
	PhotoCount  uint   `json:"photo_count,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	CTAText     string `json:"cta_text,omitempty"`

	Bookings []Booking `gorm:"foreignKey:product_id" json:"bookings,omitempty"`

	types.Timestamps
}

func (p *Product) BeforeSave(tx *gorm.DB) error {
	if p.Slug == "" && p.Title != "" {
		p.Slug = slug.Make(p.Title)
	}
	return nil
}
