package models

import "pbs/src/types"

// CarouselImage is one slide of the homepage hero banner. DisplayOrder is
// the zero-based position; reordering rewrites every row in one transaction.
type CarouselImage struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	Title        string `json:"title,omitempty"`
	ImageURL     string `json:"image_url"`
	DisplayOrder uint   `json:"display_order"`

	types.Timestamps
}
