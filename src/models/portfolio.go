package models

import (
	"pbs/src/types"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type PortfolioItem struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug,omitempty"`
	Category    string `json:"category,omitempty"`
	ImageURL    string `json:"image_url"`
	Description string `json:"description,omitempty"`

	types.Timestamps
}

func (p *PortfolioItem) BeforeSave(tx *gorm.DB) error {
	if p.Slug == "" && p.Title != "" {
		p.Slug = slug.Make(p.Title)
	}
	return nil
}
