package category

import (
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("category not found")
	ErrNameTaken = errors.New("category name already in use")
)

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ImageSrc  string    `json:"imageSrc,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateCategoryRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=80"`
	ImageSrc string `json:"imageSrc" binding:"omitempty,max=500"`
}

type RenameCategoryRequest struct {
	Name string `json:"name" binding:"required,min=2,max=80"`
}
