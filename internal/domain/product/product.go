package product

import (
	"errors"
	"time"

	"github.com/motorline/marketplace/internal/domain/tag"
)

var ErrNotFound = errors.New("product not found")

type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CategoryID  string `json:"categoryId"`
	ImageSrc    string `json:"imageSrc,omitempty"`

	// Listing attributes. All optional.
	Showroom          string `json:"showroom,omitempty"`
	Trim              string `json:"trim,omitempty"`
	Year              int    `json:"year,omitempty"`
	Kilometers        int    `json:"kilometers,omitempty"`
	RegionalSpecs     string `json:"regionalSpecs,omitempty"`
	Doors             int    `json:"doors,omitempty"`
	BodyType          string `json:"bodyType,omitempty"`
	SellerType        string `json:"sellerType,omitempty"`
	TransmissionType  string `json:"transmissionType,omitempty"`
	Horsepower        int    `json:"horsepower,omitempty"`
	NumberOfCylinders int    `json:"numberOfCylinders,omitempty"`
	Warranty          string `json:"warranty,omitempty"`
	ExteriorColor     string `json:"exteriorColor,omitempty"`
	InteriorColor     string `json:"interiorColor,omitempty"`
	TargetMarket      string `json:"targetMarket,omitempty"`

	Price float64 `json:"price"`

	Tags []tag.Tag `json:"tags"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateProductRequest doubles as the full-replacement update payload: PUT
// carries the same body as create.
type CreateProductRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=160"`
	Description string `json:"description" binding:"required,max=4000"`
	CategoryID  string `json:"categoryId" binding:"required"`
	ImageSrc    string `json:"imageSrc" binding:"omitempty,max=500"`

	Showroom          string `json:"showroom" binding:"omitempty,max=160"`
	Trim              string `json:"trim" binding:"omitempty,max=80"`
	Year              int    `json:"year" binding:"omitempty,min=1900,max=2100"`
	Kilometers        int    `json:"kilometers" binding:"omitempty,min=0"`
	RegionalSpecs     string `json:"regionalSpecs" binding:"omitempty,max=80"`
	Doors             int    `json:"doors" binding:"omitempty,min=0,max=10"`
	BodyType          string `json:"bodyType" binding:"omitempty,max=80"`
	SellerType        string `json:"sellerType" binding:"omitempty,max=80"`
	TransmissionType  string `json:"transmissionType" binding:"omitempty,max=80"`
	Horsepower        int    `json:"horsepower" binding:"omitempty,min=0"`
	NumberOfCylinders int    `json:"numberOfCylinders" binding:"omitempty,min=0,max=32"`
	Warranty          string `json:"warranty" binding:"omitempty,max=160"`
	ExteriorColor     string `json:"exteriorColor" binding:"omitempty,max=80"`
	InteriorColor     string `json:"interiorColor" binding:"omitempty,max=80"`
	TargetMarket      string `json:"targetMarket" binding:"omitempty,max=80"`

	Price float64 `json:"price" binding:"omitempty,min=0"`

	// Tag names, upserted by name and linked. On update the association
	// set is fully replaced; empty or absent clears it.
	Tags []string `json:"tags" binding:"omitempty,dive,min=1,max=80"`
}

// ListProductsFilter carries the persistence-layer filter and pagination
// settings built from query parameters. Nil pointer means the dimension is
// unfiltered.
type ListProductsFilter struct {
	CategoryID *string
	TagNames   []string // OR semantics: at least one associated tag in the set
	MinPrice   *float64
	MaxPrice   *float64
	Limit      int
	Offset     int
}
