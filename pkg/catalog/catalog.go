// Package catalog defines the entities a brochure is assembled from:
// products, templates, logos, and campaigns with their discounted products.
//
// Entities are plain records. Products, templates, and logos are owned by
// their backing store and treated as read-only once fetched by the layout
// subsystem; campaigns are assembled in memory and persisted at explicit
// save points.
package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog item that can be placed on a brochure page.
type Product struct {
	ID            string  `json:"id" bson:"id"`
	Name          string  `json:"name" bson:"name"`
	Description   string  `json:"description,omitempty" bson:"description"`
	OriginalPrice float64 `json:"original_price" bson:"original_price"`
	Category      string  `json:"category" bson:"category"`
	ImageURL      string  `json:"image_url,omitempty" bson:"image_url"`
}

// Template is a page background owned by a user.
type Template struct {
	ID       string `json:"id" bson:"id"`
	Name     string `json:"name" bson:"name"`
	ImageURL string `json:"image_url,omitempty" bson:"image_url"`
	UserID   string `json:"user_id" bson:"user_id"`
}

// Logo is an uploaded company logo. At most one logo per user is active.
type Logo struct {
	ID     string `json:"id" bson:"id"`
	Name   string `json:"name" bson:"name"`
	URL    string `json:"url,omitempty" bson:"url"`
	UserID string `json:"user_id" bson:"user_id"`
	Active bool   `json:"active" bson:"active"`
}

// CampaignProduct is a product instance inside a campaign's working set,
// carrying its discount and its visual placement.
//
// NewPrice is derived state: it always equals
// OriginalPrice * (1 - DiscountPercent/100) for the referenced product and
// is recomputed through [CampaignProduct.ApplyDiscount] whenever the
// discount changes.
type CampaignProduct struct {
	ID              string  `json:"id" bson:"id"`
	ProductID       string  `json:"product_id" bson:"product_id"`
	Quantity        int     `json:"quantity" bson:"quantity"`
	DiscountPercent float64 `json:"discount_percent" bson:"discount_percent"`
	NewPrice        float64 `json:"new_price" bson:"new_price"`
	PositionX       float64 `json:"position_x" bson:"position_x"`
	PositionY       float64 `json:"position_y" bson:"position_y"`
	ScaleX          float64 `json:"scale_x" bson:"scale_x"`
	ScaleY          float64 `json:"scale_y" bson:"scale_y"`
	Rotation        float64 `json:"rotation" bson:"rotation"`
	PageNumber      int     `json:"page_number" bson:"page_number"`
}

// Campaign is a brochure under assembly: the selected products, the date
// range the promotion runs for, and the page/template configuration.
type Campaign struct {
	ID        string            `json:"id" bson:"id"`
	Name      string            `json:"name" bson:"name"`
	UserID    string            `json:"user_id" bson:"user_id"`
	StartDate time.Time         `json:"start_date" bson:"start_date"`
	EndDate   time.Time         `json:"end_date" bson:"end_date"`
	PageCount int               `json:"page_count" bson:"page_count"`
	Logo      LogoChoice        `json:"logo" bson:"logo"`
	Templates map[int]string    `json:"templates,omitempty" bson:"templates"` // page number -> template id; absent means default background
	Products  []CampaignProduct `json:"products" bson:"products"`
	CreatedAt time.Time         `json:"created_at" bson:"created_at"`
}

// NewID returns a fresh entity identifier.
func NewID() string {
	return uuid.NewString()
}

// NewPrice computes the discounted price for an original price and a
// discount percentage in [0,100].
func NewPrice(originalPrice, discountPercent float64) float64 {
	return originalPrice * (1 - discountPercent/100)
}

// NewCampaignProduct creates a campaign product for p with neutral placement
// defaults: quantity 1, no discount, unit scale, no rotation, page 1.
func NewCampaignProduct(p Product) CampaignProduct {
	return CampaignProduct{
		ID:         NewID(),
		ProductID:  p.ID,
		Quantity:   1,
		NewPrice:   p.OriginalPrice,
		ScaleX:     1,
		ScaleY:     1,
		PageNumber: 1,
	}
}

// ApplyDiscount sets the discount percentage and recomputes NewPrice from
// the product's original price, keeping the pricing invariant.
func (cp *CampaignProduct) ApplyDiscount(originalPrice, discountPercent float64) error {
	if err := ValidateDiscount(discountPercent); err != nil {
		return err
	}
	cp.DiscountPercent = discountPercent
	cp.NewPrice = NewPrice(originalPrice, discountPercent)
	return nil
}

// Rotation modulo 360, for display. The stored rotation accumulates freely
// so that sequential gestures compose.
func DisplayRotation(rotation float64) float64 {
	r := rotation - 360*float64(int(rotation/360))
	if r < 0 {
		r += 360
	}
	return r
}
