package catalog

import (
	"strings"

	"github.com/promopress/promopress/pkg/errors"
)

// ValidateDiscount checks that a discount percentage is within [0,100].
func ValidateDiscount(percent float64) error {
	if percent < 0 || percent > 100 {
		return errors.New(errors.ErrCodeInvalidDiscount, "discount must be between 0 and 100, got %g", percent)
	}
	return nil
}

// ValidateProduct checks the fields of a catalog product.
func ValidateProduct(p Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New(errors.ErrCodeInvalidInput, "product name is required")
	}
	if p.OriginalPrice < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "product price must not be negative, got %g", p.OriginalPrice)
	}
	if strings.TrimSpace(p.Category) == "" {
		return errors.New(errors.ErrCodeInvalidInput, "product category is required")
	}
	return nil
}

// ValidateCampaign checks a campaign before it is persisted. Validation
// failures abort the save with no partial state change.
func ValidateCampaign(c Campaign) error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New(errors.ErrCodeInvalidInput, "campaign name is required")
	}
	if len(c.Products) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "campaign needs at least one product")
	}
	if c.PageCount < 1 {
		return errors.New(errors.ErrCodeInvalidPage, "campaign needs at least one page, got %d", c.PageCount)
	}
	if !c.EndDate.IsZero() && c.EndDate.Before(c.StartDate) {
		return errors.New(errors.ErrCodeInvalidInput, "campaign end date precedes start date")
	}
	for _, cp := range c.Products {
		if err := ValidateCampaignProduct(cp, c.PageCount); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCampaignProduct checks one campaign product against the campaign's
// page count.
func ValidateCampaignProduct(cp CampaignProduct, pageCount int) error {
	if cp.ProductID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "campaign product %s references no product", cp.ID)
	}
	if cp.Quantity < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "quantity must be at least 1, got %d", cp.Quantity)
	}
	if err := ValidateDiscount(cp.DiscountPercent); err != nil {
		return err
	}
	if cp.ScaleX <= 0 || cp.ScaleY <= 0 {
		return errors.New(errors.ErrCodeInvalidPlacement, "scale must be positive, got %gx%g", cp.ScaleX, cp.ScaleY)
	}
	if cp.PositionX < 0 || cp.PositionY < 0 {
		return errors.New(errors.ErrCodeInvalidPlacement, "position must not be negative, got (%g, %g)", cp.PositionX, cp.PositionY)
	}
	if cp.PageNumber < 1 || cp.PageNumber > pageCount {
		return errors.New(errors.ErrCodeInvalidPage, "page %d out of range 1..%d", cp.PageNumber, pageCount)
	}
	return nil
}
