package catalog

import (
	"encoding/json"
	"math"
	"testing"
)

func TestNewPrice(t *testing.T) {
	tests := []struct {
		name     string
		original float64
		discount float64
		want     float64
	}{
		{name: "no discount", original: 100, discount: 0, want: 100},
		{name: "half off", original: 100, discount: 50, want: 50},
		{name: "full discount", original: 100, discount: 100, want: 0},
		{name: "fractional", original: 19.99, discount: 25, want: 14.9925},
		{name: "free product", original: 0, discount: 30, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewPrice(tt.original, tt.discount); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("NewPrice(%g, %g) = %g, want %g", tt.original, tt.discount, got, tt.want)
			}
		})
	}
}

func TestNewPriceInvariantSweep(t *testing.T) {
	// For all discounts in [0,100] and non-negative prices the invariant
	// new == original * (1 - d/100) must hold after ApplyDiscount.
	for _, price := range []float64{0, 0.01, 9.99, 100, 12345.67} {
		for d := 0.0; d <= 100; d += 12.5 {
			cp := NewCampaignProduct(Product{ID: "p", OriginalPrice: price})
			if err := cp.ApplyDiscount(price, d); err != nil {
				t.Fatalf("ApplyDiscount(%g, %g): %v", price, d, err)
			}
			want := price * (1 - d/100)
			if math.Abs(cp.NewPrice-want) > 1e-9 {
				t.Errorf("NewPrice after ApplyDiscount(%g, %g) = %g, want %g", price, d, cp.NewPrice, want)
			}
		}
	}
}

func TestApplyDiscountRejectsOutOfRange(t *testing.T) {
	cp := NewCampaignProduct(Product{ID: "p", OriginalPrice: 50})

	if err := cp.ApplyDiscount(50, -1); err == nil {
		t.Error("ApplyDiscount(-1) accepted")
	}
	if err := cp.ApplyDiscount(50, 101); err == nil {
		t.Error("ApplyDiscount(101) accepted")
	}
	// Failed updates must not touch derived state.
	if cp.NewPrice != 50 {
		t.Errorf("NewPrice changed on rejected discount: %g", cp.NewPrice)
	}
}

func TestNewCampaignProductDefaults(t *testing.T) {
	cp := NewCampaignProduct(Product{ID: "p1", OriginalPrice: 42})

	if cp.ID == "" {
		t.Error("ID not assigned")
	}
	if cp.ProductID != "p1" {
		t.Errorf("ProductID = %q, want p1", cp.ProductID)
	}
	if cp.Quantity != 1 {
		t.Errorf("Quantity = %d, want 1", cp.Quantity)
	}
	if cp.ScaleX != 1 || cp.ScaleY != 1 {
		t.Errorf("Scale = %gx%g, want 1x1", cp.ScaleX, cp.ScaleY)
	}
	if cp.PageNumber != 1 {
		t.Errorf("PageNumber = %d, want 1", cp.PageNumber)
	}
	if cp.NewPrice != 42 {
		t.Errorf("NewPrice = %g, want 42", cp.NewPrice)
	}
}

func TestDisplayRotation(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{name: "zero", in: 0, want: 0},
		{name: "within range", in: 135, want: 135},
		{name: "full turn", in: 360, want: 0},
		{name: "accumulated", in: 395, want: 35},
		{name: "negative", in: -90, want: 270},
		{name: "multiple turns", in: 1085, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayRotation(tt.in); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("DisplayRotation(%g) = %g, want %g", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidateCampaign(t *testing.T) {
	valid := Campaign{
		Name:      "Summer Sale",
		PageCount: 2,
		Products: []CampaignProduct{
			{ID: "cp1", ProductID: "p1", Quantity: 1, ScaleX: 1, ScaleY: 1, PageNumber: 1},
		},
	}

	tests := []struct {
		name    string
		mutate  func(c *Campaign)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Campaign) {}, wantErr: false},
		{name: "missing name", mutate: func(c *Campaign) { c.Name = "  " }, wantErr: true},
		{name: "no products", mutate: func(c *Campaign) { c.Products = nil }, wantErr: true},
		{name: "zero pages", mutate: func(c *Campaign) { c.PageCount = 0 }, wantErr: true},
		{name: "product off the page set", mutate: func(c *Campaign) { c.Products[0].PageNumber = 3 }, wantErr: true},
		{name: "zero quantity", mutate: func(c *Campaign) { c.Products[0].Quantity = 0 }, wantErr: true},
		{name: "negative scale", mutate: func(c *Campaign) { c.Products[0].ScaleX = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			c.Products = append([]CampaignProduct(nil), valid.Products...)
			tt.mutate(&c)
			err := ValidateCampaign(c)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCampaign() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLogoChoiceStates(t *testing.T) {
	if !LogoUnset().IsUnset() {
		t.Error("LogoUnset not unset")
	}
	if !LogoRemoved().IsRemoved() {
		t.Error("LogoRemoved not removed")
	}
	if id, ok := LogoSelected("l1").SelectedID(); !ok || id != "l1" {
		t.Errorf("SelectedID = %q, %v", id, ok)
	}
	if _, ok := LogoRemoved().SelectedID(); ok {
		t.Error("removed choice reports a selection")
	}
}

func TestLogoChoiceJSON(t *testing.T) {
	tests := []struct {
		name   string
		choice LogoChoice
		json   string
	}{
		{name: "unset", choice: LogoUnset(), json: `{"state":"unset"}`},
		{name: "removed", choice: LogoRemoved(), json: `{"state":"removed"}`},
		{name: "selected", choice: LogoSelected("l9"), json: `{"state":"selected","id":"l9"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.choice)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(data) != tt.json {
				t.Errorf("Marshal = %s, want %s", data, tt.json)
			}

			var back LogoChoice
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if back != tt.choice {
				t.Errorf("round trip = %+v, want %+v", back, tt.choice)
			}
		})
	}
}

func TestLogoChoiceJSONRejectsSelectedWithoutID(t *testing.T) {
	var c LogoChoice
	if err := json.Unmarshal([]byte(`{"state":"selected"}`), &c); err == nil {
		t.Error("selected state without id accepted")
	}
}
