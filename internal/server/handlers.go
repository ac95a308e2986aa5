package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/promopress/promopress/pkg/catalog"
	"github.com/promopress/promopress/pkg/catalog/store"
	"github.com/promopress/promopress/pkg/errors"
	"github.com/promopress/promopress/pkg/pipeline"
	"github.com/promopress/promopress/pkg/render/overview"
)

// maxLogoUpload bounds logo uploads at 5 MiB.
const maxLogoUpload = 5 << 20

// =============================================================================
// Products
// =============================================================================

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	filter := store.ProductFilter{
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
	}
	products, err := s.store.Products(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if products == nil {
		products = []catalog.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var p catalog.Product
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, err)
		return
	}
	if err := catalog.ValidateProduct(p); err != nil {
		writeError(w, err)
		return
	}
	if p.ID == "" {
		p.ID = catalog.NewID()
	}
	if err := s.store.PutProduct(r.Context(), p); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Product(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.Product(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	var p catalog.Product
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, err)
		return
	}
	p.ID = id
	if err := catalog.ValidateProduct(p); err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.PutProduct(r.Context(), p); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Templates
// =============================================================================

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.store.Templates(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if templates == nil {
		templates = []catalog.Template{}
	}
	writeJSON(w, http.StatusOK, templates)
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var t catalog.Template
	if err := decodeJSON(r, &t); err != nil {
		writeError(w, err)
		return
	}
	if t.Name == "" || t.UserID == "" {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "template name and user id are required"))
		return
	}
	if t.ID == "" {
		t.ID = catalog.NewID()
	}
	if err := s.store.PutTemplate(r.Context(), t); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTemplate(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Logos
// =============================================================================

func (s *Server) handleListLogos(w http.ResponseWriter, r *http.Request) {
	logos, err := s.store.Logos(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if logos == nil {
		logos = []catalog.Logo{}
	}
	writeJSON(w, http.StatusOK, logos)
}

func (s *Server) handleActiveLogo(w http.ResponseWriter, r *http.Request) {
	logo, err := s.store.ActiveLogo(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logo)
}

// handleUploadLogo accepts a multipart upload, writes the file under the
// upload directory, and records the logo as the user's active one.
func (s *Server) handleUploadLogo(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if err := r.ParseMultipartForm(maxLogoUpload); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("logo")
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "missing logo file"))
		return
	}
	defer file.Close()

	id := catalog.NewID()
	name := header.Filename
	if name == "" {
		name = "logo"
	}
	stored := id + filepath.Ext(name)
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		writeError(w, err)
		return
	}
	dst, err := os.Create(filepath.Join(s.uploadDir, stored))
	if err != nil {
		writeError(w, err)
		return
	}
	defer dst.Close()
	if _, err := io.Copy(dst, io.LimitReader(file, maxLogoUpload)); err != nil {
		writeError(w, err)
		return
	}

	logo := catalog.Logo{
		ID:     id,
		Name:   name,
		URL:    "/uploads/" + stored,
		UserID: userID,
		Active: true,
	}
	if err := s.store.PutLogo(r.Context(), logo); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, logo)
}

func (s *Server) handleDeleteLogo(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteLogo(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Campaigns
// =============================================================================

func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := s.store.Campaigns(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if campaigns == nil {
		campaigns = []catalog.Campaign{}
	}
	writeJSON(w, http.StatusOK, campaigns)
}

// normalizeCampaign fills defaulted product fields and recomputes NewPrice
// from each stored product's original price. Both the create and update
// paths run it, so a client can never persist a price inconsistent with
// the discount it carries.
func (s *Server) normalizeCampaign(ctx context.Context, c *catalog.Campaign) error {
	if c.PageCount < 1 {
		c.PageCount = 1
	}
	for i := range c.Products {
		cp := &c.Products[i]
		if cp.ID == "" {
			cp.ID = catalog.NewID()
		}
		if cp.Quantity < 1 {
			cp.Quantity = 1
		}
		if cp.ScaleX == 0 {
			cp.ScaleX = 1
		}
		if cp.ScaleY == 0 {
			cp.ScaleY = 1
		}
		if cp.PageNumber < 1 {
			cp.PageNumber = 1
		}
		p, err := s.store.Product(ctx, cp.ProductID)
		if err != nil {
			return errors.Wrap(errors.ErrCodeProductNotFound, err, "product %s", cp.ProductID)
		}
		if err := cp.ApplyDiscount(p.OriginalPrice, cp.DiscountPercent); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var c catalog.Campaign
	if err := decodeJSON(r, &c); err != nil {
		writeError(w, err)
		return
	}
	if err := s.normalizeCampaign(r.Context(), &c); err != nil {
		writeError(w, err)
		return
	}
	if err := catalog.ValidateCampaign(c); err != nil {
		writeError(w, err)
		return
	}
	if c.ID == "" {
		c.ID = catalog.NewID()
	}
	if err := s.store.PutCampaign(r.Context(), c); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.Campaign(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.Campaign(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	var c catalog.Campaign
	if err := decodeJSON(r, &c); err != nil {
		writeError(w, err)
		return
	}
	c.ID = id
	if err := s.normalizeCampaign(r.Context(), &c); err != nil {
		writeError(w, err)
		return
	}
	if err := catalog.ValidateCampaign(c); err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.PutCampaign(r.Context(), c); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCampaign(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteCampaign(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddCampaignProduct(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.Campaign(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	var cp catalog.CampaignProduct
	if err := decodeJSON(r, &cp); err != nil {
		writeError(w, err)
		return
	}
	p, err := s.store.Product(r.Context(), cp.ProductID)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeProductNotFound, err, "product %s", cp.ProductID))
		return
	}
	created := catalog.NewCampaignProduct(p)
	if cp.DiscountPercent != 0 {
		if err := created.ApplyDiscount(p.OriginalPrice, cp.DiscountPercent); err != nil {
			writeError(w, err)
			return
		}
	}
	if cp.Quantity > 0 {
		created.Quantity = cp.Quantity
	}
	if err := catalog.ValidateCampaignProduct(created, c.PageCount); err != nil {
		writeError(w, err)
		return
	}
	c.Products = append(c.Products, created)
	if err := s.store.PutCampaign(r.Context(), c); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// placementUpdate is a partial placement patch for one campaign product.
type placementUpdate struct {
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	ScaleX   *float64 `json:"scale_x,omitempty"`
	ScaleY   *float64 `json:"scale_y,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`
	Page     *int     `json:"page,omitempty"`
}

func (s *Server) handleUpdatePlacement(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.Campaign(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	productID := chi.URLParam(r, "productID")

	var upd placementUpdate
	if err := decodeJSON(r, &upd); err != nil {
		writeError(w, err)
		return
	}

	found := false
	for i := range c.Products {
		cp := &c.Products[i]
		if cp.ID != productID {
			continue
		}
		found = true
		if upd.X != nil {
			cp.PositionX = *upd.X
		}
		if upd.Y != nil {
			cp.PositionY = *upd.Y
		}
		if upd.ScaleX != nil {
			cp.ScaleX = *upd.ScaleX
		}
		if upd.ScaleY != nil {
			cp.ScaleY = *upd.ScaleY
		}
		if upd.Rotation != nil {
			cp.Rotation = *upd.Rotation
		}
		if upd.Page != nil {
			if *upd.Page < 1 || *upd.Page > c.PageCount {
				writeError(w, errors.New(errors.ErrCodeInvalidPage, "page %d out of range 1..%d", *upd.Page, c.PageCount))
				return
			}
			cp.PageNumber = *upd.Page
		}
		if err := catalog.ValidateCampaignProduct(*cp, c.PageCount); err != nil {
			writeError(w, err)
			return
		}
		break
	}
	if !found {
		writeError(w, errors.New(errors.ErrCodeProductNotFound, "product %s is not in campaign %s", productID, c.ID))
		return
	}
	if err := s.store.PutCampaign(r.Context(), c); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// =============================================================================
// Export, overview, preview
// =============================================================================

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	opts := pipeline.Options{
		CampaignID:  chi.URLParam(r, "id"),
		Format:      r.URL.Query().Get("format"),
		CompanyName: s.company,
		Refresh:     r.URL.Query().Get("refresh") == "true",
	}
	if v := r.URL.Query().Get("auto_layout"); v == "true" {
		opts.AutoLayout = true
	}
	if v := r.URL.Query().Get("distribute"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, errors.New(errors.ErrCodeInvalidPage, "invalid distribute value %q", v))
			return
		}
		opts.Distribute = n
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	art := result.Artifact
	w.Header().Set("Content-Type", art.MIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
	_, _ = w.Write(art.Data)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	opts := pipeline.Options{CampaignID: chi.URLParam(r, "id")}
	campaign, products, err := s.runner.Fetch(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	snap, err := s.runner.Arrange(campaign, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	dot := overview.ToDOT(campaign, products, snap, overview.Options{
		Detailed: r.URL.Query().Get("detailed") == "true",
	})
	svg, err := overview.RenderSVG(r.Context(), dot)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil || page < 1 {
		writeError(w, errors.New(errors.ErrCodeInvalidPage, "invalid page %q", chi.URLParam(r, "page")))
		return
	}

	opts := pipeline.Options{CampaignID: chi.URLParam(r, "id"), CompanyName: s.company}
	campaign, products, err := s.runner.Fetch(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	snap, err := s.runner.Arrange(campaign, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	views := pipeline.BuildViews(campaign, products, snap, opts)
	if page > len(views) {
		writeError(w, errors.New(errors.ErrCodeInvalidPage, "page %d out of range 1..%d", page, len(views)))
		return
	}

	data, err := s.runner.Preview(r.Context(), views[page-1])
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(data)
}
