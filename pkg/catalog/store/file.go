package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/promopress/promopress/pkg/catalog"
)

// FileStore persists each collection as one JSON document in a directory.
// Writes go through a temporary file and rename, so a crash mid-save never
// leaves a truncated collection behind.
type FileStore struct {
	dir string

	mu        sync.Mutex
	products  map[string]catalog.Product
	templates map[string]catalog.Template
	logos     map[string]catalog.Logo
	campaigns map[string]catalog.Campaign
}

// Collection file names inside the store directory.
const (
	fileProducts  = "products.json"
	fileTemplates = "templates.json"
	fileLogos     = "logos.json"
	fileCampaigns = "campaigns.json"
)

// NewFileStore opens (or creates) a file store in dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	s := &FileStore{
		dir:       dir,
		products:  make(map[string]catalog.Product),
		templates: make(map[string]catalog.Template),
		logos:     make(map[string]catalog.Logo),
		campaigns: make(map[string]catalog.Campaign),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) load() error {
	if err := readCollection(filepath.Join(s.dir, fileProducts), &s.products); err != nil {
		return err
	}
	if err := readCollection(filepath.Join(s.dir, fileTemplates), &s.templates); err != nil {
		return err
	}
	if err := readCollection(filepath.Join(s.dir, fileLogos), &s.logos); err != nil {
		return err
	}
	return readCollection(filepath.Join(s.dir, fileCampaigns), &s.campaigns)
}

// readCollection loads one JSON collection into dst. A missing file leaves
// dst empty; that is the fresh-store case, not an error.
func readCollection[T any](path string, dst *map[string]T) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

// writeCollection persists one collection atomically.
func writeCollection[T any](path string, src map[string]T) error {
	data, err := json.MarshalIndent(src, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Products lists products matching the filter.
func (s *FileStore) Products(ctx context.Context, f ProductFilter) ([]catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []catalog.Product
	for _, p := range s.products {
		if matchProduct(p, f) {
			out = append(out, p)
		}
	}
	sortByID(out, func(p catalog.Product) string { return p.ID })
	return out, nil
}

// Product fetches one product by id.
func (s *FileStore) Product(ctx context.Context, id string) (catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return catalog.Product{}, ErrNotFound
	}
	return p, nil
}

// PutProduct inserts or replaces a product.
func (s *FileStore) PutProduct(ctx context.Context, p catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products[p.ID] = p
	return writeCollection(filepath.Join(s.dir, fileProducts), s.products)
}

// DeleteProduct removes a product.
func (s *FileStore) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return ErrNotFound
	}
	delete(s.products, id)
	return writeCollection(filepath.Join(s.dir, fileProducts), s.products)
}

// Templates lists a user's templates.
func (s *FileStore) Templates(ctx context.Context, userID string) ([]catalog.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []catalog.Template
	for _, t := range s.templates {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sortByID(out, func(t catalog.Template) string { return t.ID })
	return out, nil
}

// PutTemplate inserts or replaces a template.
func (s *FileStore) PutTemplate(ctx context.Context, t catalog.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.templates[t.ID] = t
	return writeCollection(filepath.Join(s.dir, fileTemplates), s.templates)
}

// DeleteTemplate removes a template.
func (s *FileStore) DeleteTemplate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.templates[id]; !ok {
		return ErrNotFound
	}
	delete(s.templates, id)
	return writeCollection(filepath.Join(s.dir, fileTemplates), s.templates)
}

// Logos lists a user's logos.
func (s *FileStore) Logos(ctx context.Context, userID string) ([]catalog.Logo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []catalog.Logo
	for _, l := range s.logos {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	sortByID(out, func(l catalog.Logo) string { return l.ID })
	return out, nil
}

// ActiveLogo returns the user's active logo.
func (s *FileStore) ActiveLogo(ctx context.Context, userID string) (catalog.Logo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.logos {
		if l.UserID == userID && l.Active {
			return l, nil
		}
	}
	return catalog.Logo{}, ErrNotFound
}

// PutLogo inserts or replaces a logo, keeping at most one active per user.
func (s *FileStore) PutLogo(ctx context.Context, l catalog.Logo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l.Active {
		for id, other := range s.logos {
			if other.UserID == l.UserID && other.Active && id != l.ID {
				other.Active = false
				s.logos[id] = other
			}
		}
	}
	s.logos[l.ID] = l
	return writeCollection(filepath.Join(s.dir, fileLogos), s.logos)
}

// DeleteLogo removes a logo.
func (s *FileStore) DeleteLogo(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.logos[id]; !ok {
		return ErrNotFound
	}
	delete(s.logos, id)
	return writeCollection(filepath.Join(s.dir, fileLogos), s.logos)
}

// Campaigns lists a user's campaigns.
func (s *FileStore) Campaigns(ctx context.Context, userID string) ([]catalog.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []catalog.Campaign
	for _, c := range s.campaigns {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sortByID(out, func(c catalog.Campaign) string { return c.ID })
	return out, nil
}

// Campaign fetches one campaign by id.
func (s *FileStore) Campaign(ctx context.Context, id string) (catalog.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.campaigns[id]
	if !ok {
		return catalog.Campaign{}, ErrNotFound
	}
	return c, nil
}

// PutCampaign inserts or replaces a campaign.
func (s *FileStore) PutCampaign(ctx context.Context, c catalog.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.campaigns[c.ID] = c
	return writeCollection(filepath.Join(s.dir, fileCampaigns), s.campaigns)
}

// DeleteCampaign removes a campaign.
func (s *FileStore) DeleteCampaign(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.campaigns[id]; !ok {
		return ErrNotFound
	}
	delete(s.campaigns, id)
	return writeCollection(filepath.Join(s.dir, fileCampaigns), s.campaigns)
}

// Close does nothing for the file store.
func (s *FileStore) Close() error { return nil }

// containsFold reports whether s contains substr, ignoring case.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
