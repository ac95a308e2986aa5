package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/promopress/promopress/pkg/catalog"
)

// MongoStore persists catalog entities in MongoDB, one collection per
// entity type. Campaigns are stored through a document type because the
// tri-state logo choice needs an explicit wire form.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// MongoConfig holds connection settings for the Mongo backend.
type MongoConfig struct {
	URI      string // e.g. "mongodb://localhost:27017"
	Database string // e.g. "promopress"
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &MongoStore{client: client, db: client.Database(cfg.Database)}, nil
}

// Collection names.
const (
	collProducts  = "products"
	collTemplates = "templates"
	collLogos     = "logos"
	collCampaigns = "campaigns"
)

// Products lists products matching the filter.
func (s *MongoStore) Products(ctx context.Context, f ProductFilter) ([]catalog.Product, error) {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Search != "" {
		re := primitive.Regex{Pattern: regexQuote(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"description": re},
		}
	}

	cur, err := s.db.Collection(collProducts).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var out []catalog.Product
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Product fetches one product by id.
func (s *MongoStore) Product(ctx context.Context, id string) (catalog.Product, error) {
	var p catalog.Product
	err := s.db.Collection(collProducts).FindOne(ctx, bson.M{"id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return catalog.Product{}, ErrNotFound
	}
	return p, err
}

// PutProduct inserts or replaces a product.
func (s *MongoStore) PutProduct(ctx context.Context, p catalog.Product) error {
	_, err := s.db.Collection(collProducts).ReplaceOne(ctx,
		bson.M{"id": p.ID}, p, options.Replace().SetUpsert(true))
	return err
}

// DeleteProduct removes a product.
func (s *MongoStore) DeleteProduct(ctx context.Context, id string) error {
	return s.deleteByID(ctx, collProducts, id)
}

// Templates lists a user's templates.
func (s *MongoStore) Templates(ctx context.Context, userID string) ([]catalog.Template, error) {
	cur, err := s.db.Collection(collTemplates).Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var out []catalog.Template
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PutTemplate inserts or replaces a template.
func (s *MongoStore) PutTemplate(ctx context.Context, t catalog.Template) error {
	_, err := s.db.Collection(collTemplates).ReplaceOne(ctx,
		bson.M{"id": t.ID}, t, options.Replace().SetUpsert(true))
	return err
}

// DeleteTemplate removes a template.
func (s *MongoStore) DeleteTemplate(ctx context.Context, id string) error {
	return s.deleteByID(ctx, collTemplates, id)
}

// Logos lists a user's logos.
func (s *MongoStore) Logos(ctx context.Context, userID string) ([]catalog.Logo, error) {
	cur, err := s.db.Collection(collLogos).Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var out []catalog.Logo
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ActiveLogo returns the user's active logo.
func (s *MongoStore) ActiveLogo(ctx context.Context, userID string) (catalog.Logo, error) {
	var l catalog.Logo
	err := s.db.Collection(collLogos).FindOne(ctx, bson.M{"user_id": userID, "active": true}).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return catalog.Logo{}, ErrNotFound
	}
	return l, err
}

// PutLogo inserts or replaces a logo, keeping at most one active per user.
func (s *MongoStore) PutLogo(ctx context.Context, l catalog.Logo) error {
	if l.Active {
		_, err := s.db.Collection(collLogos).UpdateMany(ctx,
			bson.M{"user_id": l.UserID, "active": true, "id": bson.M{"$ne": l.ID}},
			bson.M{"$set": bson.M{"active": false}})
		if err != nil {
			return err
		}
	}
	_, err := s.db.Collection(collLogos).ReplaceOne(ctx,
		bson.M{"id": l.ID}, l, options.Replace().SetUpsert(true))
	return err
}

// DeleteLogo removes a logo.
func (s *MongoStore) DeleteLogo(ctx context.Context, id string) error {
	return s.deleteByID(ctx, collLogos, id)
}

// campaignDoc is the Mongo wire form of a campaign. The logo choice gets an
// explicit state field, and page template keys become strings because BSON
// maps cannot have integer keys.
type campaignDoc struct {
	ID        string                    `bson:"id"`
	Name      string                    `bson:"name"`
	UserID    string                    `bson:"user_id"`
	StartDate time.Time                 `bson:"start_date"`
	EndDate   time.Time                 `bson:"end_date"`
	PageCount int                       `bson:"page_count"`
	LogoState string                    `bson:"logo_state"`
	LogoID    string                    `bson:"logo_id,omitempty"`
	Templates map[string]string         `bson:"templates,omitempty"`
	Products  []catalog.CampaignProduct `bson:"products"`
	CreatedAt time.Time                 `bson:"created_at"`
}

func toCampaignDoc(c catalog.Campaign) campaignDoc {
	doc := campaignDoc{
		ID:        c.ID,
		Name:      c.Name,
		UserID:    c.UserID,
		StartDate: c.StartDate,
		EndDate:   c.EndDate,
		PageCount: c.PageCount,
		Products:  c.Products,
		CreatedAt: c.CreatedAt,
	}
	switch {
	case c.Logo.IsRemoved():
		doc.LogoState = "removed"
	default:
		if id, ok := c.Logo.SelectedID(); ok {
			doc.LogoState = "selected"
			doc.LogoID = id
		} else {
			doc.LogoState = "unset"
		}
	}
	if len(c.Templates) > 0 {
		doc.Templates = make(map[string]string, len(c.Templates))
		for page, tpl := range c.Templates {
			doc.Templates[strconv.Itoa(page)] = tpl
		}
	}
	return doc
}

func fromCampaignDoc(doc campaignDoc) catalog.Campaign {
	c := catalog.Campaign{
		ID:        doc.ID,
		Name:      doc.Name,
		UserID:    doc.UserID,
		StartDate: doc.StartDate,
		EndDate:   doc.EndDate,
		PageCount: doc.PageCount,
		Products:  doc.Products,
		CreatedAt: doc.CreatedAt,
	}
	switch doc.LogoState {
	case "removed":
		c.Logo = catalog.LogoRemoved()
	case "selected":
		c.Logo = catalog.LogoSelected(doc.LogoID)
	default:
		c.Logo = catalog.LogoUnset()
	}
	if len(doc.Templates) > 0 {
		c.Templates = make(map[int]string, len(doc.Templates))
		for key, tpl := range doc.Templates {
			if page, err := strconv.Atoi(key); err == nil {
				c.Templates[page] = tpl
			}
		}
	}
	return c
}

// Campaigns lists a user's campaigns.
func (s *MongoStore) Campaigns(ctx context.Context, userID string) ([]catalog.Campaign, error) {
	cur, err := s.db.Collection(collCampaigns).Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []campaignDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]catalog.Campaign, len(docs))
	for i, doc := range docs {
		out[i] = fromCampaignDoc(doc)
	}
	return out, nil
}

// Campaign fetches one campaign by id.
func (s *MongoStore) Campaign(ctx context.Context, id string) (catalog.Campaign, error) {
	var doc campaignDoc
	err := s.db.Collection(collCampaigns).FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return catalog.Campaign{}, ErrNotFound
	}
	if err != nil {
		return catalog.Campaign{}, err
	}
	return fromCampaignDoc(doc), nil
}

// PutCampaign inserts or replaces a campaign.
func (s *MongoStore) PutCampaign(ctx context.Context, c catalog.Campaign) error {
	_, err := s.db.Collection(collCampaigns).ReplaceOne(ctx,
		bson.M{"id": c.ID}, toCampaignDoc(c), options.Replace().SetUpsert(true))
	return err
}

// DeleteCampaign removes a campaign.
func (s *MongoStore) DeleteCampaign(ctx context.Context, id string) error {
	return s.deleteByID(ctx, collCampaigns, id)
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) deleteByID(ctx context.Context, coll, id string) error {
	res, err := s.db.Collection(coll).DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// regexQuote escapes regex metacharacters in a search term.
func regexQuote(s string) string {
	const meta = `\.+*?()|[]{}^$`
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		for j := 0; j < len(meta); j++ {
			if s[i] == meta[j] {
				out = append(out, '\\')
				break
			}
		}
		out = append(out, s[i])
	}
	return string(out)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
