package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/promopress/promopress/pkg/catalog"
)

func TestFetchProducts(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/products" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode([]catalog.Product{
			{ID: "p1", Name: "Dark Roast"},
			{ID: "p2", Name: "Green Tea"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	products := c.FetchProducts(context.Background(), "roast", "coffee")
	if len(products) != 2 {
		t.Fatalf("got %d products, want 2", len(products))
	}
	if products[0].ID != "p1" {
		t.Errorf("products[0].ID = %s", products[0].ID)
	}
	if !strings.Contains(gotQuery, "search=roast") || !strings.Contains(gotQuery, "category=coffee") {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestFetchProductsDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	products := c.FetchProducts(context.Background(), "", "")
	if products == nil {
		t.Fatal("want empty slice, got nil")
	}
	if len(products) != 0 {
		t.Errorf("got %d products, want 0", len(products))
	}
}

func TestFetchActiveLogoNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.FetchActiveLogo(context.Background(), "u1")
	if err == nil {
		t.Fatal("want error for missing active logo")
	}
}

func TestCreateCampaign(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/campaigns" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var in catalog.Campaign
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Fatalf("decode: %v", err)
		}
		in.ID = "c1"
		json.NewEncoder(w).Encode(in)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	created, err := c.CreateCampaign(context.Background(), catalog.Campaign{Name: "Summer Sale", PageCount: 2})
	if err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}
	if created.ID != "c1" || created.Name != "Summer Sale" {
		t.Errorf("created = %+v", created)
	}
}

func TestUploadLogo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		f, hdr, err := r.FormFile("logo")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer f.Close()
		if hdr.Filename != "mark.png" {
			t.Errorf("filename = %s", hdr.Filename)
		}
		json.NewEncoder(w).Encode(catalog.Logo{ID: "l1", Name: "mark.png", Active: true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	logo, err := c.UploadLogo(context.Background(), "u1", "mark.png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("UploadLogo: %v", err)
	}
	if logo.ID != "l1" || !logo.Active {
		t.Errorf("logo = %+v", logo)
	}
}
