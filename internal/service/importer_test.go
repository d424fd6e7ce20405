package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productPage = `<!DOCTYPE html>
<html><head>
<title>Fallback title</title>
<meta property="og:title" content="Oversized Hoodie">
<meta property="og:description" content="Heavy cotton, unisex.">
<meta property="og:image" content="https://cdn.example.com/hoodie.jpg">
<meta property="product:price:amount" content="3490">
</head><body></body></html>`

func TestImportProductCard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(productPage))
	}))
	defer srv.Close()

	s := NewImporterService()
	draft, err := s.ImportProductCard(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "Oversized Hoodie", draft.Title)
	assert.Equal(t, "Heavy cotton, unisex.", draft.Description)
	assert.Equal(t, "https://cdn.example.com/hoodie.jpg", draft.ImageURL)
	require.NotNil(t, draft.Price)
	assert.True(t, draft.Price.Equal(decimal.NewFromInt(3490)))
}

func TestImportProductCard_TitleFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title> Plain Tee </title></head><body></body></html>`))
	}))
	defer srv.Close()

	s := NewImporterService()
	draft, err := s.ImportProductCard(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "Plain Tee", draft.Title)
	assert.Nil(t, draft.Price)
}

func TestImportProductCard_NoCard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head></head><body>nothing here</body></html>`))
	}))
	defer srv.Close()

	s := NewImporterService()
	_, err := s.ImportProductCard(context.Background(), srv.URL)

	assert.Error(t, err)
}

func TestImportProductCard_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s := NewImporterService()
	_, err := s.ImportProductCard(context.Background(), srv.URL)

	assert.Error(t, err)
}
