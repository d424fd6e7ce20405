package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/set-night/shopapp/internal/config"
)

// ImporterService prefills a product draft from an external product page so
// staff do not retype supplier data by hand.
type ImporterService struct {
	httpClient *http.Client
}

func NewImporterService() *ImporterService {
	return &ImporterService{
		httpClient: &http.Client{Timeout: config.ImporterTimeout},
	}
}

// ProductDraft is the scraped, unreviewed card. Staff confirm it before a
// product is created.
type ProductDraft struct {
	Title       string
	Description string
	ImageURL    string
	Price       *decimal.Decimal
	SourceURL   string
}

func (s *ImporterService) ImportProductCard(ctx context.Context, pageURL string) (*ProductDraft, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch page: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	draft := &ProductDraft{SourceURL: pageURL}

	draft.Title = metaContent(doc, "og:title")
	if draft.Title == "" {
		draft.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	draft.Description = metaContent(doc, "og:description")
	draft.ImageURL = metaContent(doc, "og:image")

	if raw := metaContent(doc, "product:price:amount"); raw != "" {
		if price, err := decimal.NewFromString(raw); err == nil {
			draft.Price = &price
		}
	}
	if draft.Price == nil {
		if raw, ok := doc.Find(`[itemprop="price"]`).First().Attr("content"); ok {
			if price, err := decimal.NewFromString(strings.TrimSpace(raw)); err == nil {
				draft.Price = &price
			}
		}
	}

	if draft.Title == "" {
		return nil, fmt.Errorf("page has no recognizable product card")
	}
	return draft, nil
}

func metaContent(doc *goquery.Document, property string) string {
	sel := fmt.Sprintf(`meta[property=%q], meta[name=%q]`, property, property)
	content, _ := doc.Find(sel).First().Attr("content")
	return strings.TrimSpace(content)
}
