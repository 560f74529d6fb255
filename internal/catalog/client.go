package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bousai-navi/backend/internal/metrics"
	"github.com/bousai-navi/backend/pkg/logger"
)

// ErrUpstreamStatus wraps non-200 responses from the catalog service.
var ErrUpstreamStatus = errors.New("catalog service returned error status")

// titleBlacklist drops e-books that match the 防災 keyword but are fiction.
var titleBlacklist = []string{"裁判", "ミステリー", "事件簿", "恋愛", "ファンタジー"}

type Client struct {
	applicationID string
	itemEndpoint  string
	ebookEndpoint string
	hits          int
	httpClient    *http.Client
}

type ClientOptions struct {
	ApplicationID string
	ItemEndpoint  string
	EbookEndpoint string
	Hits          int
	TimeoutSec    int
}

func NewClient(opts ClientOptions) *Client {
	timeout := time.Duration(opts.TimeoutSec) * time.Second
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	if opts.Hits == 0 {
		opts.Hits = 3
	}

	return &Client{
		applicationID: opts.ApplicationID,
		itemEndpoint:  opts.ItemEndpoint,
		ebookEndpoint: opts.EbookEndpoint,
		hits:          opts.Hits,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SearchItems queries the Ichiba item search for one keyword, capped at the
// configured hit count.
func (c *Client) SearchItems(ctx context.Context, keyword string) ([]Product, error) {
	params := url.Values{}
	params.Set("applicationId", c.applicationID)
	params.Set("keyword", keyword)
	params.Set("format", "json")
	params.Set("hits", strconv.Itoa(c.hits))

	var resp struct {
		Items []struct {
			Item struct {
				ItemCode        string      `json:"itemCode"`
				ItemName        string      `json:"itemName"`
				ItemPrice       int         `json:"itemPrice"`
				ItemURL         string      `json:"itemUrl"`
				MediumImageURLs []struct {
					ImageURL string `json:"imageUrl"`
				} `json:"mediumImageUrls"`
				ShopName      string      `json:"shopName"`
				ReviewAverage interface{} `json:"reviewAverage"`
				ReviewCount   int         `json:"reviewCount"`
			} `json:"Item"`
		} `json:"Items"`
	}

	if err := c.getJSON(ctx, c.itemEndpoint, params, &resp); err != nil {
		metrics.CatalogSearches.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("item search for %q: %w", keyword, err)
	}
	metrics.CatalogSearches.WithLabelValues("ok").Inc()

	products := make([]Product, 0, len(resp.Items))
	for _, wrapper := range resp.Items {
		item := wrapper.Item

		imageURL := ""
		if len(item.MediumImageURLs) > 0 {
			imageURL = stripThumbnailSuffix(item.MediumImageURLs[0].ImageURL)
		}

		products = append(products, Product{
			ID:            item.ItemCode,
			Name:          item.ItemName,
			Price:         item.ItemPrice,
			URL:           item.ItemURL,
			ImageURL:      imageURL,
			Shop:          item.ShopName,
			ReviewAverage: parseReviewAverage(item.ReviewAverage),
			ReviewCount:   item.ReviewCount,
		})
	}

	logger.Debug("Catalog search completed",
		zap.String("keyword", keyword),
		zap.Int("products", len(products)),
	)

	return products, nil
}

// SearchEbooks queries the Kobo e-book search, sorted by sales, and filters
// out blacklisted fiction titles.
func (c *Client) SearchEbooks(ctx context.Context, keyword string) ([]Ebook, error) {
	params := url.Values{}
	params.Set("applicationId", c.applicationID)
	params.Set("keyword", keyword)
	params.Set("format", "json")
	params.Set("sort", "sales")
	params.Set("hits", "30")

	var resp struct {
		Items []struct {
			Item struct {
				ItemNumber    string `json:"itemNumber"`
				Title         string `json:"title"`
				Author        string `json:"author"`
				ItemURL       string `json:"itemUrl"`
				LargeImageURL string `json:"largeImageUrl"`
				ItemCaption   string `json:"itemCaption"`
				PublisherName string `json:"publisherName"`
			} `json:"Item"`
		} `json:"Items"`
	}

	if err := c.getJSON(ctx, c.ebookEndpoint, params, &resp); err != nil {
		return nil, fmt.Errorf("ebook search for %q: %w", keyword, err)
	}

	ebooks := make([]Ebook, 0, len(resp.Items))
	for _, wrapper := range resp.Items {
		item := wrapper.Item
		if blacklistedTitle(item.Title) {
			continue
		}
		ebooks = append(ebooks, Ebook{
			ID:        item.ItemNumber,
			Title:     item.Title,
			Author:    item.Author,
			URL:       item.ItemURL,
			ImageURL:  item.LargeImageURL,
			Caption:   item.ItemCaption,
			Publisher: item.PublisherName,
		})
	}

	logger.Info("Ebook search completed",
		zap.String("keyword", keyword),
		zap.Int("ebooks", len(ebooks)),
	)

	return ebooks, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", endpoint, params.Encode()), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// stripThumbnailSuffix removes the embedded thumbnail-size query suffix
// (e.g. "?_ex=128x128") so clients receive the full-size image reference.
func stripThumbnailSuffix(imageURL string) string {
	if idx := strings.Index(imageURL, "?_ex="); idx >= 0 {
		return imageURL[:idx]
	}
	return imageURL
}

// parseReviewAverage tolerates the catalog returning the average as either
// a JSON number or a numeric string.
func parseReviewAverage(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func blacklistedTitle(title string) bool {
	for _, bad := range titleBlacklist {
		if strings.Contains(title, bad) {
			return true
		}
	}
	return false
}
