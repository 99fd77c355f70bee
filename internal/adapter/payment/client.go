package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mgiraldo/storefront/internal/port"
)

// Client talks to the hosted payment processor: it creates a payment
// preference linked to the order and hands back the redirect URL the
// customer completes the payment at. Confirmation arrives later through the
// webhook, never through this client.
type Client struct {
	baseURL     string
	accessToken string
	backURLBase string
	httpClient  *http.Client
}

func NewClient(baseURL, accessToken, backURLBase string) *Client {
	return &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		backURLBase: backURLBase,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

type preferenceItem struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
}

type backURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type preferenceRequest struct {
	Items             []preferenceItem `json:"items"`
	ExternalReference string           `json:"external_reference"`
	BackURLs          backURLs         `json:"back_urls"`
	AutoReturn        string           `json:"auto_return"`
}

type preferenceResponse struct {
	InitPoint string `json:"init_point"`
}

func (c *Client) CreatePreference(ctx context.Context, orderID string, items []port.PaymentItem) (string, error) {
	req := preferenceRequest{
		Items:             make([]preferenceItem, 0, len(items)),
		ExternalReference: orderID,
		BackURLs: backURLs{
			Success: c.backURLBase + "/cart/success",
			Failure: c.backURLBase + "/cart/failure",
			Pending: c.backURLBase + "/cart/pending",
		},
		AutoReturn: "approved",
	}
	for _, item := range items {
		req.Items = append(req.Items, preferenceItem{
			ID:         item.ID,
			Title:      item.Title,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice.InexactFloat64(),
			CurrencyID: "COP",
		})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode preference: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/checkout/preferences", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("create preference: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("create preference: unexpected status %d", resp.StatusCode)
	}

	var pref preferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&pref); err != nil {
		return "", fmt.Errorf("decode preference: %w", err)
	}
	if pref.InitPoint == "" {
		return "", fmt.Errorf("create preference: empty init_point")
	}
	return pref.InitPoint, nil
}
