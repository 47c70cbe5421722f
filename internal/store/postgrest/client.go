package postgrest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codicehealth/codice-inventory/backend-go/internal/config"
	"github.com/codicehealth/codice-inventory/backend-go/internal/domain"
)

const defaultTimeout = 10 * time.Second

// Client reads the inventory schema through a PostgREST gateway. Upstream
// failures degrade to empty result sets with a warning; the analytics
// pipeline treats missing data as a valid, neutral input.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  zerolog.Logger
}

// New builds a client from store configuration.
func New(cfg config.StoreConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		logger:  log.With().Str("component", "postgrest").Logger(),
	}
}

func (c *Client) fetch(ctx context.Context, resource, query string, out any) error {
	endpoint := fmt.Sprintf("%s/%s", c.baseURL, resource)
	if query != "" {
		endpoint += "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", resource, err)
	}
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("fetch %s: unexpected status %d: %s", resource, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", resource, err)
	}
	return nil
}

// Branches implements store.Store.
func (c *Client) Branches(ctx context.Context) ([]domain.Branch, error) {
	var rows []branchRow
	if err := c.fetch(ctx, "sucursales", "select=*", &rows); err != nil {
		c.logger.Warn().Err(err).Msg("branch fetch failed, continuing with empty set")
		return []domain.Branch{}, nil
	}

	out := make([]domain.Branch, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// Medications implements store.Store.
func (c *Client) Medications(ctx context.Context) ([]domain.Medication, error) {
	var rows []medicationRow
	if err := c.fetch(ctx, "medicamentos", "select=*", &rows); err != nil {
		c.logger.Warn().Err(err).Msg("medication fetch failed, continuing with empty set")
		return []domain.Medication{}, nil
	}

	out := make([]domain.Medication, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// InventorySnapshot implements store.Store.
func (c *Client) InventorySnapshot(ctx context.Context, branchID int64) ([]domain.InventoryItem, error) {
	query := "select=*"
	if branchID > 0 {
		query += fmt.Sprintf("&sucursal_id=eq.%d", branchID)
	}

	var rows []inventoryRow
	if err := c.fetch(ctx, "vista_inventario_completo", query, &rows); err != nil {
		c.logger.Warn().Err(err).Int64("branch_id", branchID).Msg("inventory fetch failed, continuing with empty set")
		return []domain.InventoryItem{}, nil
	}

	out := make([]domain.InventoryItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// SalesHistory implements store.Store.
func (c *Client) SalesHistory(ctx context.Context, medicationID, branchID int64, since time.Time) ([]domain.SaleRecord, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("tipo", "eq.venta")
	if medicationID > 0 {
		params.Set("medicamento_id", fmt.Sprintf("eq.%d", medicationID))
	}
	if branchID > 0 {
		params.Set("sucursal_id", fmt.Sprintf("eq.%d", branchID))
	}
	if !since.IsZero() {
		params.Set("fecha", "gte."+since.Format("2006-01-02"))
	}

	var rows []saleRow
	if err := c.fetch(ctx, "movimientos_inventario", params.Encode(), &rows); err != nil {
		c.logger.Warn().Err(err).Int64("branch_id", branchID).Int64("medication_id", medicationID).
			Msg("sales fetch failed, continuing with empty set")
		return []domain.SaleRecord{}, nil
	}

	out := make([]domain.SaleRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// Lots implements store.Store.
func (c *Client) Lots(ctx context.Context, branchID int64) ([]domain.Lot, error) {
	query := "select=*"
	if branchID > 0 {
		query += fmt.Sprintf("&sucursal_id=eq.%d", branchID)
	}

	var rows []lotRow
	if err := c.fetch(ctx, "lotes", query, &rows); err != nil {
		c.logger.Warn().Err(err).Int64("branch_id", branchID).Msg("lot fetch failed, continuing with empty set")
		return []domain.Lot{}, nil
	}

	out := make([]domain.Lot, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}
