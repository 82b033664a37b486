package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"keranjang/internal/cart"
	"keranjang/internal/logger"

	"go.uber.org/zap"
)

const cartEndpoint = "/v1/me/cart"

// Client talks to the backend's server-side cart for the authenticated
// user. Both calls are fallible in the usual network ways; callers treat any
// failure as "remote cart unavailable" and keep the local cart.
type Client interface {
	// FetchCart returns the server-side line items.
	FetchCart(ctx context.Context) ([]cart.LineItem, error)
	// ReplaceCart overwrites the server-side cart wholesale.
	ReplaceCart(ctx context.Context, items []cart.LineItem) error
}

type httpClient struct {
	baseURL string
	tokens  TokenSource
	client  *http.Client
}

// NewClient builds an HTTP sync client against baseURL.
func NewClient(baseURL string, tokens TokenSource) Client {
	if baseURL == "" {
		logger.L().Warn("sync base URL is empty, remote cart will be unavailable")
	}

	return &httpClient{
		baseURL: baseURL,
		tokens:  tokens,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *httpClient) FetchCart(ctx context.Context) ([]cart.LineItem, error) {
	body, err := c.do(ctx, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}

	items, err := cart.DecodeItems(body)
	if err != nil {
		logger.FromCtx(ctx).Warn("backend cart payload malformed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrCartUnavailable, err)
	}
	return cart.Sanitize(items), nil
}

func (c *httpClient) ReplaceCart(ctx context.Context, items []cart.LineItem) error {
	payload, err := cart.EncodeItems(items)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCartUnavailable, err)
	}

	_, err = c.do(ctx, http.MethodPut, payload)
	return err
}

func (c *httpClient) do(ctx context.Context, method string, payload []byte) ([]byte, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+cartEndpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCartUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		// Keep cancellation distinguishable from plain network failure so
		// the merge resolver can roll back to Idle instead of auto-resolving.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrCartUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCartUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.FromCtx(ctx).Warn("backend cart call failed",
			zap.String("method", method),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("%w: status %d", ErrCartUnavailable, resp.StatusCode)
	}

	return body, nil
}
