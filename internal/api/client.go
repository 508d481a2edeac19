// Package api consumes the LinkIn REST surface. Every response uses the
// {code, message, data} envelope with code == 0 meaning success; a
// non-zero code surfaces as *linkin_errors.APIError and is never retried.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	linkin_errors "linkin/pkg/errors"
)

// TokenFunc supplies the current bearer token, empty when logged out.
type TokenFunc func() string

type Client struct {
	http *resty.Client
	log  *zap.Logger
}

type response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func NewClient(baseURL string, timeout time.Duration, token TokenFunc) *Client {
	httpc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	httpc.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		r.SetHeader("X-Request-ID", uuid.New().String())
		if t := token(); t != "" {
			r.SetHeader("Authorization", "Bearer "+t)
		}
		return nil
	})
	return &Client{
		http: httpc,
		log:  zap.L().With(zap.String("component", "api")),
	}
}

func (c *Client) call(ctx context.Context, method, path string, body, out interface{}) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	var env response
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return fmt.Errorf("%s %s: decode envelope: %w", method, path, err)
	}
	if env.Code != 0 {
		c.log.Debug("api failure",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("code", env.Code))
		return &linkin_errors.APIError{Code: env.Code, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s %s: decode data: %w", method, path, err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.call(ctx, resty.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.call(ctx, resty.MethodPost, path, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out interface{}) error {
	return c.call(ctx, resty.MethodPut, path, body, out)
}
