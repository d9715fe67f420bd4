package keep

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	logx "github.com/lokhor/cleaning-scheduler/pkg/logx"
)

// HTTPConfig configures the HTTP client for a Keep-style list API.
//
// Either Token or Email+Password must be set; with credentials the client
// exchanges them for a token during Authenticate.
type HTTPConfig struct {
	BaseURL  string
	Token    string
	Email    string
	Password string

	// RatePerSec caps outbound requests. 0 means a conservative default.
	RatePerSec int
	Timeout    time.Duration
}

// HTTPClient implements Client against a JSON REST API:
//
//	POST   /v1/auth                      {email,password} -> {token}
//	GET    /v1/lists?title=...           -> {lists:[{id,title}]}
//	POST   /v1/lists                     {title} -> {id}
//	GET    /v1/lists/{id}/items          -> {items:[{id,text,checked,parent_id}]}
//	POST   /v1/lists/{id}/items          {text,checked} -> {id}
//	DELETE /v1/lists/{id}/items/{itemID}
//	PATCH  /v1/lists/{id}/items/{itemID} {parent_id}
//	POST   /v1/sync                      durability barrier for prior writes
type HTTPClient struct {
	base    string
	token   string
	email   string
	pass    string
	hc      *http.Client
	limiter *rate.Limiter
	log     logx.Logger
}

func NewHTTPClient(cfg HTTPConfig, log logx.Logger) *HTTPClient {
	if log.IsZero() {
		log = logx.Nop()
	}
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 5
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		base:    strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		email:   cfg.Email,
		pass:    cfg.Password,
		hc:      &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		log:     log,
	}
}

func (c *HTTPClient) Authenticate(ctx context.Context) error {
	if c.token != "" {
		return nil
	}
	if c.email == "" || c.pass == "" {
		return fmt.Errorf("%w: no token and no credentials configured", ErrAuth)
	}

	var resp struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/v1/auth",
		map[string]string{"email": c.email, "password": c.pass}, &resp)
	if err != nil {
		return err
	}
	if resp.Token == "" {
		return fmt.Errorf("%w: empty token in auth response", ErrAuth)
	}
	c.token = resp.Token
	c.log.Debug("authenticated to keep store")
	return nil
}

func (c *HTTPClient) FindList(ctx context.Context, title string) (ListID, bool, error) {
	var resp struct {
		Lists []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"lists"`
	}
	path := "/v1/lists?title=" + url.QueryEscape(title)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", false, err
	}
	for _, l := range resp.Lists {
		if l.Title == title {
			return ListID(l.ID), true, nil
		}
	}
	return "", false, nil
}

func (c *HTTPClient) CreateList(ctx context.Context, title string) (ListID, error) {
	var resp struct {
		ID string `json:"id"`
	}
	err := c.do(ctx, http.MethodPost, "/v1/lists", map[string]string{"title": title}, &resp)
	if err != nil {
		return "", err
	}
	return ListID(resp.ID), nil
}

func (c *HTTPClient) Items(ctx context.Context, list ListID) ([]Item, error) {
	var resp struct {
		Items []struct {
			ID       string `json:"id"`
			Text     string `json:"text"`
			Checked  bool   `json:"checked"`
			ParentID string `json:"parent_id"`
		} `json:"items"`
	}
	path := fmt.Sprintf("/v1/lists/%s/items", list)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(resp.Items))
	for _, it := range resp.Items {
		items = append(items, Item{
			ID:      ItemID(it.ID),
			Text:    it.Text,
			Checked: it.Checked,
			Parent:  ItemID(it.ParentID),
		})
	}
	return items, nil
}

func (c *HTTPClient) AddItem(ctx context.Context, list ListID, text string, checked bool) (ItemID, error) {
	var resp struct {
		ID string `json:"id"`
	}
	path := fmt.Sprintf("/v1/lists/%s/items", list)
	err := c.do(ctx, http.MethodPost, path, map[string]any{"text": text, "checked": checked}, &resp)
	if err != nil {
		return "", err
	}
	return ItemID(resp.ID), nil
}

func (c *HTTPClient) DeleteItem(ctx context.Context, list ListID, item ItemID) error {
	path := fmt.Sprintf("/v1/lists/%s/items/%s", list, item)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *HTTPClient) SetParent(ctx context.Context, list ListID, child, parent ItemID) error {
	path := fmt.Sprintf("/v1/lists/%s/items/%s", list, child)
	return c.do(ctx, http.MethodPatch, path, map[string]string{"parent_id": string(parent)}, nil)
}

func (c *HTTPClient) Commit(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/v1/sync", nil, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("keep: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s %s: status %d", ErrAuth, method, path, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("keep: %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("keep: decode %s %s: %w", method, path, err)
		}
	}
	return nil
}
