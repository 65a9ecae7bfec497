package telegraph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"GoTelegramAI/app/utils/restclient"
)

const (
	BaseURL   = "https://api.telegra.ph"
	shortName = "GoTelegramAI"
)

var ErrNotOK = errors.New("telegraph request failed")

// Publisher creates a public page from HTML and returns its URL.
type Publisher interface {
	CreatePage(ctx context.Context, title, htmlContent string) (string, error)
}

var _ Publisher = &Client{}

type Client struct {
	rest restclient.Interface

	mu    sync.Mutex
	token string
}

// NewClient uses token when given. Otherwise an anonymous account is created
// on the first page and reused afterwards.
func NewClient(rest restclient.Interface, token string) *Client {
	if rest == nil {
		rest = restclient.NewRestClient(BaseURL, nil)
	}
	return &Client{rest: rest, token: token}
}

type response[T any] struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error"`
	Result T      `json:"result"`
}

type account struct {
	AccessToken string `json:"access_token"`
}

type page struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

func call[T any](ctx context.Context, rest restclient.Interface, method string, body any) (T, error) {
	var zero T
	raw, status, err := rest.Post(ctx, "/"+method, body, nil)
	if err != nil {
		return zero, fmt.Errorf("telegraph %s: %w", method, err)
	}
	var resp response[T]
	if err = json.Unmarshal(raw, &resp); err != nil {
		return zero, fmt.Errorf("telegraph %s: status %d: %w", method, status, err)
	}
	if !resp.OK {
		return zero, fmt.Errorf("%w: %s: %s", ErrNotOK, method, resp.Error)
	}
	return resp.Result, nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, nil
	}
	acc, err := call[account](ctx, c.rest, "createAccount", map[string]string{
		"short_name":  shortName,
		"author_name": shortName,
	})
	if err != nil {
		return "", err
	}
	log.Info("📰 Telegraph account created")
	c.token = acc.AccessToken
	return c.token, nil
}

func (c *Client) CreatePage(ctx context.Context, title, htmlContent string) (string, error) {
	nodes, err := HTMLToNodes(htmlContent)
	if err != nil {
		return "", err
	}
	token, err := c.accessToken(ctx)
	if err != nil {
		return "", err
	}
	p, err := call[page](ctx, c.rest, "createPage", map[string]any{
		"access_token":   token,
		"title":          title,
		"author_name":    shortName,
		"content":        nodes,
		"return_content": false,
	})
	if err != nil {
		return "", err
	}
	log.WithField("url", p.URL).Debug("📰 Telegraph page created")
	return p.URL, nil
}

func CreateMarkdownPage(ctx context.Context, p Publisher, title, md string) (string, error) {
	content, err := MarkdownToHTML(md)
	if err != nil {
		return "", err
	}
	return p.CreatePage(ctx, title, content)
}
