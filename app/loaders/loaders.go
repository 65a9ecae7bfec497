package loaders

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

const (
	UserAgent       = "Chrome/126.0.0.0 Safari/537.36"
	maxDownloadSize = 5 << 20
	contentTypePDF  = "application/pdf"
)

var (
	ErrEmptyDocument = errors.New("document has no text")

	pdfSignature = []byte("%PDF-")
)

type URLLoader struct {
	client *http.Client
}

func NewURLLoader(timeout time.Duration) *URLLoader {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &URLLoader{client: &http.Client{Timeout: timeout}}
}

// Load downloads rawURL and returns its text. PDF responses are detected by
// content type or file signature; everything else is treated as HTML.
func (l *URLLoader) Load(ctx context.Context, rawURL string) (string, error) {
	return l.LoadFile(ctx, rawURL, rawURL)
}

// LoadFile is Load for URLs that must not show up in logs or errors, such as
// Telegram file links carrying the bot token. name is reported instead.
func (l *URLLoader) LoadFile(ctx context.Context, rawURL, name string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("invalid url: %s", name)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("request %s: invalid url", name)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return "", fmt.Errorf("fetch %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warnf("⚠️ URL %s returned status code: %d", name, resp.StatusCode)
		return "", fmt.Errorf("fetch %s: %d %s", name, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}

	var text string
	if isPDF(resp.Header.Get("Content-Type")) || bytes.HasPrefix(body, pdfSignature) {
		text, err = LoadPDF(body)
	} else {
		text, err = LoadHTML(bytes.NewReader(body))
	}
	if err != nil {
		return "", err
	}
	log.WithField("url", name).Infof("🌐 Loaded %d bytes of text", len(text))
	return text, nil
}

func isPDF(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == contentTypePDF
}

// LoadHTML returns the visible text of an HTML document, one line per text
// block. Script and style content is skipped.
func LoadHTML(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if len(parts) == 0 {
		return "", ErrEmptyDocument
	}
	return strings.Join(parts, "\n"), nil
}

func LoadPDF(b []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	text, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	out := strings.TrimSpace(string(text))
	if out == "" {
		return "", ErrEmptyDocument
	}
	return out, nil
}
