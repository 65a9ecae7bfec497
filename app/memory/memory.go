package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"GoTelegramAI/app/models"
)

const (
	DefaultCollection  = "telegram"
	DefaultVectorSize  = 1536
	DefaultSearchLimit = 10
)

var ErrNoText = errors.New("no text to index")

type Point struct {
	ID      string
	Vector  []float32
	Payload Payload
}

type ScoredPoint struct {
	ID      string
	Score   float32
	Payload Payload
}

// VectorStore is bound to a single collection.
type VectorStore interface {
	Collection() string
	CollectionExists(ctx context.Context) (bool, error)
	// CreateCollection creates the collection with cosine distance.
	CreateCollection(ctx context.Context, vectorSize int) error
	Upsert(ctx context.Context, points []Point) error
	// Search returns points whose payload chat_id equals chatID, best match first.
	Search(ctx context.Context, vector []float32, chatID int64, limit int) ([]ScoredPoint, error)
	Close() error
}

type Options struct {
	VectorSize  int
	SearchLimit int
}

type Client struct {
	store    VectorStore
	embedder models.Embedder
	opts     Options
	newID    func() string

	mu    sync.Mutex
	ready bool
}

func NewClient(store VectorStore, embedder models.Embedder, opts Options) *Client {
	if opts.VectorSize <= 0 {
		opts.VectorSize = DefaultVectorSize
	}
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = DefaultSearchLimit
	}
	return &Client{
		store:    store,
		embedder: embedder,
		opts:     opts,
		newID:    func() string { return uuid.New().String() },
	}
}

// Init creates the collection when it does not exist yet. Index and Search
// call it on their own when startup did not.
func (c *Client) Init(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ready {
		return nil
	}

	exists, err := c.store.CollectionExists(ctx)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", c.store.Collection(), err)
	}
	if !exists {
		log.WithFields(log.Fields{
			"collection":  c.store.Collection(),
			"vector_size": c.opts.VectorSize,
		}).Info("🆕 Creating collection")
		if err = c.store.CreateCollection(ctx, c.opts.VectorSize); err != nil {
			return fmt.Errorf("create collection %s: %w", c.store.Collection(), err)
		}
	}
	c.ready = true
	return nil
}

// Index embeds texts in one call and upserts one point per text, in order.
func (c *Client) Index(ctx context.Context, meta Metadata, texts ...string) ([]Point, error) {
	if len(texts) == 0 {
		return nil, ErrNoText
	}
	for _, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, ErrNoText
		}
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"chat_id": meta.ChatID, "message_id": meta.MessageID}).
		Infof("📥 Indexing %d text(s)", len(texts))

	vectors, err := c.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed texts: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d, want %d", models.ErrEmbeddingCount, len(vectors), len(texts))
	}

	points := make([]Point, len(texts))
	for i, text := range texts {
		points[i] = Point{
			ID:      c.newID(),
			Vector:  vectors[i],
			Payload: meta.Payload(text),
		}
	}

	if err = c.store.Upsert(ctx, points); err != nil {
		return nil, fmt.Errorf("upsert points: %w", err)
	}
	return points, nil
}

func (c *Client) SearchPoints(ctx context.Context, query string, chatID int64) ([]ScoredPoint, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrNoText
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}

	log.WithField("chat_id", chatID).Infof("🔎 Searching memory for: %s", query)

	vectors, err := c.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: got %d, want 1", models.ErrEmbeddingCount, len(vectors))
	}

	points, err := c.store.Search(ctx, vectors[0], chatID, c.opts.SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search collection %s: %w", c.store.Collection(), err)
	}
	log.WithField("chat_id", chatID).Debugf("🔎 %d match(es)", len(points))
	return points, nil
}

// Search renders matches of query within chatID as deep link and text blocks.
func (c *Client) Search(ctx context.Context, query string, chatID int64) (string, error) {
	points, err := c.SearchPoints(ctx, query, chatID)
	if err != nil {
		return "", err
	}
	return Render(points), nil
}

func (c *Client) Close() error {
	return c.store.Close()
}
