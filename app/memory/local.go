package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	log "github.com/sirupsen/logrus"

	"GoTelegramAI/app/storage"
)

const distanceCosine = "cosine"

var _ VectorStore = &LocalStore{}

// LocalStore keeps points in SQLite and ranks them in process by cosine
// similarity. It is used when no Qdrant server is configured.
type LocalStore struct {
	db         storage.Interface
	collection string
}

func NewLocalStore(db storage.Interface, collection string) *LocalStore {
	return &LocalStore{db: db, collection: collection}
}

func (s *LocalStore) Collection() string {
	return s.collection
}

func (s *LocalStore) CollectionExists(ctx context.Context) (bool, error) {
	return s.db.CollectionExists(ctx, s.collection)
}

func (s *LocalStore) CreateCollection(ctx context.Context, vectorSize int) error {
	return s.db.CreateCollection(ctx, storage.Collection{
		Name:       s.collection,
		VectorSize: vectorSize,
		Distance:   distanceCosine,
	})
}

func (s *LocalStore) Upsert(ctx context.Context, points []Point) error {
	records := make([]storage.Record, len(points))
	for i, p := range points {
		payload, err := json.Marshal(p.Payload)
		if err != nil {
			return fmt.Errorf("payload of point %s: %w", p.ID, err)
		}
		chatID, _ := p.Payload.ChatID()
		records[i] = storage.Record{
			ID:      p.ID,
			ChatID:  chatID,
			Vector:  p.Vector,
			Payload: string(payload),
		}
	}
	return s.db.SavePoints(ctx, s.collection, records)
}

func (s *LocalStore) Search(ctx context.Context, vector []float32, chatID int64, limit int) ([]ScoredPoint, error) {
	records, err := s.db.GetPointsByChatID(ctx, s.collection, chatID)
	if err != nil {
		return nil, err
	}

	scored := make([]ScoredPoint, 0, len(records))
	for _, r := range records {
		score, ok := cosineSimilarity(vector, r.Vector)
		if !ok {
			log.Warnf("⚠️ Skipping point %s: vector size %d, query size %d", r.ID, len(r.Vector), len(vector))
			continue
		}
		payload, err := decodePayload(r.Payload)
		if err != nil {
			log.Warnf("⚠️ Skipping point %s: %v", r.ID, err)
			continue
		}
		scored = append(scored, ScoredPoint{ID: r.ID, Score: float32(score), Payload: payload})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func (s *LocalStore) Close() error {
	return s.db.Close()
}

func decodePayload(raw string) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var p Payload
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return p, nil
}

// cosineSimilarity reports false for vectors of different length. A zero
// vector scores 0.
func cosineSimilarity(a, b []float32) (float64, bool) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, false
	}
	var dot, na, nb float64
	for i := range a {
		va, vb := float64(a[i]), float64(b[i])
		dot += va * vb
		na += va * va
		nb += vb * vb
	}
	if na == 0 || nb == 0 {
		return 0, true
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), true
}
