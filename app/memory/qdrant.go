package memory

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"
	log "github.com/sirupsen/logrus"
)

const (
	defaultQdrantPort = 6334
	qdrantRESTPort    = 6333
)

var _ VectorStore = &QdrantStore{}

type QdrantStore struct {
	client     *qdrant.Client
	collection string
}

// NewQdrantStore connects over gRPC. rawURL looks like http://host:6334;
// https enables TLS.
func NewQdrantStore(rawURL, apiKey, collection string) (*QdrantStore, error) {
	cfg, err := qdrantConfig(rawURL, apiKey)
	if err != nil {
		return nil, err
	}
	client, err := qdrant.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &QdrantStore{
		client:     client,
		collection: collection,
	}, nil
}

func qdrantConfig(rawURL, apiKey string) (*qdrant.Config, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return nil, fmt.Errorf("invalid qdrant url %q", rawURL)
	}
	port := defaultQdrantPort
	if p := u.Port(); p != "" {
		if port, err = strconv.Atoi(p); err != nil {
			return nil, fmt.Errorf("invalid qdrant port %q", p)
		}
	}
	if port == qdrantRESTPort {
		log.Warnf("⚠️ Qdrant port %d is the REST API; this client speaks gRPC (usually %d)", port, defaultQdrantPort)
	}
	return &qdrant.Config{
		Host:   u.Hostname(),
		Port:   port,
		APIKey: apiKey,
		UseTLS: u.Scheme == "https",
	}, nil
}

func (s *QdrantStore) Collection() string {
	return s.collection
}

func (s *QdrantStore) CollectionExists(ctx context.Context) (bool, error) {
	return s.client.CollectionExists(ctx, s.collection)
}

func (s *QdrantStore) CreateCollection(ctx context.Context, vectorSize int) error {
	return s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(vectorSize),
			Distance: qdrant.Distance_Cosine,
		}),
	})
}

func (s *QdrantStore) Close() error {
	return s.client.Close()
}

func (s *QdrantStore) Upsert(ctx context.Context, points []Point) error {
	pts, err := toQdrantPoints(points)
	if err != nil {
		return err
	}
	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         pts,
	})
	return err
}

func toQdrantPoints(points []Point) ([]*qdrant.PointStruct, error) {
	pts := make([]*qdrant.PointStruct, len(points))
	for i, p := range points {
		payload, err := qdrant.TryValueMap(p.Payload)
		if err != nil {
			return nil, fmt.Errorf("payload of point %s: %w", p.ID, err)
		}
		pts[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(p.ID),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: payload,
		}
	}
	return pts, nil
}

func (s *QdrantStore) Search(ctx context.Context, vector []float32, chatID int64, limit int) ([]ScoredPoint, error) {
	l := uint64(limit)
	resp, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatchInt(KeyChatID, chatID),
			},
		},
		Limit:       &l,
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}
	return fromQdrantPoints(resp), nil
}

func fromQdrantPoints(resp []*qdrant.ScoredPoint) []ScoredPoint {
	out := make([]ScoredPoint, 0, len(resp))
	for _, r := range resp {
		payload := make(Payload, len(r.Payload))
		for key, v := range r.Payload {
			payload[key] = convertQdrantValue(v)
		}
		out = append(out, ScoredPoint{
			ID:      pointID(r.Id),
			Score:   r.Score,
			Payload: payload,
		})
	}
	return out
}

func pointID(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	switch x := id.PointIdOptions.(type) {
	case *qdrant.PointId_Uuid:
		return x.Uuid
	case *qdrant.PointId_Num:
		return strconv.FormatUint(x.Num, 10)
	}
	return ""
}

func convertQdrantValue(v *qdrant.Value) any {
	if v == nil {
		return nil
	}
	switch val := v.Kind.(type) {

	case *qdrant.Value_BoolValue:
		return val.BoolValue

	case *qdrant.Value_IntegerValue:
		return val.IntegerValue

	case *qdrant.Value_DoubleValue:
		return val.DoubleValue

	case *qdrant.Value_StringValue:
		return val.StringValue

	case *qdrant.Value_NullValue:
		return nil

	case *qdrant.Value_ListValue:
		out := make([]any, len(val.ListValue.Values))
		for i, lv := range val.ListValue.Values {
			out[i] = convertQdrantValue(lv)
		}
		return out

	case *qdrant.Value_StructValue:
		out := make(map[string]any)
		for k, nv := range val.StructValue.Fields {
			out[k] = convertQdrantValue(nv)
		}
		return out
	}

	return nil
}
