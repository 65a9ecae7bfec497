package storage

import (
	"context"
	"time"
)

type Interface interface {
	CollectionExists(ctx context.Context, name string) (bool, error)
	CreateCollection(ctx context.Context, collection Collection) error
	SavePoints(ctx context.Context, collection string, points []Record) error
	GetPointsByChatID(ctx context.Context, collection string, chatID int64) ([]Record, error)
	Close() error
}

type Collection struct {
	Name       string    `json:"name" db:"name"`
	VectorSize int       `json:"vector_size" db:"vector_size"`
	Distance   string    `json:"distance" db:"distance"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type Record struct {
	ID        string    `json:"id" db:"id"`
	ChatID    int64     `json:"chat_id" db:"chat_id"`
	Vector    []float32 `json:"vector" db:"vector"`
	Payload   string    `json:"payload" db:"payload"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
