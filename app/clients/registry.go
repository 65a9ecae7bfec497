package clients

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"GoTelegramAI/app/runtime"
)

const (
	TypeTelegram = "telegram"
	TypeDiscord  = "discord"
)

// Config defines the configuration for a client connector
type Config struct {
	Type    string            `yaml:"type" json:"type"`
	Enabled bool              `yaml:"enabled" json:"enabled"`
	Config  map[string]string `yaml:"config,omitempty" json:"config,omitempty"`
}

type Registry struct {
	mu      sync.RWMutex
	clients []Interface
}

func NewRegistry() *Registry {
	return &Registry{
		clients: make([]Interface, 0),
	}
}

func (r *Registry) Register(client Interface, rt *runtime.Runtime) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := client.Subscribe(rt); err != nil {
		return err
	}
	r.clients = append(r.clients, client)
	return nil
}

func (r *Registry) GetAll() []Interface {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Interface, len(r.clients))
	copy(result, r.clients)
	return result
}

func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, client := range r.clients {
		if err := client.Close(); err != nil {
			log.Warnf("⚠️ Error closing client: %v", err)
		}
	}
	r.clients = make([]Interface, 0)
}

func CreateClient(cfg Config) (Interface, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("client %s is disabled", cfg.Type)
	}

	switch cfg.Type {
	case TypeTelegram:
		return NewTelegramClientFromConfig(cfg.Config)
	case TypeDiscord:
		return NewDiscordClientFromConfig(cfg.Config)
	default:
		return nil, fmt.Errorf("unknown client type: %s", cfg.Type)
	}
}
