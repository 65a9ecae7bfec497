package configs

import (
	"context"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"

	"GoTelegramAI/app/clients"
	"GoTelegramAI/app/loaders"
	"GoTelegramAI/app/memory"
	"GoTelegramAI/app/models"
	"GoTelegramAI/app/runtime"
	"GoTelegramAI/app/storage"
	"GoTelegramAI/app/telegraph"
	"GoTelegramAI/app/tools"
	"GoTelegramAI/app/utils/restclient"
)

// App holds everything built from a Config. Close releases it in reverse
// order of construction.
type App struct {
	Runtime *runtime.Runtime
	Memory  *memory.Client
	Clients []clients.Interface
	closers []func() error
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warnf("⚠️ Error during shutdown: %v", err)
		}
	}
}

func (c *Config) BuildCache(ctx context.Context) (models.Cache, func() error, error) {
	if c.Cache.RedisURL == "" {
		return models.NewMemoryCache(), func() error { return nil }, nil
	}
	cache, err := models.NewRedisCache(ctx, c.Cache.RedisURL, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	log.Info("🗃️ Using Redis embedding cache")
	return cache, cache.Close, nil
}

func (c *Config) BuildLLM(cache models.Cache) *models.LLMClient {
	return models.NewLLMClient(models.Options{
		APIKey:         c.LLM.APIKey,
		BaseURL:        c.LLM.BaseURL,
		Model:          c.LLM.Model,
		EmbeddingModel: c.LLM.EmbeddingModel,
		Temperature:    c.LLM.Temperature,
	}, cache)
}

// BuildVectorStore picks Qdrant when a URL is configured and the embedded
// SQLite store otherwise.
func (c *Config) BuildVectorStore() (memory.VectorStore, error) {
	if c.Memory.QdrantURL != "" {
		log.WithField("url", c.Memory.QdrantURL).Info("🧲 Using Qdrant vector store")
		return memory.NewQdrantStore(c.Memory.QdrantURL, c.Memory.QdrantAPIKey, c.Memory.Collection)
	}
	db, err := storage.NewSQLiteStorage(c.Memory.DBPath)
	if err != nil {
		return nil, err
	}
	log.Info("🧲 Using embedded vector store")
	return memory.NewLocalStore(db, c.Memory.Collection), nil
}

// BuildMemory also creates the collection when it is missing.
func (c *Config) BuildMemory(ctx context.Context, embedder models.Embedder) (*memory.Client, error) {
	store, err := c.BuildVectorStore()
	if err != nil {
		return nil, err
	}
	client := memory.NewClient(store, embedder, memory.Options{
		VectorSize:  c.Memory.VectorSize,
		SearchLimit: c.Memory.SearchLimit,
	})
	if err = client.Init(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func (c *Config) BuildTelegraph() *telegraph.Client {
	return telegraph.NewClient(restclient.NewRestClient(telegraph.BaseURL, nil), c.Telegraph.Token)
}

func (c *Config) ClientConfigs() []clients.Config {
	return []clients.Config{
		{
			Type:    clients.TypeTelegram,
			Enabled: c.Telegram.Token != "",
			Config: map[string]string{
				"token":             c.Telegram.Token,
				"developer_chat_id": strconv.FormatInt(c.Telegram.DeveloperChatID, 10),
			},
		},
		{
			Type:    clients.TypeDiscord,
			Enabled: c.Discord.Token != "",
			Config:  map[string]string{"token": c.Discord.Token},
		},
	}
}

func (c *Config) CreateClients() ([]clients.Interface, error) {
	var created []clients.Interface
	for _, clientCfg := range c.ClientConfigs() {
		if !clientCfg.Enabled {
			log.Debugf("⏭️ Client %s is disabled, skipping", clientCfg.Type)
			continue
		}

		log.Infof("🔌 Initializing %s client...", clientCfg.Type)
		client, err := clients.CreateClient(clientCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s client: %w", clientCfg.Type, err)
		}
		created = append(created, client)
	}
	if len(created) == 0 {
		log.Info("ℹ️ No clients configured")
	}
	return created, nil
}

// BuildReporter returns nil unless a Telegram client with a developer chat
// exists to receive the reports.
func BuildReporter(created []clients.Interface, publisher telegraph.Publisher, logs *runtime.LogBuffer) runtime.Reporter {
	for _, cl := range created {
		if tg, ok := cl.(*clients.TelegramClient); ok && tg.HasDeveloperChat() {
			return runtime.NewErrorReporter(publisher, tg.Notify, logs)
		}
	}
	return nil
}

// Build constructs the whole bot without starting it.
func (c *Config) Build(ctx context.Context, logs *runtime.LogBuffer) (*App, error) {
	app := &App{}
	fail := func(err error) (*App, error) {
		app.Close()
		return nil, err
	}

	cache, closeCache, err := c.BuildCache(ctx)
	if err != nil {
		return fail(err)
	}
	app.closers = append(app.closers, closeCache)

	llm := c.BuildLLM(cache)
	if app.Memory, err = c.BuildMemory(ctx, llm); err != nil {
		return fail(err)
	}
	app.closers = append(app.closers, app.Memory.Close)

	publisher := c.BuildTelegraph()
	toolkit := tools.NewToolkit(tools.Dependencies{
		LLM:       llm,
		Memory:    app.Memory,
		Loader:    loaders.NewURLLoader(0),
		Publisher: publisher,
	})

	if app.Clients, err = c.CreateClients(); err != nil {
		return fail(err)
	}
	app.Runtime = runtime.NewRuntime(toolkit, app.Memory, BuildReporter(app.Clients, publisher, logs))
	return app, nil
}

// InitializeClients subscribes every built client to the runtime.
func (a *App) InitializeClients(clientRegistry *clients.Registry) error {
	for _, client := range a.Clients {
		if err := clientRegistry.Register(client, a.Runtime); err != nil {
			return fmt.Errorf("failed to register client: %w", err)
		}
	}
	a.closers = append(a.closers, func() error {
		clientRegistry.CloseAll()
		return nil
	})
	log.Infof("✅ %d client(s) initialized", len(a.Clients))
	return nil
}
