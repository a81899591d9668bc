package bootstrap

import (
	"fmt"
	"time"

	"deepresearch-be/internal/config"
	"deepresearch-be/internal/controller"
	"deepresearch-be/internal/persistence"
	"deepresearch-be/internal/pkg/logger"
	"deepresearch-be/internal/service"
	"deepresearch-be/pkg/cache"
	"deepresearch-be/pkg/events"
	"deepresearch-be/pkg/llm"
	"deepresearch-be/pkg/llm/openai"
	"deepresearch-be/pkg/orchestrator"
	"deepresearch-be/pkg/search"
	"deepresearch-be/pkg/search/tavily"

	"gorm.io/gorm"
)

// Container wires the Persistence Adapter, LLM/Search Adapters, Cache,
// event Bus and Orchestrator into the Research controller — the one
// HTTP-facing component this service exposes.
type Container struct {
	ResearchController controller.IResearchController
	Log                 logger.ILogger
	Bus                 *events.Bus
	Persist             *persistence.Adapter
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	persist := persistence.NewAdapterFromDB(db, sysLogger)

	openaiProvider, err := openai.NewProvider(cfg.Ai.OpenAIAPIKey, cfg.Ai.EconomyModel, cfg.Ai.DeepModel)
	var llmProvider llm.Provider = openaiProvider
	if err != nil {
		sysLogger.Warn("bootstrap", "llm provider unavailable, research calls will fail until OPENAI_API_KEY is set", map[string]interface{}{"error": err.Error()})
		llmProvider = &llm.UnavailableProvider{Reason: fmt.Errorf("openai provider not configured: %w", err)}
	}
	llmAdapter := llm.NewAdapter(llmProvider, cfg.Ai.MaxRetryAttempts, cfg.Ai.QuickTimeout, cfg.Ai.StandardTimeout, cfg.Ai.DeepTimeout)

	searchProvider := tavily.NewProvider(cfg.Search.TavilyAPIKey, cfg.Search.Timeout)
	searchAdapter := search.NewAdapter(searchProvider, cfg.Search.Timeout, sysLogger)

	researchCache := cache.NewResearchCache(15*time.Minute, 20*time.Minute, 30*time.Minute)

	bus := events.NewBus(sysLogger)

	orch := orchestrator.NewOrchestrator(llmAdapter, searchAdapter, researchCache, persist, sysLogger)

	researchService := service.NewResearchService(orch, persist, bus, sysLogger)

	return &Container{
		ResearchController: controller.NewResearchController(researchService),
		Log:                 sysLogger,
		Bus:                 bus,
		Persist:             persist,
	}
}
