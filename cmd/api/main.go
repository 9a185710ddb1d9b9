package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akonduru/reviewrag/internal/config"
	"github.com/akonduru/reviewrag/internal/domain/review"
	"github.com/akonduru/reviewrag/internal/handlers"
	"github.com/akonduru/reviewrag/internal/rag/answer"
	"github.com/akonduru/reviewrag/internal/rag/embedding"
	"github.com/akonduru/reviewrag/internal/rag/embedding/googleEmbedding"
	"github.com/akonduru/reviewrag/internal/rag/embedding/openaiEmbedding"
	"github.com/akonduru/reviewrag/internal/rag/llm/gemini"
	"github.com/akonduru/reviewrag/internal/rag/projector"
	"github.com/akonduru/reviewrag/internal/rag/searchindex/qdrantIndex"
	"github.com/akonduru/reviewrag/internal/retry"
	"github.com/akonduru/reviewrag/internal/server"
	"github.com/akonduru/reviewrag/internal/store"
	"github.com/akonduru/reviewrag/internal/syncer"
	"github.com/akonduru/reviewrag/internal/syncer/cursor"
	"github.com/akonduru/reviewrag/pkg/logx"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

var (
	listenAddr    string
	configPath    string
	schedulerStop chan bool
	waitGroup     sync.WaitGroup
)

func main() {
	_ = godotenv.Load()
	logx.Init(os.Getenv("APP_ENV") == "production" || config.IS_PROD, config.LOG_LEVEL_PROD)
	var logger = logx.NewLogger("main")

	flag.StringVar(&listenAddr, "listen-addr", "", "server listen address (overrides config file)")
	flag.StringVar(&configPath, "config", "config.yaml", "path to the config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("Could not load config", "path", configPath, "error", err)
		return
	}
	if listenAddr == "" {
		listenAddr = cfg.ListenAddr
	}

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//record store
	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		logger.Error("Could not open review store", "path", cfg.Store.Path, "error", err)
		return
	}
	defer db.Close()
	reviews := store.NewReviewStore(db)

	//cursor store, redis first with in-memory fallback
	var cursorStore cursor.Store
	if redisCursor := cursor.GetRedisCursorStore(serviceContext); redisCursor != nil {
		cursorStore = redisCursor
	} else {
		logger.Error("Redis is offline, sync cursor will not survive restarts")
		cursorStore = cursor.InitInMemoryCursorStore()
	}

	embedder := buildEmbedder(serviceContext, cfg, logger)
	llmProvider := gemini.GetGeminiClient(serviceContext, cfg.LLM.Model, os.Getenv("GEMINI_API_KEY"))
	index := qdrantIndex.GetQdrantIndex(serviceContext, qdrantIndex.Options{
		Host:       cfg.Index.Host,
		Port:       cfg.Index.Port,
		UseTLS:     cfg.Index.UseTLS,
		Collection: cfg.Index.Collection,
		Dimension:  uint64(cfg.Embedding.Dimension),
	})

	if embedder == nil || llmProvider == nil || index == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "Index", index != nil, "Embedder", embedder != nil, "LLMProvider", llmProvider != nil)
		return
	}

	if err := embedding.VerifyDimension(embedder, int(cfg.Embedding.Dimension)); err != nil {
		logger.Error("Embedder output does not match the configured embedding dimension", "error", err)
		return
	}

	if err := index.EnsureCollection(serviceContext); err != nil {
		var cfgErr *review.ConfigError
		if errors.As(err, &cfgErr) {
			logger.Error("Index collection does not match the configured embedding dimension", "error", err)
			return
		}
		logger.Error("Could not provision the index collection", "error", err)
		return
	}

	retrier := retry.Default()
	pipeline := syncer.NewPipeline(syncer.Params{
		Source:         reviews,
		CursorStore:    cursorStore,
		Embedder:       embedder,
		Index:          index,
		Projector:      projector.New(int(cfg.Embedding.Dimension)),
		Retrier:        retrier,
		ChunkMaxLength: cfg.Chunk.MaxLength,
		ChunkOverlap:   cfg.Chunk.Overlap,
		BatchLimit:     cfg.Sync.BatchLimit,
		Workers:        cfg.Sync.Workers,
		EmbedLimiter:   rate.NewLimiter(rate.Limit(config.EmbedRatePerSecond), config.EmbedRateBurst),
	})

	answerService := answer.NewService(index, embedder, llmProvider, retrier)
	handlers.InitHandlers(answerService, pipeline, cursorStore, reviews)

	//periodic sync
	schedulerStop = make(chan bool, 1)
	pipeline.StartScheduler(cfg.SyncInterval(), schedulerStop, &waitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		SchedulerStop:    schedulerStop,
		Group:            &waitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

func buildEmbedder(ctx context.Context, cfg *config.AppConfig, logger *logx.Logger) embedding.Embedder {
	switch cfg.Embedding.Provider {
	case "openai":
		return openaiEmbedding.GetOpenAIEmbeddingClient(cfg.Embedding.Model, os.Getenv("OPENAI_API_KEY"), cfg.Embedding.Dimension)
	case "gemini":
		return googleEmbedding.GetGoogleEmbeddingClient(ctx, cfg.Embedding.Model, os.Getenv("GEMINI_API_KEY"), cfg.Embedding.Dimension)
	default:
		logger.Error("Unknown embedding provider", "provider", cfg.Embedding.Provider)
		return nil
	}
}
