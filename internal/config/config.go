package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	NoAuthBypass = true //set false once a real token is provisioned
	AuthToken    = ""

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 30 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//embedding vector size must match the index collection
	EmbeddingOutputDimensionality int32 = 1536

	//qdrant
	IndexCollectionName     = "review-chunks"
	QdrantConnectionTimeout = 30 * time.Second
	QdrantHost              = "127.0.0.1"
	QdrantGrpcPort          = 6334
	QdrantUseTLS            = false
	QdrantPoolSize          = 1

	//models
	GeminiModelName      = "gemini-2.5-flash-lite-preview-09-2025"
	GoogleEmbeddingModel = "gemini-embedding-001"
	OpenAIEmbeddingModel = "text-embedding-3-small"

	ModelTemperature float32 = 0.2
	SystemInstruction        = "You answer questions about product reviews using only the review excerpts provided as context. " +
		"Summarize the relevant reviews, cite the product id and the review id of every excerpt you rely on, " +
		"and state the overall sentiment of the cited reviews. If the excerpts do not answer the question, say so."

	//chunking
	ChunkMaxLength = 1000
	ChunkOverlap   = 150

	//sync
	SyncBatchLimit     = 256
	SyncWorkerCount    = 4
	SyncInterval       = 5 * time.Minute
	RetryMaxAttempts   = 4
	RetryBaseDelay     = 500 * time.Millisecond
	RetryMaxDelay      = 8 * time.Second
	EmbedRatePerSecond = 2.0
	EmbedRateBurst     = 4

	//query
	DefaultTopK = 5
	MaxTopK     = 50

	//http client pooling for REST-based providers
	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	RedisPassword    = ""
	RedisCursorStore = 0

	//sqlite record store
	ReviewDBPath = "data/reviews.db"
)
