package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"docchat/internal/config"
	"docchat/internal/dal"
	"docchat/internal/database/milvus"
	"docchat/internal/database/minio"
	"docchat/internal/database/mysql"
	"docchat/internal/database/redis"
	"docchat/internal/handler"
	"docchat/internal/llm"
	"docchat/internal/models"
	"docchat/internal/rag/embeddings"
	"docchat/internal/rag/loaders"
	"docchat/internal/rag/pipeline"
	"docchat/internal/rag/splitters"
	"docchat/internal/rag/vectorstore"
	"docchat/internal/service"
	"docchat/internal/storage"
	"docchat/internal/worker"
	"docchat/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(logger.Level(cfg.Logger.Level))
	appLogger := logger.New(cfg.App.Name)
	appLogger.Info("Starting document chat service...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Persistence.
	db, err := mysql.Connect(&cfg.MySQL)
	if err != nil {
		log.Fatalf("Failed to connect to MySQL: %v", err)
	}
	defer mysql.Close(db)
	if err := db.AutoMigrate(&models.Document{}, &models.Chat{}, &models.ChatMessage{}); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}
	documentDAL := dal.NewDocumentDAL(db)
	chatDAL := dal.NewChatDAL(db)

	// Vector index.
	var index vectorstore.Store
	switch cfg.VectorStore.Provider {
	case "milvus":
		milvusClient, err := milvus.Connect(ctx, &cfg.Milvus)
		if err != nil {
			log.Fatalf("Failed to connect to Milvus: %v", err)
		}
		defer milvusClient.Close()
		index, err = vectorstore.NewMilvusStore(ctx, milvusClient, cfg.Milvus.Collection, cfg.Milvus.Dim, logger.New("milvus"))
		if err != nil {
			log.Fatalf("Failed to set up Milvus collection: %v", err)
		}
	case "memory":
		appLogger.Warn("Using the in-memory vector store; the index is lost on restart")
		index = vectorstore.NewMemoryStore()
	default:
		log.Fatalf("Unknown vector store provider %q", cfg.VectorStore.Provider)
	}

	// Embeddings, optionally cached in Redis.
	embedder, err := newEmbedder(&cfg.Embedding)
	if err != nil {
		log.Fatalf("Failed to create embedding provider: %v", err)
	}
	if cfg.Redis.Enabled {
		rdb, err := redis.Connect(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
		ttl := time.Duration(cfg.Redis.TTLHours) * time.Hour
		embedder = embeddings.NewCachedProvider(embedder, rdb, cfg.Embedding.Model, ttl, logger.New("embedcache"))
	}

	// Generation.
	generator, err := newGenerator(&cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}

	// Uploaded file storage.
	var files storage.FileStore
	switch cfg.Upload.Provider {
	case "minio":
		minioClient, err := minio.Connect(ctx, &cfg.MinIO)
		if err != nil {
			log.Fatalf("Failed to connect to MinIO: %v", err)
		}
		files = storage.NewMinIOStore(minioClient, cfg.MinIO.Bucket)
	case "local":
		files, err = storage.NewLocalStore(cfg.Upload.Dir)
		if err != nil {
			log.Fatalf("Failed to set up local storage: %v", err)
		}
	default:
		log.Fatalf("Unknown upload provider %q", cfg.Upload.Provider)
	}

	// Pipelines and background ingestion.
	extractor := loaders.NewExtractor(logger.New("loaders"))
	splitter := splitters.NewParagraphSplitter(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	indexing := pipeline.NewIndexingPipeline(extractor, splitter, embedder, index, documentDAL, logger.New("indexing"))
	retrieval := pipeline.NewRetrievalPipeline(embedder, index, logger.New("retrieval"))

	ingestor := worker.NewIngestWorker(indexing, files, cfg.Upload.Workers, cfg.Upload.Queue, logger.New("ingestor"))
	ingestor.Start(ctx)
	defer ingestor.Close()

	// Services and HTTP API.
	documentService := service.NewDocumentService(documentDAL, files, index, ingestor, logger.New("documents"))
	chatService := service.NewChatService(chatDAL, retrieval, generator, cfg.RAG.TopK, logger.New("chat"))

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	handler.RegisterRoutes(router, handler.NewAPI(documentService, chatService, logger.New("api")))

	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	go func() {
		appLogger.Info(fmt.Sprintf("HTTP server listening on %s", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error(fmt.Sprintf("HTTP server error: %v", err))
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(fmt.Sprintf("HTTP shutdown error: %v", err))
	}
	appLogger.Info("Server stopped.")
}

func newEmbedder(cfg *config.EmbeddingConfig) (embeddings.Provider, error) {
	switch cfg.Provider {
	case "openai":
		return embeddings.NewOpenAIProvider(cfg.APIKey, cfg.Model), nil
	case "ollama":
		return embeddings.NewOllamaProvider(cfg.Model, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

func newGenerator(cfg *config.LLMConfig) (llm.LLM, error) {
	switch cfg.Provider {
	case "openai":
		return llm.NewOpenAI(cfg.Model, cfg.APIKey), nil
	case "ollama":
		return llm.NewOllama(cfg.Model, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
