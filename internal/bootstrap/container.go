package bootstrap

import (
	"context"
	"errors"
	"log"

	"grant-assistant-be/internal/config"
	"grant-assistant-be/internal/controller"
	"grant-assistant-be/internal/pkg/logger"
	"grant-assistant-be/internal/repository/contract"
	"grant-assistant-be/internal/repository/implementation"
	"grant-assistant-be/internal/repository/memory"
	"grant-assistant-be/internal/service"
	"grant-assistant-be/pkg/engine/catalog"
	"grant-assistant-be/pkg/engine/followup"
	"grant-assistant-be/pkg/engine/policy"
	"grant-assistant-be/pkg/engine/rubric"
	"grant-assistant-be/pkg/engine/subsidy"
	"grant-assistant-be/pkg/llm"
	"grant-assistant-be/pkg/llm/factory"

	pktNats "grant-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

const turnAuditTopic = "turn_audit"

type Container struct {
	// Controllers
	InterviewController controller.IInterviewController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger

	closers []func()
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	auditLogger := logger.NewIsolatedLogger(cfg.App.AuditLogFilePath)
	c := &Container{Logger: sysLogger}
	c.closers = append(c.closers, func() { _ = auditLogger.Sync() })

	// 2. Engine configuration. A broken rubric or catalog is fatal at startup.
	rb := rubric.Default()
	if cfg.Engine.RubricPath != "" {
		loaded, err := rubric.Load(cfg.Engine.RubricPath)
		if err != nil {
			log.Fatalf("[FATAL] Failed to load rubric %s: %v", cfg.Engine.RubricPath, err)
		}
		rb = loaded
	}

	var cat *catalog.Catalog
	var err error
	if cfg.Engine.CatalogPath != "" {
		cat, err = catalog.Load(cfg.Engine.CatalogPath)
	} else {
		cat, err = catalog.Default()
	}
	if err != nil {
		log.Fatalf("[FATAL] Failed to load question catalog: %v", err)
	}
	log.Printf("[INFO] Loaded rubric %s and catalog with %d questions", rb.Version, len(cat.Graph.Nodes()))

	// 3. Deep-dive generation
	var llmProvider llm.LLMProvider
	llmProvider, err = factory.NewLLMProvider(factory.Config{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		BaseURL:  cfg.Ai.OllamaBaseURL,
		APIKey:   cfg.Ai.HuggingFaceAPIKey,
	})
	switch {
	case errors.Is(err, factory.ErrDisabled):
		log.Printf("[INFO] LLM provider disabled, deep-dive questions are off")
		llmProvider = nil
	case err != nil:
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	default:
		log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	}
	followups := service.InstrumentSource(followup.NewGenerator(llmProvider, cfg.Ai.DeepDiveTimeout))

	engine := policy.New(cat, rb, followups, sysLogger, policy.Config{
		MaxQuestions:           cfg.Engine.MaxQuestions,
		MaxDeepDivePerQuestion: cfg.Engine.MaxDeepDivePerQuestion,
	})
	calculator := subsidy.NewCalculator(rb.Budget)

	// 4. Interview storage
	var repo contract.InterviewRepository
	if cfg.Session.Store == "redis" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		c.closers = append(c.closers, func() { _ = rdb.Close() })
		repo = implementation.NewInterviewRepository(rdb, cfg.Session.TTL)
		log.Printf("[INFO] Interview store: redis")
	} else {
		repo = memory.NewInterviewRepository(cfg.Session.TTL)
		log.Printf("[INFO] Interview store: memory")
	}

	// 5. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })
	auditPublisher := service.NewPublisherService(turnAuditTopic, pubSub)
	c.ConsumerService = service.NewConsumerService(pubSub, turnAuditTopic, auditLogger)

	var eventPublisher service.EventPublisher
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			eventPublisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	// 6. Services and controllers
	interviewService := service.NewInterviewService(repo, engine, calculator, auditPublisher, eventPublisher, sysLogger)
	c.InterviewController = controller.NewInterviewController(interviewService)

	return c
}

// Close releases connections in reverse order of creation
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
