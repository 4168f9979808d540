package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/gleeworld/course-api/internal/config"
	"github.com/gleeworld/course-api/internal/database"
	"github.com/gleeworld/course-api/internal/handler"
	"github.com/gleeworld/course-api/internal/middleware"
	"github.com/gleeworld/course-api/internal/models"
	"github.com/gleeworld/course-api/internal/repository"
	"github.com/gleeworld/course-api/internal/router"
	"github.com/gleeworld/course-api/internal/service"
	"github.com/gleeworld/course-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Assignment{},
		&models.RubricCriterion{},
		&models.JournalEntry{},
		&models.JournalGrade{},
		&models.JournalGradeHistory{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	natsConn, err := database.ConnectNATS(cfg.NATSUrl)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Drain()
	}

	grader, err := ai.NewOpenAIGrader(ai.OpenAIConfig{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.AIModel,
		Logger: logger,
	})
	if err != nil {
		log.Fatalf("failed to create grader: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	assignmentRepo := repository.NewAssignmentRepository(db)
	journalRepo := repository.NewJournalRepository(db)
	gradeRepo := repository.NewGradeRepository(db)

	guard := service.NewGradingGuard(redisClient, cfg.GuardTTL)
	gradeCache := service.NewGradeCache(redisClient, cfg.GradeCacheTTL, logger)
	events := service.NewEventPublisher(natsConn, logger)

	journalCfg := service.JournalConfig{MinWords: cfg.MinWords, MaxWords: cfg.MaxWords}
	journalService := service.NewJournalService(journalRepo, gradeRepo, assignmentRepo, validate, journalCfg, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, validate, logger)
	gradingService := service.NewGradingService(journalRepo, gradeRepo, assignmentRepo, grader, guard, gradeCache, events, cfg.GradingTimeout, logger)
	bulkService := service.NewBulkGradingService(gradingService, validate, logger)
	finalService := service.NewFinalGradeService(journalRepo, gradeRepo, gradeCache, events, validate, logger)

	journalHandler := handler.NewJournalHandler(journalService, logger)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, logger)
	gradingHandler := handler.NewGradingHandler(gradingService, bulkService, finalService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		ReadTimeout:  cfg.GradingTimeout,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AssignmentHandler: assignmentHandler,
		JournalHandler:    journalHandler,
		GradingHandler:    gradingHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
