package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"bidpilot_backend/internal/composer"
	"bidpilot_backend/internal/config"
	"bidpilot_backend/internal/discovery"
	"bidpilot_backend/internal/email"
	"bidpilot_backend/internal/handlers"
	"bidpilot_backend/internal/logger"
	"bidpilot_backend/internal/middleware"
	"bidpilot_backend/internal/models"
	"bidpilot_backend/internal/repositories"
	"bidpilot_backend/internal/routes"
	"bidpilot_backend/internal/services"
	"bidpilot_backend/internal/validator"
	"bidpilot_backend/internal/workers"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := seedFirstAdmin(gormDB); err != nil {
		// Без первого админа модерация недоступна - не запускаем сервер
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	ginRouter, worker := SetupRouter(cfg, gormDB)
	worker.Start(context.Background())

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("🚀 Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// SetupRouter собирает весь стек приложения и возвращает готовый gin.Engine
// вместе с discovery-воркером (его Start вызывает владелец).
func SetupRouter(cfg *config.Config, gormDB *gorm.DB) (*gin.Engine, *workers.DiscoveryWorker) {
	// 1. Инициализируем сервисы
	serviceContainer := initializeServices(cfg)

	// 2. Инициализируем discovery-воркер
	rescanInterval := time.Duration(cfg.Discovery.RescanMinutes) * time.Minute
	worker := workers.NewDiscoveryWorker(gormDB, serviceContainer.DiscoveryService, rescanInterval)

	// 3. Инициализируем хэндлеры
	appHandlers := initializeHandlers(serviceContainer, worker)

	// 4. Инициализируем Gin
	ginRouter := initializeGinRouter(gormDB)

	// 5. Делегируем регистрацию маршрутов пакету 'routes'
	routes.RegisterRoutes(ginRouter, appHandlers)

	return ginRouter, worker
}

func initializeServices(cfg *config.Config) *services.ServiceContainer {
	var emailService email.Provider
	if cfg.Email.SMTPHost == "" || cfg.Server.Env != "production" {
		logger.Warn("--- Email-сервис отключен. Используется MOCK. ---")
		emailService = &MockEmailProvider{}
	} else {
		emailService = email.NewGomailProvider(cfg)
	}

	// --- Инициализация репозиториев ---
	userRepo := repositories.NewUserRepository()
	tenderRepo := repositories.NewTenderRepository()
	responseRepo := repositories.NewResponseRepository()
	commentRepo := repositories.NewCommentRepository()

	// --- Discovery-компоненты ---
	scrapers := []discovery.Scraper{discovery.NewMockPortalScraper()}
	matcher := discovery.NewKeywordMatcher(cfg.Discovery.PreferredDomains)
	responseComposer := composer.NewTemplateComposer(cfg.Generation.CompanyName)

	// --- Инициализация сервисов ---
	authService := services.NewAuthService(userRepo, emailService)
	discoveryService := services.NewDiscoveryService(tenderRepo, scrapers, matcher)
	responseService := services.NewResponseService(responseRepo, tenderRepo, userRepo, responseComposer, emailService)
	commentService := services.NewCommentService(commentRepo, responseRepo)

	return &services.ServiceContainer{
		AuthService:      authService,
		DiscoveryService: discoveryService,
		ResponseService:  responseService,
		CommentService:   commentService,
		EmailService:     emailService,
	}
}

func initializeHandlers(services *services.ServiceContainer, worker *workers.DiscoveryWorker) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		Auth:      handlers.NewAuthHandler(baseHandler, services.AuthService),
		Discovery: handlers.NewDiscoveryHandler(baseHandler, services.DiscoveryService, worker),
		Response:  handlers.NewResponseHandler(baseHandler, services.ResponseService, services.CommentService),
	}
}

func initializeGinRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DBMiddleware(db))
	return router
}

func seedFirstAdmin(db *gorm.DB) error {
	adminEmail := os.Getenv("FIRST_ADMIN_EMAIL")
	adminPassword := os.Getenv("FIRST_ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	tx := db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer tx.Rollback()

	var adminUser models.User
	result := tx.Where("email = ?", adminEmail).First(&adminUser)

	if result.Error == nil {
		logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
		tx.Rollback()
		return nil
	}

	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", result.Error)
	}

	logger.Warn("No admin user found with specified email. Creating first admin...", "email", adminEmail)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	newAdmin := &models.User{
		Email:        adminEmail,
		PasswordHash: string(hashedPassword),
		FullName:     "Platform Administrator",
		Role:         models.UserRoleAdmin,
		TenantID:     os.Getenv("FIRST_ADMIN_TENANT"),
		IsActive:     true,
	}

	if err := tx.Create(newAdmin).Error; err != nil {
		return fmt.Errorf("failed to create admin user in database: %w", err)
	}

	logger.Info("✅ Successfully created first admin user", "email", adminEmail)

	return tx.Commit().Error
}
