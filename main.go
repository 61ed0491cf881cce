package main

import (
	"fmt"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"pd-care-server/internal/config"
	"pd-care-server/internal/logger"
	"pd-care-server/internal/models"
	"pd-care-server/internal/notify"
	"pd-care-server/internal/routes"
	"pd-care-server/internal/schedule"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer zapLogger.Sync()

	// Initialize database connection
	db, err := models.InitDB(models.DatabaseConfig{DSN: cfg.Database.DSN})
	if err != nil {
		zapLogger.Fatal("connect database", zap.Error(err))
	}

	// Notification channels: in-app rows always, mail queue when the
	// broker is reachable.
	channels := notify.Multi{notify.NewDatabase(db)}
	amqpConn, err := amqp091.Dial(cfg.Mailer.AMQPURL)
	if err != nil {
		zapLogger.Warn("mail queue unavailable, email notifications disabled", zap.Error(err))
	} else {
		mailQueue, err := notify.NewMailQueue(amqpConn, cfg.Mailer.Queue, cfg.Mailer.StaffInbox)
		if err != nil {
			zapLogger.Fatal("open mail queue channel", zap.Error(err))
		}
		channels = append(channels, mailQueue)
	}

	scheduler := schedule.NewService(db, schedule.SystemClock{}, channels, zapLogger, schedule.Config{
		DailyLimit:        cfg.Schedule.DailyLimit,
		ConfirmWindowDays: cfg.Schedule.ConfirmWindowDays,
		Cadence: schedule.Cadence{
			IntervalDays: cfg.Schedule.CadenceDays,
			HorizonDays:  cfg.Schedule.HorizonDays,
		},
	})

	// Initialize Gin router
	router := gin.Default()

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Set up routes
	routes.SetupRoutes(router, db, cfg, scheduler)

	// Start server
	serverAddr := fmt.Sprintf(":%s", cfg.Port)
	zapLogger.Info("server starting", zap.String("port", cfg.Port))
	if err := router.Run(serverAddr); err != nil {
		zapLogger.Fatal("start server", zap.Error(err))
	}
}
