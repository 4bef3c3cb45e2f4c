package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/food-ordering-app/config"
	"github.com/yeremiapane/food-ordering-app/database"
	"github.com/yeremiapane/food-ordering-app/events"
	"github.com/yeremiapane/food-ordering-app/hub"
	"github.com/yeremiapane/food-ordering-app/router"
	"github.com/yeremiapane/food-ordering-app/services"
	"github.com/yeremiapane/food-ordering-app/utils"
	"gorm.io/gorm"
)

// newPublisher memilih broker event sesuai EVENT_BROKER
func newPublisher(cfg *config.Config) events.Publisher {
	switch cfg.EventBroker {
	case "rabbitmq":
		conn, err := events.DialRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			utils.ErrorLogger.Errorf("RabbitMQ unavailable, order events disabled: %v", err)
			return events.NoopPublisher{}
		}
		utils.InfoLogger.Info("Publishing order events to RabbitMQ")
		return events.NewRabbitMQPublisher(conn, events.DefaultExchange)
	case "kafka":
		utils.InfoLogger.WithField("topic", cfg.KafkaTopic).Info("Publishing order events to Kafka")
		return events.NewKafkaPublisher(events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
	default:
		return events.NoopPublisher{}
	}
}

// newNotifier: email, broker event dan live feed admin untuk setiap perubahan order
func newNotifier(cfg *config.Config, db *gorm.DB, publisher events.Publisher, liveHub *hub.Hub) services.Notifier {
	return services.MultiNotifier{
		services.NewEmailService(db, cfg.SMTP, cfg.PublicBaseURL),
		events.NewNotifier(publisher),
		liveHub,
	}
}

func main() {
	cfg := config.Load()
	utils.InitLoggerWith(cfg.LogLevel, cfg.LogFormat)
	utils.ConfigureJWT(cfg.JWTSecret, cfg.JWTTTL)

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize DB
	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
	if err := database.SeedFile(db, cfg.SeedFile); err != nil {
		utils.ErrorLogger.Errorf("Seeding failed: %v", err)
	}

	rdb, err := config.InitRedis(context.Background(), cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to redis: %v", err)
	}
	defer rdb.Close()

	publisher := newPublisher(cfg)
	defer publisher.Close()

	liveHub := hub.New()
	r := router.SetupRouter(router.NewServices(cfg, db, rdb, liveHub, newNotifier(cfg, db, publisher, liveHub)))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	<-ctx.Done()
	utils.InfoLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.Errorf("Server forced to shutdown: %v", err)
	}
}
