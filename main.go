package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	api "taskup-backend/cmd/api"
	authRepo "taskup-backend/internal/auth/repository"
	authUsecase "taskup-backend/internal/auth/usecase"
	boardRepo "taskup-backend/internal/board/repository"
	"taskup-backend/internal/board/scheduler"
	boardUsecase "taskup-backend/internal/board/usecase"
	"taskup-backend/internal/notification"
	"taskup-backend/pkg/config"
	"taskup-backend/pkg/database"
	"taskup-backend/pkg/fcm"
	"taskup-backend/pkg/mailer"
	"taskup-backend/pkg/ratelimit"
	"taskup-backend/pkg/storage"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "taskup-backend",
	Short: "TaskUp board service",
	Long:  `HTTP API for shared Kanban boards: membership, join codes, ordered columns and tasks.`,
	RunE:  runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Migrate the database and start the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := openDatabase(config.Load())
		if err != nil {
			return err
		}
		log.Println("Database migrated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.NewConnection(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := authRepo.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate identity tables: %w", err)
	}
	if err := boardRepo.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate board tables: %w", err)
	}
	return db, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}

	// Initialize repositories (dependency injection)
	userRepo := authRepo.NewUserRepository(db)
	fcmTokenRepo := authRepo.NewFCMTokenRepository(db)
	repos := boardRepo.NewRepositories(db)

	store, err := storage.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize attachment storage: %w", err)
	}

	mail, err := mailer.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize mailer: %w", err)
	}
	log.Printf("[Mailer] Using %s transport", cfg.MailTransport)

	dispatcher := notification.NewDispatcher(mail, cfg.NotifyWorkers, cfg.NotifyQueueSize)
	// FCM is optional, email still goes out without it
	if cfg.FirebaseCredentials != "" {
		fcmClient, err := fcm.NewClient(ctx, cfg.FirebaseCredentials)
		if err != nil {
			log.Printf("[WARN] Failed to initialize FCM client (push notifications disabled): %v", err)
		} else {
			dispatcher.SetPusher(fcmClient, fcmTokenRepo)
		}
	}
	dispatcher.Start()
	defer dispatcher.Stop()

	// Initialize use cases
	authUc := authUsecase.NewAuthUsecase(userRepo, fcmTokenRepo, cfg)
	membership := boardUsecase.NewMembershipUsecase(repos, authUc)
	ordering := boardUsecase.NewOrderingUsecase(repos, cfg)
	boardUc := boardUsecase.NewBoardUsecase(repos, membership, ordering, store)
	taskUc := boardUsecase.NewTaskUsecase(repos, membership, ordering, authUc, dispatcher, store, cfg)
	memberUc := boardUsecase.NewMemberUsecase(repos, membership, authUc, dispatcher, cfg)

	reminders := scheduler.NewTaskReminderScheduler(repos.Tasks, dispatcher, cfg.AppURL, cfg.ReminderInterval, cfg.ReminderLeadTime)
	reminders.Start()
	defer reminders.Stop()

	handler := api.NewHandler(authUc, boardUc, taskUc, memberUc, newJoinLimiter(ctx, cfg), cfg)
	return handler.Start(ctx, ":"+cfg.Port)
}

// newJoinLimiter shares the budget through redis when REDIS_ADDR is set
func newJoinLimiter(ctx context.Context, cfg *config.Config) ratelimit.Limiter {
	if cfg.RedisAddr == "" {
		return ratelimit.New(nil, cfg.JoinRateLimit, cfg.JoinRateWindow)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("[WARN] Redis unavailable at %s, using in-process rate limiting: %v", cfg.RedisAddr, err)
		_ = client.Close()
		return ratelimit.New(nil, cfg.JoinRateLimit, cfg.JoinRateWindow)
	}
	log.Printf("[RateLimit] Using redis at %s", cfg.RedisAddr)
	return ratelimit.New(client, cfg.JoinRateLimit, cfg.JoinRateWindow)
}
