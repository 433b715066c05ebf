package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	authUsecase "taskup-backend/internal/auth/usecase"
	boardDelivery "taskup-backend/internal/board/delivery"
	boardUsecase "taskup-backend/internal/board/usecase"
	"taskup-backend/pkg/config"
	"taskup-backend/pkg/metrics"
	"taskup-backend/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

type Handler struct {
	authUsecase   authUsecase.AuthUsecase
	boardHandler  *boardDelivery.BoardHandler
	taskHandler   *boardDelivery.TaskHandler
	memberHandler *boardDelivery.MemberHandler
	joinLimiter   ratelimit.Limiter
	config        *config.Config
}

func NewHandler(
	authUc authUsecase.AuthUsecase,
	boardUc boardUsecase.BoardUsecase,
	taskUc boardUsecase.TaskUsecase,
	memberUc boardUsecase.MemberUsecase,
	joinLimiter ratelimit.Limiter,
	cfg *config.Config,
) *Handler {
	return &Handler{
		authUsecase:   authUc,
		boardHandler:  boardDelivery.NewBoardHandler(boardUc),
		taskHandler:   boardDelivery.NewTaskHandler(taskUc),
		memberHandler: boardDelivery.NewMemberHandler(memberUc),
		joinLimiter:   joinLimiter,
		config:        cfg,
	}
}

// Router builds the engine with the global middleware stack and every route
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(metrics.MetricsMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     h.config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if h.config.MaxUploadBytes > 0 {
		// room for the multipart envelope around the file
		r.MaxMultipartMemory = h.config.MaxUploadBytes + 1<<20
	}

	SetupRoutes(r, h)
	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (h *Handler) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
