// Package httpapi exposes the authentication and item operations over HTTP
// using gin. It owns routing, request decoding, the bearer-token middleware
// and the translation of service errors into status codes.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dsavelev/sessiond/internal/logging"
	"github.com/dsavelev/sessiond/internal/server/models"
	"github.com/dsavelev/sessiond/internal/server/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SessionManager is the slice of the session service the HTTP layer needs.
type SessionManager interface {
	Register(ctx context.Context, username, email, password string) error
	Login(ctx context.Context, username, password string) (*services.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*services.AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error
	VerifySubject(tokenString string) (string, error)
}

// ItemManager is the slice of the item service the HTTP layer needs.
type ItemManager interface {
	List(ctx context.Context, search string, page, size int) (*services.ItemPage, error)
	Get(ctx context.Context, id int64) (*models.Item, error)
	Create(ctx context.Context, username string, in services.ItemInput) (*models.Item, error)
	Update(ctx context.Context, username string, id int64, in services.ItemInput) (*models.Item, error)
	Delete(ctx context.Context, username string, id int64) error
}

type HTTPServer struct {
	address     string
	logger      logging.Logger
	sessions    SessionManager
	items       ItemManager
	corsOrigins []string
}

func NewHTTPServer(a string, l logging.Logger, ss SessionManager, is ItemManager, corsOrigins []string) (*HTTPServer, error) {
	return &HTTPServer{
		address:     a,
		logger:      l.With("module", "http_server"),
		sessions:    ss,
		items:       is,
		corsOrigins: corsOrigins,
	}, nil
}

// router assembles the gin engine with middleware and all routes.
func (s *HTTPServer) router() *gin.Engine {
	r := gin.New()
	r.Use(s.requestLogger())
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.corsOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	r.POST("/auth/register", s.register)
	r.POST("/auth/login", s.login)
	r.POST("/auth/refresh", s.refresh)
	r.POST("/auth/logout", s.logout)

	items := r.Group("/items")
	items.Use(s.bearerAuth())
	{
		items.GET("", s.listItems)
		items.GET("/:id", s.getItem)
		items.POST("", s.createItem)
		items.PUT("/:id", s.updateItem)
		items.DELETE("/:id", s.deleteItem)
	}

	return r
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
