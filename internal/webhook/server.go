// Package webhook is the inbound transport: it authenticates Telegram
// webhook calls, decodes one update per invocation and maps the
// orchestrator's result to an HTTP status.
package webhook

import (
	"context"
	"crypto/subtle"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"chat-relay/internal/telegram"
)

// secretHeader is the header Telegram echoes back when the webhook was
// registered with a secret token.
const secretHeader = "X-Telegram-Bot-Api-Secret-Token"

type Handler interface {
	HandleUpdate(ctx context.Context, inv telegram.Invocation, update tgbotapi.Update) error
}

type Server struct {
	engine  *gin.Engine
	handler Handler
	secret  string
	timeout time.Duration
	version string
	now     func() time.Time
}

func New(secret string, timeout time.Duration, version string, h Handler) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:  engine,
		handler: h,
		secret:  secret,
		timeout: timeout,
		version: version,
		now:     time.Now,
	}

	engine.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	engine.POST("/telegram/webhook", s.authenticate, s.handleUpdate)
	return s
}

// authenticate rejects requests whose secret token does not match before
// anything reaches the orchestrator.
func (s *Server) authenticate(c *gin.Context) {
	got := c.GetHeader(secretHeader)
	if subtle.ConstantTimeCompare([]byte(got), []byte(s.secret)) != 1 {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	c.Next()
}

func (s *Server) handleUpdate(c *gin.Context) {
	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		log.Printf("failed to decode update: %v", err)
		c.String(http.StatusBadRequest, "Failure")
		return
	}

	started := s.now()
	inv := telegram.Invocation{
		ID:        uuid.NewString(),
		StartedAt: started,
		Deadline:  started.Add(s.timeout),
		Version:   s.version,
	}

	ctx, cancel := context.WithDeadline(c.Request.Context(), inv.Deadline)
	defer cancel()

	if err := s.handler.HandleUpdate(ctx, inv, update); err != nil {
		log.Printf("invocation %s failed: %v", inv.ID, err)
		c.String(http.StatusInternalServerError, "Failure")
		return
	}
	c.String(http.StatusOK, "Success")
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("webhook listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
