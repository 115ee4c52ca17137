package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/zeu5/minesweeper-rl/minesweeper"
)

// Server exposes a Session over a JSON API
type Server struct {
	Addr    string
	session *Session
	server  *http.Server
}

func New(addr string, session *Session) *Server {
	s := &Server{
		Addr:    addr,
		session: session,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/state", s.handleState)
	r.POST("/reset", s.handleReset)
	r.POST("/step", s.handleStep)
	r.POST("/agent/step", s.handleAgentStep)
	r.GET("/stats", s.handleStats)

	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Run serves until the context is cancelled
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.Addr).Str("session", s.session.ID).Msg("starting play server")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	log.Info().Msg("shutting down play server")
	return s.server.Shutdown(shutdownCtx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

type stateResponse struct {
	Session string   `json:"session"`
	Height  int      `json:"height"`
	Width   int      `json:"width"`
	Board   []string `json:"board"`
	Hidden  int      `json:"hidden"`
}

func (s *Server) stateResponse(state *minesweeper.State) stateResponse {
	return stateResponse{
		Session: s.session.ID,
		Height:  state.Height(),
		Width:   state.Width(),
		Board:   strings.Split(strings.TrimSuffix(state.String(), "\n"), "\n"),
		Hidden:  state.Hidden(),
	}
}

type stepRequest struct {
	Row *int `json:"row" binding:"required"`
	Col *int `json:"col" binding:"required"`
}

type stepResponse struct {
	*StepResult
	State stateResponse `json:"state"`
}

func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, s.stateResponse(s.session.State()))
}

func (s *Server) handleReset(c *gin.Context) {
	c.JSON(http.StatusOK, s.stateResponse(s.session.Reset()))
}

func (s *Server) handleStep(c *gin.Context) {
	req := stepRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expected {\"row\": int, \"col\": int}"})
		return
	}
	result, err := s.session.Step(*req.Row, *req.Col)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stepResponse{StepResult: result, State: s.stateResponse(result.State)})
}

func (s *Server) handleAgentStep(c *gin.Context) {
	result, err := s.session.AgentStep()
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stepResponse{StepResult: result, State: s.stateResponse(result.State)})
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.session.Stats())
}
