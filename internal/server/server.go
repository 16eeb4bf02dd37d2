package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"diskscope/internal/domain"
	"diskscope/internal/services"
)

const (
	shutdownTimeout = 5 * time.Second
	// sessionRetention is how long a finished background scan stays
	// readable before it is dropped.
	sessionRetention = 10 * time.Minute
)

// Coordinator is the scan side of the API.
type Coordinator interface {
	services.Scanner
	StartScan(ctx context.Context, req services.ScanRequest) (*domain.FileSystemNode, error)
	Session(root string) *services.ScanSession
}

// Server exposes scans, classification and deletion over HTTP. Scan
// progress is streamed over a websocket per session.
type Server struct {
	scanner  Coordinator
	actions  services.Actions
	assessor services.Assessor
	open     func(path string) error
	details  func(path string) (domain.FileDetails, error)
	log      zerolog.Logger

	mu        sync.Mutex
	sessions  map[string]*services.ScanSession
	retention time.Duration

	app *fiber.App
}

func New(scanner Coordinator, actions services.Actions, assessor services.Assessor, log zerolog.Logger) *Server {
	server := &Server{
		scanner:   scanner,
		actions:   actions,
		assessor:  assessor,
		open:      services.OpenInFileManager,
		details:   services.FileDetails,
		log:       log,
		sessions:  make(map[string]*services.ScanSession),
		retention: sessionRetention,
	}
	server.app = fiber.New(fiber.Config{
		AppName:               "diskscope",
		DisableStartupMessage: true,
		ErrorHandler:          server.handleError,
	})
	server.routes()
	return server
}

// WithOpener replaces the file manager integration.
func (server *Server) WithOpener(open func(path string) error) *Server {
	server.open = open
	return server
}

func (server *Server) App() *fiber.App {
	return server.app
}

// Listen serves addr until ctx is done, then shuts down gracefully.
func (server *Server) Listen(ctx context.Context, addr string) error {
	errs := make(chan error, 1)
	go func() {
		server.log.Info().Str("addr", addr).Msg("listening")
		errs <- server.app.Listen(addr)
	}()
	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		server.log.Info().Msg("shutting down")
		server.cancelAll()
		return server.app.ShutdownWithTimeout(shutdownTimeout)
	}
}

func (server *Server) routes() {
	api := server.app.Group("/api")

	api.Post("/scans", server.beginScan)
	api.Get("/scans/:id", server.scanStatus)
	api.Post("/scans/:id/cancel", server.cancelSession)
	api.Delete("/scans/:id", server.forgetSession)
	api.Get("/scans/:id/progress", server.upgradeSession, websocket.New(server.streamProgress))

	api.Post("/scan", server.startScan)
	api.Post("/cancel", server.cancelScan)
	api.Get("/progress", server.upgradeRoot, websocket.New(server.streamProgress))

	api.Get("/association", server.association)
	api.Get("/assessment", server.assessment)
	api.Get("/details", server.fileDetails)
	api.Post("/delete/preview", server.previewDelete)
	api.Post("/delete", server.deleteFiles)
	api.Get("/deletions", server.upgradeDeletions, websocket.New(server.streamDeletions))
	api.Post("/open", server.openPath)
}

func (server *Server) handleError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status = fiberErr.Code
	}
	if status >= fiber.StatusInternalServerError {
		server.log.Error().Err(err).Str("route", c.Path()).Msg("request failed")
	}
	return fail(c, status, err)
}

func ok(c *fiber.Ctx, body fiber.Map) error {
	if body == nil {
		body = fiber.Map{}
	}
	body["success"] = true
	return c.JSON(body)
}

func fail(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}

func (server *Server) track(session *services.ScanSession) {
	server.mu.Lock()
	defer server.mu.Unlock()
	server.sessions[session.ID] = session
}

// expire drops session once the retention window after its run has passed.
func (server *Server) expire(session *services.ScanSession) {
	time.AfterFunc(server.retention, func() {
		server.forget(session)
		server.log.Debug().Str("session", session.ID).Msg("scan session expired")
	})
}

func (server *Server) forget(session *services.ScanSession) {
	server.mu.Lock()
	defer server.mu.Unlock()
	if server.sessions[session.ID] == session {
		delete(server.sessions, session.ID)
	}
}

func (server *Server) lookup(id string) *services.ScanSession {
	server.mu.Lock()
	defer server.mu.Unlock()
	return server.sessions[id]
}

func (server *Server) cancelAll() {
	server.mu.Lock()
	defer server.mu.Unlock()
	for _, session := range server.sessions {
		session.Cancel()
	}
}
