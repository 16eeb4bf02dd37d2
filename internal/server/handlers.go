package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"diskscope/internal/services"
)

var errPathRequired = errors.New("path is required")

type pathRequest struct {
	Path string `json:"path"`
}

func queryPath(c *fiber.Ctx) (string, error) {
	path := strings.TrimSpace(c.Query("path"))
	if path == "" {
		return "", errPathRequired
	}
	return path, nil
}

func bodyPath(c *fiber.Ctx) (string, error) {
	var req pathRequest
	if err := c.BodyParser(&req); err != nil {
		return "", fmt.Errorf("invalid body: %w", err)
	}
	if strings.TrimSpace(req.Path) == "" {
		return "", errPathRequired
	}
	return req.Path, nil
}

func parseScanRequest(c *fiber.Ctx) (services.ScanRequest, error) {
	var req services.ScanRequest
	if err := c.BodyParser(&req); err != nil {
		return req, fmt.Errorf("invalid body: %w", err)
	}
	if strings.TrimSpace(req.RootPath) == "" {
		return req, errPathRequired
	}
	if req.MaxDepth != nil && *req.MaxDepth < 0 {
		req.MaxDepth = nil
	}
	return req, nil
}

// beginScan starts a scan in the background and returns its session id.
func (server *Server) beginScan(c *fiber.Ctx) error {
	req, err := parseScanRequest(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err)
	}
	session, err := server.scanner.Begin(req)
	if err != nil {
		status := fiber.StatusBadRequest
		if errors.Is(err, services.ErrScanInProgress) {
			status = fiber.StatusConflict
		}
		return fail(c, status, err)
	}
	server.track(session)
	go func() {
		_, _ = session.Run(context.Background())
		server.expire(session)
	}()
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success":  true,
		"id":       session.ID,
		"root":     session.Root,
		"progress": session.Progress(),
	})
}

func (server *Server) sessionParam(c *fiber.Ctx) (*services.ScanSession, error) {
	id := c.Params("id")
	session := server.lookup(id)
	if session == nil {
		return nil, fmt.Errorf("%w: %s", services.ErrSessionNotFound, id)
	}
	return session, nil
}

func (server *Server) scanStatus(c *fiber.Ctx) error {
	session, err := server.sessionParam(c)
	if err != nil {
		return fail(c, fiber.StatusNotFound, err)
	}
	body := fiber.Map{
		"id":       session.ID,
		"root":     session.Root,
		"progress": session.Progress(),
	}
	select {
	case <-session.Done():
		tree, err := session.Wait(c.UserContext())
		if err != nil {
			return c.JSON(fiber.Map{
				"success":  false,
				"id":       session.ID,
				"progress": session.Progress(),
				"error":    err.Error(),
			})
		}
		body["tree"] = tree
	default:
	}
	return ok(c, body)
}

func (server *Server) cancelSession(c *fiber.Ctx) error {
	session, err := server.sessionParam(c)
	if err != nil {
		return fail(c, fiber.StatusNotFound, err)
	}
	session.Cancel()
	return ok(c, fiber.Map{"progress": session.Progress()})
}

// forgetSession drops a session from the server, cancelling it if it is
// still running.
func (server *Server) forgetSession(c *fiber.Ctx) error {
	session, err := server.sessionParam(c)
	if err != nil {
		return fail(c, fiber.StatusNotFound, err)
	}
	session.Cancel()
	server.forget(session)
	return ok(c, nil)
}

func (server *Server) upgradeSession(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	session, err := server.sessionParam(c)
	if err != nil {
		return fail(c, fiber.StatusNotFound, err)
	}
	c.Locals("session", session)
	return c.Next()
}

func (server *Server) upgradeRoot(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	root, err := queryPath(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err)
	}
	session := server.scanner.Session(root)
	if session == nil {
		return fail(c, fiber.StatusNotFound, fmt.Errorf("%w: %s", services.ErrSessionNotFound, root))
	}
	c.Locals("session", session)
	return c.Next()
}

// streamProgress writes every snapshot of one session and closes once the
// terminal snapshot has been sent.
func (server *Server) streamProgress(conn *websocket.Conn) {
	defer conn.Close()
	session, _ := conn.Locals("session").(*services.ScanSession)
	if session == nil {
		return
	}
	events, unsubscribe := session.Subscribe()
	defer unsubscribe()

	for snapshot := range events {
		if err := conn.WriteJSON(snapshot); err != nil {
			server.log.Debug().Err(err).Str("session", session.ID).Msg("progress stream closed by peer")
			return
		}
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "scan finished"))
}

func (server *Server) upgradeDeletions(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if _, ok := server.actions.(services.DeleteResultProvider); !ok {
		return fail(c, fiber.StatusNotImplemented, errors.New("deletion results not published"))
	}
	return c.Next()
}

// streamDeletions writes the result of every delete made after the client
// connected, until the client goes away.
func (server *Server) streamDeletions(conn *websocket.Conn) {
	provider := server.actions.(services.DeleteResultProvider)
	results, unsubscribe := provider.Subscribe()
	defer unsubscribe()

	peerGone := make(chan struct{})
	go func() {
		defer close(peerGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				unsubscribe()
				return
			}
		}
	}()

	for result := range results {
		if err := conn.WriteJSON(result); err != nil {
			server.log.Debug().Err(err).Msg("deletion stream closed by peer")
			break
		}
	}
	_ = conn.Close()
	<-peerGone
}

// startScan runs a scan to completion within the request.
func (server *Server) startScan(c *fiber.Ctx) error {
	req, err := parseScanRequest(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err)
	}
	root, err := server.scanner.StartScan(c.UserContext(), req)
	if err != nil {
		return c.JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	return ok(c, fiber.Map{"root": root})
}

func (server *Server) cancelScan(c *fiber.Ctx) error {
	path, err := bodyPath(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err)
	}
	return c.JSON(server.scanner.CancelScan(path))
}

func (server *Server) association(c *fiber.Ctx) error {
	path, err := queryPath(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err)
	}
	return ok(c, fiber.Map{"association": server.assessor.Associate(path)})
}

func (server *Server) assessment(c *fiber.Ctx) error {
	path, err := queryPath(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err)
	}
	return ok(c, fiber.Map{"assessment": server.assessor.Assess(path)})
}

func (server *Server) fileDetails(c *fiber.Ctx) error {
	path, err := queryPath(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err)
	}
	details, err := server.details(path)
	if err != nil {
		return c.JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	return ok(c, fiber.Map{"details": details})
}

func (server *Server) previewDelete(c *fiber.Ctx) error {
	var req services.DeleteRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
	}
	previewer, supported := server.actions.(services.ActionPreviewer)
	if !supported {
		return fail(c, fiber.StatusNotImplemented, errors.New("delete preview not supported"))
	}
	preview, err := previewer.Preview(c.UserContext(), req.Paths)
	if err != nil {
		return c.JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	return ok(c, fiber.Map{"preview": preview})
}

func (server *Server) deleteFiles(c *fiber.Ctx) error {
	var req services.DeleteRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
	}
	if len(req.Paths) == 0 {
		return fail(c, fiber.StatusBadRequest, errors.New("paths are required"))
	}
	result := server.actions.Delete(c.UserContext(), req)
	return c.JSON(fiber.Map{"success": result.Success, "result": result})
}

func (server *Server) openPath(c *fiber.Ctx) error {
	path, err := bodyPath(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err)
	}
	if err := server.open(path); err != nil {
		return c.JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	return ok(c, nil)
}
