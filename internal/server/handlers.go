package server

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nahidnstu12/team-docs-sub001/internal/document"
	"github.com/nahidnstu12/team-docs-sub001/internal/editor"
	"github.com/nahidnstu12/team-docs-sub001/internal/export"
)

// CreatePageRequest is the body of POST /api/pages. A missing document
// creates a blank page.
type CreatePageRequest struct {
	Title string          `json:"title" validate:"pagetitle"`
	Doc   json.RawMessage `json:"doc,omitempty"`
}

// PageResponse is a page with its document.
type PageResponse struct {
	ID      string          `json:"id"`
	Title   string          `json:"title"`
	Version uint64          `json:"version"`
	Doc     json.RawMessage `json:"doc"`
}

// SessionResponse describes a new session.
type SessionResponse struct {
	Session  string          `json:"session"`
	PageID   string          `json:"page_id"`
	Snapshot editor.Snapshot `json:"snapshot"`
}

// SaveResponse reports a save.
type SaveResponse struct {
	PageID  string `json:"page_id"`
	Version uint64 `json:"version"`
}

func bindValid(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return err
	}
	return c.Validate(v)
}

func (s *Server) createPage(c echo.Context) error {
	var req CreatePageRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	payload := []byte(req.Doc)
	if len(bytes.TrimSpace(payload)) == 0 {
		blank, err := document.Blank().MarshalJSON()
		if err != nil {
			return err
		}
		payload = blank
	}
	page, err := s.pages.Create(c.Request().Context(), req.Title, payload)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, PageResponse{ID: page.ID, Title: page.Title, Version: page.Version, Doc: page.Payload})
}

func (s *Server) listPages(c echo.Context) error {
	pages, err := s.pages.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pages)
}

func (s *Server) getPage(c echo.Context) error {
	page, err := s.pages.Load(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, PageResponse{ID: page.ID, Title: page.Title, Version: page.Version, Doc: page.Payload})
}

func (s *Server) exportPage(c echo.Context) error {
	format, err := export.ParseFormat(c.QueryParam("format"))
	if err != nil {
		return err
	}
	page, err := s.pages.Load(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	doc, err := document.ParseJSON(page.Payload)
	if err != nil {
		return err
	}
	var b bytes.Buffer
	if err := export.Write(&b, doc, format); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, format.ContentType(), b.Bytes())
}

func (s *Server) openSession(c echo.Context) error {
	page, err := s.pages.Load(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	sess, err := s.sessions.Open(page)
	if err != nil {
		return err
	}
	snap, err := sess.editor.Snapshot()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, SessionResponse{Session: sess.ID, PageID: page.ID, Snapshot: snap})
}

func (s *Server) listSessions(c echo.Context) error {
	return c.JSON(http.StatusOK, s.sessions.List())
}

func (s *Server) session(c echo.Context) (*Session, error) {
	return s.sessions.Get(c.Param("sid"))
}

func (s *Server) getSession(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	snap, err := sess.editor.Snapshot()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}

func (s *Server) closeSession(c echo.Context) error {
	if err := s.sessions.Close(c.Request().Context(), c.Param("sid")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// postEvents applies a batch in order. The first failing event stops the
// batch; events before it stay applied.
func (s *Server) postEvents(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	var batch EventBatch
	if err := bindValid(c, &batch); err != nil {
		return err
	}
	for _, ev := range batch.Events {
		if err := ev.apply(sess.editor); err != nil {
			return err
		}
	}
	snap, err := sess.editor.Snapshot()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}

func (s *Server) saveSession(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	payload, err := sess.editor.Payload()
	if err != nil {
		return err
	}
	version, err := s.pages.Save(c.Request().Context(), sess.PageID, payload)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SaveResponse{PageID: sess.PageID, Version: version})
}
