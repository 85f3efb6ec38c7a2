package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nahidnstu12/team-docs-sub001/internal/editor"
	"github.com/nahidnstu12/team-docs-sub001/internal/export"
	"github.com/nahidnstu12/team-docs-sub001/internal/input/key"
	"github.com/nahidnstu12/team-docs-sub001/internal/store"
	"github.com/nahidnstu12/team-docs-sub001/internal/validate"
)

// ErrSessionNotFound is returned for an unknown session id.
var ErrSessionNotFound = errors.New("session not found")

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code
	case errors.Is(err, store.ErrPageNotFound), errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, validate.ErrInvalid),
		errors.Is(err, store.ErrInvalidPayload),
		errors.Is(err, export.ErrUnknownFormat),
		errors.Is(err, editor.ErrUnknownCommand),
		errors.Is(err, key.ErrInvalidSpec),
		errors.Is(err, key.ErrEmptySpec),
		errors.Is(err, ErrBadEvent):
		return http.StatusBadRequest
	case errors.Is(err, editor.ErrNotApplicable):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := statusOf(err)
	body := ErrorResponse{Error: err.Error()}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok {
			body.Error = msg
		}
	}
	var verr *validate.Error
	if errors.As(err, &verr) {
		body.Fields = verr.Fields
	}
	if code >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}
	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = c.JSON(code, body)
	}
	if werr != nil {
		s.logger.Warn().Err(werr).Msg("write error response")
	}
}
