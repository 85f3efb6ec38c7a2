package server

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/nahidnstu12/team-docs-sub001/internal/editor"
	"github.com/nahidnstu12/team-docs-sub001/internal/validate"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// SocketMessage is sent to websocket clients: a snapshot after every
// applied event, or the error of a rejected one.
type SocketMessage struct {
	Snapshot *editor.Snapshot `json:"snapshot,omitempty"`
	Error    *ErrorResponse   `json:"error,omitempty"`
}

type socketConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (sc *socketConn) write(msg SocketMessage) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	_ = sc.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return sc.conn.WriteJSON(msg)
}

func (sc *socketConn) ping() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait))
}

// socket streams input events in and snapshots out. Each received message
// is one InputEvent.
func (s *Server) socket(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	sc := &socketConn{conn: conn}
	log := s.logger.With().Str("session", sess.ID).Logger()
	log.Debug().Msg("websocket connected")

	done := make(chan struct{})
	defer func() {
		close(done)
		_ = conn.Close()
		log.Debug().Msg("websocket closed")
	}()
	go func() {
		ticker := time.NewTicker(wsPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := sc.ping(); err != nil {
					return
				}
			}
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	if err := s.sendSnapshot(sc, sess); err != nil {
		return nil
	}
	v := c.Echo().Validator
	for {
		var ev InputEvent
		if err := conn.ReadJSON(&ev); err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				log.Debug().Err(err).Msg("websocket read")
			}
			return nil
		}
		if err := v.Validate(&ev); err != nil {
			if werr := sc.write(SocketMessage{Error: errorBody(err)}); werr != nil {
				return nil
			}
			continue
		}
		if err := ev.apply(sess.editor); err != nil {
			if werr := sc.write(SocketMessage{Error: errorBody(err)}); werr != nil {
				return nil
			}
			continue
		}
		if err := s.sendSnapshot(sc, sess); err != nil {
			return nil
		}
	}
}

func (s *Server) sendSnapshot(sc *socketConn, sess *Session) error {
	snap, err := sess.editor.Snapshot()
	if err != nil {
		return sc.write(SocketMessage{Error: errorBody(err)})
	}
	return sc.write(SocketMessage{Snapshot: &snap})
}

func errorBody(err error) *ErrorResponse {
	body := &ErrorResponse{Error: err.Error()}
	if statusOf(err) >= http.StatusInternalServerError {
		body.Error = http.StatusText(http.StatusInternalServerError)
	}
	var verr *validate.Error
	if errors.As(err, &verr) {
		body.Fields = verr.Fields
	}
	return body
}
