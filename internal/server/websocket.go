package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/hub"
	"github.com/jonathan/interview-coach/internal/session"
	"github.com/jonathan/interview-coach/internal/types"
)

const (
	wsWriteWait    = 10 * time.Second
	wsPongWait     = 60 * time.Second
	wsPingEvery    = (wsPongWait * 9) / 10
	wsMaxMessage   = 64 << 10
	wsOutboxSize   = 32
	wsPendingLimit = 4
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// handleWebSocket joins the connection to the interview's broadcast group.
// Each inbound {"message": ...} runs one engine cycle; the resulting
// assistant messages reach every listener through the hub, while errors go
// to the sender only.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	interviewID := strings.TrimSpace(r.PathValue("interview_id"))
	if _, err := s.deps.Registry.Get(r.Context(), interviewID); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, "Interview not found")
			return
		}
		s.errorFrom(w, r, err)
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsMaxMessage)

	logger := s.logger.With(zap.String("interview_id", interviewID))
	sub := s.deps.Hub.Subscribe(hub.GroupName(interviewID))
	defer sub.Close()
	logger.Debug("websocket joined", zap.Int("listeners", s.deps.Hub.Size(sub.Group())))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	outbox := make(chan types.SocketMessage, wsOutboxSize)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(wsPingEvery)
		defer ticker.Stop()
		for {
			var err error
			select {
			case <-ctx.Done():
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(wsWriteWait))
				return
			case msg := <-sub.C():
				err = writeSocket(conn, types.SocketMessage{Message: msg})
			case out := <-outbox:
				err = writeSocket(conn, out)
			case <-ticker.C:
				if err = conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err == nil {
					err = conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
			if err != nil {
				logger.Debug("websocket write failed", zap.Error(err))
				cancel()
				return
			}
		}
	}()

	// Cycles run off the read loop so pongs keep being read during slow model
	// calls, and one at a time so answers are applied in arrival order.
	pending := make(chan string, wsPendingLimit)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for answer := range pending {
			cycleCtx := context.WithoutCancel(ctx)
			if _, _, err := s.respond(cycleCtx, interviewID, answer); err != nil {
				logger.Warn("websocket cycle failed", zap.Error(err))
				pushSocket(outbox, types.SocketMessage{Error: socketError(err)})
			}
		}
	}()

	for {
		var in types.SocketMessage
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("websocket read failed", zap.Error(err))
			}
			break
		}
		answer := strings.TrimSpace(in.Message)
		if answer == "" {
			continue
		}
		select {
		case pending <- answer:
		default:
			pushSocket(outbox, types.SocketMessage{Error: "Still processing previous messages"})
		}
	}

	close(pending)
	wg.Wait()
	cancel()
	<-writerDone
}

func writeSocket(conn *websocket.Conn, msg types.SocketMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}

// pushSocket queues msg without blocking, dropping the oldest queued frame
// when the outbox is full.
func pushSocket(outbox chan types.SocketMessage, msg types.SocketMessage) {
	select {
	case outbox <- msg:
		return
	default:
	}
	select {
	case <-outbox:
	default:
	}
	select {
	case outbox <- msg:
	default:
	}
}

// socketError is the client-facing text of a failed cycle.
func socketError(err error) string {
	if HTTPStatus(err) == http.StatusInternalServerError {
		return "Internal server error"
	}
	return errorBody(err)["error"]
}
