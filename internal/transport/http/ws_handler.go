package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"peco-service/internal/app"
	"peco-service/internal/domain"
)

const writeWait = 10 * time.Second

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
	log      logrus.FieldLogger
}

func NewWSHandler(service *app.QuizService, log logrus.FieldLogger) *WSHandler {
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origins are enforced by the CORS layer for the REST API; quiz sockets carry a token.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type hintPayload struct {
	Hint string `json:"hint"`
}

// ServeWS upgrades the request and drives one quiz session over the socket. The client either
// names a quizId to start a fresh session, which is disposed when the socket closes, or a
// sessionId to attach to one it already owns.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	rec, ok := principal(r.Context())
	if !ok {
		writeError(w, h.log, domain.ErrUnauthenticated)
		return
	}
	q := r.URL.Query()
	quizID, sessionID := q.Get("quizId"), q.Get("sessionId")
	if quizID == "" && sessionID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "missing quizId or sessionId"})
		return
	}
	if uid := q.Get("userId"); uid != "" && uid != rec.User.ID {
		writeError(w, h.log, domain.ErrForbidden)
		return
	}
	userID := rec.User.ID
	log := h.log.WithField("user", userID)

	// Sessions outlive the upgrade request, so they run on a detached context.
	ctx := context.WithoutCancel(r.Context())
	owned := false
	if sessionID == "" {
		state, err := h.service.Start(ctx, quizID, userID)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		sessionID, owned = state.SessionID, true
	}
	if owned {
		defer func() {
			if err := h.service.Dispose(ctx, sessionID, userID); err != nil {
				log.WithError(err).Debug("dispose on disconnect")
			}
		}()
	}
	updates, cancel, err := h.service.Subscribe(ctx, sessionID, userID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	defer cancel()
	log = log.WithField("session", sessionID)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()
	// The server's read/write timeouts still apply to the hijacked connection.
	_ = conn.SetReadDeadline(time.Time{})

	send := make(chan outboundMessage, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				log.WithError(err).Debug("ws write failed")
				// Keep draining so producers never block on a dead socket.
				for range send {
				}
				return
			}
		}
	}()

	emit := func(msg outboundMessage) bool {
		select {
		case send <- msg:
			return true
		case <-closeSignals:
			return false
		}
	}

	// Forward snapshots; the first terminal snapshot after any active one also carries the result.
	go func() {
		defer close(updatesDone)
		resultSent := false
		for {
			select {
			case state, ok := <-updates:
				if !ok {
					return
				}
				if !emit(outboundMessage{Type: "state", Payload: state}) {
					return
				}
				if !state.Terminal {
					resultSent = false
					continue
				}
				if resultSent {
					continue
				}
				result, err := h.service.Result(ctx, sessionID, userID)
				if err != nil {
					continue
				}
				resultSent = true
				if !emit(outboundMessage{Type: "result", Payload: result}) {
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		msg, err := h.dispatch(ctx, sessionID, userID, inbound)
		if err != nil {
			msg = outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}}
		}
		if msg.Type != "" {
			send <- msg
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// dispatch applies one client command. State changes reach the client through the
// subscription, so only commands with their own payload produce a direct reply.
func (h *WSHandler) dispatch(ctx context.Context, sessionID, userID string, in inboundMessage) (outboundMessage, error) {
	switch in.Type {
	case "answer":
		var answer domain.Answer
		if err := json.Unmarshal(in.Payload, &answer); err != nil {
			return outboundMessage{}, fmt.Errorf("%w: answer payload", domain.ErrInvalidInput)
		}
		fb, err := h.service.Answer(ctx, sessionID, userID, answer)
		if err != nil {
			return outboundMessage{}, err
		}
		return outboundMessage{Type: "feedback", Payload: fb}, nil
	case "next":
		var req nextRequest
		if len(in.Payload) > 0 {
			if err := json.Unmarshal(in.Payload, &req); err != nil {
				return outboundMessage{}, fmt.Errorf("%w: next payload", domain.ErrInvalidInput)
			}
		}
		from := -1
		if req.From != nil {
			from = *req.From
		}
		_, err := h.service.Next(ctx, sessionID, userID, from)
		return outboundMessage{}, err
	case "previous":
		_, err := h.service.Previous(ctx, sessionID, userID)
		return outboundMessage{}, err
	case "skip":
		_, err := h.service.Skip(ctx, sessionID, userID)
		return outboundMessage{}, err
	case "submit":
		_, err := h.service.Submit(ctx, sessionID, userID)
		return outboundMessage{}, err
	case "restart":
		_, err := h.service.Restart(ctx, sessionID, userID)
		return outboundMessage{}, err
	case "hint":
		hint, err := h.service.Hint(ctx, sessionID, userID)
		if err != nil {
			return outboundMessage{}, err
		}
		return outboundMessage{Type: "hint", Payload: hintPayload{Hint: hint}}, nil
	case "review":
		items, err := h.service.Review(ctx, sessionID, userID)
		if err != nil {
			return outboundMessage{}, err
		}
		return outboundMessage{Type: "review", Payload: items}, nil
	default:
		return outboundMessage{}, fmt.Errorf("%w: unsupported message type %q", domain.ErrInvalidInput, in.Type)
	}
}
