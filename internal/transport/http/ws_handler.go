package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"skillquiz-service/internal/app"
	"skillquiz-service/internal/engine"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WSHandler struct {
	service  *app.QuizService
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		service: service,
		logger:  logger.Named("ws"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	Option int `json:"option"`
}

type launchedPayload struct {
	SessionID string      `json:"sessionId"`
	View      engine.View `json:"view"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets, launches a session for the
// connection and forwards learner intents into it. The session lives as long
// as the connection.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	domainName := r.URL.Query().Get("domain")
	level, err := strconv.Atoi(r.URL.Query().Get("level"))
	if userID == "" || domainName == "" || err != nil {
		http.Error(w, "missing userId, domain, or level", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := r.Context()
	id, view, err := h.service.Launch(ctx, userID, domainName, level)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.service.Close(ctx, id)

	updates, cancel, err := h.service.Subscribe(ctx, id)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Single writer: gorilla connections do not support concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("ws write error", zap.String("session", id), zap.Error(err))
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "launched", Payload: launchedPayload{SessionID: id, View: view}}
	if view.Complete {
		// Empty sessions finish during launch, before the subscription exists.
		if res, ok, err := h.service.Result(ctx, id); err == nil && ok {
			send <- outboundMessage[any]{Type: "complete", Payload: res}
		}
	}

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				msgs := []outboundMessage[any]{{Type: "state", Payload: update.View}}
				if update.Result != nil {
					msgs = append(msgs, outboundMessage[any]{Type: "complete", Payload: *update.Result})
				}
				for _, msg := range msgs {
					select {
					case send <- msg:
					case <-closeSignals:
						return
					}
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
		if inbound.Type == "close" {
			break
		}
		if err := h.dispatch(r, id, inbound); err != nil {
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

var (
	errInvalidPayload = errors.New("invalid select payload")
	errUnsupported    = errors.New("unsupported message type")
)

func (h *WSHandler) dispatch(r *http.Request, id string, inbound inboundMessage) error {
	ctx := r.Context()
	var err error
	switch inbound.Type {
	case "select":
		var payload selectPayload
		if jsonErr := json.Unmarshal(inbound.Payload, &payload); jsonErr != nil {
			return errInvalidPayload
		}
		_, err = h.service.SelectAnswer(ctx, id, payload.Option)
	case "submit":
		_, err = h.service.Submit(ctx, id)
	case "next":
		_, err = h.service.Next(ctx, id)
	case "retry":
		_, err = h.service.Retry(ctx, id)
	case "pause":
		_, err = h.service.Pause(ctx, id)
	case "resume":
		_, err = h.service.Resume(ctx, id)
	default:
		return errUnsupported
	}
	return err
}
