package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"dugod-content-service/internal/app"
	"dugod-content-service/internal/domain"
	"dugod-content-service/internal/metrics"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const writeWait = 5 * time.Second

// WSHandler streams the active countdown over a websocket.
type WSHandler struct {
	service  *app.CountdownService
	upgrader websocket.Upgrader
	log      logrus.FieldLogger
}

func NewWSHandler(service *app.CountdownService, log logrus.FieldLogger) *WSHandler {
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type tickPayload struct {
	CountdownID    string               `json:"countdownId"`
	TimeRemaining  domain.TimeRemaining `json:"timeRemaining"`
	VisibleUnits   []domain.UnitValue   `json:"visibleUnits"`
	ExpiredMessage string               `json:"expiredMessage,omitempty"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS sends a "tick" per interval and a final "expired" before closing.
// The ticker stops as soon as the client goes away.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r, h.log)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	// Hijacked connections outlive the request context, so closure is detected by the reader.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	countdown, ticks, err := h.service.Watch(ctx)
	if err != nil {
		message := "internal server error"
		if errors.Is(err, domain.ErrCountdownNotFound) {
			message = "no active countdown"
		} else {
			log.WithError(err).Error("countdown stream failed")
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: message}})
		closeConn(conn, websocket.CloseNormalClosure, message)
		return
	}

	metrics.CountdownStreams.Inc()
	defer metrics.CountdownStreams.Dec()

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		defer cancel()
		// Clear any deadline inherited from the server's ReadTimeout.
		_ = conn.SetReadDeadline(time.Time{})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	units := countdown.Units()
	for remaining := range ticks {
		msgType := "tick"
		payload := tickPayload{
			CountdownID:   countdown.ID,
			TimeRemaining: remaining,
			VisibleUnits:  remaining.Visible(units),
		}
		if remaining.IsExpired {
			msgType = "expired"
			payload.ExpiredMessage = countdown.ExpiredMessage
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(outboundMessage[tickPayload]{Type: msgType, Payload: payload}); err != nil {
			log.WithError(err).Debug("ws write failed")
			cancel()
			break
		}
	}

	if ctx.Err() == nil {
		closeConn(conn, websocket.CloseNormalClosure, "countdown expired")
	}
	cancel()
	_ = conn.Close()
	<-readerDone
}

func closeConn(conn *websocket.Conn, code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
