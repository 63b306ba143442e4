package passageHandler

import (
	"context"
	"errors"
	"sync"
	"time"

	"KeikoHub/internal/middleware"
	"KeikoHub/internal/session"
	contextPkg "KeikoHub/pkg/context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

const writeTimeout = 5 * time.Second

// RequireUpgrade rejects plain HTTP requests on the live session route.
func (h *PassageHandler) RequireUpgrade(ctx *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(ctx) {
		return ctx.Next()
	}
	return fiber.ErrUpgradeRequired
}

// LiveSession drives one passage over a websocket: the server pushes state and cue
// events, the client answers with commands and cue acknowledgements.
func (h *PassageHandler) LiveSession(conn *websocket.Conn) {
	passageID, _ := conn.Locals(middleware.PassageIDKey).(string)
	requestID, _ := conn.Locals(middleware.RequestIDKey).(string)
	if requestID == "" {
		requestID = "unknown"
	}

	logger := h.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"passage_id": passageID,
	})

	var writeMu sync.Mutex
	send := func(ev session.Event) error {
		data, err := jsoniter.Marshal(ev)
		if err != nil {
			return err
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		return conn.WriteMessage(websocket.TextMessage, data)
	}

	base := contextPkg.WithPassageID(contextPkg.WithRequestID(context.Background(), requestID), passageID)
	ctx, cancel := context.WithCancel(base)
	defer cancel()

	audio := session.NewWSPlayer(send, 0)
	sess, err := h.passageService.OpenSession(ctx, passageID, audio, send)
	if err != nil {
		logger.WithField("error", err.Error()).Warn("Live session could not be opened")
		_ = send(session.Event{Type: session.EventError, Error: err.Error()})
		return
	}
	defer h.passageService.CloseSession(sess)

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		h.readMessages(conn, sess, audio, send, logger)
	}()

	if err := sess.Start(ctx); err != nil {
		logger.WithField("error", err.Error()).Error("Live session could not start")
		_ = send(session.Event{Type: session.EventError, Error: err.Error()})
		return
	}

	select {
	case <-readDone:
		logger.Debug("Client left the live session")
	case <-sess.Done():
		logger.Debug("Live session ended")
	}
}

func (h *PassageHandler) readMessages(conn *websocket.Conn, sess *session.Session, audio *session.WSPlayer, send func(session.Event) error, logger *logrus.Entry) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg session.Message
		if err := jsoniter.Unmarshal(data, &msg); err != nil {
			_ = send(session.Event{Type: session.EventError, Error: "malformed message"})
			continue
		}

		switch msg.Type {
		case session.MessageCueEnded:
			audio.Ack(msg.CueID, "")
		case session.MessageCueError:
			errMsg := msg.Error
			if errMsg == "" {
				errMsg = "client playback failed"
			}
			audio.Ack(msg.CueID, errMsg)
		case session.MessageCommand:
			if err := sess.Handle(msg.Command); err != nil {
				if errors.Is(err, session.ErrSessionClosed) {
					return
				}
				_ = send(session.Event{Type: session.EventError, Error: err.Error()})
				continue
			}
			if msg.Command == session.CommandStop {
				return
			}
		default:
			logger.WithField("type", msg.Type).Debug("Ignoring unknown message")
		}
	}
}
