package signal

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/fitlive/classroom/internal/core"
)

func (ctl *Controller) writePump(ctx context.Context, c *WsConn) {
	ping := time.NewTicker(ctl.pingPeriod())
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			c.Close()
			return
		case <-ping.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump ping error")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) pingPeriod() time.Duration {
	if ctl.PingPeriod > 0 {
		return ctl.PingPeriod
	}
	return 54 * time.Second
}

func (ctl *Controller) readPump(ctx context.Context, sess *session, c *WsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(sess.id)).Msg("readPump closing")
		ctl.onDisconnect(sess)
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("conn", string(sess.id)).Msg("readPump read error")
				return
			}
			ctl.dispatch(ctx, sess, data)
		}
	}
}

func (ctl *Controller) dispatch(ctx context.Context, sess *session, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	switch env.Type {
	case "start-class":
		ctl.handleStart(ctx, sess, data)
	case "join-class":
		ctl.handleJoin(ctx, sess, data)
	case "leave-class":
		ctl.handleLeave(ctx, sess, data)
	case "end-class":
		ctl.handleEnd(ctx, sess, data)
	case "room-info":
		ctl.handleRoomInfo(sess, data)
	case "signal":
		ctl.handleWebRTC(sess, data)
	case "chat":
		ctl.handleChat(sess, data)
	case "ping":
		ctl.handlePing(sess)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown request")
	}
}

func (ctl *Controller) sendJSON(sess *session, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = sess.conn.TrySend(core.Frame(b))
}

type errorResponse struct {
	Type    string    `json:"type"`
	Op      string    `json:"op"`
	Code    core.Code `json:"code"`
	Message string    `json:"message"`
}

// sendError answers a failed request in-band, leaving the connection
// usable.
func (ctl *Controller) sendError(sess *session, op string, err error) {
	var de *core.Error
	resp := errorResponse{Type: "error", Op: op}
	if errors.As(err, &de) {
		resp.Code = de.Code
		resp.Message = de.Msg
	} else {
		resp.Code = "internal"
		resp.Message = "internal error"
		log.Error().Err(err).Str("module", "signal").Str("op", op).Msg("internal error")
	}
	ctl.sendJSON(sess, resp)
}
