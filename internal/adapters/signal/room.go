package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/fitlive/classroom/internal/app"
	"github.com/fitlive/classroom/internal/core"
	"github.com/fitlive/classroom/internal/domain"
)

type classPayload struct {
	Type    string `json:"type"`
	ClassID string `json:"classId"`
}

func decodeClass(data []byte) (domain.ClassID, bool) {
	var p classPayload
	if err := json.Unmarshal(data, &p); err != nil || p.ClassID == "" {
		log.Warn().Str("module", "signal").Msg("bad class payload")
		return "", false
	}
	return domain.ClassID(p.ClassID), true
}

type startedResponse struct {
	Type string `json:"type"`
	app.JoinResult
}

func (ctl *Controller) handleStart(ctx context.Context, sess *session, data []byte) {
	classID, ok := decodeClass(data)
	if !ok {
		return
	}
	if cur, _ := sess.membership(); cur != "" && cur != classID {
		ctl.sendError(sess, "start", core.Errf(core.CodeConflict, "start",
			"connection already in class %s", cur))
		return
	}
	res, err := ctl.Lifecycle.Start(ctx, sess.id, sess.conn, sess.identity, classID)
	if err != nil {
		ctl.sendError(sess, "start", err)
		return
	}
	sess.bind(classID, true)
	ctl.sendJSON(sess, startedResponse{Type: "class-started", JoinResult: *res})
}

func (ctl *Controller) handleJoin(ctx context.Context, sess *session, data []byte) {
	classID, ok := decodeClass(data)
	if !ok {
		return
	}
	if cur, _ := sess.membership(); cur != "" && cur != classID {
		ctl.sendError(sess, "join", core.Errf(core.CodeConflict, "join",
			"connection already in class %s", cur))
		return
	}
	res, err := ctl.Lifecycle.Join(ctx, sess.id, sess.conn, sess.identity, classID)
	if err != nil {
		ctl.sendError(sess, "join", err)
		return
	}
	sess.bind(classID, false)
	ctl.sendJSON(sess, startedResponse{Type: "class-joined", JoinResult: *res})
}

func (ctl *Controller) handleLeave(ctx context.Context, sess *session, data []byte) {
	classID, ok := decodeClass(data)
	if !ok {
		return
	}
	ctl.Lifecycle.Leave(ctx, sess.id, classID)
	sess.unbind()
}

func (ctl *Controller) handleEnd(ctx context.Context, sess *session, data []byte) {
	classID, ok := decodeClass(data)
	if !ok {
		return
	}
	if err := ctl.Lifecycle.End(ctx, sess.id, classID); err != nil {
		ctl.sendError(sess, "end", err)
		return
	}
	sess.unbind()
	ctl.sendJSON(sess, map[string]string{"type": "class-ended-ack"})
}

type roomInfoResponse struct {
	Type string `json:"type"`
	core.RoomInfo
}

func (ctl *Controller) handleRoomInfo(sess *session, data []byte) {
	classID, ok := decodeClass(data)
	if !ok {
		return
	}
	info, err := ctl.Lifecycle.Info(classID)
	if err != nil {
		ctl.sendError(sess, "room-info", err)
		return
	}
	ctl.sendJSON(sess, roomInfoResponse{Type: "room-info", RoomInfo: *info})
}
