package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/fitlive/classroom/internal/core"
)

// handleWebRTC relays one offer/answer/candidate to a named peer.
// Fire-and-forget: no response either way.
func (ctl *Controller) handleWebRTC(sess *session, data []byte) {
	var p struct {
		Type    string          `json:"type"`
		Target  string          `json:"target"`
		Kind    string          `json:"kind"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.Target == "" {
		log.Warn().Str("module", "signal").Msg("bad signal payload")
		return
	}
	classID, _ := sess.membership()
	if classID == "" {
		return
	}
	ctl.Relay.Signal(classID, sess.id, sess.identity.Name, core.ConnID(p.Target), p.Kind, p.Payload)
}

func (ctl *Controller) handleChat(sess *session, data []byte) {
	var p struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.Message == "" {
		return
	}
	classID, _ := sess.membership()
	if classID == "" {
		return
	}
	if ctl.ChatLimit != nil && !ctl.ChatLimit.Allow(sess.identity.UserID) {
		log.Warn().Str("module", "signal").Str("user", string(sess.identity.UserID)).Msg("chat rate limited")
		return
	}
	ctl.Relay.Chat(classID, sess.id, sess.identity.Name, p.Message)
}
