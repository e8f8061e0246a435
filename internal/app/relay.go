package app

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fitlive/classroom/internal/core"
	"github.com/fitlive/classroom/internal/domain"
)

// SignalKind → relayed event type. A closed map so unknown kinds die here.
var signalEvents = map[string]string{
	"offer":     core.EventWebRTCOffer,
	"answer":    core.EventWebRTCAnswer,
	"candidate": core.EventICECandidate,
}

// Relay forwards opaque signaling payloads between peers of the same
// room and fans chat out room-wide. Fire-and-forget: a stale target is
// expected during peer churn and never surfaces to the sender.
type Relay struct {
	Registry *core.Registry
}

// Signal relays one offer/answer/candidate to the target connection.
// Both sender and target must currently belong to the room; anything
// else is dropped with a warn, not an error.
func (rl *Relay) Signal(classID domain.ClassID, from core.ConnID, name string, target core.ConnID, kind string, payload json.RawMessage) {
	event, ok := signalEvents[kind]
	if !ok {
		log.Warn().Str("module", "app.relay").Str("kind", kind).Msg("unknown signal kind")
		return
	}
	room, ok := rl.Registry.Get(classID)
	if !ok {
		return
	}
	if _, ok := room.Member(from); !ok {
		log.Warn().Str("module", "app.relay").Str("conn", string(from)).Msg("signal from non-member")
		return
	}
	dst, ok := room.Member(target)
	if !ok {
		log.Warn().Str("module", "app.relay").Str("target", string(target)).Msg("signal target not in room")
		return
	}

	b, err := json.Marshal(core.SignalEvent{
		Type:      event,
		From:      from,
		Name:      name,
		IsTrainer: room.IsHostConn(from),
		Payload:   payload,
	})
	if err != nil {
		log.Error().Err(err).Str("module", "app.relay").Msg("marshal signal")
		return
	}
	if err := dst.TrySend(core.Frame(b)); err != nil {
		log.Warn().Err(err).Str("module", "app.relay").Str("target", string(target)).Msg("signal dropped")
	}
}

// Chat broadcasts a text message from a current room member to the
// whole room, sender included. Non-members are silently ignored.
func (rl *Relay) Chat(classID domain.ClassID, from core.ConnID, name string, message string) {
	room, ok := rl.Registry.Get(classID)
	if !ok {
		return
	}
	if _, ok := room.Member(from); !ok {
		return
	}
	b, err := json.Marshal(core.ClassMessageEvent{
		Type:      core.EventClassMessage,
		From:      from,
		Name:      name,
		IsTrainer: room.IsHostConn(from),
		Message:   message,
		SentAt:    time.Now(),
	})
	if err != nil {
		log.Error().Err(err).Str("module", "app.relay").Msg("marshal chat")
		return
	}
	for _, c := range room.Conns("") {
		if err := c.TrySend(core.Frame(b)); err != nil {
			log.Warn().Err(err).Str("module", "app.relay").Msg("chat dropped")
		}
	}
}
