package core

import (
	"encoding/json"
	"time"

	"github.com/fitlive/classroom/internal/domain"
)

// Server→client event types. One constant per broadcast variant so
// handlers stay an exhaustive, closed set.
const (
	EventNewPeer             = "new-peer"
	EventPeerLeft            = "peer-left"
	EventClassMessage        = "class-message"
	EventWebRTCOffer         = "webrtc-offer"
	EventWebRTCAnswer        = "webrtc-answer"
	EventICECandidate        = "ice-candidate"
	EventTrainerDisconnected = "trainer-disconnected"
	EventClassEnded          = "class-ended"
)

// PeerInfo is one roster entry as clients see it.
type PeerInfo struct {
	ConnectionID ConnID        `json:"connectionId"`
	UserID       domain.UserID `json:"userId"`
	Name         string        `json:"name"`
	IsTrainer    bool          `json:"isTrainer"`
}

type NewPeerEvent struct {
	Type string   `json:"type"`
	Peer PeerInfo `json:"peer"`
}

func NewPeer(peer PeerInfo) NewPeerEvent {
	return NewPeerEvent{Type: EventNewPeer, Peer: peer}
}

type PeerLeftEvent struct {
	Type         string `json:"type"`
	ConnectionID ConnID `json:"connectionId"`
}

func PeerLeft(id ConnID) PeerLeftEvent {
	return PeerLeftEvent{Type: EventPeerLeft, ConnectionID: id}
}

type ClassMessageEvent struct {
	Type      string    `json:"type"`
	From      ConnID    `json:"from"`
	Name      string    `json:"name"`
	IsTrainer bool      `json:"isTrainer"`
	Message   string    `json:"message"`
	SentAt    time.Time `json:"sentAt"`
}

// SignalEvent carries a relayed offer/answer/candidate. Payload stays
// opaque end to end.
type SignalEvent struct {
	Type      string          `json:"type"`
	From      ConnID          `json:"from"`
	Name      string          `json:"name"`
	IsTrainer bool            `json:"isTrainer"`
	Payload   json.RawMessage `json:"payload"`
}

type TrainerDisconnectedEvent struct {
	Type string `json:"type"`
}

func TrainerDisconnected() TrainerDisconnectedEvent {
	return TrainerDisconnectedEvent{Type: EventTrainerDisconnected}
}

type ClassEndedEvent struct {
	Type string `json:"type"`
}

func ClassEnded() ClassEndedEvent {
	return ClassEndedEvent{Type: EventClassEnded}
}
