package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fitlive/classroom/internal/core"
	"github.com/fitlive/classroom/internal/domain"
)

const teardownTimeout = 5 * time.Second

// JoinResult answers a start or join request: the current roster and
// size, so the newcomer can dial every existing peer.
type JoinResult struct {
	ParticipantCount int             `json:"participantCount"`
	ExistingPeers    []core.PeerInfo `json:"existingPeers"`
}

// Lifecycle drives the room state machine. It is the only writer of the
// registry. Store reads happen before the room's in-memory mutation and
// store writes after it, so no lock is ever held across network I/O.
type Lifecycle struct {
	Registry    *core.Registry
	Bookings    core.BookingGateway
	Classes     core.ClassStore
	Presence    Presence
	GracePeriod time.Duration
}

// Start opens the room for a class, or rebinds the host connection when
// the same trainer reconnects while the room is live.
func (lc *Lifecycle) Start(ctx context.Context, connID core.ConnID, conn core.SignalConnection, id domain.Identity, classID domain.ClassID) (*JoinResult, error) {
	class, err := lc.Classes.GetClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	if !id.CanHost() || class.TrainerID != id.UserID {
		return nil, core.Errf(core.CodeForbidden, "start", "not the assigned trainer")
	}
	if !class.Startable() {
		return nil, core.Errf(core.CodeInvalidState, "start", "class is %s", class.Status)
	}

	room := core.NewRoom(classID, id, connID, conn, class.MaxParticipants)
	for {
		existing, inserted := lc.Registry.Insert(room)
		if inserted {
			break
		}
		if existing.Host.UserID != id.UserID {
			return nil, core.Errf(core.CodeConflict, "start", "class already started by another trainer")
		}
		if res, ok := lc.rebindHost(existing, connID, conn, id); ok {
			return res, nil
		}
		// Closed husk racing its teardown; clear it and retry.
		lc.Registry.Remove(existing)
	}

	if err := lc.Classes.SetStatus(ctx, classID, domain.ClassOngoing); err != nil {
		log.Error().Err(err).Str("module", "app.lifecycle").Str("class", string(classID)).Msg("persist ongoing status")
	}
	log.Info().Str("module", "app.lifecycle").Str("class", string(classID)).Str("conn", string(connID)).Msg("class started")
	return &JoinResult{ParticipantCount: 0, ExistingPeers: []core.PeerInfo{}}, nil
}

// rebindHost handles the live→live reconnect transition: swap the host
// connection, cancel any grace timer, and tell participants to rebuild
// their peer connections against the new connection id.
func (lc *Lifecycle) rebindHost(room *core.Room, connID core.ConnID, conn core.SignalConnection, id domain.Identity) (*JoinResult, bool) {
	old, peers, ok := room.SwapHost(connID, conn)
	if !ok {
		return nil, false
	}
	if old != connID {
		others := room.Conns(connID)
		lc.Presence.Send(others, core.PeerLeft(old))
		lc.Presence.Send(others, core.NewPeer(core.PeerInfo{
			ConnectionID: connID,
			UserID:       id.UserID,
			Name:         id.Name,
			IsTrainer:    true,
		}))
		log.Info().Str("module", "app.lifecycle").Str("class", string(room.ClassID)).
			Str("old_conn", string(old)).Str("conn", string(connID)).Msg("trainer reconnected")
	}
	return &JoinResult{ParticipantCount: room.ParticipantCount(), ExistingPeers: peers}, true
}

// Join admits a booked participant into a live room.
func (lc *Lifecycle) Join(ctx context.Context, connID core.ConnID, conn core.SignalConnection, id domain.Identity, classID domain.ClassID) (*JoinResult, error) {
	room, ok := lc.Registry.Get(classID)
	if !ok {
		return nil, core.Errf(core.CodeNotFound, "join", "class has not started")
	}
	if room.Host.UserID == id.UserID {
		return nil, core.Errf(core.CodeForbidden, "join", "trainer opens the class with start")
	}
	booking, err := lc.Bookings.FindActiveBooking(ctx, classID, id.UserID)
	if err != nil {
		if core.CodeOf(err) == core.CodeNotFound {
			return nil, core.Errf(core.CodeForbidden, "join", "no active booking for this class")
		}
		return nil, err
	}

	stale, peers, admitErr := room.Admit(connID, &core.Participant{
		UserID:    id.UserID,
		Name:      id.Name,
		BookingID: booking.ID,
		Conn:      conn,
	})
	if stale != "" {
		lc.Presence.Send(room.Conns(connID), core.PeerLeft(stale))
	}
	if admitErr != nil {
		return nil, admitErr
	}

	if err := lc.Bookings.MarkJoined(ctx, booking.ID, time.Now()); err != nil {
		log.Error().Err(err).Str("module", "app.lifecycle").Str("booking", string(booking.ID)).Msg("mark joined")
	}
	lc.Presence.Send(room.Conns(connID), core.NewPeer(core.PeerInfo{
		ConnectionID: connID,
		UserID:       id.UserID,
		Name:         id.Name,
	}))
	log.Info().Str("module", "app.lifecycle").Str("class", string(classID)).Str("conn", string(connID)).Msg("participant joined")
	return &JoinResult{ParticipantCount: room.ParticipantCount(), ExistingPeers: peers}, nil
}

// Leave removes a participant, explicitly or on disconnect. Safe to call
// for connections that already left.
func (lc *Lifecycle) Leave(ctx context.Context, connID core.ConnID, classID domain.ClassID) {
	room, ok := lc.Registry.Get(classID)
	if !ok {
		return
	}
	p, ok := room.RemoveParticipant(connID)
	if !ok {
		return
	}
	if err := lc.Bookings.MarkLeft(ctx, p.BookingID, time.Now()); err != nil {
		log.Error().Err(err).Str("module", "app.lifecycle").Str("booking", string(p.BookingID)).Msg("mark left")
	}
	lc.Presence.Send(room.Conns(connID), core.PeerLeft(connID))
	log.Info().Str("module", "app.lifecycle").Str("class", string(classID)).Str("conn", string(connID)).Msg("participant left")
}

// HostDisconnected starts the grace window after an unexpected trainer
// drop. Participants stay in the room awaiting the reconnect.
func (lc *Lifecycle) HostDisconnected(connID core.ConnID, classID domain.ClassID) {
	room, ok := lc.Registry.Get(classID)
	if !ok {
		return
	}
	if !room.HostLost(connID, lc.GracePeriod, func() { lc.graceExpired(room, connID) }) {
		return
	}
	others := room.Conns(connID)
	lc.Presence.Send(others, core.TrainerDisconnected())
	lc.Presence.Send(others, core.PeerLeft(connID))
	log.Warn().Str("module", "app.lifecycle").Str("class", string(classID)).
		Dur("grace", lc.GracePeriod).Msg("trainer disconnected, grace timer armed")
}

func (lc *Lifecycle) graceExpired(room *core.Room, connID core.ConnID) {
	conns, ok := room.CloseIfHostStillLost(connID)
	if !ok {
		return
	}
	log.Warn().Str("module", "app.lifecycle").Str("class", string(room.ClassID)).Msg("grace expired, tearing down")
	lc.teardown(room, conns)
}

// End closes the room on the trainer's explicit request.
func (lc *Lifecycle) End(ctx context.Context, connID core.ConnID, classID domain.ClassID) error {
	room, ok := lc.Registry.Get(classID)
	if !ok {
		return core.Errf(core.CodeNotFound, "end", "class is not live")
	}
	conns, err := room.CloseByHost(connID)
	if err != nil {
		return err
	}
	log.Info().Str("module", "app.lifecycle").Str("class", string(classID)).Msg("class ended by trainer")
	lc.teardown(room, conns)
	return nil
}

// teardown finishes a closed room: notify members, persist completion,
// drop the registry entry. Persistence failures are logged and must not
// leave the room stuck in memory.
func (lc *Lifecycle) teardown(room *core.Room, conns []core.SignalConnection) {
	lc.Presence.Send(conns, core.ClassEnded())

	ctx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
	defer cancel()
	now := time.Now()
	if err := lc.Bookings.MarkAllCompletedForClass(ctx, room.ClassID, now); err != nil {
		log.Error().Err(err).Str("module", "app.lifecycle").Str("class", string(room.ClassID)).Msg("complete bookings")
	}
	if err := lc.Classes.SetStatus(ctx, room.ClassID, domain.ClassCompleted); err != nil {
		log.Error().Err(err).Str("module", "app.lifecycle").Str("class", string(room.ClassID)).Msg("persist completed status")
	}
	lc.Registry.Remove(room)
}

// Info snapshots a live room for the room-info request.
func (lc *Lifecycle) Info(classID domain.ClassID) (*core.RoomInfo, error) {
	room, ok := lc.Registry.Get(classID)
	if !ok {
		return nil, core.Errf(core.CodeNotFound, "room-info", "class is not live")
	}
	info := room.Info()
	return &info, nil
}
