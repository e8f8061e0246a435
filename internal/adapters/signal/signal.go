package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/fitlive/classroom/internal/app"
	"github.com/fitlive/classroom/internal/core"
	"github.com/fitlive/classroom/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

// Controller owns the realtime endpoint: upgrade, pumps, dispatch.
type Controller struct {
	Lifecycle  *app.Lifecycle
	Relay      *app.Relay
	ChatLimit  *ChatRateLimiter
	ReadLimit  int64
	PingPeriod time.Duration
}

type WsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// session is one authenticated connection plus its room membership.
// Membership here is a routing hint for disconnects; the room is the
// source of truth and re-validates every transition. A session holds
// at most one membership: start/join refuse a second class while the
// first is still bound.
type session struct {
	id       core.ConnID
	identity domain.Identity
	conn     core.SignalConnection

	mu      sync.Mutex
	classID domain.ClassID
	isHost  bool
}

func (s *session) bind(classID domain.ClassID, isHost bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.classID = classID
	s.isHost = isHost
}

func (s *session) unbind() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.classID = ""
	s.isHost = false
}

func (s *session) membership() (domain.ClassID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.classID, s.isHost
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades an authenticated request and runs the pumps.
// The auth middleware has already attached the identity; an
// unauthenticated request never reaches this point.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	identity := c.MustGet("identity").(domain.Identity)

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}

	conn := &WsConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}
	sess := &session{
		id:       core.ConnID(uuid.NewString()),
		identity: identity,
		conn:     conn,
	}
	log.Info().Str("module", "signal").Str("conn", string(sess.id)).
		Str("user", string(identity.UserID)).Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go func() {
		defer cancel()
		ctl.readPump(ctx, sess, conn)
	}()
}

// onDisconnect routes an unexpected close into the lifecycle: trainer
// drops arm the grace timer, participant drops are ordinary leaves.
func (ctl *Controller) onDisconnect(sess *session) {
	classID, isHost := sess.membership()
	if classID == "" {
		return
	}
	if isHost {
		ctl.Lifecycle.HostDisconnected(sess.id, classID)
		return
	}
	ctl.Lifecycle.Leave(context.Background(), sess.id, classID)
}
