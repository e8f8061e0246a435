package app

import (
	"encoding/json"

	"github.com/fitlive/classroom/internal/core"
	"github.com/rs/zerolog/log"
)

// Presence fans room events out to member connections. Delivery is
// best-effort per connection; one slow peer never blocks the rest.
type Presence struct{}

func (Presence) Send(conns []core.SignalConnection, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.presence").Msg("marshal event")
		return
	}
	for _, c := range conns {
		if err := c.TrySend(core.Frame(b)); err != nil {
			log.Warn().Err(err).Str("module", "app.presence").Msg("dropped event")
		}
	}
}
