package _switch

import (
	"context"
	"sync"
	"time"

	"github.com/mkruglov/randochat/backend/model"
	"github.com/rs/zerolog"
)

const (
	defaultFwdTimout = time.Second
)

// Switch tracks live connection wires and room scope membership and
// fans events out to them. It knows nothing about queues or pairing;
// delivery is best-effort with no acknowledgments or buffering.
type Switch struct {
	logger zerolog.Logger
	mx     *sync.RWMutex
	conns  map[string]model.Wire
	rooms  map[string]map[string]struct{}
}

func NewSwitch(logger *zerolog.Logger) *Switch {
	return &Switch{
		logger: logger.With().Str("component", "switch").Logger(),
		mx:     &sync.RWMutex{},
		conns:  make(map[string]model.Wire),
		rooms:  make(map[string]map[string]struct{}),
	}
}

// Connect registers the wire of a live connection.
func (sw *Switch) Connect(connID string, wire model.Wire) {
	sw.mx.Lock()
	sw.conns[connID] = wire
	sw.mx.Unlock()
	sw.logger.Debug().
		Str("connID", connID).
		Msg("connection registered")
}

// Disconnect forgets the connection and drops it from any room scope
// it still belongs to.
func (sw *Switch) Disconnect(connID string) {
	sw.mx.Lock()
	delete(sw.conns, connID)
	for roomID, members := range sw.rooms {
		delete(members, connID)
		if len(members) == 0 {
			delete(sw.rooms, roomID)
		}
	}
	sw.mx.Unlock()
	sw.logger.Debug().
		Str("connID", connID).
		Msg("connection deregistered")
}

// Has reports whether connID is still registered.
func (sw *Switch) Has(connID string) bool {
	sw.mx.RLock()
	defer sw.mx.RUnlock()
	_, ok := sw.conns[connID]
	return ok
}

func (sw *Switch) JoinRoom(roomID, connID string) {
	sw.mx.Lock()
	defer sw.mx.Unlock()

	members, ok := sw.rooms[roomID]
	if !ok {
		members = make(map[string]struct{})
		sw.rooms[roomID] = members
	}
	members[connID] = struct{}{}
}

func (sw *Switch) LeaveRoom(roomID, connID string) {
	sw.mx.Lock()
	defer sw.mx.Unlock()

	members, ok := sw.rooms[roomID]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(sw.rooms, roomID)
	}
}

// Send delivers ev to a single connection. Unknown or dead targets
// are a silent no-op.
func (sw *Switch) Send(ctx context.Context, ev model.Event, connID string) {
	sw.mx.RLock()
	wire, ok := sw.conns[connID]
	sw.mx.RUnlock()

	if !ok {
		sw.logger.Debug().
			Str("connID", connID).
			Str("type", ev.Type).
			Msg("cannot send, connection not found")
		return
	}
	send(ctx, ev, wire.TX, &sw.logger)
}

// Broadcast delivers ev to every member of the room scope except
// ev.SRC. Members whose transport is gone are skipped.
func (sw *Switch) Broadcast(ctx context.Context, ev model.Event, roomID string) {
	sw.mx.RLock()
	members := sw.rooms[roomID]
	targets := make([]model.Wire, 0, len(members))
	for connID := range members {
		if connID == ev.SRC {
			continue
		}
		if wire, ok := sw.conns[connID]; ok {
			targets = append(targets, wire)
		}
	}
	sw.mx.RUnlock()

	if len(targets) == 0 {
		sw.logger.Debug().
			Str("roomID", roomID).
			Str("type", ev.Type).
			Str("src", ev.SRC).
			Msg("broadcast did not reach anyone")
		return
	}
	for _, wire := range targets {
		if canceled := send(ctx, ev, wire.TX, &sw.logger); canceled {
			break
		}
	}
}

func send(ctx context.Context, ev model.Event, tx chan<- model.Event, logger *zerolog.Logger) bool {
	var canceled bool
	tCh := time.NewTimer(defaultFwdTimout)
	select {
	case <-ctx.Done():
		canceled = true
	case <-tCh.C:
		logger.Error().Str("type", ev.Type).Msg("dead endpoint")
	case tx <- ev:
		logger.Debug().Str("type", ev.Type).Msg("event is forwarded")
	}
	tCh.Stop()
	return canceled
}
