// Package service implements the matchmaking core: per-kind FIFO
// queues, pairing, room lifecycle and in-session event relay.
//
// Every mutation of queue or room state runs under one mutex, so
// "enqueue then try-match" and "destroy room, re-queue, try-match"
// are each atomic relative to all other events. The switch and the
// room store guard their own maps, but cross-structure invariants
// (an identity is never in a queue and a room at once) hold only
// because this package serializes the whole path.
package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/mkruglov/randochat/backend/matchmaking"
	"github.com/mkruglov/randochat/backend/model"
	"github.com/rs/zerolog"
)

const waitingMessage = "Finding a match for you..."

type (
	RoomStore interface {
		CreateRoom(u1, u2 string, kind model.Kind) *model.Room
		GetRoom(roomID string) (*model.Room, error)
		FindRoomByMember(id string) *model.Room
		DeleteRoom(roomID string)
		Count() int
	}

	Switch interface {
		Connect(connID string, wire model.Wire)
		Disconnect(connID string)
		Has(connID string) bool
		JoinRoom(roomID, connID string)
		LeaveRoom(roomID, connID string)
		Send(ctx context.Context, ev model.Event, connID string)
		Broadcast(ctx context.Context, ev model.Event, roomID string)
	}

	Service struct {
		store  RoomStore
		sw     Switch
		mx     sync.Mutex
		queues map[model.Kind]*matchmaking.Queue
		logger zerolog.Logger
	}

	Config struct {
		RoomStore RoomStore
		Switch    Switch
		Logger    *zerolog.Logger
	}

	Stats struct {
		TextWaiting  int `json:"text_waiting"`
		VideoWaiting int `json:"video_waiting"`
		Rooms        int `json:"rooms"`
	}
)

func NewService(cfg Config) *Service {
	return &Service{
		store: cfg.RoomStore,
		sw:    cfg.Switch,
		queues: map[model.Kind]*matchmaking.Queue{
			model.KindText:  matchmaking.NewQueue(),
			model.KindVideo: matchmaking.NewQueue(),
		},
		logger: cfg.Logger.With().Str("component", "matchmaking").Logger(),
	}
}

// CreateSession registers the connection wire and starts draining its
// inbound events until ctx is canceled.
func (svc *Service) CreateSession(ctx context.Context, connID string, wire model.Wire) {
	svc.sw.Connect(connID, wire)
	svc.logger.Debug().
		Str("connID", connID).
		Msg("session created")
	go svc.dispatch(ctx, wire.RX)
}

// DeleteSession runs the disconnect lifecycle for connID and removes
// its wire. Called by the transport once the connection is gone.
func (svc *Service) DeleteSession(ctx context.Context, connID string) {
	svc.disconnect(ctx, connID)
	svc.sw.Disconnect(connID)
	svc.logger.Debug().
		Str("connID", connID).
		Msg("session deleted")
}

func (svc *Service) dispatch(ctx context.Context, rx <-chan model.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-rx:
			if ev.SRC == "" {
				svc.logger.Error().Msg("event with empty src")
				continue
			}
			svc.HandleEvent(ctx, ev)
		}
	}
}

// HandleEvent routes one inbound event. Malformed events (missing room
// id, empty chat text, empty signaling body) are dropped without any
// response to the sender.
func (svc *Service) HandleEvent(ctx context.Context, ev model.Event) {
	switch ev.Type {
	case model.EventJoinText:
		svc.join(ctx, ev.SRC, model.KindText)
	case model.EventJoinVideo:
		svc.join(ctx, ev.SRC, model.KindVideo)
	case model.EventChatMessage:
		if ev.Room == "" || ev.Message == "" {
			return
		}
		svc.relay(ctx, ev)
	case model.EventTyping, model.EventStopTyping:
		if ev.Room == "" {
			return
		}
		svc.relay(ctx, ev)
	case model.EventOffer, model.EventAnswer, model.EventICECandidate:
		if ev.Room == "" || len(ev.Payload) == 0 {
			return
		}
		svc.relay(ctx, ev)
	case model.EventSkip:
		if ev.Room == "" {
			return
		}
		svc.skip(ctx, ev.Room)
	default:
		svc.logger.Debug().
			Str("type", ev.Type).
			Str("src", ev.SRC).
			Msg("unknown event type dropped")
	}
}

// join puts connID at the back of the kind queue and attempts a match.
// A connection that was still paired leaves its room first, with its
// peer re-queued, so that no identity sits in a queue and a room at
// the same time.
func (svc *Service) join(ctx context.Context, connID string, kind model.Kind) {
	svc.mx.Lock()
	defer svc.mx.Unlock()

	if room := svc.store.FindRoomByMember(connID); room != nil {
		survivor := room.Other(connID)
		svc.teardown(ctx, room)
		svc.queues[room.Kind].Enqueue(survivor)
		svc.tryMatch(ctx, room.Kind)
	}

	svc.queues[otherKind(kind)].Remove(connID)
	svc.queues[kind].Enqueue(connID)
	svc.sw.Send(ctx, model.Event{
		Type:    model.EventWaiting,
		Message: waitingMessage,
	}, connID)
	svc.logger.Debug().
		Str("connID", connID).
		Str("kind", string(kind)).
		Msg("waiting for a match")
	svc.tryMatch(ctx, kind)
}

// tryMatch drains the queue two-at-a-time into new rooms until fewer
// than two live entries remain. It loops because lifecycle handling
// re-queues participants in batches.
func (svc *Service) tryMatch(ctx context.Context, kind model.Kind) {
	q := svc.queues[kind]
	for q.Len() >= 2 {
		u1 := q.Dequeue()
		u2 := q.Dequeue()
		if !svc.sw.Has(u1) || !svc.sw.Has(u2) {
			// An identity vanished between enqueue and match.
			// Keep the live half at the head, drop the other.
			if svc.sw.Has(u1) {
				q.PushFront(u1)
			} else if svc.sw.Has(u2) {
				q.PushFront(u2)
			}
			continue
		}

		room := svc.store.CreateRoom(u1, u2, kind)
		svc.sw.JoinRoom(room.ID, u1)
		svc.sw.JoinRoom(room.ID, u2)
		svc.sw.Send(ctx, model.Event{Type: model.EventMatchFound, Room: room.ID}, u1)
		svc.sw.Send(ctx, model.Event{Type: model.EventMatchFound, Room: room.ID}, u2)

		if kind == model.KindVideo {
			// The first-dequeued member originates the offer.
			svc.sw.Send(ctx, readyEvent(true), u1)
			svc.sw.Send(ctx, readyEvent(false), u2)
		}

		svc.logger.Info().
			Str("roomID", room.ID).
			Str("u1", u1).
			Str("u2", u2).
			Str("kind", string(kind)).
			Msg("matched")
	}
}

// relay forwards an in-session event verbatim to the other room
// member. Stale room ids and non-member senders are a no-op.
func (svc *Service) relay(ctx context.Context, ev model.Event) {
	svc.mx.Lock()
	defer svc.mx.Unlock()

	room, err := svc.store.GetRoom(ev.Room)
	if err != nil || !room.HasMember(ev.SRC) {
		svc.logger.Debug().
			Str("roomID", ev.Room).
			Str("src", ev.SRC).
			Str("type", ev.Type).
			Msg("relay dropped, no such room or sender not a member")
		return
	}
	svc.sw.Broadcast(ctx, ev, room.ID)
}

// skip tears down the room and re-queues both former members.
// Unknown room id means the room was already destroyed: no-op.
func (svc *Service) skip(ctx context.Context, roomID string) {
	svc.mx.Lock()
	defer svc.mx.Unlock()

	room, err := svc.store.GetRoom(roomID)
	if err != nil {
		svc.logger.Debug().
			Str("roomID", roomID).
			Msg("skip on unknown room ignored")
		return
	}
	u1, u2, kind := room.MemberA, room.MemberB, room.Kind
	svc.teardown(ctx, room)
	svc.queues[kind].Enqueue(u1)
	svc.queues[kind].Enqueue(u2)
	svc.logger.Debug().
		Str("roomID", roomID).
		Msg("room skipped, both members re-queued")
	svc.tryMatch(ctx, kind)
}

// disconnect removes connID from every queue and, if it was paired,
// tears down the room and re-queues only the other member.
func (svc *Service) disconnect(ctx context.Context, connID string) {
	svc.mx.Lock()
	defer svc.mx.Unlock()

	for _, q := range svc.queues {
		q.Remove(connID)
	}

	room := svc.store.FindRoomByMember(connID)
	if room == nil {
		return
	}
	survivor := room.Other(connID)
	kind := room.Kind
	svc.teardown(ctx, room)
	svc.queues[kind].Enqueue(survivor)
	svc.logger.Debug().
		Str("connID", connID).
		Str("survivor", survivor).
		Msg("member disconnected, survivor re-queued")
	svc.tryMatch(ctx, kind)
}

// teardown notifies the full room scope, then revokes membership and
// deletes the record. Notification goes first so both members, the
// leaving one included, still receive it.
func (svc *Service) teardown(ctx context.Context, room *model.Room) {
	svc.sw.Broadcast(ctx, model.Event{Type: model.EventPeerDisconnected}, room.ID)
	svc.sw.LeaveRoom(room.ID, room.MemberA)
	svc.sw.LeaveRoom(room.ID, room.MemberB)
	svc.store.DeleteRoom(room.ID)
}

// Stats reports current queue lengths and the live room count.
func (svc *Service) Stats() Stats {
	svc.mx.Lock()
	defer svc.mx.Unlock()
	return Stats{
		TextWaiting:  svc.queues[model.KindText].Len(),
		VideoWaiting: svc.queues[model.KindVideo].Len(),
		Rooms:        svc.store.Count(),
	}
}

func readyEvent(initiator bool) model.Event {
	b, _ := json.Marshal(model.ReadyPayload{Initiator: initiator})
	return model.Event{Type: model.EventReady, Payload: b}
}

func otherKind(kind model.Kind) model.Kind {
	if kind == model.KindText {
		return model.KindVideo
	}
	return model.KindText
}
