package model

import "encoding/json"

// Kind selects the waiting queue and the post-pairing protocol.
type Kind string

const (
	KindText  Kind = "text"
	KindVideo Kind = "video"
)

// Room is one active paired session between two connections.
type Room struct {
	ID      string `json:"room_id"`
	MemberA string `json:"member_a"`
	MemberB string `json:"member_b"`
	Kind    Kind   `json:"kind"`
}

// Other returns the peer of id, or empty string if id is not a member.
func (r *Room) Other(id string) string {
	switch id {
	case r.MemberA:
		return r.MemberB
	case r.MemberB:
		return r.MemberA
	}
	return ""
}

// HasMember reports whether id is one of the room's two members.
func (r *Room) HasMember(id string) bool {
	return id == r.MemberA || id == r.MemberB
}

// Client -> server event types.
const (
	EventJoinText     = "join-text"
	EventJoinVideo    = "join-video"
	EventChatMessage  = "chat-message"
	EventTyping       = "typing"
	EventStopTyping   = "stop-typing"
	EventOffer        = "offer"
	EventAnswer       = "answer"
	EventICECandidate = "ice-candidate"
	EventSkip         = "skip"
)

// Server -> client event types.
const (
	EventWaiting          = "waiting"
	EventMatchFound       = "match-found"
	EventReady            = "ready"
	EventPeerDisconnected = "peer-disconnected"
)

// Event is a single message on a connection wire, in either direction.
// Payload stays opaque for signaling events (offer/answer/ice-candidate);
// the server never inspects it.
type Event struct {
	SRC     string          `json:"-"` // re-assigned by server from the websocket session
	Type    string          `json:"type"`
	Room    string          `json:"room,omitempty"`
	Message string          `json:"message,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ReadyPayload tells a video session member whether it originates the offer.
type ReadyPayload struct {
	Initiator bool `json:"initiator"`
}

type Wire struct {
	RX chan Event
	TX chan Event
}

func NewWire() Wire {
	return Wire{
		RX: make(chan Event),
		TX: make(chan Event),
	}
}
