package memory

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/mkruglov/randochat/backend/model"
)

var (
	ErrRoomNotFound = errors.New("room is not found")
)

// MemStore keeps active rooms in memory. Room ids are uuid v4 and are
// never reused. An auxiliary member index backs the reverse lookup
// needed on disconnect, updated together with the room map.
type MemStore struct {
	mx     *sync.Mutex
	db     map[string]*model.Room
	member map[string]string // connection id -> room id
}

func NewMemStore() *MemStore {
	return &MemStore{
		mx:     &sync.Mutex{},
		db:     make(map[string]*model.Room),
		member: make(map[string]string),
	}
}

// CreateRoom allocates a fresh room for the pair (u1, u2) and stores it.
func (ms *MemStore) CreateRoom(u1, u2 string, kind model.Kind) *model.Room {
	ms.mx.Lock()
	defer ms.mx.Unlock()

	room := &model.Room{
		ID:      uuid.NewString(),
		MemberA: u1,
		MemberB: u2,
		Kind:    kind,
	}
	ms.db[room.ID] = room
	ms.member[u1] = room.ID
	ms.member[u2] = room.ID
	return room
}

func (ms *MemStore) GetRoom(roomID string) (*model.Room, error) {
	ms.mx.Lock()
	defer ms.mx.Unlock()

	room, ok := ms.db[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// FindRoomByMember returns the room containing id, or nil.
// The disconnecting side does not carry its room id reliably,
// so disconnect handling looks its room up by identity.
func (ms *MemStore) FindRoomByMember(id string) *model.Room {
	ms.mx.Lock()
	defer ms.mx.Unlock()

	roomID, ok := ms.member[id]
	if !ok {
		return nil
	}
	return ms.db[roomID]
}

// DeleteRoom removes the room record and both member index entries.
// No-op if the room is already gone.
func (ms *MemStore) DeleteRoom(roomID string) {
	ms.mx.Lock()
	defer ms.mx.Unlock()

	room, ok := ms.db[roomID]
	if !ok {
		return
	}
	delete(ms.member, room.MemberA)
	delete(ms.member, room.MemberB)
	delete(ms.db, roomID)
}

// Count returns the number of active rooms.
func (ms *MemStore) Count() int {
	ms.mx.Lock()
	defer ms.mx.Unlock()
	return len(ms.db)
}
