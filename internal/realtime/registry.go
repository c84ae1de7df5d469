package realtime

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/teamhive/hive-go-api/internal/dto"
)

// Registry tracks, per room key, the set of currently connected user
// identities and their sessions. It owns only ephemeral presence: rooms
// are rebuilt from scratch on reconnect and never persisted.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*room
	log   zerolog.Logger
}

type room struct {
	order   []string
	members map[string]*roomMember
}

type roomMember struct {
	userID   string
	name     string
	sessions map[*Session]struct{}
}

// NewRegistry creates an empty presence registry.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		rooms: make(map[string]*room),
		log:   logger.With().Str("component", "room_registry").Logger(),
	}
}

// Join adds the session to the room. Joining twice with the same identity
// never duplicates the presence entry. Returns the updated snapshot.
func (r *Registry) Join(key string, s *Session) []dto.UserRef {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[key]
	if !ok {
		rm = &room{members: make(map[string]*roomMember)}
		r.rooms[key] = rm
	}

	member, ok := rm.members[s.UserID()]
	if !ok {
		member = &roomMember{userID: s.UserID(), name: s.UserName(), sessions: make(map[*Session]struct{})}
		rm.members[s.UserID()] = member
		rm.order = append(rm.order, s.UserID())
	}
	member.sessions[s] = struct{}{}

	r.log.Debug().Str("room", key).Str("user_id", s.UserID()).Msg("joined room")
	return rm.snapshot()
}

// Leave removes the session from the room; the identity disappears once
// its last session is gone. No-op when absent.
func (r *Registry) Leave(key string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(key, s)
}

// Snapshot returns the ordered list of present identities.
func (r *Registry) Snapshot(key string) []dto.UserRef {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, ok := r.rooms[key]
	if !ok {
		return nil
	}
	return rm.snapshot()
}

// DropSession sweeps the session out of every room it was tracked in.
// Used on disconnect so abrupt drops leave no stale presence behind.
func (r *Registry) DropSession(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.rooms {
		r.leaveLocked(key, s)
	}
}

// Sessions returns every session currently in the room.
func (r *Registry) Sessions(key string) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, ok := r.rooms[key]
	if !ok {
		return nil
	}

	sessions := make([]*Session, 0, len(rm.members))
	for _, userID := range rm.order {
		for session := range rm.members[userID].sessions {
			sessions = append(sessions, session)
		}
	}
	return sessions
}

func (r *Registry) leaveLocked(key string, s *Session) {
	rm, ok := r.rooms[key]
	if !ok {
		return
	}

	member, ok := rm.members[s.UserID()]
	if !ok {
		return
	}

	delete(member.sessions, s)
	if len(member.sessions) > 0 {
		return
	}

	delete(rm.members, s.UserID())
	for i, userID := range rm.order {
		if userID == s.UserID() {
			rm.order = append(rm.order[:i], rm.order[i+1:]...)
			break
		}
	}
	if len(rm.members) == 0 {
		delete(r.rooms, key)
	}
}

func (rm *room) snapshot() []dto.UserRef {
	users := make([]dto.UserRef, 0, len(rm.order))
	for _, userID := range rm.order {
		member := rm.members[userID]
		users = append(users, dto.UserRef{ID: member.userID, Name: member.name})
	}
	return users
}
