package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"ambulink/models"
	"ambulink/observability"
	"ambulink/utils"

	"go.uber.org/zap"
)

// RoomGuard decides whether actor may join room.
type RoomGuard func(ctx context.Context, actor models.Actor, room string) error

// LocationUpdater persists and announces a driver position sent over the socket.
type LocationUpdater interface {
	UpdateLocation(ctx context.Context, actor models.Actor, location models.Coordinates) error
}

var errReservedRoom = errors.New("room is joined automatically")

// Hub tracks connected clients and their room memberships.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	all     map[*Client]struct{}
	guard   RoomGuard
	locator LocationUpdater
}

// NewHub creates a hub. guard and locator may be nil.
func NewHub(guard RoomGuard, locator LocationUpdater) *Hub {
	return &Hub{
		rooms:   make(map[string]map[*Client]struct{}),
		all:     make(map[*Client]struct{}),
		guard:   guard,
		locator: locator,
	}
}

// SetLocationUpdater wires the driver location handler after construction.
func (h *Hub) SetLocationUpdater(l LocationUpdater) {
	h.mu.Lock()
	h.locator = l
	h.mu.Unlock()
}

// Register adds a client and joins its private and role rooms.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.all[client] = struct{}{}
	h.join(client, models.UserRoom(client.Actor.ID))
	h.join(client, models.RoleRoom(client.Actor.Role))
	observability.WebsocketClients.Set(float64(len(h.all)))
}

// Unregister removes a client from every room and closes its send queue.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.all[client]; !ok {
		return
	}
	for room := range client.rooms {
		h.leave(client, room)
	}
	delete(h.all, client)
	close(client.Send)
	observability.WebsocketClients.Set(float64(len(h.all)))
}

// Join subscribes client to a booking room after checking access.
func (h *Hub) Join(ctx context.Context, client *Client, room string) error {
	if reservedRoom(room) {
		return errReservedRoom
	}
	if h.guard != nil {
		if err := h.guard(ctx, client.Actor, room); err != nil {
			return err
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.all[client]; !ok {
		return nil
	}
	h.join(client, room)
	return nil
}

// Leave unsubscribes client from room.
func (h *Hub) Leave(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leave(client, room)
}

func (h *Hub) join(client *Client, room string) {
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][client] = struct{}{}
	client.rooms[room] = struct{}{}
}

func (h *Hub) leave(client *Client, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(client.rooms, room)
}

// Publish delivers the event to its room, or to everyone for broadcast
// events. Members of a booking room are checked against the guard again, so
// a client that lost access stops receiving and is removed from the room.
// Clients whose queue is full are disconnected.
func (h *Hub) Publish(ctx context.Context, event models.Event) error {
	if event.At.IsZero() {
		event.At = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	var targets map[*Client]struct{}
	var revoked map[*Client][]string
	if event.Broadcast() {
		h.mu.RLock()
		targets = h.all
		h.mu.RUnlock()
	} else {
		targets, revoked = h.resolve(ctx, event.Rooms)
	}

	var slow []*Client
	h.mu.RLock()
	for client := range targets {
		if _, ok := h.all[client]; !ok {
			continue
		}
		select {
		case client.Send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	if len(revoked) > 0 {
		h.mu.Lock()
		for client, rooms := range revoked {
			for _, room := range rooms {
				h.leave(client, room)
			}
		}
		h.mu.Unlock()
	}

	for _, client := range slow {
		utils.GetLogger().Warn("dropping slow websocket client",
			zap.String("clientId", client.ID),
			zap.String("userId", client.Actor.ID))
		h.Unregister(client)
	}
	return nil
}

// resolve collects the members of rooms. Private and role rooms are trusted;
// booking room members are kept only while the guard still admits them.
func (h *Hub) resolve(ctx context.Context, rooms []string) (map[*Client]struct{}, map[*Client][]string) {
	targets := make(map[*Client]struct{})
	pending := make(map[*Client][]string)

	h.mu.RLock()
	for _, room := range rooms {
		reserved := reservedRoom(room)
		for client := range h.rooms[room] {
			if reserved || h.guard == nil {
				targets[client] = struct{}{}
				continue
			}
			pending[client] = append(pending[client], room)
		}
	}
	h.mu.RUnlock()

	revoked := make(map[*Client][]string)
	for client, joined := range pending {
		for _, room := range joined {
			err := h.guard(ctx, client.Actor, room)
			switch {
			case err == nil:
				targets[client] = struct{}{}
			case utils.IsKind(err, utils.KindAuthorization), utils.IsKind(err, utils.KindNotFound):
				utils.GetLogger().Info("removing websocket client from room",
					zap.String("userId", client.Actor.ID),
					zap.String("room", room),
					zap.Error(err))
				revoked[client] = append(revoked[client], room)
			default:
				utils.GetLogger().Warn("room access check failed, skipping delivery",
					zap.String("userId", client.Actor.ID),
					zap.String("room", room),
					zap.Error(err))
			}
		}
	}
	return targets, revoked
}

func reservedRoom(room string) bool {
	return strings.HasPrefix(room, "user:") || strings.HasPrefix(room, "role:")
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.all)
}

// RoomCount returns the number of clients in room.
func (h *Hub) RoomCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.all))
	for c := range h.all {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		h.Unregister(c)
	}
}
