package events

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/wanamsabukid860/wanam-sa-bukid-booking/models"
)

// Event types
const (
	EventSessionCreated  = "session_created"
	EventSessionUpdate   = "session_update"
	EventSessionRepaired = "sessions_repaired"
	EventOrderCreated    = "order_created"
	EventBookingCreated  = "booking_created"
	EventBookingUpdate   = "booking_update"
	EventDashboardUpdate = "dashboard_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds every connected dashboard client (admin, staff) and fans
// broadcasts out to them.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var hub = &Hub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient adds a connection to the set with its role
func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = role
}

// UnregisterClient releases a connection
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastSessionUpdate -> session lifecycle change (create/pause/resume/stop/reset)
func BroadcastSessionUpdate(session models.OrderSession) {
	broadcast(Message{
		Event: EventSessionUpdate,
		Data:  session,
	})
}

// BroadcastSessionsRepaired -> result of a repair sweep
func BroadcastSessionsRepaired(fixedCount int64) {
	broadcast(Message{
		Event: EventSessionRepaired,
		Data:  map[string]int64{"fixed_count": fixedCount},
	})
}

// BroadcastOrderCreated -> new order placed from a table
func BroadcastOrderCreated(order models.Order) {
	broadcast(Message{
		Event: EventOrderCreated,
		Data:  order,
	})
}

// BroadcastBookingCreated -> new reservation made
func BroadcastBookingCreated(booking models.Booking) {
	broadcast(Message{
		Event: EventBookingCreated,
		Data:  booking,
	})
}

// BroadcastBookingUpdate -> reservation edited or status changed
func BroadcastBookingUpdate(booking models.Booking) {
	broadcast(Message{
		Event: EventBookingUpdate,
		Data:  booking,
	})
}

// BroadcastDashboardUpdate -> refreshed dashboard stats
func BroadcastDashboardUpdate(data interface{}) {
	broadcast(Message{
		Event: EventDashboardUpdate,
		Data:  data,
	})
}

// BroadcastMessage -> generic broadcast
func BroadcastMessage(msg Message) {
	broadcast(msg)
}

func broadcast(msg Message) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	for conn := range hub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Error sending message to client: %v", err)
			continue
		}
	}
}
