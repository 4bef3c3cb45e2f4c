package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/food-ordering-app/models"
	"github.com/yeremiapane/food-ordering-app/utils"
)

// Event types
const (
	EventOrderPlaced    = "order_placed"
	EventOrderStatus    = "order_status"
	EventOrderCancelled = "order_cancelled"
)

// batas tulis per client kalau ctx tidak membawa deadline
const writeWait = 5 * time.Second

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Conn adalah bagian dari *websocket.Conn yang dipakai hub
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type client struct {
	role string
	// gorilla hanya mengizinkan satu writer per koneksi
	writeMu sync.Mutex
}

// Hub menampung semua client admin/staff yang membuka live order feed
type Hub struct {
	clients map[Conn]*client
	mutex   sync.Mutex
}

func New() *Hub {
	return &Hub{clients: make(map[Conn]*client)}
}

func (h *Hub) Register(conn Conn, role string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = &client{role: role}
}

func (h *Hub) Unregister(conn Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

func (h *Hub) Count() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Broadcast mengirim pesan ke semua client secara paralel. Setiap tulis dibatasi
// deadline dari ctx (atau writeWait), client yang gagal ditulis dilepas
func (h *Hub) Broadcast(ctx context.Context, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling hub message: %v", err)
		return
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(writeWait)
	}

	h.mutex.Lock()
	targets := make(map[Conn]*client, len(h.clients))
	for conn, cl := range h.clients {
		targets[conn] = cl
	}
	h.mutex.Unlock()

	var wg sync.WaitGroup
	for conn, cl := range targets {
		wg.Add(1)
		go func(conn Conn, cl *client) {
			defer wg.Done()
			if err := cl.write(conn, data, deadline); err != nil {
				utils.ErrorLogger.WithField("role", cl.role).Printf("Error sending to client: %v", err)
				h.Unregister(conn)
			}
		}(conn, cl)
	}
	wg.Wait()
}

func (cl *client) write(conn Conn, data []byte, deadline time.Time) error {
	cl.writeMu.Lock()
	defer cl.writeMu.Unlock()
	if err := conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

func orderPayload(order *models.Order, from models.OrderStatus, by, note string) map[string]interface{} {
	return map[string]interface{}{
		"order_id":    order.ID,
		"code":        order.Code,
		"customer":    order.CustomerName,
		"from_status": from,
		"to_status":   order.Status,
		"final_total": order.FinalTotal,
		"changed_by":  by,
		"note":        note,
	}
}

func (h *Hub) NotifyOrderPlaced(ctx context.Context, order *models.Order) error {
	h.Broadcast(ctx, Message{Event: EventOrderPlaced, Data: orderPayload(order, "", "", "")})
	return nil
}

func (h *Hub) NotifyStatusChange(ctx context.Context, order *models.Order, from models.OrderStatus, changedBy, note string) error {
	h.Broadcast(ctx, Message{Event: EventOrderStatus, Data: orderPayload(order, from, changedBy, note)})
	return nil
}

func (h *Hub) NotifyCancellation(ctx context.Context, order *models.Order, from models.OrderStatus, cancelledBy, reason string) error {
	h.Broadcast(ctx, Message{Event: EventOrderCancelled, Data: orderPayload(order, from, cancelledBy, reason)})
	return nil
}
