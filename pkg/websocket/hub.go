package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/fasthttp/websocket"
)

// Conn lo que el hub necesita de una conexión WebSocket
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type subscription struct {
	conn      Conn
	sessionID string
}

type envelope struct {
	sessionID string
	data      []byte
}

// Hub reparte eventos de feedback a los clientes suscritos a cada sesión
type Hub struct {
	clients    map[Conn]string // conexión -> sesión
	broadcast  chan envelope
	register   chan subscription
	unregister chan Conn
	done       chan struct{} // cerrado cuando Run termina
	mutex      sync.RWMutex
}

// Message evento enviado al shell
type Message struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[Conn]string),
		broadcast:  make(chan envelope, 64),
		register:   make(chan subscription),
		unregister: make(chan Conn),
		done:       make(chan struct{}),
	}
}

// Run atiende registros y envíos hasta que ctx termine
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return

		case sub := <-h.register:
			h.mutex.Lock()
			h.clients[sub.conn] = sub.sessionID
			total := len(h.clients)
			h.mutex.Unlock()
			log.Printf("Cliente WebSocket conectado a %s. Total: %d", sub.sessionID, total)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			total := len(h.clients)
			h.mutex.Unlock()
			log.Printf("Cliente WebSocket desconectado. Total: %d", total)

		case msg := <-h.broadcast:
			h.mutex.Lock()
			for client, sessionID := range h.clients {
				if sessionID != msg.sessionID {
					continue
				}
				if err := client.WriteMessage(websocket.TextMessage, msg.data); err != nil {
					log.Printf("Error enviando mensaje WebSocket: %v", err)
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Register suscribe conn a los eventos de sessionID. Tras Run la conexión se cierra.
func (h *Hub) Register(conn Conn, sessionID string) {
	select {
	case h.register <- subscription{conn: conn, sessionID: sessionID}:
	case <-h.done:
		conn.Close()
	}
}

func (h *Hub) Unregister(conn Conn) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Subscribers número de clientes conectados a una sesión
func (h *Hub) Subscribers(sessionID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	n := 0
	for _, id := range h.clients {
		if id == sessionID {
			n++
		}
	}
	return n
}

// Encode serializa un evento de una sesión
func Encode(sessionID, msgType string, data interface{}) ([]byte, error) {
	return json.Marshal(Message{
		Type:      msgType,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// Publish envía un evento solo a los clientes de sessionID
func (h *Hub) Publish(sessionID, msgType string, data interface{}) {
	msgData, err := Encode(sessionID, msgType, data)
	if err != nil {
		log.Printf("Error serializando mensaje: %v", err)
		return
	}
	select {
	case h.broadcast <- envelope{sessionID: sessionID, data: msgData}:
	case <-h.done:
	}
}
