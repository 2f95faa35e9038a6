/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package feed fans committed marketplace events out to websocket clients.
package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"agon-market-go/internal/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	eventBuffer  = 256
	clientBuffer = 32
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub broadcasts every published event to every connected client. Clients
// that fall behind are disconnected.
type Hub struct {
	register   chan *client
	unregister chan *client
	events     chan models.MarketEvent
	done       chan struct{}
	clients    map[*client]struct{}
	connected  atomic.Int64
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *client),
		unregister: make(chan *client),
		events:     make(chan models.MarketEvent, eventBuffer),
		done:       make(chan struct{}),
		clients:    make(map[*client]struct{}),
	}
}

// Publish queues an event for broadcast. It never blocks; when the queue is
// full the event is dropped.
func (h *Hub) Publish(event models.MarketEvent) {
	select {
	case h.events <- event:
	default:
		zap.L().Warn("Feed queue full, dropping event",
			zap.String("type", string(event.Type)),
			zap.String("nft_id", event.NftId))
	}
}

// Clients reports how many websocket clients are connected
func (h *Hub) Clients() int {
	return int(h.connected.Load())
}

// Run owns the client set until ctx is cancelled, then disconnects everyone.
// Call it once.
func (h *Hub) Run(ctx context.Context) {
	zap.L().Info("Feed hub started")
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			zap.L().Info("Feed hub stopped")
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.connected.Store(int64(len(h.clients)))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
			}

		case event := <-h.events:
			payload, err := json.Marshal(event)
			if err != nil {
				zap.L().Error("Failed to encode feed event", zap.Error(err))
				continue
			}
			for c := range h.clients {
				select {
				case c.send <- payload:
				default:
					zap.L().Warn("Dropping slow feed client", zap.String("remote", c.conn.RemoteAddr().String()))
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
	h.connected.Store(int64(len(h.clients)))
}

// ServeWS upgrades the request and streams events to it until either side
// closes the connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.L().Warn("Failed to upgrade feed connection", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	case <-r.Context().Done():
		conn.Close()
		return
	}

	go h.writePump(c)
	h.readPump(c)
}

// readPump only watches for close frames and pongs; clients send nothing else
func (h *Hub) readPump(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.L().Debug("Feed client closed unexpectedly", zap.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
