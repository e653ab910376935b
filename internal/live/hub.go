// Package live runs interactive editing sessions over websockets. Each
// connected editor drives a server-side engine; pointer and keyboard input
// arrive as messages and every change is answered with a render frame.
package live

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/wattline/wattline/backend-go/internal/engine"
	"github.com/wattline/wattline/backend-go/internal/store"
)

const loadTimeout = 10 * time.Second

type Options struct {
	AutosaveDelay time.Duration
	HistoryLimit  int
	GridSize      float64
	CanvasWidth   float64
	CanvasHeight  float64
}

func (o Options) withDefaults() Options {
	if o.AutosaveDelay <= 0 {
		o.AutosaveDelay = store.DefaultAutosaveDelay
	}
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = engine.DefaultHistoryLimit
	}
	if o.GridSize <= 0 {
		o.GridSize = engine.DefaultGridSize
	}
	if o.CanvasWidth <= 0 {
		o.CanvasWidth = 800
	}
	if o.CanvasHeight <= 0 {
		o.CanvasHeight = 600
	}
	return o
}

// Hub tracks one room per symbol being edited. A symbol has at most one
// editor; a second connection is turned away with a symbol.busy message.
type Hub struct {
	store store.Store
	opts  Options

	mu         sync.RWMutex
	rooms      map[string]*Room // symbolID -> room
	stopped    bool
	register   chan *Client
	unregister chan *Client
}

func NewHub(s store.Store, opts Options) *Hub {
	return &Hub{
		store:      s,
		opts:       opts.withDefaults(),
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Busy reports whether symbolID has a live editor.
func (h *Hub) Busy(symbolID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[symbolID]
	return ok
}

// Stop ends every session and flushes pending autosaves.
func (h *Hub) Stop() {
	h.mu.Lock()
	rooms := h.rooms
	h.rooms = make(map[string]*Room)
	h.stopped = true
	h.mu.Unlock()

	for id, room := range rooms {
		room.editor.close()
		room.close()
		slog.Info("session saved", "symbol", id)
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.RLock()
	_, busy := h.rooms[client.SymbolID]
	stopped := h.stopped
	h.mu.RUnlock()

	if stopped {
		client.close()
		return
	}
	if busy {
		client.Send(&Message{Type: TypeSymbolBusy, SymbolID: client.SymbolID})
		client.close()
		slog.Info("editor rejected, symbol busy", "user", client.UserID, "symbol", client.SymbolID)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	rec, err := h.store.Load(ctx, client.SymbolID)
	cancel()
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Error("load symbol", "symbol", client.SymbolID, "error", err)
		}
		client.Send(errorMessage(err))
		client.close()
		return
	}

	room := newRoom(client.SymbolID, rec, h.store, h.opts)
	room.editor = client

	h.mu.Lock()
	h.rooms[client.SymbolID] = room
	h.mu.Unlock()

	for _, msg := range room.welcome(client.ClientID) {
		client.Send(msg)
	}

	slog.Info("editor joined", "user", client.UserID, "symbol", client.SymbolID, "migrated", room.migrated)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.SymbolID]
	if !ok || room.editor != client {
		h.mu.Unlock()
		return
	}
	delete(h.rooms, client.SymbolID)
	h.mu.Unlock()

	client.close()
	room.close()

	slog.Info("editor left", "user", client.UserID, "symbol", client.SymbolID)
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	h.mu.RLock()
	room, ok := h.rooms[sender.SymbolID]
	h.mu.RUnlock()
	if !ok || room.editor != sender {
		return
	}

	for _, reply := range room.handle(msg) {
		sender.Send(reply)
	}
}
