package socket

import (
	"net/http"
	"notion-mini/core"

	"github.com/sirupsen/logrus"
	"github.com/zishang520/engine.io/v2/types"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

const (
	// Room is joined by every client.
	Room = socketio.Room("pages")
	// EventPages carries the full page sequence.
	EventPages = "pages"
)

type Store interface {
	Pages() []core.Page
	Subscribe(fn core.Listener) (unsubscribe func())
}

// Hub pushes the page sequence to socket.io clients: once on connection and
// again after every change to the store.
type Hub struct {
	io          *socketio.Server
	store       Store
	emit        emitFunc
	unsubscribe func()
}

type emitFunc func(room socketio.Room, ev string, args ...any)

// NewHub subscribes to store. The subscription runs under the store lock, so
// the emit must stay non-blocking.
func NewHub(store Store) *Hub {
	opts := socketio.DefaultServerOptions()
	opts.SetMaxHttpBufferSize(5000000)
	opts.SetPath("/socket.io")
	opts.SetAllowEIO3(true)
	opts.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})
	ioo := socketio.NewServer(nil, opts)

	h := newHub(ioo, store, func(room socketio.Room, ev string, args ...any) {
		ioo.To(room).Emit(ev, args...)
	})

	ioo.On("connection", func(clients ...any) {
		socket := clients[0].(*socketio.Socket)
		me := socket.Id()
		logrus.WithField("socket_id", me).Debug("Client connected")

		socket.Join(Room)
		h.welcome(me)

		socket.On("disconnect", func(datas ...any) {
			logrus.WithField("socket_id", me).Debug("Client disconnected")
			socket.RemoveAllListeners("")
			socket.Disconnect(true)
		})
	})
	return h
}

func newHub(ioo *socketio.Server, store Store, emit emitFunc) *Hub {
	h := &Hub{io: ioo, store: store, emit: emit}
	h.unsubscribe = store.Subscribe(func(list []core.Page) {
		h.emit(Room, EventPages, list)
	})
	return h
}

// welcome sends the current pages to a newly connected socket through its
// own room.
func (h *Hub) welcome(id socketio.SocketId) {
	h.emit(socketio.Room(id), EventPages, h.store.Pages())
}

func (h *Hub) Handler() http.Handler {
	return h.io.ServeHandler(nil)
}

func (h *Hub) Close() {
	h.unsubscribe()
	h.io.Close(nil)
}
