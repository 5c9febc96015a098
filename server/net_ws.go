package server

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait    = 5 * time.Second
	maxFrameSize = 1 << 16
)

// ClientConn 负责发送（写）数据到客户端的轻量包装
type ClientConn struct {
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once

	// alive 上一次 ping 之后是否收到过 pong
	alive atomic.Bool
}

func NewClientConn(ws *websocket.Conn) *ClientConn {
	c := &ClientConn{
		ws:   ws,
		send: make(chan []byte, SendQueueSize),
		done: make(chan struct{}),
	}
	c.alive.Store(true)
	return c
}

// Enqueue 将要发送的消息压入队列（非阻塞）；队列已满返回 false
func (c *ClientConn) Enqueue(b []byte) bool {
	select {
	case <-c.done:
		return true
	default:
	}
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

// Terminate 立即关闭底层连接，读写协程随之退出；可重复调用
func (c *ClientConn) Terminate() {
	c.once.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

// Heartbeat 上次 ping 未收到回应返回 false；否则发送新的 ping
func (c *ClientConn) Heartbeat() bool {
	if !c.alive.Swap(false) {
		return false
	}
	err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
	return err == nil
}

// writePump 独立协程，负责从 send 队列写出到 WS
func (c *ClientConn) writePump() {
	defer c.Terminate()
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}

// readPump 读取客户端输入并交给 Game；退出时移除玩家
func (c *ClientConn) readPump(g *Game, id PlayerID) {
	defer c.Terminate()
	defer g.Leave(id)
	c.ws.SetReadLimit(maxFrameSize)
	c.ws.SetPongHandler(func(string) error {
		c.alive.Store(true)
		return nil
	})

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				Log.Debugf("player %s read: %v", id, err)
			}
			return
		}
		if !g.HandleMessage(id, payload) {
			return
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 静态资源与 WS 同源部署，开发时允许任意来源
		return true
	},
}

// HandleWS WebSocket 接入：每个连接对应一个玩家
func (g *Game) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnf("upgrade error: %v", err)
		return
	}

	client := NewClientConn(ws)
	id := g.Join(client)

	go client.writePump()
	go client.readPump(g, id)
}
