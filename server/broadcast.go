package server

import (
	"encoding/json"

	"github.com/zyedidia/generic/mapset"
)

type assignIDMessage struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type mapMessage struct {
	Type   string           `json:"type"`
	Layout [][]int          `json:"layout"`
	Tiles  map[int]TileType `json:"tiles"`
}

type updateMessage struct {
	Type    string                 `json:"type"`
	Players map[string]PlayerState `json:"players"`
}

type disconnectMessage struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

func encode(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		// 出站消息均为内部类型，失败只可能是编程错误
		Log.Errorf("encode %T: %v", v, err)
		return nil
	}
	return b
}

func (g *Game) mapPayload(room *Room) []byte {
	return encode(mapMessage{Type: "map", Layout: room.Layout, Tiles: g.registry.Tiles})
}

// sendTo 单播；队列写满的慢连接直接断开，避免阻塞 Tick
func (g *Game) sendTo(id PlayerID, b []byte) {
	conn, ok := g.store.Conn(id)
	if !ok || b == nil {
		return
	}
	if !conn.Enqueue(b) {
		g.metrics.IncSlowDropped()
		Log.Warnf("player %s send queue full, dropping connection", id)
		conn.Terminate()
	}
}

// broadcastRoom 向房间内所有连接发送同一份数据
func (g *Game) broadcastRoom(room RoomID, b []byte) {
	for _, p := range g.store.InRoom(room) {
		g.sendTo(p.ID, b)
	}
}

// snapshot 构造房间全部在场玩家的快照
func (g *Game) snapshot(room RoomID) []byte {
	players := make(map[string]PlayerState)
	for _, p := range g.store.InRoom(room) {
		players[string(p.ID)] = p.State()
	}
	return encode(updateMessage{Type: "update", Players: players})
}

// Flush 每个脏房间只广播一次全量快照（调用方须持有 store 锁）
func (g *Game) Flush(dirty mapset.Set[RoomID]) {
	dirty.Each(func(room RoomID) {
		g.broadcastRoom(room, g.snapshot(room))
		g.metrics.IncBroadcast()
	})
}
