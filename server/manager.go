package server

import (
	"math/rand"
	"sort"
	"time"
)

// Game 持有静态房间注册表与全部可变状态；所有状态修改都经由这里的入口
type Game struct {
	registry *Registry
	store    *Store
	spawner  *Spawner
	metrics  *Metrics

	now func() time.Time
}

// NewGame 创建游戏实例；rng 为 nil 时使用时间种子
func NewGame(reg *Registry, rng *rand.Rand) *Game {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Game{
		registry: reg,
		store:    NewStore(),
		spawner:  NewSpawner(rng),
		metrics:  &Metrics{},
		now:      time.Now,
	}
}

func (g *Game) Registry() *Registry { return g.registry }
func (g *Game) Metrics() *Metrics   { return g.metrics }

// Join 接入新玩家：分配 id、出生在起始房间、下发 id 与地图，并立即广播起始房间
func (g *Game) Join(conn Sender) PlayerID {
	g.store.Lock()
	defer g.store.Unlock()

	start, _ := g.registry.Room(g.registry.Start)
	id := g.store.NextID()
	pos := g.spawner.Spawn(start, g.registry, g.store.InRoom(start.ID))
	p := newPlayer(id, start.ID, pos, g.spawner.PickColor())
	g.store.Add(p, conn)

	g.sendTo(id, encode(assignIDMessage{Type: "assign_id", ID: string(id)}))
	g.sendTo(id, g.mapPayload(start))
	g.broadcastRoom(start.ID, g.snapshot(start.ID))
	g.metrics.IncConnect()
	Log.Infof("player %s connected, room=%s pos=(%.0f,%.0f)", id, start.ID, pos.X, pos.Y)
	return id
}

// Leave 移除玩家并通知其最后所在房间；重复调用无副作用
func (g *Game) Leave(id PlayerID) {
	g.store.Lock()
	defer g.store.Unlock()

	room, ok := g.store.Remove(id)
	if !ok {
		return
	}
	g.broadcastRoom(room, encode(disconnectMessage{Type: "player_disconnected", ID: string(id)}))
	g.metrics.IncDisconnect()
	Log.Infof("player %s disconnected, room=%s", id, room)
}

// HandleMessage 处理一条入站消息；返回 false 表示超速，连接应立即断开
func (g *Game) HandleMessage(id PlayerID, payload []byte) bool {
	g.store.Lock()
	defer g.store.Unlock()

	p, ok := g.store.Get(id)
	if !ok {
		// 玩家已断开，静默丢弃
		return true
	}
	if !p.Rate.Allow(g.now()) {
		g.metrics.IncRateLimited()
		Log.Warnf("player %s exceeded %d msgs/s, disconnecting", id, MaxMessagesPerSecond)
		return false
	}
	keys, ok, err := ParseInput(payload)
	if err != nil {
		g.metrics.IncMalformed()
		Log.Debugf("player %s: drop message: %v", id, err)
		return true
	}
	if ok {
		p.Keys = keys
		g.metrics.IncAccepted()
	}
	return true
}

// RoomOccupancy 单个房间的在线情况
type RoomOccupancy struct {
	Room    RoomID   `json:"room"`
	Count   int      `json:"count"`
	Players []string `json:"players"`
}

// Occupancy 返回所有房间的在线玩家（按房间 id 排序）
func (g *Game) Occupancy() []RoomOccupancy {
	g.store.Lock()
	defer g.store.Unlock()

	out := make([]RoomOccupancy, 0)
	for _, id := range g.registry.RoomIDs() {
		occ := RoomOccupancy{Room: id, Players: []string{}}
		for _, p := range g.store.InRoom(id) {
			occ.Players = append(occ.Players, string(p.ID))
		}
		sort.Strings(occ.Players)
		occ.Count = len(occ.Players)
		out = append(out, occ)
	}
	return out
}

// Online 当前在线人数
func (g *Game) Online() int {
	g.store.Lock()
	defer g.store.Unlock()
	return g.store.Len()
}

// Close 断开所有连接（进程退出时调用）
func (g *Game) Close() {
	g.store.Lock()
	conns := make([]Sender, 0, len(g.store.conns))
	for _, c := range g.store.conns {
		conns = append(conns, c)
	}
	g.store.Unlock()
	for _, c := range conns {
		c.Terminate()
	}
}
