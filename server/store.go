package server

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/zyedidia/generic/mapset"
)

// Sender 一个连接的出站端；Enqueue 不得阻塞
type Sender interface {
	Enqueue(b []byte) bool
	Terminate()
}

// Store 玩家状态存储：玩家表、连接表与房间成员索引由同一把锁保护。
// 除构造外的方法都要求调用方已持有锁。
type Store struct {
	mu      sync.Mutex
	players map[PlayerID]*Player
	conns   map[PlayerID]Sender
	members map[RoomID]mapset.Set[PlayerID]

	newID func() PlayerID
}

func NewStore() *Store {
	return &Store{
		players: make(map[PlayerID]*Player),
		conns:   make(map[PlayerID]Sender),
		members: make(map[RoomID]mapset.Set[PlayerID]),
		newID:   func() PlayerID { return PlayerID(uuid.NewString()) },
	}
}

func (s *Store) Lock()   { s.mu.Lock() }
func (s *Store) Unlock() { s.mu.Unlock() }

// NextID 生成一个当前在线玩家中未使用的 id（冲突则重试）
func (s *Store) NextID() PlayerID {
	for {
		id := s.newID()
		if _, taken := s.players[id]; !taken {
			return id
		}
	}
}

// Add 登记玩家及其连接
func (s *Store) Add(p *Player, conn Sender) {
	s.players[p.ID] = p
	if conn != nil {
		s.conns[p.ID] = conn
	}
	s.index(p.ID, p.Room)
}

// Remove 移除玩家，返回其最后所在房间
func (s *Store) Remove(id PlayerID) (RoomID, bool) {
	p, ok := s.players[id]
	if !ok {
		return "", false
	}
	s.unindex(id, p.Room)
	delete(s.players, id)
	delete(s.conns, id)
	return p.Room, true
}

func (s *Store) Get(id PlayerID) (*Player, bool) {
	p, ok := s.players[id]
	return p, ok
}

func (s *Store) Conn(id PlayerID) (Sender, bool) {
	c, ok := s.conns[id]
	return c, ok
}

// MoveRoom 更新玩家房间并同步成员索引
func (s *Store) MoveRoom(p *Player, to RoomID) {
	s.unindex(p.ID, p.Room)
	p.Room = to
	s.index(p.ID, to)
}

// InRoom 返回房间内的玩家
func (s *Store) InRoom(room RoomID) []*Player {
	set, ok := s.members[room]
	if !ok {
		return nil
	}
	out := make([]*Player, 0, set.Size())
	set.Each(func(id PlayerID) {
		out = append(out, s.players[id])
	})
	return out
}

// IDs 按 id 排序返回所有在线玩家，保证 Tick 遍历顺序稳定
func (s *Store) IDs() []PlayerID {
	ids := make([]PlayerID, 0, len(s.players))
	for id := range s.players {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Store) Len() int { return len(s.players) }

func (s *Store) index(id PlayerID, room RoomID) {
	set, ok := s.members[room]
	if !ok {
		set = mapset.New[PlayerID]()
		s.members[room] = set
	}
	set.Put(id)
}

func (s *Store) unindex(id PlayerID, room RoomID) {
	if set, ok := s.members[room]; ok {
		set.Remove(id)
		if set.Size() == 0 {
			delete(s.members, room)
		}
	}
}
