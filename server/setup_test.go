package server

import (
	"encoding/json"
	"math/rand"
	"testing"
)

const (
	tileFloor = 0
	tileWall  = 1
	tileDoor  = 4
)

var testTiles = map[int]TileType{
	tileFloor: {Walkable: true, Color: "#C2B280"},
	tileWall:  {Walkable: false, Color: "#555555"},
	tileDoor:  {Walkable: true, Color: "#8B4513", Door: true},
}

func openGrid(rows, cols int) [][]int {
	g := make([][]int, rows)
	for y := range g {
		g[y] = make([]int, cols)
	}
	return g
}

// newTestRegistry 第一个房间作为起始房间
func newTestRegistry(rooms ...*Room) *Registry {
	reg := &Registry{Start: rooms[0].ID, Tiles: testTiles, rooms: make(map[RoomID]*Room)}
	for _, r := range rooms {
		reg.rooms[r.ID] = r
	}
	return reg
}

func newTestGame(rooms ...*Room) *Game {
	return NewGame(newTestRegistry(rooms...), rand.New(rand.NewSource(1)))
}

// fakeConn 记录出站帧
type fakeConn struct {
	frames     [][]byte
	full       bool
	terminated bool
}

func (f *fakeConn) Enqueue(b []byte) bool {
	if f.full {
		return false
	}
	f.frames = append(f.frames, b)
	return true
}

func (f *fakeConn) Terminate() { f.terminated = true }

type frame struct {
	Type    string                 `json:"type"`
	ID      string                 `json:"id"`
	Layout  [][]int                `json:"layout"`
	Players map[string]PlayerState `json:"players"`
}

func (f *fakeConn) decoded(t *testing.T) []frame {
	t.Helper()
	out := make([]frame, 0, len(f.frames))
	for _, b := range f.frames {
		var fr frame
		if err := json.Unmarshal(b, &fr); err != nil {
			t.Fatalf("bad frame %s: %v", b, err)
		}
		out = append(out, fr)
	}
	return out
}

func (f *fakeConn) ofType(t *testing.T, typ string) []frame {
	t.Helper()
	var out []frame
	for _, fr := range f.decoded(t) {
		if fr.Type == typ {
			out = append(out, fr)
		}
	}
	return out
}

// place 直接放入玩家，绕过出生点随机
func place(g *Game, id PlayerID, room RoomID, pos Position) (*Player, *fakeConn) {
	conn := &fakeConn{}
	p := newPlayer(id, room, pos, "#FF0000")
	g.store.Lock()
	g.store.Add(p, conn)
	g.store.Unlock()
	return p, conn
}

// tick 推进一帧并广播，返回脏房间数
func tick(g *Game) int {
	g.store.Lock()
	defer g.store.Unlock()
	dirty := g.Tick()
	g.Flush(dirty)
	return dirty.Size()
}
