package server

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
)

var (
	ErrUnknownRoom = errors.New("unknown room")
	ErrBadLayout   = errors.New("bad room layout")
	ErrBadDoor     = errors.New("bad door")
	ErrNoStartRoom = errors.New("start room not found")
)

//go:embed world.json
var defaultWorld []byte

// RoomID 房间标识
type RoomID string

// TileType 地块类型：是否可行走及展示字段
type TileType struct {
	Walkable bool   `json:"walkable"`
	Color    string `json:"color,omitempty"`
	// Door 门地块标记；传送落点不允许选在门上
	Door bool `json:"door,omitempty"`
}

// TilePos 网格坐标（列 X，行 Y）
type TilePos struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// DoorTarget 门的目标房间与锚点地块
type DoorTarget struct {
	Room RoomID `json:"room"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

// Door 单向传送门：源房间内的触发地块 → 目标房间锚点
type Door struct {
	X  int        `json:"x"`
	Y  int        `json:"y"`
	To DoorTarget `json:"to"`
}

// Room 静态房间：行优先的地块网格与门列表，加载后只读
type Room struct {
	ID     RoomID  `json:"-"`
	Layout [][]int `json:"layout"`
	Doors  []Door  `json:"doors"`
}

func (r *Room) Rows() int { return len(r.Layout) }
func (r *Room) Cols() int { return len(r.Layout[0]) }

func (r *Room) InGrid(x, y int) bool {
	return y >= 0 && y < r.Rows() && x >= 0 && x < r.Cols()
}

// DoorAt 查找触发地块为 (x,y) 的门
func (r *Room) DoorAt(x, y int) (Door, bool) {
	for _, d := range r.Doors {
		if d.X == x && d.Y == y {
			return d, true
		}
	}
	return Door{}, false
}

// Registry 房间注册表：启动时加载一次，之后不再修改
type Registry struct {
	Start RoomID
	Tiles map[int]TileType
	rooms map[RoomID]*Room
}

type registryFile struct {
	Start    RoomID              `json:"start"`
	TileSize int                 `json:"tileSize"`
	Tiles    map[string]TileType `json:"tiles"`
	Rooms    map[RoomID]*Room    `json:"rooms"`
}

// LoadRegistry 从 JSON 读取并校验房间数据
func LoadRegistry(r io.Reader) (*Registry, error) {
	var f registryFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}
	if f.TileSize != 0 && f.TileSize != TileSize {
		return nil, fmt.Errorf("%w: tile size %d, want %d", ErrBadLayout, f.TileSize, TileSize)
	}
	reg := &Registry{
		Start: f.Start,
		Tiles: make(map[int]TileType, len(f.Tiles)),
		rooms: make(map[RoomID]*Room, len(f.Rooms)),
	}
	if reg.Start == "" {
		reg.Start = DefaultStartRoom
	}
	for key, t := range f.Tiles {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("tile type %q: %w", key, err)
		}
		reg.Tiles[id] = t
	}
	for id, room := range f.Rooms {
		if room == nil || len(room.Layout) == 0 || len(room.Layout[0]) == 0 {
			return nil, fmt.Errorf("%w: room %s is empty", ErrBadLayout, id)
		}
		for y, row := range room.Layout {
			if len(row) != len(room.Layout[0]) {
				return nil, fmt.Errorf("%w: room %s row %d is ragged", ErrBadLayout, id, y)
			}
		}
		room.ID = id
		reg.rooms[id] = room
	}
	if _, ok := reg.rooms[reg.Start]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoStartRoom, reg.Start)
	}
	for _, room := range reg.rooms {
		for _, d := range room.Doors {
			if !room.InGrid(d.X, d.Y) {
				return nil, fmt.Errorf("%w: room %s trigger (%d,%d) outside grid", ErrBadDoor, room.ID, d.X, d.Y)
			}
			dest, ok := reg.rooms[d.To.Room]
			if !ok {
				return nil, fmt.Errorf("%w: room %s door to %s: %w", ErrBadDoor, room.ID, d.To.Room, ErrUnknownRoom)
			}
			if !dest.InGrid(d.To.X, d.To.Y) {
				return nil, fmt.Errorf("%w: room %s door target (%d,%d) outside %s", ErrBadDoor, room.ID, d.To.X, d.To.Y, dest.ID)
			}
		}
	}
	return reg, nil
}

// LoadRegistryFile 读取指定文件；path 为空时使用内置世界
func LoadRegistryFile(path string) (*Registry, error) {
	if path == "" {
		return LoadRegistry(bytes.NewReader(defaultWorld))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open maps: %w", err)
	}
	defer f.Close()
	return LoadRegistry(f)
}

func (reg *Registry) Room(id RoomID) (*Room, bool) {
	r, ok := reg.rooms[id]
	return r, ok
}

// RoomIDs 按字典序返回所有房间
func (reg *Registry) RoomIDs() []RoomID {
	ids := make([]RoomID, 0, len(reg.rooms))
	for id := range reg.rooms {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Walkable 未登记的地块类型视为不可行走
func (reg *Registry) Walkable(tile int) bool {
	t, ok := reg.Tiles[tile]
	return ok && t.Walkable
}

func (reg *Registry) IsDoorTile(tile int) bool {
	return reg.Tiles[tile].Door
}
