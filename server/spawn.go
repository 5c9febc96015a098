package server

import "math/rand"

const spawnAttempts = 100

// tileOrigin 地块对应的居中视觉包围盒位置
func tileOrigin(tx, ty int) Position {
	return Position{
		X: float64(tx)*TileSize + (TileSize-PlayerWidth)/2,
		Y: float64(ty)*TileSize + (TileSize-PlayerHeight)/2,
	}
}

// WalkableTiles 列出房间内所有可行走地块（行优先）
func WalkableTiles(room *Room, reg *Registry) []TilePos {
	var out []TilePos
	for y, row := range room.Layout {
		for x, tile := range row {
			if reg.Walkable(tile) {
				out = append(out, TilePos{X: x, Y: y})
			}
		}
	}
	return out
}

// Spawner 随机选择出生点
type Spawner struct {
	rng *rand.Rand
}

func NewSpawner(rng *rand.Rand) *Spawner {
	return &Spawner{rng: rng}
}

// Spawn 在房间内选取一个合法出生点。
// 最多随机尝试 100 次；全部失败时退回第一个可行走地块的对齐位置（不再校验，密集地图上可能重叠）。
func (s *Spawner) Spawn(room *Room, reg *Registry, occupants []*Player) Position {
	tiles := WalkableTiles(room, reg)
	if len(tiles) == 0 {
		return Position{X: TileSize, Y: TileSize}
	}
	for i := 0; i < spawnAttempts; i++ {
		t := tiles[s.rng.Intn(len(tiles))]
		pos := tileOrigin(t.X, t.Y)
		if IsValidPosition(pos, "", room, reg, occupants) {
			return pos
		}
	}
	first := tiles[0]
	return Position{X: float64(first.X) * TileSize, Y: float64(first.Y) * TileSize}
}

// PickColor 随机展示颜色
func (s *Spawner) PickColor() string {
	return palette[s.rng.Intn(len(palette))]
}
