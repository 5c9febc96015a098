package server

import "math"

// Rect 轴对齐矩形（像素）
type Rect struct {
	X, Y, W, H float64
}

// HitboxAt 由视觉包围盒左上角推导碰撞盒
func HitboxAt(pos Position) Rect {
	return Rect{X: pos.X + HitboxOffsetX, Y: pos.Y + HitboxOffsetY, W: HitboxWidth, H: HitboxHeight}
}

// Overlaps 严格相交，边缘相接不算
func (a Rect) Overlaps(b Rect) bool {
	return a.X < b.X+b.W && a.X+a.W > b.X && a.Y < b.Y+b.H && a.Y+a.H > b.Y
}

func (a Rect) inCanvas() bool {
	return a.X >= 0 && a.X+a.W <= CanvasWidth && a.Y >= 0 && a.Y+a.H <= CanvasHeight
}

func (a Rect) corners() [4]Position {
	return [4]Position{
		{a.X, a.Y},
		{a.X + a.W, a.Y},
		{a.X, a.Y + a.H},
		{a.X + a.W, a.Y + a.H},
	}
}

// tileOf 像素坐标所在地块
func tileOf(x, y float64) (int, int) {
	return int(math.Floor(x / TileSize)), int(math.Floor(y / TileSize))
}

// centerTile 碰撞盒中心所在地块（用于门触发）
func centerTile(pos Position) (int, int) {
	hb := HitboxAt(pos)
	return tileOf(hb.X+hb.W/2, hb.Y+hb.H/2)
}

// IsValidPosition 判断候选位置是否合法：
// 碰撞盒须在画布内，四个角所在地块须在网格内且可行走，
// 且不得与同房间其他玩家（排除 exclude）的碰撞盒相交。
// 只采样四角，比碰撞盒更细的障碍可能被跨过，客户端采用同样的近似。
func IsValidPosition(pos Position, exclude PlayerID, room *Room, reg *Registry, occupants []*Player) bool {
	if room == nil {
		return false
	}
	hb := HitboxAt(pos)
	if !hb.inCanvas() {
		return false
	}
	for _, c := range hb.corners() {
		tx, ty := tileOf(c.X, c.Y)
		if !room.InGrid(tx, ty) {
			return false
		}
		if !reg.Walkable(room.Layout[ty][tx]) {
			return false
		}
	}
	for _, other := range occupants {
		if other.ID == exclude || other.Room != room.ID {
			continue
		}
		if hb.Overlaps(HitboxAt(other.Pos)) {
			return false
		}
	}
	return true
}
