package server

import (
	"context"
	"time"

	"github.com/zyedidia/generic/mapset"
)

// directionOrder 朝向判定优先级：上、下、左、右，每 Tick 只取第一个
var directionOrder = []struct {
	bit InputSet
	dir Direction
}{
	{InputUp, DirUp},
	{InputDown, DirDown},
	{InputLeft, DirLeft},
	{InputRight, DirRight},
}

func resolveDirection(keys InputSet) (Direction, bool) {
	for _, d := range directionOrder {
		if keys.Has(d.bit) {
			return d.dir, true
		}
	}
	return "", false
}

func resolveAction(keys InputSet, moved bool) Action {
	switch {
	case keys.Has(InputAttack1):
		return ActionAttack1
	case keys.Has(InputAttack2):
		return ActionAttack2
	case moved:
		return ActionRun
	}
	return ActionIdle
}

// axisDeltas 各轴位移可叠加；同轴相反方向同时按下时下/右优先
func axisDeltas(keys InputSet) (dx, dy float64) {
	speed := WalkSpeed
	if keys.Has(InputSprint) {
		speed = RunSpeed
	}
	if keys.Has(InputUp) {
		dy = -speed
	}
	if keys.Has(InputDown) {
		dy = speed
	}
	if keys.Has(InputLeft) {
		dx = -speed
	}
	if keys.Has(InputRight) {
		dx = speed
	}
	return dx, dy
}

// StartTicker 启动 Tick 循环（单线程推进世界），ctx 取消后退出
func (g *Game) StartTicker(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// 核心循环：读取输入 → 更新世界 → 广播脏房间
				start := time.Now()
				g.store.Lock()
				g.Flush(g.Tick())
				g.store.Unlock()
				g.metrics.AddTick(time.Since(start).Nanoseconds())
			}
		}
	}()
}

// Tick 推进一帧，返回需要广播的房间（调用方须持有 store 锁）
func (g *Game) Tick() mapset.Set[RoomID] {
	dirty := mapset.New[RoomID]()
	for _, id := range g.store.IDs() {
		if p, ok := g.store.Get(id); ok {
			g.step(p, dirty)
		}
	}
	return dirty
}

func (g *Game) step(p *Player, dirty mapset.Set[RoomID]) {
	if p.Phase == PhaseTransitioning {
		p.Phase = PhaseIdle
		return
	}

	oldDir, oldAction := p.Direction, p.Action
	dir, moved := resolveDirection(p.Keys)
	if moved {
		p.Direction = dir
	}
	p.Action = resolveAction(p.Keys, moved)
	p.Phase = phaseFor(p.Action)
	changed := p.Direction != oldDir || p.Action != oldAction

	if p.Phase == PhaseAttacking {
		// 攻击时原地不动
		if changed {
			dirty.Put(p.Room)
		}
		return
	}

	dx, dy := axisDeltas(p.Keys)
	posChanged := g.moveAxes(p, dx, dy)
	if changed || posChanged {
		dirty.Put(p.Room)
	}
	if posChanged {
		g.checkDoor(p, dirty)
	}
}

// moveAxes 分轴移动：先 x 后 y，各自校验，失败只回退该轴
func (g *Game) moveAxes(p *Player, dx, dy float64) bool {
	room, ok := g.registry.Room(p.Room)
	if !ok {
		return false
	}
	occupants := g.store.InRoom(p.Room)
	changed := false
	if dx != 0 {
		cand := Position{X: p.Pos.X + dx, Y: p.Pos.Y}
		if IsValidPosition(cand, p.ID, room, g.registry, occupants) {
			p.Pos = cand
			changed = true
		}
	}
	if dy != 0 {
		cand := Position{X: p.Pos.X, Y: p.Pos.Y + dy}
		if IsValidPosition(cand, p.ID, room, g.registry, occupants) {
			p.Pos = cand
			changed = true
		}
	}
	return changed
}

// arrivalOffsets 落点搜索顺序：下、上、右、左
var arrivalOffsets = []TilePos{{X: 0, Y: 1}, {X: 0, Y: -1}, {X: 1, Y: 0}, {X: -1, Y: 0}}

// arrivalTile 在目标锚点四邻中找第一个可行走且不是门的地块；都不满足时落在锚点上
func arrivalTile(dest *Room, reg *Registry, anchor TilePos) TilePos {
	for _, off := range arrivalOffsets {
		x, y := anchor.X+off.X, anchor.Y+off.Y
		if !dest.InGrid(x, y) {
			continue
		}
		tile := dest.Layout[y][x]
		if reg.Walkable(tile) && !reg.IsDoorTile(tile) {
			return TilePos{X: x, Y: y}
		}
	}
	return anchor
}

// checkDoor 碰撞盒中心踩到门时传送到目标房间
func (g *Game) checkDoor(p *Player, dirty mapset.Set[RoomID]) {
	room, ok := g.registry.Room(p.Room)
	if !ok {
		return
	}
	tx, ty := centerTile(p.Pos)
	door, ok := room.DoorAt(tx, ty)
	if !ok {
		return
	}
	dest, ok := g.registry.Room(door.To.Room)
	if !ok {
		return
	}
	at := arrivalTile(dest, g.registry, TilePos{X: door.To.X, Y: door.To.Y})

	from := p.Room
	g.store.MoveRoom(p, dest.ID)
	p.Pos = tileOrigin(at.X, at.Y)
	p.Keys = 0
	p.Action = ActionIdle
	p.Phase = PhaseTransitioning

	g.sendTo(p.ID, g.mapPayload(dest))
	dirty.Put(from)
	dirty.Put(dest.ID)
	g.metrics.IncTransition()
	Log.Debugf("player %s: %s -> %s at tile (%d,%d)", p.ID, from, dest.ID, at.X, at.Y)
}
