package server

import "testing"

func TestResolveDirectionPriority(t *testing.T) {
	tests := []struct {
		keys  InputSet
		want  Direction
		moved bool
	}{
		{0, "", false},
		{InputRight | InputLeft, DirLeft, true},
		{InputDown | InputRight, DirDown, true},
		{InputUp | InputDown | InputLeft | InputRight, DirUp, true},
		{InputSprint, "", false},
	}
	for _, tt := range tests {
		got, moved := resolveDirection(tt.keys)
		if got != tt.want || moved != tt.moved {
			t.Errorf("resolveDirection(%b) = %q,%v want %q,%v", tt.keys, got, moved, tt.want, tt.moved)
		}
	}
}

func TestResolveAction(t *testing.T) {
	if a := resolveAction(InputAttack1|InputAttack2|InputUp, true); a != ActionAttack1 {
		t.Errorf("got %q, want attack 1 priority", a)
	}
	if a := resolveAction(InputAttack2, false); a != ActionAttack2 {
		t.Errorf("got %q, want ATTACK 2", a)
	}
	if a := resolveAction(InputUp, true); a != ActionRun {
		t.Errorf("got %q, want RUN", a)
	}
	if a := resolveAction(0, false); a != ActionIdle {
		t.Errorf("got %q, want IDLE", a)
	}
}

func TestAxisDeltas(t *testing.T) {
	dx, dy := axisDeltas(InputUp | InputLeft)
	if dx != -WalkSpeed || dy != -WalkSpeed {
		t.Errorf("walk deltas = (%v,%v)", dx, dy)
	}
	dx, dy = axisDeltas(InputUp | InputDown | InputRight | InputSprint)
	if dx != RunSpeed || dy != RunSpeed {
		t.Errorf("run deltas = (%v,%v), want down/right to win", dx, dy)
	}
}

func TestAttackIsStationary(t *testing.T) {
	g := newTestGame(&Room{ID: "a", Layout: openGrid(10, 10)})
	start := tileOrigin(3, 3)
	p, _ := place(g, "p1", "a", start)
	p.Keys = ParseKeys(map[string]bool{"KeyA": true, "ArrowRight": true, "ArrowDown": true})

	if n := tick(g); n != 1 {
		t.Errorf("dirty rooms = %d, want 1", n)
	}
	if p.Action != ActionAttack1 || p.Phase != PhaseAttacking {
		t.Errorf("action = %q phase = %v, want ATTACK 1 attacking", p.Action, p.Phase)
	}
	if p.Pos != start {
		t.Errorf("attacking player moved to %v", p.Pos)
	}
	if p.Direction != DirDown {
		t.Errorf("direction = %q, want down", p.Direction)
	}

	// 持续攻击且无变化时不再广播
	if n := tick(g); n != 0 {
		t.Errorf("unchanged attack marked %d rooms dirty", n)
	}
}

func TestAxisIndependentSliding(t *testing.T) {
	room := &Room{ID: "a", Layout: openGrid(10, 10)}
	for y := range room.Layout {
		room.Layout[y][5] = tileWall
	}
	g := newTestGame(room)
	// 碰撞盒右边缘紧贴第 5 列墙左侧
	p, _ := place(g, "p1", "a", Position{X: 104, Y: 72})
	p.Keys = InputRight | InputDown

	tick(g)
	want := Position{X: 104, Y: 72 + WalkSpeed}
	if p.Pos != want {
		t.Errorf("pos = %v, want %v (y-only slide)", p.Pos, want)
	}
}

func TestBlockedByOtherPlayer(t *testing.T) {
	g := newTestGame(&Room{ID: "a", Layout: openGrid(10, 10)})
	at := tileOrigin(3, 3)
	a, _ := place(g, "a", "a", at)
	b, _ := place(g, "b", "a", Position{X: at.X + HitboxWidth, Y: at.Y})
	a.Direction, a.Action, a.Phase = DirRight, ActionRun, PhaseRunning
	a.Keys = InputRight

	if n := tick(g); n != 0 {
		t.Errorf("blocked move marked %d rooms dirty", n)
	}
	if a.Pos != at {
		t.Errorf("a moved to %v", a.Pos)
	}
	if b.Pos != (Position{X: at.X + HitboxWidth, Y: at.Y}) {
		t.Errorf("b moved to %v", b.Pos)
	}
}

func doorRooms() (*Room, *Room) {
	src := &Room{ID: "src", Layout: openGrid(10, 10), Doors: []Door{
		{X: 5, Y: 5, To: DoorTarget{Room: "dst", X: 0, Y: 0}},
	}}
	dst := &Room{ID: "dst", Layout: openGrid(10, 10)}
	dst.Layout[0][0] = tileWall
	return src, dst
}

func TestDoorTransition(t *testing.T) {
	src, dst := doorRooms()
	g := newTestGame(src, dst)
	watcher, watcherConn := place(g, "w", "src", tileOrigin(1, 1))
	// 碰撞盒中心位于 (158,170)，右移 2px 后进入地块 (5,5)
	p, conn := place(g, "p1", "src", Position{X: 110, Y: 127})
	p.Keys = InputRight

	if n := tick(g); n != 2 {
		t.Errorf("dirty rooms = %d, want origin and destination", n)
	}
	if p.Room != "dst" {
		t.Fatalf("room = %s, want dst", p.Room)
	}
	if want := tileOrigin(0, 1); p.Pos != want {
		t.Errorf("pos = %v, want %v centered on (0,1)", p.Pos, want)
	}
	if p.Keys != 0 || p.Action != ActionIdle || p.Phase != PhaseTransitioning {
		t.Errorf("keys=%b action=%q phase=%v after transition", p.Keys, p.Action, p.Phase)
	}

	maps := conn.ofType(t, "map")
	if len(maps) != 1 || maps[0].Layout[0][0] != tileWall {
		t.Errorf("expected one destination map frame, got %d", len(maps))
	}
	if len(watcherConn.ofType(t, "map")) != 0 {
		t.Error("map resync must only go to the transitioning player")
	}
	updates := watcherConn.ofType(t, "update")
	if len(updates) != 1 {
		t.Fatalf("watcher updates = %d, want 1", len(updates))
	}
	if _, ok := updates[0].Players["p1"]; ok {
		t.Error("origin snapshot still lists transitioned player")
	}
	if _, ok := updates[0].Players[string(watcher.ID)]; !ok {
		t.Error("origin snapshot missing watcher")
	}
	dstUpdates := conn.ofType(t, "update")
	if len(dstUpdates) != 1 || len(dstUpdates[0].Players) != 1 {
		t.Errorf("destination snapshot = %+v", dstUpdates)
	}

	// 下一帧整体跳过
	arrived := p.Pos
	p.Keys = InputRight
	tick(g)
	if p.Pos != arrived || p.Phase != PhaseIdle {
		t.Errorf("suppressed tick moved player to %v phase %v", p.Pos, p.Phase)
	}
	if p.Direction != DirRight {
		t.Errorf("direction changed during suppressed tick: %q", p.Direction)
	}

	tick(g)
	if p.Pos.X != arrived.X+WalkSpeed {
		t.Errorf("pos = %v, want normal movement to resume", p.Pos)
	}
	if p.Room != "dst" {
		t.Errorf("room = %s, want dst", p.Room)
	}
}

func TestArrivalTile(t *testing.T) {
	dst := &Room{ID: "dst", Layout: openGrid(3, 3)}
	reg := newTestRegistry(dst)

	// 下方是门，跳过，取上方
	dst.Layout[2][1] = tileDoor
	if got := arrivalTile(dst, reg, TilePos{X: 1, Y: 1}); got != (TilePos{X: 1, Y: 0}) {
		t.Errorf("arrival = %v, want tile above", got)
	}
	// 下方越界，取上方
	if got := arrivalTile(dst, reg, TilePos{X: 1, Y: 2}); got != (TilePos{X: 1, Y: 1}) {
		t.Errorf("arrival = %v, want tile above", got)
	}

	// 四邻都不可用时落在锚点上
	walled := &Room{ID: "w", Layout: [][]int{
		{tileWall, tileWall, tileWall},
		{tileWall, tileFloor, tileWall},
		{tileWall, tileDoor, tileWall},
	}}
	if got := arrivalTile(walled, reg, TilePos{X: 1, Y: 1}); got != (TilePos{X: 1, Y: 1}) {
		t.Errorf("arrival = %v, want anchor", got)
	}
}

func TestOneBroadcastPerDirtyRoom(t *testing.T) {
	g := newTestGame(&Room{ID: "a", Layout: openGrid(10, 10)}, &Room{ID: "b", Layout: openGrid(10, 10)})
	p1, c1 := place(g, "p1", "a", tileOrigin(1, 1))
	p2, c2 := place(g, "p2", "a", tileOrigin(4, 4))
	_, c3 := place(g, "p3", "b", tileOrigin(1, 1))
	p1.Keys = InputDown
	p2.Keys = InputRight

	if n := tick(g); n != 1 {
		t.Errorf("dirty rooms = %d, want 1", n)
	}
	for _, c := range []*fakeConn{c1, c2} {
		ups := c.ofType(t, "update")
		if len(ups) != 1 {
			t.Fatalf("updates = %d, want exactly 1", len(ups))
		}
		if len(ups[0].Players) != 2 {
			t.Errorf("snapshot lists %d players, want 2", len(ups[0].Players))
		}
		if _, ok := ups[0].Players["p3"]; ok {
			t.Error("snapshot leaked player from another room")
		}
	}
	if len(c3.frames) != 0 {
		t.Errorf("clean room received %d frames", len(c3.frames))
	}
}
