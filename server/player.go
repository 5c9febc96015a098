package server

// PlayerID 表示玩家唯一标识（连接期间稳定）
type PlayerID string

// Direction 朝向
type Direction string

const (
	DirUp    Direction = "up"
	DirDown  Direction = "down"
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

// Action 当前动作，取值与客户端精灵表一致
type Action string

const (
	ActionIdle    Action = "IDLE"
	ActionRun     Action = "RUN"
	ActionAttack1 Action = "ATTACK 1"
	ActionAttack2 Action = "ATTACK 2"
)

func (a Action) IsAttack() bool {
	return a == ActionAttack1 || a == ActionAttack2
}

// Phase 服务端每 Tick 的玩家状态机
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseAttacking
	// PhaseTransitioning 刚穿过门，下一 Tick 整体跳过后自动退出
	PhaseTransitioning
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseAttacking:
		return "attacking"
	case PhaseTransitioning:
		return "transitioning"
	}
	return "unknown"
}

// phaseFor 由本 Tick 解析出的动作推导状态
func phaseFor(a Action) Phase {
	switch {
	case a.IsAttack():
		return PhaseAttacking
	case a == ActionRun:
		return PhaseRunning
	}
	return PhaseIdle
}

// palette 连接时随机分配的展示颜色
var palette = []string{"#FF0000", "#00FF00", "#0000FF", "#FFFF00", "#FF00FF", "#00FFFF"}

// Position 玩家视觉包围盒左上角（像素）
type Position struct {
	X float64
	Y float64
}

// PlayerState 为广播给客户端的可序列化状态（不含连接）
type PlayerState struct {
	ID        string    `json:"id"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Direction Direction `json:"direction"`
	Action    Action    `json:"action"`
	Color     string    `json:"color"`
	Room      RoomID    `json:"room"`
}

// Player 服务端权威状态；网络连接单独登记在 Store 中
type Player struct {
	ID        PlayerID
	Pos       Position
	Direction Direction
	Action    Action
	Phase     Phase
	Color     string
	Room      RoomID

	Keys InputSet    // 最近一次输入消息的按键集合
	Rate *RateWindow // 入站消息滑动窗口
}

func newPlayer(id PlayerID, room RoomID, pos Position, color string) *Player {
	return &Player{
		ID:        id,
		Pos:       pos,
		Direction: DirDown,
		Action:    ActionIdle,
		Phase:     PhaseIdle,
		Color:     color,
		Room:      room,
		Rate:      NewRateWindow(MaxMessagesPerSecond, RatePeriod),
	}
}

// State 导出广播快照
func (p *Player) State() PlayerState {
	return PlayerState{
		ID:        string(p.ID),
		X:         p.Pos.X,
		Y:         p.Pos.Y,
		Direction: p.Direction,
		Action:    p.Action,
		Color:     p.Color,
		Room:      p.Room,
	}
}
