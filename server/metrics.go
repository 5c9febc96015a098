package server

import (
	"sync/atomic"
)

// Metrics 记录运行期的关键指标（用于监控与调试）
type Metrics struct {
	TickCount      int64 // 统计的 Tick 次数
	TotalTickNs    int64 // Tick 累计耗时（纳秒）
	InputsAccepted int64 // 被接受的输入消息数
	Malformed      int64 // 无法解析或未知类型的消息数
	RateLimited    int64 // 因超速被断开的连接数
	LivenessKilled int64 // 因心跳超时被断开的连接数
	SlowDropped    int64 // 因出站队列写满被断开的连接数
	Broadcasts     int64 // 房间快照广播次数
	Transitions    int64 // 穿门次数
	Connects       int64
	Disconnects    int64
}

func (m *Metrics) IncAccepted()    { atomic.AddInt64(&m.InputsAccepted, 1) }
func (m *Metrics) IncMalformed()   { atomic.AddInt64(&m.Malformed, 1) }
func (m *Metrics) IncRateLimited() { atomic.AddInt64(&m.RateLimited, 1) }
func (m *Metrics) IncLiveness()    { atomic.AddInt64(&m.LivenessKilled, 1) }
func (m *Metrics) IncSlowDropped() { atomic.AddInt64(&m.SlowDropped, 1) }
func (m *Metrics) IncBroadcast()   { atomic.AddInt64(&m.Broadcasts, 1) }
func (m *Metrics) IncTransition()  { atomic.AddInt64(&m.Transitions, 1) }
func (m *Metrics) IncConnect()     { atomic.AddInt64(&m.Connects, 1) }
func (m *Metrics) IncDisconnect()  { atomic.AddInt64(&m.Disconnects, 1) }
func (m *Metrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *Metrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":      tick,
		"avg_tick_ms":     avgMs,
		"inputs_accepted": atomic.LoadInt64(&m.InputsAccepted),
		"malformed":       atomic.LoadInt64(&m.Malformed),
		"rate_limited":    atomic.LoadInt64(&m.RateLimited),
		"liveness_killed": atomic.LoadInt64(&m.LivenessKilled),
		"slow_dropped":    atomic.LoadInt64(&m.SlowDropped),
		"broadcasts":      atomic.LoadInt64(&m.Broadcasts),
		"transitions":     atomic.LoadInt64(&m.Transitions),
		"connects":        atomic.LoadInt64(&m.Connects),
		"disconnects":     atomic.LoadInt64(&m.Disconnects),
	}
}
