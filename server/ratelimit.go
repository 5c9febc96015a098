package server

import "time"

// RateWindow 入站消息的滑动时间窗口计数
type RateWindow struct {
	limit  int
	window time.Duration
	stamps []time.Time
}

func NewRateWindow(limit int, window time.Duration) *RateWindow {
	return &RateWindow{limit: limit, window: window, stamps: make([]time.Time, 0, limit)}
}

// Allow 记录一次到达；窗口内已有 limit 条时返回 false（该条不计入）
func (w *RateWindow) Allow(now time.Time) bool {
	keep := w.stamps[:0]
	for _, t := range w.stamps {
		if now.Sub(t) < w.window {
			keep = append(keep, t)
		}
	}
	w.stamps = keep
	if len(w.stamps) >= w.limit {
		return false
	}
	w.stamps = append(w.stamps, now)
	return true
}

// Len 当前窗口内的消息数
func (w *RateWindow) Len() int { return len(w.stamps) }
