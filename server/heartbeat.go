package server

import (
	"context"
	"time"
)

type heartbeater interface {
	Sender
	Heartbeat() bool
}

// StartHeartbeat 每隔 interval ping 所有连接；上一轮未回应的连接先被断开
func (g *Game) StartHeartbeat(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				g.heartbeat()
			}
		}
	}()
}

func (g *Game) heartbeat() {
	type entry struct {
		id   PlayerID
		conn heartbeater
	}
	// 只在锁内收集连接，ping 在锁外发送，避免网络写阻塞 Tick
	g.store.Lock()
	conns := make([]entry, 0, len(g.store.conns))
	for id, c := range g.store.conns {
		if hb, ok := c.(heartbeater); ok {
			conns = append(conns, entry{id, hb})
		}
	}
	g.store.Unlock()

	for _, e := range conns {
		if !e.conn.Heartbeat() {
			g.metrics.IncLiveness()
			Log.Infof("player %s missed heartbeat, terminating", e.id)
			e.conn.Terminate()
		}
	}
}
