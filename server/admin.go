package server

import (
	"encoding/json"
	"net/http"
)

// HandleRooms 输出各房间在线玩家（只读；世界参数与客户端共享，不支持热更新）
// GET /admin/rooms
func (g *Game) HandleRooms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"rooms": g.Occupancy()})
}

// HandleMetrics 输出运行指标
// GET /metrics
func (g *Game) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{
		"online":  g.Online(),
		"metrics": g.metrics.Snapshot(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
