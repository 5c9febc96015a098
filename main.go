package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"miniworld/server"
)

// 入口：加载房间数据，启动 Tick 与心跳，提供 HTTP + WebSocket 服务
func main() {
	cfg := server.ConfigFromEnv()
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "server listen address, e.g. :8080 (default from PORT)")
	flag.StringVar(&cfg.LogFile, "log", cfg.LogFile, "log file path")
	flag.StringVar(&cfg.MapsFile, "maps", cfg.MapsFile, "room registry JSON file (default: embedded world)")
	flag.Parse()

	if err := server.InitLogger(cfg.LogFile, cfg.LogLevel); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	reg, err := server.LoadRegistryFile(cfg.MapsFile)
	if err != nil {
		server.Log.Fatalf("load rooms: %v", err)
	}
	server.Log.Infof("loaded %d rooms, start=%s", len(reg.RoomIDs()), reg.Start)

	game := server.NewGame(reg, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	game.StartTicker(ctx)
	game.StartHeartbeat(ctx, server.HeartbeatInterval)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", game.HandleWS)
	// 客户端静态资源
	mux.Handle("/", http.FileServer(http.Dir("public")))
	mux.HandleFunc("/admin/rooms", game.HandleRooms)
	mux.HandleFunc("/metrics", game.HandleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: cfg.Addr, Handler: mux}

	go func() {
		server.Log.Infof("listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Log.Info("Shutting down...")
	cancel()

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		server.Log.Warnf("shutdown: %v", err)
	}
	game.Close()
}
