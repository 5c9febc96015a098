package server

import (
	"os"
	"time"
)

// 以下常量与客户端共享，两端必须保持一致
const (
	CanvasWidth  = 800.0
	CanvasHeight = 600.0
	TileSize     = 32

	PlayerWidth   = 96.0
	PlayerHeight  = 80.0
	HitboxWidth   = 14.0
	HitboxHeight  = 26.0
	HitboxOffsetX = (PlayerWidth - HitboxWidth) / 2
	HitboxOffsetY = 30.0

	WalkSpeed = 2.0
	RunSpeed  = 4.0

	// TicksPerSecond 世界推进频率（60 TPS）
	TicksPerSecond = 60

	HeartbeatInterval = 30 * time.Second

	// MaxMessagesPerSecond 滑动 1 秒窗口内允许的最大入站消息数
	MaxMessagesPerSecond = 60
	RatePeriod           = time.Second

	// SendQueueSize 每个连接的出站队列容量，写满即断开
	SendQueueSize = 64

	DefaultStartRoom RoomID = "room1"
	DefaultPort             = "8080"
)

var tickInterval = time.Second / TicksPerSecond

// Config 进程级运行配置（非共享常量部分）
type Config struct {
	Addr     string
	LogFile  string
	LogLevel string
	MapsFile string
}

// ConfigFromEnv 从环境变量读取默认值；命令行参数可再覆盖
func ConfigFromEnv() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = DefaultPort
	}
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	return Config{
		Addr:     ":" + port,
		LogFile:  "app.log",
		LogLevel: level,
		MapsFile: os.Getenv("MAPS_FILE"),
	}
}
