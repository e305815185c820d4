package server

import (
	"context"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/palemoky/netsession/internal/protocol"
)

// 状态采样间隔
const statsInterval = 30 * time.Second

// monitorStats 定期采样进程状态并写入指标
func (s *Server) monitorStats() {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Printf("⚠️ 无法读取进程信息，跳过进程指标: %v", err)
	}

	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for range ticker.C {
		s.sampleStats(proc)
	}
}

// sampleStats 采样一次进程状态
func (s *Server) sampleStats(proc *process.Process) {
	var cpu float64
	var rssMB float64
	if proc != nil {
		if pct, err := proc.CPUPercent(); err == nil {
			cpu = pct
			s.metrics.ProcessCPU.Set(pct)
		}
		if mem, err := proc.MemoryInfo(); err == nil {
			rssMB = float64(mem.RSS) / 1024 / 1024
			s.metrics.ProcessRSS.Set(float64(mem.RSS))
		}
	}

	log.Printf("📊 [监控] 在线: %d | Goroutines: %d | 清理任务: %d | CPU: %.1f%% | RSS: %.2f MB",
		s.GetOnlineCount(),
		runtime.NumGoroutine(),
		s.cleanup.Running(),
		cpu,
		rssMB)
}

// EnterMaintenanceMode 进入维护模式：拒绝新连接与新会话
func (s *Server) EnterMaintenanceMode() {
	if !s.maintenanceMode.CompareAndSwap(false, true) {
		return
	}

	s.Broadcast(protocol.NewErrorMessageWithText(protocol.ErrCodeMaintenance,
		"👷🏻‍♂️ 维护模式：停止新的会话创建"))

	log.Println("🔧 进入维护模式：停止新连接和会话创建")
}

// IsMaintenanceMode 检查是否在维护模式
func (s *Server) IsMaintenanceMode() bool {
	return s.maintenanceMode.Load()
}

// GracefulShutdown 优雅关闭：先进入维护模式，再关闭监听和连接
func (s *Server) GracefulShutdown(timeout time.Duration) {
	s.EnterMaintenanceMode()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.Shutdown(ctx)
}

// Shutdown 关闭服务器
func (s *Server) Shutdown(ctx context.Context) {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Printf("⚠️ HTTP 服务关闭失败: %v", err)
		}
	}

	// 关闭所有客户端连接，ReadPump 退出时会触发断线清理
	s.clients.IterCb(func(_ string, client *Client) {
		_ = client.conn.Close()
	})

	// 等待断线清理完成
	if err := s.cleanup.ReleaseTimeout(time.Until(deadlineOf(ctx))); err != nil {
		log.Printf("⚠️ 断线清理未在期限内完成: %v", err)
	}

	_ = s.redis.Close()

	log.Println("服务器已关闭")
}

// deadlineOf 取 ctx 的截止时间，无截止时间时给一个短暂的默认值
func deadlineOf(ctx context.Context) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	return time.Now().Add(5 * time.Second)
}
