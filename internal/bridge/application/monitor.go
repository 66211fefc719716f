package application

import (
	"context"
	"sync"
	"time"

	"github.com/wyfcoding/mt5bridge/internal/bridge/domain"
	"github.com/wyfcoding/mt5bridge/internal/bridge/infrastructure/persistence/redis"
	"github.com/wyfcoding/mt5bridge/pkg/logger"
	"github.com/wyfcoding/mt5bridge/pkg/metrics"
)

// ConnectionMonitor 终端连接巡检
// 后台按固定间隔探测会话可用性，更新指标并刷新账户缓存快照
type ConnectionMonitor struct {
	session      domain.Session
	accountCache *redis.AccountCache
	metrics      *metrics.Metrics
	interval     time.Duration

	mu        sync.RWMutex
	connected bool
	lastProbe time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// NewConnectionMonitor 创建连接巡检器
func NewConnectionMonitor(session domain.Session, accountCache *redis.AccountCache, m *metrics.Metrics, interval time.Duration) *ConnectionMonitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &ConnectionMonitor{
		session:      session,
		accountCache: accountCache,
		metrics:      m,
		interval:     interval,
	}
}

// Start 启动巡检协程，立即执行一次探测
func (m *ConnectionMonitor) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})

	go func() {
		defer close(m.done)

		m.probe(ctx)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.probe(ctx)
			}
		}
	}()
}

// Stop 停止巡检并等待协程退出
func (m *ConnectionMonitor) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
}

// Connected 返回最近一次探测的结果
func (m *ConnectionMonitor) Connected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// LastProbe 返回最近一次探测的时间
func (m *ConnectionMonitor) LastProbe() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastProbe
}

func (m *ConnectionMonitor) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	connected := m.session.Connected(probeCtx)

	m.mu.Lock()
	changed := connected != m.connected
	m.connected = connected
	m.lastProbe = time.Now()
	m.mu.Unlock()

	if connected {
		m.metrics.TerminalConnected.Set(1)
		if changed {
			logger.Info(ctx, "Terminal connection established")
		}
		m.refreshAccount(probeCtx)
		return
	}

	m.metrics.TerminalConnected.Set(0)
	m.metrics.TerminalProbeFailures.Inc()
	if changed {
		logger.Error(ctx, "Terminal connection lost")
	}
}

// refreshAccount 探测成功后刷新账户缓存，失败只记日志
func (m *ConnectionMonitor) refreshAccount(ctx context.Context) {
	if m.accountCache == nil {
		return
	}
	account, err := m.session.Account(ctx)
	if err != nil {
		logger.Warn(ctx, "Account refresh failed", "error", err)
		return
	}
	if err := m.accountCache.Set(ctx, account); err != nil {
		logger.Warn(ctx, "Account cache write failed", "error", err)
	}
}
