package database

import (
	"database/sql"
	"sync"
	"time"

	coreport "github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
)

// ConnectionPoolMetrics tracks database connection pool metrics
type ConnectionPoolMetrics struct {
	OpenConnections    int
	IdleConnections    int
	MaxOpenConnections int
	InUse              int
	WaitCount          int64
	WaitDuration       time.Duration
}

// ConnectionPoolMonitor periodically samples the connection pool and warns when it nears exhaustion
type ConnectionPoolMonitor struct {
	stats    func() sql.DBStats
	logger   coreport.Logger
	mutex    sync.RWMutex
	latest   ConnectionPoolMetrics
	stopOnce sync.Once
	stopChan chan struct{}
	done     chan struct{}
}

// NewConnectionPoolMonitor creates a new connection pool monitor
func NewConnectionPoolMonitor(stats func() sql.DBStats, logger coreport.Logger) *ConnectionPoolMonitor {
	return &ConnectionPoolMonitor{
		stats:    stats,
		logger:   logger,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins monitoring the connection pool
func (m *ConnectionPoolMonitor) Start(interval time.Duration) {
	m.collect()

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.collect()
			case <-m.stopChan:
				return
			}
		}
	}()
}

// Stop stops the monitoring goroutine and waits for it to exit
func (m *ConnectionPoolMonitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
		<-m.done
	})
}

// Metrics returns the most recent sample
func (m *ConnectionPoolMonitor) Metrics() ConnectionPoolMetrics {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.latest
}

func (m *ConnectionPoolMonitor) collect() {
	stats := m.stats()

	m.mutex.Lock()
	m.latest = ConnectionPoolMetrics{
		OpenConnections:    stats.OpenConnections,
		IdleConnections:    stats.Idle,
		MaxOpenConnections: stats.MaxOpenConnections,
		InUse:              stats.InUse,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
	}
	m.mutex.Unlock()

	if stats.MaxOpenConnections > 0 && float64(stats.InUse) > float64(stats.MaxOpenConnections)*0.8 {
		m.logger.Warn("Database connection pool nearly exhausted", map[string]any{
			"in_use":     stats.InUse,
			"max_open":   stats.MaxOpenConnections,
			"idle":       stats.Idle,
			"wait_count": stats.WaitCount,
			"wait_time":  stats.WaitDuration.String(),
		})
	}
}
