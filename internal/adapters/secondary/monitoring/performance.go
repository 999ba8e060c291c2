package monitoring

import (
	"context"
	"math"
	"runtime"
	"sync"
	"time"
)

// RuntimeSnapshot is the last sampled process state
type RuntimeSnapshot struct {
	SampledAt      time.Time
	MemoryUsage    int64
	HeapSize       int64
	StackSize      int64
	GoroutineCount int
	GCCount        uint32
}

// HealthMonitor samples runtime statistics on an interval and answers
// liveness checks
type HealthMonitor struct {
	startedAt time.Time
	interval  time.Duration

	// limits for IsHealthy
	maxMemory     int64
	maxGoroutines int

	mu       sync.RWMutex
	snapshot RuntimeSnapshot
	running  bool
	stopCh   chan struct{}
}

// NewHealthMonitor creates a monitor sampling every interval (30s when zero)
func NewHealthMonitor(interval time.Duration) *HealthMonitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	hm := &HealthMonitor{
		startedAt:     time.Now(),
		interval:      interval,
		maxMemory:     1 << 30, // exports of 20 slides at 3x hold ~100MB of RGBA
		maxGoroutines: 1000,
	}
	hm.sample()
	return hm
}

// Start begins sampling until Stop or ctx is done
func (hm *HealthMonitor) Start(ctx context.Context) {
	hm.mu.Lock()
	defer hm.mu.Unlock()

	if hm.running {
		return
	}
	hm.running = true
	hm.stopCh = make(chan struct{})

	go hm.loop(ctx, hm.stopCh)
}

// Stop stops sampling
func (hm *HealthMonitor) Stop() {
	hm.mu.Lock()
	defer hm.mu.Unlock()

	if !hm.running {
		return
	}
	hm.running = false
	close(hm.stopCh)
}

func (hm *HealthMonitor) loop(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(hm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			hm.sample()
		}
	}
}

func (hm *HealthMonitor) sample() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	snapshot := RuntimeSnapshot{
		SampledAt:      time.Now(),
		MemoryUsage:    safeUint64ToInt64(memStats.Alloc),
		HeapSize:       safeUint64ToInt64(memStats.HeapAlloc),
		StackSize:      safeUint64ToInt64(memStats.StackInuse),
		GoroutineCount: runtime.NumGoroutine(),
		GCCount:        memStats.NumGC,
	}

	hm.mu.Lock()
	hm.snapshot = snapshot
	hm.mu.Unlock()
}

// Snapshot returns the last sample
func (hm *HealthMonitor) Snapshot() RuntimeSnapshot {
	hm.mu.RLock()
	defer hm.mu.RUnlock()
	return hm.snapshot
}

// Uptime returns the time since the monitor was created
func (hm *HealthMonitor) Uptime() time.Duration {
	return time.Since(hm.startedAt)
}

// IsHealthy compares the last sample against the limits
func (hm *HealthMonitor) IsHealthy() bool {
	s := hm.Snapshot()
	return s.MemoryUsage < hm.maxMemory && s.GoroutineCount < hm.maxGoroutines
}

// HealthStatus is the /health payload
func (hm *HealthMonitor) HealthStatus() map[string]interface{} {
	s := hm.Snapshot()
	status := "ok"
	if !hm.IsHealthy() {
		status = "degraded"
	}

	return map[string]interface{}{
		"status":     status,
		"uptime":     hm.Uptime().Round(time.Second).String(),
		"memory_mb":  s.MemoryUsage / (1024 * 1024),
		"heap_mb":    s.HeapSize / (1024 * 1024),
		"goroutines": s.GoroutineCount,
		"gc_cycles":  s.GCCount,
		"sampled_at": s.SampledAt.UTC().Format(time.RFC3339),
	}
}

// safeUint64ToInt64 safely converts uint64 to int64, capping at max int64 value
func safeUint64ToInt64(val uint64) int64 {
	if val > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(val)
}
