package mediaclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// PoolConfig holds configuration for a pool of media nodes.
type PoolConfig struct {
	// Addresses lists the media node addresses (e.g. "localhost:9090").
	Addresses           []string
	ConnectTimeout      time.Duration
	KeepaliveInterval   time.Duration
	KeepaliveTimeout    time.Duration
	HealthCheckInterval time.Duration
	UnhealthyThreshold  int // consecutive failed checks before marking unhealthy
	HealthyThreshold    int // consecutive successful checks before marking healthy
}

// DefaultPoolConfig returns sensible defaults.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		ConnectTimeout:      10 * time.Second,
		KeepaliveInterval:   30 * time.Second,
		KeepaliveTimeout:    10 * time.Second,
		HealthCheckInterval: 5 * time.Second,
		UnhealthyThreshold:  3,
		HealthyThreshold:    2,
	}
}

// ErrNoAvailableNodes is returned when no media node can take a session.
var ErrNoAvailableNodes = errors.New("no available media nodes")

// poolNode is one media node in the pool.
type poolNode struct {
	address      string
	transport    *GRPCTransport
	healthy      atomic.Bool
	failCount    atomic.Int32
	successCount atomic.Int32
}

// Pool spreads sessions across media nodes round-robin, with health
// checking and session affinity: every follow-up operation for a
// session is routed to the node that created it.
type Pool struct {
	mu            sync.RWMutex
	nodes         []*poolNode
	sessionToNode map[string]*poolNode
	nextIndex     atomic.Uint64
	config        PoolConfig
	stopCh        chan struct{}
	wg            sync.WaitGroup
}

// NewPool connects to every configured media node and starts the
// health checker. At least one node must be reachable at startup;
// unreachable nodes stay in the pool and are retried by health checks.
func NewPool(cfg PoolConfig) (*Pool, error) {
	if len(cfg.Addresses) == 0 {
		return nil, fmt.Errorf("no media node addresses provided")
	}
	if cfg.HealthCheckInterval == 0 {
		cfg.HealthCheckInterval = 5 * time.Second
	}
	if cfg.UnhealthyThreshold == 0 {
		cfg.UnhealthyThreshold = 3
	}
	if cfg.HealthyThreshold == 0 {
		cfg.HealthyThreshold = 2
	}

	p := &Pool{
		nodes:         make([]*poolNode, 0, len(cfg.Addresses)),
		sessionToNode: make(map[string]*poolNode),
		config:        cfg,
		stopCh:        make(chan struct{}),
	}

	grpcCfg := GRPCConfig{
		ConnectTimeout:    cfg.ConnectTimeout,
		KeepaliveInterval: cfg.KeepaliveInterval,
		KeepaliveTimeout:  cfg.KeepaliveTimeout,
	}

	healthyCount := 0
	for _, addr := range cfg.Addresses {
		node := &poolNode{address: addr}
		grpcCfg.Address = addr
		transport, err := NewGRPCTransport(grpcCfg)
		if err != nil {
			slog.Warn("[MediaPool] Failed to connect to media node", "address", addr, "error", err)
		} else {
			node.transport = transport
			node.healthy.Store(true)
			healthyCount++
		}
		p.nodes = append(p.nodes, node)
	}

	if healthyCount == 0 {
		return nil, fmt.Errorf("no healthy media nodes available")
	}

	p.wg.Add(1)
	go p.healthChecker()

	slog.Info("[MediaPool] Media node pool initialized", "total", len(p.nodes), "healthy", healthyCount)
	return p, nil
}

func (p *Pool) healthChecker() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.checkAllHealth()
		}
	}
}

func (p *Pool) checkAllHealth() {
	for _, node := range p.nodes {
		healthy := p.checkNodeHealth(node)

		if healthy {
			node.failCount.Store(0)
			newSuccess := node.successCount.Add(1)
			if !node.healthy.Load() && int(newSuccess) >= p.config.HealthyThreshold {
				node.healthy.Store(true)
				slog.Info("[MediaPool] Media node marked healthy", "address", node.address)
			}
		} else {
			node.successCount.Store(0)
			newFail := node.failCount.Add(1)
			if node.healthy.Load() && int(newFail) >= p.config.UnhealthyThreshold {
				node.healthy.Store(false)
				slog.Warn("[MediaPool] Media node marked unhealthy", "address", node.address)
			}
		}
	}
}

func (p *Pool) checkNodeHealth(node *poolNode) bool {
	if node.transport == nil {
		grpcCfg := GRPCConfig{
			Address:           node.address,
			ConnectTimeout:    p.config.ConnectTimeout,
			KeepaliveInterval: p.config.KeepaliveInterval,
			KeepaliveTimeout:  p.config.KeepaliveTimeout,
		}
		transport, err := NewGRPCTransport(grpcCfg)
		if err != nil {
			return false
		}
		node.transport = transport
		slog.Info("[MediaPool] Reconnected to media node", "address", node.address)
	}

	return node.transport.Ready()
}

// selectNode picks a healthy node round-robin.
func (p *Pool) selectNode() (*poolNode, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	available := make([]*poolNode, 0, len(p.nodes))
	for _, n := range p.nodes {
		if n.healthy.Load() && n.transport != nil {
			available = append(available, n)
		}
	}

	if len(available) == 0 {
		return nil, ErrNoAvailableNodes
	}

	idx := p.nextIndex.Add(1) % uint64(len(available))
	return available[idx], nil
}

// nodeForSession returns the node that owns a session (affinity).
func (p *Pool) nodeForSession(sessionID string) (*poolNode, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	node, ok := p.sessionToNode[sessionID]
	return node, ok
}

func (p *Pool) trackSession(sessionID string, node *poolNode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessionToNode[sessionID] = node
}

func (p *Pool) untrackSession(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.sessionToNode, sessionID)
}

// CreateSession implements Transport.CreateSession with load balancing.
func (p *Pool) CreateSession(ctx context.Context, info SessionInfo) (*SessionResult, error) {
	node, err := p.selectNode()
	if err != nil {
		return nil, err
	}

	result, err := node.transport.CreateSession(ctx, info)
	if err != nil {
		node.failCount.Add(1)
		return nil, fmt.Errorf("CreateSession on %s failed: %w", node.address, err)
	}

	p.trackSession(result.SessionID, node)

	slog.Debug("[MediaPool] Session created", "session_id", result.SessionID, "node", node.address)
	return result, nil
}

// CreateSessionPendingRemote implements Transport.CreateSessionPendingRemote
// with load balancing.
func (p *Pool) CreateSessionPendingRemote(ctx context.Context, callID string, codecs []string) (*SessionResult, error) {
	node, err := p.selectNode()
	if err != nil {
		return nil, err
	}

	result, err := node.transport.CreateSessionPendingRemote(ctx, callID, codecs)
	if err != nil {
		node.failCount.Add(1)
		return nil, fmt.Errorf("CreateSessionPendingRemote on %s failed: %w", node.address, err)
	}

	p.trackSession(result.SessionID, node)

	slog.Debug("[MediaPool] Session created (pending remote)", "session_id", result.SessionID, "node", node.address)
	return result, nil
}

// UpdateSessionRemote implements Transport.UpdateSessionRemote with affinity.
func (p *Pool) UpdateSessionRemote(ctx context.Context, sessionID, remoteAddr string, remotePort int) error {
	node, ok := p.nodeForSession(sessionID)
	if !ok {
		return fmt.Errorf("no media node found for session %s", sessionID)
	}
	return node.transport.UpdateSessionRemote(ctx, sessionID, remoteAddr, remotePort)
}

// DestroySession implements Transport.DestroySession with affinity.
func (p *Pool) DestroySession(ctx context.Context, sessionID string, reason TerminateReason) error {
	node, ok := p.nodeForSession(sessionID)
	if !ok {
		return fmt.Errorf("no media node found for session %s", sessionID)
	}

	err := node.transport.DestroySession(ctx, sessionID, reason)
	p.untrackSession(sessionID)
	return err
}

// PlayAudio implements Transport.PlayAudio with affinity.
func (p *Pool) PlayAudio(ctx context.Context, req PlayRequest) (<-chan PlayStatus, error) {
	node, ok := p.nodeForSession(req.SessionID)
	if !ok {
		return nil, fmt.Errorf("no media node found for session %s", req.SessionID)
	}
	return node.transport.PlayAudio(ctx, req)
}

// StopAudio implements Transport.StopAudio with affinity.
func (p *Pool) StopAudio(ctx context.Context, sessionID string) error {
	node, ok := p.nodeForSession(sessionID)
	if !ok {
		return fmt.Errorf("no media node found for session %s", sessionID)
	}
	return node.transport.StopAudio(ctx, sessionID)
}

// Ready implements Transport.Ready.
func (p *Pool) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, n := range p.nodes {
		if n.healthy.Load() {
			return true
		}
	}
	return false
}

// Close implements Transport.Close.
func (p *Pool) Close() error {
	close(p.stopCh)
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()

	var lastErr error
	for _, n := range p.nodes {
		if n.transport != nil {
			if err := n.transport.Close(); err != nil {
				lastErr = err
			}
		}
	}

	return lastErr
}

// Stats returns pool statistics.
func (p *Pool) Stats() PoolStats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	stats := PoolStats{
		TotalNodes:     len(p.nodes),
		ActiveSessions: len(p.sessionToNode),
		Nodes:          make([]NodeStats, 0, len(p.nodes)),
	}

	perNode := make(map[*poolNode]int, len(p.nodes))
	for _, node := range p.sessionToNode {
		perNode[node]++
	}

	for _, n := range p.nodes {
		ns := NodeStats{
			Address:      n.address,
			Healthy:      n.healthy.Load(),
			SessionCount: perNode[n],
		}
		if ns.Healthy {
			stats.HealthyNodes++
		}
		stats.Nodes = append(stats.Nodes, ns)
	}

	return stats
}

// PoolStats holds pool statistics.
type PoolStats struct {
	TotalNodes     int
	HealthyNodes   int
	ActiveSessions int
	Nodes          []NodeStats
}

// NodeStats holds statistics for one media node.
type NodeStats struct {
	Address      string
	Healthy      bool
	SessionCount int
}

// Ensure Pool implements Transport.
var _ Transport = (*Pool)(nil)
var _ Transport = (*GRPCTransport)(nil)
