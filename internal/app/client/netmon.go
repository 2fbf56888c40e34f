package client

import (
	"context"
	"sync"
	"time"

	"golang.org/x/exp/slog"
)

// Monitor отслеживает состояние связи. Переходы online/offline —
// edge-triggered: подписчики уведомляются только при смене состояния,
// повторные сигналы того же состояния игнорируются.
type Monitor struct {
	mu     sync.RWMutex
	online bool
	subs   []func(online bool)
	log    *slog.Logger
}

func NewMonitor(initialOnline bool, log *slog.Logger) *Monitor {
	return &Monitor{
		online: initialOnline,
		log:    log.With("component", "network_monitor"),
	}
}

func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// Subscribe регистрирует обработчик переходов. Обработчики вызываются
// синхронно в порядке регистрации.
func (m *Monitor) Subscribe(fn func(online bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

func (m *Monitor) SetOnline() {
	m.set(true)
}

func (m *Monitor) SetOffline() {
	m.set(false)
}

func (m *Monitor) set(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	subs := make([]func(bool), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	if online {
		m.log.Info("соединение восстановлено")
	} else {
		m.log.Info("соединение потеряно")
	}

	for _, fn := range subs {
		fn(online)
	}
}

// HealthChecker — минимальный контракт для проверки доступности сервера.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Prober периодически опрашивает сервер и транслирует результат в
// Monitor. Платформенный сигнал связи в браузере здесь заменен опросом
// health-эндпоинта.
type Prober struct {
	monitor  *Monitor
	checker  HealthChecker
	interval time.Duration
	log      *slog.Logger
}

func NewProber(monitor *Monitor, checker HealthChecker, interval time.Duration, log *slog.Logger) *Prober {
	return &Prober{
		monitor:  monitor,
		checker:  checker,
		interval: interval,
		log:      log.With("component", "network_prober"),
	}
}

// Run блокирует до отмены контекста.
func (p *Prober) Run(ctx context.Context) {
	p.probe(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.probe(ctx)
		}
	}
}

func (p *Prober) probe(ctx context.Context) {
	if err := p.checker.HealthCheck(ctx); err != nil {
		p.log.Debug("сервер недоступен", "error", err)
		p.monitor.SetOffline()
		return
	}
	p.monitor.SetOnline()
}
