package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit             []OnInit
	onShutdown         []OnShutdown
	onScheduleCreated  []OnScheduleCreated
	onVestingCancelled []OnVestingCancelled
	onClaimed          []OnClaimed
	onWithdrawn        []OnWithdrawn
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnScheduleCreated); ok {
		r.onScheduleCreated = append(r.onScheduleCreated, v)
	}
	if v, ok := p.(OnVestingCancelled); ok {
		r.onVestingCancelled = append(r.onVestingCancelled, v)
	}
	if v, ok := p.(OnClaimed); ok {
		r.onClaimed = append(r.onClaimed, v)
	}
	if v, ok := p.(OnWithdrawn); ok {
		r.onWithdrawn = append(r.onWithdrawn, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnScheduleCreated)(nil)).Elem(), "OnScheduleCreated")
	checkInterface(reflect.TypeOf((*OnVestingCancelled)(nil)).Elem(), "OnVestingCancelled")
	checkInterface(reflect.TypeOf((*OnClaimed)(nil)).Elem(), "OnClaimed")
	checkInterface(reflect.TypeOf((*OnWithdrawn)(nil)).Elem(), "OnWithdrawn")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, ledger interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, ledger)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitScheduleCreated emits a schedule created event.
func (r *Registry) EmitScheduleCreated(ctx context.Context, sched interface{}) {
	r.mu.RLock()
	plugins := r.onScheduleCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnScheduleCreated(ctx, sched)
		}); err != nil {
			r.logger.Warn("plugin OnScheduleCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitVestingCancelled emits a vesting cancelled event.
func (r *Registry) EmitVestingCancelled(ctx context.Context, sched interface{}, reclaimedShares uint64) {
	r.mu.RLock()
	plugins := r.onVestingCancelled
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnVestingCancelled(ctx, sched, reclaimedShares)
		}); err != nil {
			r.logger.Warn("plugin OnVestingCancelled failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitClaimed emits a claim paid event.
func (r *Registry) EmitClaimed(ctx context.Context, receipt interface{}) {
	r.mu.RLock()
	plugins := r.onClaimed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnClaimed(ctx, receipt)
		}); err != nil {
			r.logger.Warn("plugin OnClaimed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitWithdrawn emits a withdrawable shares withdrawn event.
func (r *Registry) EmitWithdrawn(ctx context.Context, shares, assets uint64) {
	r.mu.RLock()
	plugins := r.onWithdrawn
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnWithdrawn(ctx, shares, assets)
		}); err != nil {
			r.logger.Warn("plugin OnWithdrawn failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the vesting pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
