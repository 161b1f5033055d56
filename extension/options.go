package extension

import (
	vesting "github.com/xraph/vesting"
	"github.com/xraph/vesting/asset"
	"github.com/xraph/vesting/authz"
	"github.com/xraph/vesting/plugin"
	"github.com/xraph/vesting/store"
	"github.com/xraph/vesting/vault"
)

// Option configures the Vesting Forge extension.
type Option func(*Extension)

// WithStore sets the store for the vesting engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithVault sets the yield vault adapter that custodies deposited funds.
func WithVault(v vault.Adapter) Option {
	return func(e *Extension) {
		e.vault = v
	}
}

// WithToken sets the asset transfer adapter used to move funds.
func WithToken(t asset.Token) Option {
	return func(e *Extension) {
		e.token = t
	}
}

// WithAuthorizer sets the capability policy for privileged operations.
func WithAuthorizer(p authz.Policy) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, vesting.WithAuthorizer(p))
	}
}

// WithEngineOption passes a vesting.Option through to the underlying engine.
func WithEngineOption(opt vesting.Option) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, opt)
	}
}

// WithPlugin registers a vesting plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, vesting.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithCancelPolicy sets the cancellation policy ("forfeit" or "settle").
func WithCancelPolicy(policy string) Option {
	return func(e *Extension) { e.config.CancelPolicy = policy }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}
