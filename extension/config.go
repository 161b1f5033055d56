package extension

// Config holds the Vesting extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.vesting" or "vesting" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// CancelPolicy selects what happens to accrued shares when an admin
	// cancels a schedule: "forfeit" reclaims everything unreleased,
	// "settle" pays out what had already unlocked (default: "forfeit").
	CancelPolicy string `json:"cancel_policy" mapstructure:"cancel_policy" yaml:"cancel_policy"`

	// CustodyAccount is the account that holds deposited funds and vault
	// shares on behalf of the ledger. When empty a fresh account identity
	// is generated at startup.
	CustodyAccount string `json:"custody_account" mapstructure:"custody_account" yaml:"custody_account"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		CancelPolicy: "forfeit",
	}
}
