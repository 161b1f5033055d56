package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the vesting store (SQLite).
var Migrations = migrate.NewGroup("vesting")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_vesting_schedules",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS vesting_schedules (
    id              TEXT PRIMARY KEY,
    beneficiary     TEXT NOT NULL DEFAULT '',
    total_shares    INTEGER NOT NULL DEFAULT 0,
    released_shares INTEGER NOT NULL DEFAULT 0,
    vested_amount   INTEGER NOT NULL DEFAULT 0,
    vested_claimed  INTEGER NOT NULL DEFAULT 0,
    start_time      TEXT NOT NULL DEFAULT (datetime('now')),
    cliff_time      TEXT NOT NULL DEFAULT (datetime('now')),
    end_time        TEXT NOT NULL DEFAULT (datetime('now')),
    intervals       INTEGER NOT NULL DEFAULT 0,
    active          INTEGER NOT NULL DEFAULT 0,
    cancelled_at    TEXT,
    created_at      TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at      TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_vesting_schedules_beneficiary ON vesting_schedules (beneficiary);
CREATE UNIQUE INDEX IF NOT EXISTS idx_vesting_schedules_one_active ON vesting_schedules (beneficiary) WHERE active = 1;
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS vesting_schedules`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_vesting_claims",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS vesting_claims (
    id              TEXT PRIMARY KEY,
    schedule_id     TEXT NOT NULL DEFAULT '',
    beneficiary     TEXT NOT NULL DEFAULT '',
    shares_redeemed INTEGER NOT NULL DEFAULT 0,
    assets_paid     INTEGER NOT NULL DEFAULT 0,
    vested_portion  INTEGER NOT NULL DEFAULT 0,
    claimed_at      TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_vesting_claims_beneficiary ON vesting_claims (beneficiary, claimed_at);
CREATE INDEX IF NOT EXISTS idx_vesting_claims_schedule ON vesting_claims (schedule_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS vesting_claims`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_vesting_state",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS vesting_state (
    id           INTEGER PRIMARY KEY,
    withdrawable INTEGER NOT NULL DEFAULT 0
);

INSERT OR IGNORE INTO vesting_state (id, withdrawable) VALUES (1, 0);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS vesting_state`)
				return err
			},
		},
	)
}
