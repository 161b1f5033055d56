package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the vesting store (PostgreSQL).
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
    total_shares    BIGINT NOT NULL DEFAULT 0,
    released_shares BIGINT NOT NULL DEFAULT 0,
    vested_amount   BIGINT NOT NULL DEFAULT 0,
    vested_claimed  BOOLEAN NOT NULL DEFAULT FALSE,
    start_time      TIMESTAMPTZ NOT NULL DEFAULT now(),
    cliff_time      TIMESTAMPTZ NOT NULL DEFAULT now(),
    end_time        TIMESTAMPTZ NOT NULL DEFAULT now(),
    intervals       BIGINT NOT NULL DEFAULT 0,
    active          BOOLEAN NOT NULL DEFAULT FALSE,
    cancelled_at    TIMESTAMPTZ,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_vesting_schedules_beneficiary ON vesting_schedules (beneficiary);
CREATE UNIQUE INDEX IF NOT EXISTS idx_vesting_schedules_one_active ON vesting_schedules (beneficiary) WHERE active;
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
    shares_redeemed BIGINT NOT NULL DEFAULT 0,
    assets_paid     BIGINT NOT NULL DEFAULT 0,
    vested_portion  BIGINT NOT NULL DEFAULT 0,
    claimed_at      TIMESTAMPTZ NOT NULL DEFAULT now()
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
    id           BIGINT PRIMARY KEY,
    withdrawable BIGINT NOT NULL DEFAULT 0
);

INSERT INTO vesting_state (id, withdrawable) VALUES (1, 0) ON CONFLICT (id) DO NOTHING;
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
