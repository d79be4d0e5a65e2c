// Package registry provides an optional Postgres-backed index of past
// cluster runs, supplementing (never replacing) the mandatory
// metadata.json file each run directory carries.
package registry

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// RunRecord indexes one schedule() invocation against the cluster
// backend.
type RunRecord struct {
	bun.BaseModel `bun:"table:flowkit_runs,alias:r"`

	ID        uuid.UUID `bun:"id,pk"`
	Name      string    `bun:"name"`
	Backend   string    `bun:"backend"`
	BaseDir   string    `bun:"base_dir"`
	JobCount  int       `bun:"job_count"`
	CreatedAt time.Time `bun:"created_at"`
}

// RunStore persists RunRecords to Postgres via bun.
type RunStore struct {
	db *bun.DB
}

// NewRunStore opens a RunStore against dsn. Callers typically gate this
// behind FLOWKIT_RUN_REGISTRY_DSN being set; a RunStore is entirely
// optional (see SPEC_FULL.md domain stack).
func NewRunStore(dsn string) *RunStore {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	return &RunStore{db: db}
}

// InitSchema creates the flowkit_runs table if it doesn't exist.
func (s *RunStore) InitSchema(ctx context.Context) error {
	_, err := s.db.NewCreateTable().Model((*RunRecord)(nil)).IfNotExists().Exec(ctx)
	return err
}

// Record upserts a RunRecord for a completed or in-flight schedule() call.
func (s *RunStore) Record(ctx context.Context, run RunRecord) error {
	_, err := s.db.NewInsert().Model(&run).
		On("CONFLICT (id) DO UPDATE").
		Set("job_count = EXCLUDED.job_count").
		Exec(ctx)
	return err
}

// Close releases the underlying database connection.
func (s *RunStore) Close() error {
	return s.db.DB.Close()
}
