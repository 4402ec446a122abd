package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/urbanmart/marketplace-admin/internal/data/database"
	"github.com/urbanmart/marketplace-admin/internal/domain/model"
	apperrors "github.com/urbanmart/marketplace-admin/internal/errors"
)

const auditTable = "audit_entries"

var auditColumns = []string{"id", "actor", "resource", "action", "target_id", "outcome", "message", "created_at"}

// AuditRepo stores the console audit trail in Postgres.
type AuditRepo struct {
	DB  *sql.DB
	now func() time.Time
}

// AuditRepoOption configures an AuditRepo.
type AuditRepoOption func(*AuditRepo)

// WithClock replaces the wall clock used for entry timestamps and retention
// cutoffs.
func WithClock(now func() time.Time) AuditRepoOption {
	return func(r *AuditRepo) {
		if now != nil {
			r.now = now
		}
	}
}

// NewAuditRepo creates an AuditRepo over db.
func NewAuditRepo(db *sql.DB, opts ...AuditRepoOption) *AuditRepo {
	r := &AuditRepo{DB: db, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *AuditRepo) ready() error {
	if r == nil || r.DB == nil {
		return ErrNoDatabase
	}
	return nil
}

// Record inserts one audit entry. ID and CreatedAt are assigned when empty.
// Invalid entries are rejected before the store is consulted.
func (r *AuditRepo) Record(ctx context.Context, entry model.AuditEntry) error {
	entry.Normalize()
	if err := entry.Validate(); err != nil {
		return apperrors.Validation(err.Error())
	}
	if err := r.ready(); err != nil {
		return err
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.now().UTC()
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO audit_entries (id, actor, resource, action, target_id, outcome, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.Actor, entry.Resource, entry.Action,
		entry.TargetID, string(entry.Outcome), entry.Message, entry.CreatedAt,
	)
	if err != nil {
		return apperrors.MapDBError(fmt.Errorf("insert audit entry: %w", err))
	}
	return nil
}

// List returns one page of entries, newest first.
func (r *AuditRepo) List(ctx context.Context, opts model.AuditListOptions) (model.AuditPage, error) {
	if err := r.ready(); err != nil {
		return model.AuditPage{}, err
	}
	opts.Normalize()
	conds := auditConditions(opts)

	countQuery, countArgs := database.BuildListQuery(database.NewListQueryOptions(auditTable,
		database.WithConditions(conds...),
		database.WithCountOnly(),
	))
	var total int
	if err := r.DB.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return model.AuditPage{}, apperrors.MapDBError(fmt.Errorf("count audit entries: %w", err))
	}

	query, args := database.BuildListQuery(database.NewListQueryOptions(auditTable,
		database.WithColumns(auditColumns...),
		database.WithConditions(conds...),
		database.WithOrderBy("created_at", "DESC"),
		database.WithLimit(opts.Limit),
		database.WithOffset(opts.Offset()),
	))

	entries, err := collectEntries(ctx, r.DB, query, args)
	if err != nil {
		return model.AuditPage{}, apperrors.MapDBError(fmt.Errorf("list audit entries: %w", err))
	}
	if entries == nil {
		entries = []model.AuditEntry{}
	}

	pages := (total + opts.Limit - 1) / opts.Limit
	return model.AuditPage{Entries: entries, TotalPages: max(pages, 1)}, nil
}

// DeleteOlderThan removes up to batchSize entries created before now-maxAge,
// oldest first, and reports how many rows went.
func (r *AuditRepo) DeleteOlderThan(ctx context.Context, maxAge time.Duration, batchSize int) (int64, error) {
	if err := r.ready(); err != nil {
		return 0, err
	}
	if maxAge <= 0 || batchSize <= 0 {
		return 0, nil
	}
	cutoff := r.now().UTC().Add(-maxAge)
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM audit_entries
		WHERE id IN (
			SELECT id FROM audit_entries
			WHERE created_at < $1
			ORDER BY created_at
			LIMIT $2
		)`, cutoff, batchSize)
	if err != nil {
		return 0, apperrors.MapDBError(fmt.Errorf("delete old audit entries: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func auditConditions(opts model.AuditListOptions) []database.Condition {
	var conds []database.Condition
	if opts.Resource != nil && *opts.Resource != "" {
		conds = append(conds, database.WhereCond("resource", database.Equal, *opts.Resource))
	}
	if opts.Actor != nil && *opts.Actor != "" {
		conds = append(conds, database.WhereCond("actor", database.ILike, "%"+*opts.Actor+"%"))
	}
	return conds
}

// collectEntries runs query on the native pgx connection underneath the
// database/sql pool so rows map onto AuditEntry by their db tags.
func collectEntries(ctx context.Context, db *sql.DB, query string, args []any) ([]model.AuditEntry, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire conn: %w", err)
	}
	defer func() { _ = conn.Close() }()

	var entries []model.AuditEntry
	err = conn.Raw(func(driverConn any) error {
		sc, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return errors.New("audit database is not using the pgx driver")
		}
		rows, err := sc.Conn().Query(ctx, query, args...)
		if err != nil {
			return err
		}
		entries, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.AuditEntry])
		return err
	})
	return entries, err
}
