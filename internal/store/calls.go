package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/kubev2v/offload-agent/internal/models"
	"github.com/kubev2v/offload-agent/internal/util"
	srvErrors "github.com/kubev2v/offload-agent/pkg/errors"
)

// CallStore journals submitted calls and their outcomes.
type CallStore struct {
	db QueryInterceptor
}

func NewCallStore(db QueryInterceptor) *CallStore {
	return &CallStore{db: db}
}

// Create records a new call in the queued state.
func (s *CallStore) Create(ctx context.Context, id, functionName string, args json.RawMessage) error {
	_, err := s.db.ExecContext(ctx, queryInsertCall, id, functionName, string(args), string(models.CallStatusQueued))
	return err
}

// MarkProcessing moves a queued call to processing on the given slot.
func (s *CallStore) MarkProcessing(ctx context.Context, id string, slot int) error {
	_, err := s.db.ExecContext(ctx, queryMarkCallProcessing,
		string(models.CallStatusProcessing), slot, id, string(models.CallStatusQueued))
	return err
}

func (s *CallStore) MarkSucceeded(ctx context.Context, id string, result json.RawMessage) error {
	return s.complete(ctx, id, models.CallStatusSucceeded, sql.NullString{String: string(result), Valid: result != nil}, sql.NullString{})
}

func (s *CallStore) MarkFailed(ctx context.Context, id string, callErr error) error {
	return s.complete(ctx, id, models.CallStatusFailed, sql.NullString{}, sql.NullString{String: callErr.Error(), Valid: true})
}

func (s *CallStore) complete(ctx context.Context, id string, status models.CallStatus, result, errMsg sql.NullString) error {
	res, err := s.db.ExecContext(ctx, queryCompleteCall, string(status), result, errMsg, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return srvErrors.NewCallNotFoundError(id)
	}
	return nil
}

func (s *CallStore) Get(ctx context.Context, id string) (*models.CallRecord, error) {
	query, args, err := sq.Select(callColumns...).From("calls").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	rec, err := scanCall(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, srvErrors.NewCallNotFoundError(id)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *CallStore) List(ctx context.Context, opts ...ListOption) ([]models.CallRecord, error) {
	builder := sq.Select(callColumns...).From("calls")
	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	calls := []models.CallRecord{}
	for rows.Next() {
		rec, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		calls = append(calls, *rec)
	}

	return calls, rows.Err()
}

func (s *CallStore) Count(ctx context.Context, opts ...ListOption) (int, error) {
	builder := sq.Select("COUNT(*)").From("calls")
	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCall(row scanner) (*models.CallRecord, error) {
	var (
		rec    models.CallRecord
		args   sql.NullString
		status string
		slot   sql.NullInt64
		result sql.NullString
		errMsg sql.NullString
	)

	err := row.Scan(
		&rec.ID,
		&rec.FunctionName,
		&args,
		&status,
		&slot,
		&result,
		&errMsg,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Status = models.CallStatus(status)
	if args.Valid {
		rec.Arguments = json.RawMessage(args.String)
	}
	if slot.Valid {
		rec.Slot = util.IntPtr(int(slot.Int64))
	}
	if result.Valid {
		rec.Result = json.RawMessage(result.String)
	}
	rec.Error = errMsg.String

	return &rec, nil
}

type ListOption func(sq.SelectBuilder) sq.SelectBuilder

func ByFunction(names ...string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(names) == 0 {
			return b
		}
		return b.Where(sq.Eq{"function_name": names})
	}
}

func ByStatus(statuses ...models.CallStatus) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(statuses) == 0 {
			return b
		}
		values := make([]string, 0, len(statuses))
		for _, st := range statuses {
			values = append(values, string(st))
		}
		return b.Where(sq.Eq{"status": values})
	}
}

func WithLimit(limit uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Limit(limit)
	}
}

func WithOffset(offset uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Offset(offset)
	}
}

// WithDefaultSort orders calls by submission time, oldest first.
func WithDefaultSort() ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.OrderBy("created_at", "id")
	}
}
