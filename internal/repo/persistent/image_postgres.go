package persistent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/andreyxaxa/Image-Tagger/internal/entity"
	"github.com/andreyxaxa/Image-Tagger/pkg/postgres"
	"github.com/andreyxaxa/Image-Tagger/pkg/types/errs"
	"github.com/jackc/pgx/v5"
)

const (
	// Table
	imagesTable = "images"

	// Columns
	idColumn            = "image_id"
	storageKeyColumn    = "storage_key"
	fileNameColumn      = "file_name"
	fileTypeColumn      = "file_type"
	statusColumn        = "status"
	tagsColumn          = "tags"
	failureReasonColumn = "failure_reason"
	createdAtColumn     = "created_at"
	labeledAtColumn     = "labeled_at"
)

var imageColumns = []string{
	idColumn,
	storageKeyColumn,
	fileNameColumn,
	fileTypeColumn,
	statusColumn,
	tagsColumn,
	failureReasonColumn,
	createdAtColumn,
	labeledAtColumn,
}

type ImagePostgresRepo struct {
	*postgres.Postgres
}

func NewImagePostgresRepo(pg *postgres.Postgres) *ImagePostgresRepo {
	return &ImagePostgresRepo{pg}
}

func (r *ImagePostgresRepo) Create(ctx context.Context, image *entity.Image) error {
	sql, args, err := r.Builder.
		Insert(imagesTable).
		Columns(
			idColumn,
			storageKeyColumn,
			fileNameColumn,
			fileTypeColumn,
			statusColumn,
			createdAtColumn,
		).
		Values(
			image.ImageID,
			image.StorageKey,
			image.FileName,
			image.FileType,
			string(image.Status),
			image.CreatedAt,
		).ToSql()
	if err != nil {
		return fmt.Errorf("ImagePostgresRepo - Create - r.Builder.ToSql: %w", err)
	}

	_, err = r.GetExecutor(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("ImagePostgresRepo - Create - executor.Exec: %w", err)
	}

	return nil
}

func (r *ImagePostgresRepo) GetByID(ctx context.Context, id string) (*entity.Image, error) {
	image, err := getImage(ctx, r.GetExecutor(ctx), r.Builder, id)
	if err != nil {
		return nil, fmt.Errorf("ImagePostgresRepo - GetByID: %w", err)
	}

	return image, nil
}

func (r *ImagePostgresRepo) Search(ctx context.Context, keywords []string) ([]*entity.Image, error) {
	sql, args, err := searchQuery(r.Builder, keywords)
	if err != nil {
		return nil, fmt.Errorf("ImagePostgresRepo - Search - searchQuery: %w", err)
	}

	rows, err := r.GetExecutor(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("ImagePostgresRepo - Search - executor.Query: %w", err)
	}
	defer rows.Close()

	images := make([]*entity.Image, 0)
	for rows.Next() {
		image, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("ImagePostgresRepo - Search - scanImage: %w", err)
		}
		images = append(images, image)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ImagePostgresRepo - Search - rows.Err: %w", err)
	}

	return images, nil
}

func (r *ImagePostgresRepo) MarkCompleted(ctx context.Context, id string, tags []string, at time.Time) error {
	sql, args, err := completeQuery(r.Builder, id, tags, at)
	if err != nil {
		return fmt.Errorf("ImagePostgresRepo - MarkCompleted - completeQuery: %w", err)
	}

	err = r.transition(ctx, id, sql, args)
	if err != nil {
		return fmt.Errorf("ImagePostgresRepo - MarkCompleted: %w", err)
	}

	return nil
}

func (r *ImagePostgresRepo) MarkFailed(ctx context.Context, id, reason string, at time.Time) error {
	sql, args, err := failQuery(r.Builder, id, reason, at)
	if err != nil {
		return fmt.Errorf("ImagePostgresRepo - MarkFailed - failQuery: %w", err)
	}

	err = r.transition(ctx, id, sql, args)
	if err != nil {
		return fmt.Errorf("ImagePostgresRepo - MarkFailed: %w", err)
	}

	return nil
}

// transition runs the guarded update and its explanation in one transaction,
// so the lookup sees the row the guard rejected.
func (r *ImagePostgresRepo) transition(ctx context.Context, id, sql string, args []any) error {
	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		return applyTransition(ctx, r.GetExecutor(ctx), r.Builder, id, sql, args)
	})
}

// applyTransition explains a zero row count: the record is missing or its
// current status does not allow the move.
func applyTransition(ctx context.Context, ex postgres.Executor, b squirrel.StatementBuilderType, id, sql string, args []any) error {
	tag, err := ex.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("ex.Exec: %w", err)
	}

	if tag.RowsAffected() > 0 {
		return nil
	}

	current, err := getImage(ctx, ex, b, id)
	if err != nil {
		return err
	}

	return fmt.Errorf("%w: current status %s", errs.ErrInvalidTransition, current.Status)
}

func getImage(ctx context.Context, ex postgres.Executor, b squirrel.StatementBuilderType, id string) (*entity.Image, error) {
	sql, args, err := b.
		Select(imageColumns...).
		From(imagesTable).
		Where(squirrel.Eq{idColumn: id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("getImage - b.ToSql: %w", err)
	}

	image, err := scanImage(ex.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("getImage: %w", errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("getImage - scanImage: %w", err)
	}

	return image, nil
}

// completeQuery may repeat on a COMPLETED record, duplicate deliveries rewrite equal values.
func completeQuery(b squirrel.StatementBuilderType, id string, tags []string, at time.Time) (string, []any, error) {
	if tags == nil {
		tags = []string{}
	}

	return b.
		Update(imagesTable).
		Set(statusColumn, string(entity.Completed)).
		Set(tagsColumn, tags).
		Set(failureReasonColumn, nil).
		Set(labeledAtColumn, at).
		Where(squirrel.Eq{idColumn: id}).
		Where(squirrel.Eq{statusColumn: []string{string(entity.Pending), string(entity.Completed)}}).
		ToSql()
}

// failQuery only leaves PENDING, a labeled record never reverts.
func failQuery(b squirrel.StatementBuilderType, id, reason string, at time.Time) (string, []any, error) {
	return b.
		Update(imagesTable).
		Set(statusColumn, string(entity.Failed)).
		Set(failureReasonColumn, reason).
		Set(labeledAtColumn, at).
		Where(squirrel.Eq{idColumn: id}).
		Where(squirrel.Eq{statusColumn: string(entity.Pending)}).
		ToSql()
}

func searchQuery(b squirrel.StatementBuilderType, keywords []string) (string, []any, error) {
	q := b.
		Select(imageColumns...).
		From(imagesTable).
		Where(squirrel.Eq{statusColumn: string(entity.Completed)}).
		OrderBy(createdAtColumn + " DESC")

	if len(keywords) > 0 {
		q = q.Where(squirrel.Expr(tagsColumn+" @> ?::text[]", keywords))
	}

	return q.ToSql()
}

func scanImage(row pgx.Row) (*entity.Image, error) {
	var (
		image         entity.Image
		status        string
		tags          []string
		failureReason *string
	)

	err := row.Scan(
		&image.ImageID,
		&image.StorageKey,
		&image.FileName,
		&image.FileType,
		&status,
		&tags,
		&failureReason,
		&image.CreatedAt,
		&image.LabeledAt,
	)
	if err != nil {
		return nil, err
	}

	image.Status = entity.Status(status)
	if tags == nil {
		tags = []string{}
	}
	image.Tags = tags
	if failureReason != nil {
		image.FailureReason = *failureReason
	}

	return &image, nil
}
