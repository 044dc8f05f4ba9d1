package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/docvault/internal/domain/document"
	"github.com/geocoder89/docvault/internal/domain/user"
	"github.com/geocoder89/docvault/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectDocumentWithOwner = `
	SELECT d.id, d.title, d.description, d.file_path, d.status, d.user_id, d.created_at, d.updated_at,
		u.id, u.email, u.role, u.created_at
	FROM documents d
	JOIN users u ON u.id = d.user_id`

type DocumentsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewDocumentsRepo(pool *pgxpool.Pool, prom *observability.Prom) *DocumentsRepo {
	return &DocumentsRepo{pool: pool, prom: prom}
}

func (r *DocumentsRepo) Create(ctx context.Context, req document.CreateDocumentRequest) (document.Document, error) {
	d := document.Document{
		Title:       req.Title,
		Description: req.Description,
		FilePath:    req.FilePath,
		UserID:      req.UserID,
	}

	err := r.prom.ObserveDB("documents.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO documents (title, description, file_path, user_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id, status, created_at, updated_at`,
			req.Title, req.Description, req.FilePath, req.UserID,
		).Scan(&d.ID, &d.Status, &d.CreatedAt, &d.UpdatedAt)
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return document.Document{}, document.ErrOwnerNotFound
		}
		return document.Document{}, err
	}

	return d, nil
}

func (r *DocumentsRepo) List(ctx context.Context) ([]document.Document, error) {
	out := make([]document.Document, 0)

	err := r.prom.ObserveDB("documents.list", func() error {
		rows, err := r.pool.Query(ctx, selectDocumentWithOwner+` ORDER BY d.id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			d, err := scanDocumentWithOwner(rows)
			if err != nil {
				return err
			}
			out = append(out, d)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *DocumentsRepo) GetByID(ctx context.Context, id int64) (document.Document, error) {
	var d document.Document

	err := r.prom.ObserveDB("documents.get_by_id", func() error {
		var err error
		d, err = scanDocumentWithOwner(r.pool.QueryRow(ctx, selectDocumentWithOwner+` WHERE d.id = $1`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return document.Document{}, document.ErrNotFound
		}
		return document.Document{}, err
	}

	return d, nil
}

func (r *DocumentsRepo) UpdateStatus(ctx context.Context, id int64, status string) (document.Document, error) {
	var d document.Document

	err := r.prom.ObserveDB("documents.update_status", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE documents
			SET status = $2,
				updated_at = NOW()
			WHERE id = $1
			RETURNING id, title, description, file_path, status, user_id, created_at, updated_at`,
			id, status,
		).Scan(&d.ID, &d.Title, &d.Description, &d.FilePath, &d.Status, &d.UserID, &d.CreatedAt, &d.UpdatedAt)
	})

	if err != nil {
		// if there are no rows matching the id
		if errors.Is(err, pgx.ErrNoRows) {
			return document.Document{}, document.ErrNotFound
		}
		return document.Document{}, err
	}

	return d, nil
}

func (r *DocumentsRepo) Delete(ctx context.Context, id int64) error {
	var affected int64

	err := r.prom.ObserveDB("documents.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return err
	})

	if err != nil {
		return err
	}

	// if no rows were deleted the document never existed
	if affected == 0 {
		return document.ErrNotFound
	}

	return nil
}

func (r *DocumentsRepo) Count(ctx context.Context) (int, error) {
	var n int

	err := r.prom.ObserveDB("documents.count", func() error {
		return r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n)
	})

	return n, err
}

func scanDocumentWithOwner(row pgx.Row) (document.Document, error) {
	var d document.Document
	var owner user.User

	err := row.Scan(
		&d.ID, &d.Title, &d.Description, &d.FilePath, &d.Status, &d.UserID, &d.CreatedAt, &d.UpdatedAt,
		&owner.ID, &owner.Email, &owner.Role, &owner.CreatedAt,
	)
	if err != nil {
		return document.Document{}, err
	}

	d.User = &owner

	return d, nil
}
