package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/motorline/marketplace/internal/domain/tag"
	"github.com/motorline/marketplace/internal/observability"
)

type TagsRepo struct {
	pool    *pgxpool.Pool
	metrics *observability.Prom
}

func NewTagsRepo(pool *pgxpool.Pool, metrics *observability.Prom) *TagsRepo {
	return &TagsRepo{pool: pool, metrics: metrics}
}

func (r *TagsRepo) Create(ctx context.Context, name string) (tag.Tag, error) {
	t := tag.Tag{
		ID:   uuid.NewString(),
		Name: name,
	}

	err := observe(r.metrics, "tags.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO tags (id, name) VALUES ($1, $2)`,
			t.ID, t.Name,
		)
		return err
	})

	if err != nil {
		if isUniqueViolation(err, "tags_name_key") {
			return tag.Tag{}, tag.ErrNameTaken
		}

		return tag.Tag{}, err
	}

	return t, nil
}

func (r *TagsRepo) List(ctx context.Context) ([]tag.Tag, error) {
	var out []tag.Tag

	err := observe(r.metrics, "tags.list", func() error {
		rows, err := r.pool.Query(ctx, `SELECT id, name FROM tags ORDER BY name ASC`)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]tag.Tag, 0)

		for rows.Next() {
			var t tag.Tag

			err = rows.Scan(&t.ID, &t.Name)

			if err != nil {
				return err
			}

			out = append(out, t)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}
