package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/motorline/marketplace/internal/domain/category"
	"github.com/motorline/marketplace/internal/observability"
)

type CategoriesRepo struct {
	pool    *pgxpool.Pool
	metrics *observability.Prom
}

func NewCategoriesRepo(pool *pgxpool.Pool, metrics *observability.Prom) *CategoriesRepo {
	return &CategoriesRepo{pool: pool, metrics: metrics}
}

func (r *CategoriesRepo) Create(ctx context.Context, req category.CreateCategoryRequest) (category.Category, error) {
	now := time.Now().UTC()

	c := category.Category{
		ID:        uuid.NewString(),
		Name:      req.Name,
		ImageSrc:  req.ImageSrc,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := observe(r.metrics, "categories.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO categories (id, name, image_src, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			c.ID, c.Name, c.ImageSrc, c.CreatedAt, c.UpdatedAt,
		)
		return err
	})

	if err != nil {
		if isUniqueViolation(err, "categories_name_key") {
			return category.Category{}, category.ErrNameTaken
		}

		return category.Category{}, err
	}

	return c, nil
}

func (r *CategoriesRepo) List(ctx context.Context) ([]category.Category, error) {
	var out []category.Category

	err := observe(r.metrics, "categories.list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, name, image_src, created_at, updated_at
			 FROM categories
			 ORDER BY name ASC`,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]category.Category, 0)

		for rows.Next() {
			var c category.Category

			err = rows.Scan(&c.ID, &c.Name, &c.ImageSrc, &c.CreatedAt, &c.UpdatedAt)

			if err != nil {
				return err
			}

			out = append(out, c)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *CategoriesRepo) GetByID(ctx context.Context, id string) (category.Category, error) {
	var c category.Category

	err := observe(r.metrics, "categories.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, name, image_src, created_at, updated_at
			 FROM categories
			 WHERE id = $1`,
			id,
		).Scan(&c.ID, &c.Name, &c.ImageSrc, &c.CreatedAt, &c.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return category.Category{}, category.ErrNotFound
		}

		return category.Category{}, err
	}

	return c, nil
}

func (r *CategoriesRepo) Rename(ctx context.Context, id, name string) (category.Category, error) {
	var c category.Category

	err := observe(r.metrics, "categories.rename", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE categories
			 SET name = $2,
			     updated_at = NOW()
			 WHERE id = $1
			 RETURNING id, name, image_src, created_at, updated_at`,
			id, name,
		).Scan(&c.ID, &c.Name, &c.ImageSrc, &c.CreatedAt, &c.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return category.Category{}, category.ErrNotFound
		}

		if isUniqueViolation(err, "categories_name_key") {
			return category.Category{}, category.ErrNameTaken
		}

		return category.Category{}, err
	}

	return c, nil
}
