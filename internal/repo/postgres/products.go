package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/motorline/marketplace/internal/domain/product"
	"github.com/motorline/marketplace/internal/domain/tag"
	"github.com/motorline/marketplace/internal/observability"
)

const productColumns = `id, name, description, category_id, image_src, showroom, trim,
	year, kilometers, regional_specs, doors, body_type, seller_type,
	transmission_type, horsepower, number_of_cylinders, warranty,
	exterior_color, interior_color, target_market, price, created_at, updated_at`

type ProductsRepo struct {
	pool    *pgxpool.Pool
	metrics *observability.Prom
}

func NewProductsRepo(pool *pgxpool.Pool, metrics *observability.Prom) *ProductsRepo {
	return &ProductsRepo{pool: pool, metrics: metrics}
}

// Create inserts the product and its tag associations in one transaction.
// Tag names are upserted: an existing tag with the same name is reused.
func (r *ProductsRepo) Create(ctx context.Context, req product.CreateProductRequest) (product.Product, error) {
	now := time.Now().UTC()

	p := productFromRequest(uuid.NewString(), req)
	p.CreatedAt = now
	p.UpdatedAt = now

	err := observe(r.metrics, "products.create", func() error {
		tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})

		if err != nil {
			return err
		}

		defer func() { _ = tx.Rollback(ctx) }()

		_, err = tx.Exec(ctx,
			`INSERT INTO products (`+productColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`,
			p.ID, p.Name, p.Description, p.CategoryID, p.ImageSrc, p.Showroom, p.Trim,
			p.Year, p.Kilometers, p.RegionalSpecs, p.Doors, p.BodyType, p.SellerType,
			p.TransmissionType, p.Horsepower, p.NumberOfCylinders, p.Warranty,
			p.ExteriorColor, p.InteriorColor, p.TargetMarket, p.Price, p.CreatedAt, p.UpdatedAt,
		)

		if err != nil {
			return err
		}

		p.Tags, err = linkTags(ctx, tx, p.ID, req.Tags)

		if err != nil {
			return err
		}

		return tx.Commit(ctx)
	})

	if err != nil {
		return product.Product{}, err
	}

	return p, nil
}

// Update fully replaces the product row and its tag association set.
// An empty or absent tag list clears all associations.
func (r *ProductsRepo) Update(ctx context.Context, id string, req product.CreateProductRequest) (product.Product, error) {
	p := productFromRequest(id, req)

	err := observe(r.metrics, "products.update", func() error {
		tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})

		if err != nil {
			return err
		}

		defer func() { _ = tx.Rollback(ctx) }()

		err = tx.QueryRow(ctx,
			`UPDATE products
			 SET name = $2, description = $3, category_id = $4, image_src = $5,
			     showroom = $6, trim = $7, year = $8, kilometers = $9,
			     regional_specs = $10, doors = $11, body_type = $12,
			     seller_type = $13, transmission_type = $14, horsepower = $15,
			     number_of_cylinders = $16, warranty = $17, exterior_color = $18,
			     interior_color = $19, target_market = $20, price = $21,
			     updated_at = NOW()
			 WHERE id = $1
			 RETURNING created_at, updated_at`,
			p.ID, p.Name, p.Description, p.CategoryID, p.ImageSrc,
			p.Showroom, p.Trim, p.Year, p.Kilometers,
			p.RegionalSpecs, p.Doors, p.BodyType,
			p.SellerType, p.TransmissionType, p.Horsepower,
			p.NumberOfCylinders, p.Warranty, p.ExteriorColor,
			p.InteriorColor, p.TargetMarket, p.Price,
		).Scan(&p.CreatedAt, &p.UpdatedAt)

		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return product.ErrNotFound
			}

			return err
		}

		// set semantics: drop the old association rows, relink from scratch
		_, err = tx.Exec(ctx, `DELETE FROM product_tags WHERE product_id = $1`, p.ID)

		if err != nil {
			return err
		}

		p.Tags, err = linkTags(ctx, tx, p.ID, req.Tags)

		if err != nil {
			return err
		}

		return tx.Commit(ctx)
	})

	if err != nil {
		return product.Product{}, err
	}

	return p, nil
}

func (r *ProductsRepo) List(ctx context.Context, filter product.ListProductsFilter) ([]product.Product, error) {
	var out []product.Product

	err := observe(r.metrics, "products.list", func() error {
		query, args := buildListProductsQuery(filter)

		rows, err := r.pool.Query(ctx, query, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]product.Product, 0, filter.Limit)

		for rows.Next() {
			var p product.Product

			err = rows.Scan(
				&p.ID, &p.Name, &p.Description, &p.CategoryID, &p.ImageSrc, &p.Showroom, &p.Trim,
				&p.Year, &p.Kilometers, &p.RegionalSpecs, &p.Doors, &p.BodyType, &p.SellerType,
				&p.TransmissionType, &p.Horsepower, &p.NumberOfCylinders, &p.Warranty,
				&p.ExteriorColor, &p.InteriorColor, &p.TargetMarket, &p.Price, &p.CreatedAt, &p.UpdatedAt,
			)

			if err != nil {
				return err
			}

			out = append(out, p)
		}

		err = rows.Err()

		if err != nil {
			return err
		}

		return r.loadTags(ctx, out)
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// buildListProductsQuery translates the optional filters into SQL. Price
// bounds are applied one-sided when only one is present.
func buildListProductsQuery(filter product.ListProductsFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	argsPosition := 1

	if filter.CategoryID != nil {
		conds = append(conds, fmt.Sprintf("category_id = $%d", argsPosition))
		args = append(args, *filter.CategoryID)
		argsPosition++
	}

	// OR semantics across the tag list: the product needs at least one
	// associated tag whose name is in the set.
	if len(filter.TagNames) > 0 {
		conds = append(conds, fmt.Sprintf(
			`EXISTS (
				SELECT 1 FROM product_tags pt
				JOIN tags t ON t.id = pt.tag_id
				WHERE pt.product_id = products.id AND t.name = ANY($%d)
			)`, argsPosition))
		args = append(args, filter.TagNames)
		argsPosition++
	}

	if filter.MinPrice != nil {
		conds = append(conds, fmt.Sprintf("price >= $%d", argsPosition))
		args = append(args, *filter.MinPrice)
		argsPosition++
	}

	if filter.MaxPrice != nil {
		conds = append(conds, fmt.Sprintf("price <= $%d", argsPosition))
		args = append(args, *filter.MaxPrice)
		argsPosition++
	}

	query := `SELECT ` + productColumns + ` FROM products`

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	// stable ordering for pagination
	query += fmt.Sprintf(" ORDER BY created_at ASC, id ASC LIMIT $%d OFFSET $%d", argsPosition, argsPosition+1)

	args = append(args, filter.Limit, filter.Offset)

	return query, args
}

// loadTags populates the Tags slice of every listed product with one query.
func (r *ProductsRepo) loadTags(ctx context.Context, products []product.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]string, 0, len(products))

	for i := range products {
		products[i].Tags = []tag.Tag{}
		ids = append(ids, products[i].ID)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT pt.product_id, t.id, t.name
		 FROM product_tags pt
		 JOIN tags t ON t.id = pt.tag_id
		 WHERE pt.product_id = ANY($1)
		 ORDER BY t.name ASC`,
		ids,
	)

	if err != nil {
		return err
	}

	defer rows.Close()

	byID := make(map[string]int, len(products))

	for i := range products {
		byID[products[i].ID] = i
	}

	for rows.Next() {
		var productID string
		var t tag.Tag

		err = rows.Scan(&productID, &t.ID, &t.Name)

		if err != nil {
			return err
		}

		if i, ok := byID[productID]; ok {
			products[i].Tags = append(products[i].Tags, t)
		}
	}

	return rows.Err()
}

// linkTags upserts each tag by name and attaches it to the product. Reusing
// an existing row keeps tag names unique regardless of how often a name is
// supplied across products.
func linkTags(ctx context.Context, tx pgx.Tx, productID string, names []string) ([]tag.Tag, error) {
	tags := make([]tag.Tag, 0, len(names))
	seen := make(map[string]struct{}, len(names))

	for _, name := range names {
		name = strings.TrimSpace(name)

		if name == "" {
			continue
		}

		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		var t tag.Tag

		err := tx.QueryRow(ctx,
			`INSERT INTO tags (id, name)
			 VALUES ($1, $2)
			 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			 RETURNING id, name`,
			uuid.NewString(), name,
		).Scan(&t.ID, &t.Name)

		if err != nil {
			return nil, err
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO product_tags (product_id, tag_id)
			 VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`,
			productID, t.ID,
		)

		if err != nil {
			return nil, err
		}

		tags = append(tags, t)
	}

	return tags, nil
}

func productFromRequest(id string, req product.CreateProductRequest) product.Product {
	return product.Product{
		ID:                id,
		Name:              req.Name,
		Description:       req.Description,
		CategoryID:        req.CategoryID,
		ImageSrc:          req.ImageSrc,
		Showroom:          req.Showroom,
		Trim:              req.Trim,
		Year:              req.Year,
		Kilometers:        req.Kilometers,
		RegionalSpecs:     req.RegionalSpecs,
		Doors:             req.Doors,
		BodyType:          req.BodyType,
		SellerType:        req.SellerType,
		TransmissionType:  req.TransmissionType,
		Horsepower:        req.Horsepower,
		NumberOfCylinders: req.NumberOfCylinders,
		Warranty:          req.Warranty,
		ExteriorColor:     req.ExteriorColor,
		InteriorColor:     req.InteriorColor,
		TargetMarket:      req.TargetMarket,
		Price:             req.Price,
		Tags:              []tag.Tag{},
	}
}
