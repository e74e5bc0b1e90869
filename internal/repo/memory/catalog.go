package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/motorline/marketplace/internal/domain/category"
	"github.com/motorline/marketplace/internal/domain/product"
	"github.com/motorline/marketplace/internal/domain/tag"
	"github.com/motorline/marketplace/internal/domain/user"
)

// Catalog is an in-memory stand-in for the postgres repos. It mirrors their
// semantics (uniqueness, tag upsert, filter/pagination) and backs the handler
// and router tests. The per-entity views returned by Users, Categories,
// Products and Tags satisfy the same handler interfaces the postgres repos
// do.
type Catalog struct {
	mu sync.RWMutex

	users      map[string]user.User
	categories map[string]category.Category
	products   map[string]product.Product
	tagsByName map[string]tag.Tag

	// insertion order, the persistence order pagination pages over
	productOrder []string
}

func NewCatalog() *Catalog {
	return &Catalog{
		users:      make(map[string]user.User),
		categories: make(map[string]category.Category),
		products:   make(map[string]product.Product),
		tagsByName: make(map[string]tag.Tag),
	}
}

func (c *Catalog) Users() *UsersRepo           { return &UsersRepo{c: c} }
func (c *Catalog) Categories() *CategoriesRepo { return &CategoriesRepo{c: c} }
func (c *Catalog) Products() *ProductsRepo     { return &ProductsRepo{c: c} }
func (c *Catalog) Tags() *TagsRepo             { return &TagsRepo{c: c} }

// users

type UsersRepo struct {
	c *Catalog
}

func (r *UsersRepo) Create(ctx context.Context, username, email, passwordHash string) (user.User, error) {
	c := r.c

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, u := range c.users {
		if u.Email == email {
			return user.User{}, user.ErrEmailTaken
		}
	}

	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	c.users[u.ID] = u

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	c := r.c

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, u := range c.users {
		if u.Email == email {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	c := r.c

	c.mu.RLock()
	defer c.mu.RUnlock()

	u, ok := c.users[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

// categories

type CategoriesRepo struct {
	c *Catalog
}

func (r *CategoriesRepo) Create(ctx context.Context, req category.CreateCategoryRequest) (category.Category, error) {
	c := r.c

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.categories {
		if existing.Name == req.Name {
			return category.Category{}, category.ErrNameTaken
		}
	}

	now := time.Now().UTC()

	cat := category.Category{
		ID:        uuid.NewString(),
		Name:      req.Name,
		ImageSrc:  req.ImageSrc,
		CreatedAt: now,
		UpdatedAt: now,
	}
	c.categories[cat.ID] = cat

	return cat, nil
}

func (r *CategoriesRepo) List(ctx context.Context) ([]category.Category, error) {
	c := r.c

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]category.Category, 0, len(c.categories))

	for _, cat := range c.categories {
		out = append(out, cat)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

func (r *CategoriesRepo) GetByID(ctx context.Context, id string) (category.Category, error) {
	c := r.c

	c.mu.RLock()
	defer c.mu.RUnlock()

	cat, ok := c.categories[id]

	if !ok {
		return category.Category{}, category.ErrNotFound
	}

	return cat, nil
}

func (r *CategoriesRepo) Rename(ctx context.Context, id, name string) (category.Category, error) {
	c := r.c

	c.mu.Lock()
	defer c.mu.Unlock()

	cat, ok := c.categories[id]

	if !ok {
		return category.Category{}, category.ErrNotFound
	}

	for otherID, other := range c.categories {
		if otherID != id && other.Name == name {
			return category.Category{}, category.ErrNameTaken
		}
	}

	cat.Name = name
	cat.UpdatedAt = time.Now().UTC()
	c.categories[id] = cat

	return cat, nil
}

// tags

type TagsRepo struct {
	c *Catalog
}

func (r *TagsRepo) Create(ctx context.Context, name string) (tag.Tag, error) {
	c := r.c

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.tagsByName[name]; ok {
		return tag.Tag{}, tag.ErrNameTaken
	}

	t := tag.Tag{ID: uuid.NewString(), Name: name}
	c.tagsByName[name] = t

	return t, nil
}

func (r *TagsRepo) List(ctx context.Context) ([]tag.Tag, error) {
	c := r.c

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]tag.Tag, 0, len(c.tagsByName))

	for _, t := range c.tagsByName {
		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

// products

type ProductsRepo struct {
	c *Catalog
}

func (r *ProductsRepo) Create(ctx context.Context, req product.CreateProductRequest) (product.Product, error) {
	c := r.c

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UTC()

	p := productFromRequest(uuid.NewString(), req)
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Tags = c.upsertTags(req.Tags)

	c.products[p.ID] = p
	c.productOrder = append(c.productOrder, p.ID)

	return p, nil
}

func (r *ProductsRepo) Update(ctx context.Context, id string, req product.CreateProductRequest) (product.Product, error) {
	c := r.c

	c.mu.Lock()
	defer c.mu.Unlock()

	existing, ok := c.products[id]

	if !ok {
		return product.Product{}, product.ErrNotFound
	}

	p := productFromRequest(id, req)
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	p.Tags = c.upsertTags(req.Tags)

	c.products[id] = p

	return p, nil
}

func (r *ProductsRepo) List(ctx context.Context, filter product.ListProductsFilter) ([]product.Product, error) {
	c := r.c

	c.mu.RLock()
	defer c.mu.RUnlock()

	matched := make([]product.Product, 0)

	for _, id := range c.productOrder {
		p := c.products[id]

		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			continue
		}

		if len(filter.TagNames) > 0 && !hasAnyTag(p, filter.TagNames) {
			continue
		}

		if filter.MinPrice != nil && p.Price < *filter.MinPrice {
			continue
		}

		if filter.MaxPrice != nil && p.Price > *filter.MaxPrice {
			continue
		}

		matched = append(matched, p)
	}

	if filter.Offset >= len(matched) {
		return []product.Product{}, nil
	}

	matched = matched[filter.Offset:]

	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}

	return matched, nil
}

// upsertTags mirrors the postgres create-if-absent-else-reuse semantics.
// Caller must hold the write lock.
func (c *Catalog) upsertTags(names []string) []tag.Tag {
	out := make([]tag.Tag, 0, len(names))
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

		t, ok := c.tagsByName[name]

		if !ok {
			t = tag.Tag{ID: uuid.NewString(), Name: name}
			c.tagsByName[name] = t
		}

		out = append(out, t)
	}

	return out
}

func hasAnyTag(p product.Product, names []string) bool {
	for _, t := range p.Tags {
		for _, name := range names {
			if t.Name == name {
				return true
			}
		}
	}

	return false
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
