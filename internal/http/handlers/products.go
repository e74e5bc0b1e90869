package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/motorline/marketplace/internal/domain/category"
	"github.com/motorline/marketplace/internal/domain/product"
	"github.com/motorline/marketplace/internal/domain/tag"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type ProductStore interface {
	Create(ctx context.Context, req product.CreateProductRequest) (product.Product, error)
	Update(ctx context.Context, id string, req product.CreateProductRequest) (product.Product, error)
	List(ctx context.Context, filter product.ListProductsFilter) ([]product.Product, error)
}

type CategoryFinder interface {
	GetByID(ctx context.Context, id string) (category.Category, error)
}

type TagStore interface {
	Create(ctx context.Context, name string) (tag.Tag, error)
	List(ctx context.Context) ([]tag.Tag, error)
}

type ProductsHandler struct {
	products   ProductStore
	categories CategoryFinder
	tags       TagStore
}

func NewProductsHandler(products ProductStore, categories CategoryFinder, tags TagStore) *ProductsHandler {
	return &ProductsHandler{
		products:   products,
		categories: categories,
		tags:       tags,
	}
}

func (h *ProductsHandler) CreateProduct(ctx *gin.Context) {
	var req product.CreateProductRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	// category must exist before the write; the check and the insert are
	// separate statements, category deletion is out of scope
	_, err := h.categories.GetByID(cctx, req.CategoryID)

	if err != nil {
		if errors.Is(err, category.ErrNotFound) {
			RespondNotFound(ctx, "Category not found.")
			return
		}

		RespondInternal(ctx, "Failed to add product, please try again later.")
		return
	}

	p, err := h.products.Create(cctx, req)

	if err != nil {
		RespondInternal(ctx, "Failed to add product, please try again later.")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"data": p})
}

func (h *ProductsHandler) UpdateProduct(ctx *gin.Context) {
	id := ctx.Param("id")

	var req product.CreateProductRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	_, err := h.categories.GetByID(cctx, req.CategoryID)

	if err != nil {
		if errors.Is(err, category.ErrNotFound) {
			RespondNotFound(ctx, "Category not found.")
			return
		}

		RespondInternal(ctx, "Failed to update product, please try again later.")
		return
	}

	p, err := h.products.Update(cctx, id, req)

	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			RespondNotFound(ctx, "Product not found.")
			return
		}

		RespondInternal(ctx, "Failed to update product, please try again later.")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": p})
}

func (h *ProductsHandler) ListProducts(ctx *gin.Context) {
	filter, errMsg := buildListFilter(ctx)

	if errMsg != "" {
		RespondBadRequest(ctx, errMsg)
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	products, err := h.products.List(cctx, filter)

	if err != nil {
		RespondInternal(ctx, "Failed to fetch products, please try again later.")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": products})
}

func (h *ProductsHandler) CreateTag(ctx *gin.Context) {
	var req tag.CreateTagRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	t, err := h.tags.Create(cctx, req.Name)

	if err != nil {
		if errors.Is(err, tag.ErrNameTaken) {
			RespondConflict(ctx, "Tag with this name already exists.")
			return
		}

		RespondInternal(ctx, "Failed to add tag, please try again later.")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"data": t})
}

func (h *ProductsHandler) ListTags(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	tags, err := h.tags.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Failed to fetch tags, please try again later.")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": tags})
}

// buildListFilter translates the optional query parameters into the
// persistence filter. Non-numeric or out-of-range paging and price input is
// rejected rather than passed through. Returns a non-empty message on
// invalid input.
func buildListFilter(ctx *gin.Context) (product.ListProductsFilter, string) {
	var filter product.ListProductsFilter

	if categoryID := ctx.Query("categoryId"); categoryID != "" {
		filter.CategoryID = &categoryID
	}

	if rawTags := ctx.Query("tags"); rawTags != "" {
		for _, name := range strings.Split(rawTags, ",") {
			name = strings.TrimSpace(name)

			if name != "" {
				filter.TagNames = append(filter.TagNames, name)
			}
		}
	}

	if raw := ctx.Query("minPrice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)

		if err != nil || v < 0 {
			return product.ListProductsFilter{}, "minPrice must be a non-negative number."
		}

		filter.MinPrice = &v
	}

	if raw := ctx.Query("maxPrice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)

		if err != nil || v < 0 {
			return product.ListProductsFilter{}, "maxPrice must be a non-negative number."
		}

		filter.MaxPrice = &v
	}

	page := 1

	if raw := ctx.Query("page"); raw != "" {
		v, err := strconv.Atoi(raw)

		if err != nil || v < 1 {
			return product.ListProductsFilter{}, "page must be a positive integer."
		}

		page = v
	}

	pageSize := defaultPageSize

	if raw := ctx.Query("pageSize"); raw != "" {
		v, err := strconv.Atoi(raw)

		if err != nil || v < 1 || v > maxPageSize {
			return product.ListProductsFilter{}, "pageSize must be an integer between 1 and 100."
		}

		pageSize = v
	}

	filter.Limit = pageSize
	filter.Offset = (page - 1) * pageSize

	return filter, ""
}
