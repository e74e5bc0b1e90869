package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/motorline/marketplace/internal/domain/category"
)

type CategoryStore interface {
	Create(ctx context.Context, req category.CreateCategoryRequest) (category.Category, error)
	List(ctx context.Context) ([]category.Category, error)
	Rename(ctx context.Context, id, name string) (category.Category, error)
}

type CategoriesHandler struct {
	store CategoryStore
}

func NewCategoriesHandler(store CategoryStore) *CategoriesHandler {
	return &CategoriesHandler{store: store}
}

func (h *CategoriesHandler) CreateCategory(ctx *gin.Context) {
	var req category.CreateCategoryRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	c, err := h.store.Create(cctx, req)

	if err != nil {
		if errors.Is(err, category.ErrNameTaken) {
			RespondConflict(ctx, "Category with this name already exists.")
			return
		}

		RespondInternal(ctx, "Adding category failed, please try again later.")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": fmt.Sprintf("Successfully added category %s", c.Name),
	})
}

func (h *CategoriesHandler) ListCategories(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	categories, err := h.store.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Failed to fetch categories, please try again later.")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": categories})
}

func (h *CategoriesHandler) RenameCategory(ctx *gin.Context) {
	id := ctx.Param("id")

	var req category.RenameCategoryRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	c, err := h.store.Rename(cctx, id, req.Name)

	if err != nil {
		if errors.Is(err, category.ErrNotFound) {
			RespondNotFound(ctx, "Category not found.")
			return
		}

		if errors.Is(err, category.ErrNameTaken) {
			RespondConflict(ctx, "Category with this name already exists.")
			return
		}

		RespondInternal(ctx, "Failed to update category name, please try again later.")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": c})
}
