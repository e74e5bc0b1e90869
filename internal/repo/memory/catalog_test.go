package memory

import (
	"fmt"
	"testing"

	"github.com/motorline/marketplace/internal/domain/product"
)

func seedProduct(t *testing.T, c *Catalog, name, categoryID string, price float64, tags ...string) product.Product {
	t.Helper()

	p, err := c.Products().Create(t.Context(), product.CreateProductRequest{
		Name:        name,
		Description: "test listing",
		CategoryID:  categoryID,
		Price:       price,
		Tags:        tags,
	})

	if err != nil {
		t.Fatalf("seed product %s: %v", name, err)
	}

	return p
}

func TestUpsertTagsReusesExistingRows(t *testing.T) {
	c := NewCatalog()

	first := seedProduct(t, c, "Patrol", "c-1", 100, "v8", "gcc-specs")
	second := seedProduct(t, c, "Land Cruiser", "c-1", 120, "v8")

	if len(first.Tags) != 2 {
		t.Fatalf("first product got %d tags, want 2", len(first.Tags))
	}

	if len(second.Tags) != 1 {
		t.Fatalf("second product got %d tags, want 1", len(second.Tags))
	}

	// the shared name must resolve to the same tag row
	var firstV8 string

	for _, tg := range first.Tags {
		if tg.Name == "v8" {
			firstV8 = tg.ID
		}
	}

	if second.Tags[0].ID != firstV8 {
		t.Fatalf("tag %q got two ids: %s vs %s", "v8", firstV8, second.Tags[0].ID)
	}

	all, err := c.Tags().List(t.Context())

	if err != nil {
		t.Fatalf("list tags: %v", err)
	}

	if len(all) != 2 {
		t.Fatalf("got %d distinct tags, want 2", len(all))
	}
}

func TestUpsertTagsDedupesAndTrims(t *testing.T) {
	c := NewCatalog()

	p := seedProduct(t, c, "Patrol", "c-1", 100, " v8 ", "v8", "", "gcc-specs")

	if len(p.Tags) != 2 {
		t.Fatalf("got %d tags, want 2 (deduped, trimmed, empties dropped): %+v", len(p.Tags), p.Tags)
	}
}

func TestListProductsTagFilterMatchesAny(t *testing.T) {
	c := NewCatalog()

	seedProduct(t, c, "Patrol", "c-1", 100, "v8")
	seedProduct(t, c, "Civic", "c-2", 60, "economy")
	seedProduct(t, c, "Mustang", "c-2", 150, "v8", "convertible")
	seedProduct(t, c, "Leaf", "c-2", 70, "electric")

	out, err := c.Products().List(t.Context(), product.ListProductsFilter{
		TagNames: []string{"v8", "electric"},
		Limit:    10,
	})

	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(out) != 3 {
		t.Fatalf("got %d products, want 3", len(out))
	}

	for _, p := range out {
		if p.Name == "Civic" {
			t.Fatal("product without any requested tag was returned")
		}
	}
}

func TestListProductsOneSidedPriceBounds(t *testing.T) {
	c := NewCatalog()

	seedProduct(t, c, "Cheap", "c-1", 10)
	seedProduct(t, c, "Mid", "c-1", 50)
	seedProduct(t, c, "Dear", "c-1", 90)

	min := 40.0

	out, err := c.Products().List(t.Context(), product.ListProductsFilter{MinPrice: &min, Limit: 10})

	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(out) != 2 {
		t.Fatalf("minPrice only: got %d products, want 2", len(out))
	}

	max := 60.0

	out, err = c.Products().List(t.Context(), product.ListProductsFilter{MaxPrice: &max, Limit: 10})

	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(out) != 2 {
		t.Fatalf("maxPrice only: got %d products, want 2", len(out))
	}

	out, err = c.Products().List(t.Context(), product.ListProductsFilter{MinPrice: &min, MaxPrice: &max, Limit: 10})

	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(out) != 1 || out[0].Name != "Mid" {
		t.Fatalf("both bounds: got %+v, want just Mid", out)
	}
}

func TestListProductsPagination(t *testing.T) {
	c := NewCatalog()

	for i := 1; i <= 12; i++ {
		seedProduct(t, c, fmt.Sprintf("Car %02d", i), "c-1", float64(i))
	}

	out, err := c.Products().List(t.Context(), product.ListProductsFilter{Limit: 5, Offset: 5})

	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(out) != 5 {
		t.Fatalf("got %d products, want 5", len(out))
	}

	if out[0].Name != "Car 06" || out[4].Name != "Car 10" {
		t.Fatalf("page 2 spans %s..%s, want Car 06..Car 10", out[0].Name, out[4].Name)
	}

	// offset past the end is an empty page, not an error
	out, err = c.Products().List(t.Context(), product.ListProductsFilter{Limit: 5, Offset: 50})

	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(out) != 0 {
		t.Fatalf("got %d products past the end, want 0", len(out))
	}
}

func TestUpdateReplacesTagSet(t *testing.T) {
	c := NewCatalog()

	p := seedProduct(t, c, "Patrol", "c-1", 100, "v8", "gcc-specs")

	updated, err := c.Products().Update(t.Context(), p.ID, product.CreateProductRequest{
		Name:        "Patrol Platinum",
		Description: "updated listing",
		CategoryID:  "c-1",
		Price:       110,
		Tags:        []string{"v8"},
	})

	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if len(updated.Tags) != 1 || updated.Tags[0].Name != "v8" {
		t.Fatalf("association set not replaced: %+v", updated.Tags)
	}

	if !updated.CreatedAt.Equal(p.CreatedAt) {
		t.Fatal("update must not change createdAt")
	}

	_, err = c.Products().Update(t.Context(), "missing", product.CreateProductRequest{
		Name:        "Ghost",
		Description: "none",
		CategoryID:  "c-1",
	})

	if err != product.ErrNotFound {
		t.Fatalf("got %v, want product.ErrNotFound", err)
	}
}
