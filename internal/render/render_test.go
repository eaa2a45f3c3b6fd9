package render

import (
	"encoding/json"
	"testing"

	"github.com/catalogdesk/go-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool { return &v }

func testCatalog(t *testing.T) *domain.Catalog {
	t.Helper()

	c := domain.NewCatalog()
	require.NoError(t, c.AddCategory("Phones"))
	require.NoError(t, c.AddCategory("Laptops"))
	require.NoError(t, c.AddCategory("Accessories"))

	require.NoError(t, c.AddProduct("Phones", domain.Product{
		Name:     "Pixel 8",
		Price:    "500",
		Currency: "₹",
		MRP:      "1000",
		Coupon:   "FESTIVE20",
	}))
	require.NoError(t, c.AddProduct("Phones", domain.Product{
		Name:    "iPhone 15",
		Price:   "999",
		InStock: boolPtr(false),
	}))
	require.NoError(t, c.AddProduct("Laptops", domain.Product{
		Name:  "ThinkPad X1",
		Price: "1400",
		MRP:   "1400",
	}))

	return c
}

func TestRender_EmptyTerm(t *testing.T) {
	blocks := Render(testCatalog(t), "")

	require.Len(t, blocks, 3)
	assert.Equal(t, "Phones", blocks[0].Category)
	assert.Equal(t, "Laptops", blocks[1].Category)

	// пустые категории присутствуют в полной выдаче
	assert.Equal(t, "Accessories", blocks[2].Category)
	assert.Empty(t, blocks[2].Rows)

	require.Len(t, blocks[0].Rows, 2)
	assert.Equal(t, 0, blocks[0].Rows[0].Index)
	assert.Equal(t, 1, blocks[0].Rows[1].Index)
}

func TestRender_Search(t *testing.T) {
	tests := []struct {
		name       string
		term       string
		categories []string
	}{
		{"matches name case-insensitively", "pIxEl", []string{"Phones"}},
		{"matches coupon", "festive", []string{"Phones"}},
		{"surrounding whitespace trimmed", "  thinkpad  ", []string{"Laptops"}},
		{"no matches hides all categories", "nonexistent", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := Render(testCatalog(t), tt.term)

			got := make([]string, 0, len(blocks))
			for _, b := range blocks {
				got = append(got, b.Category)
			}

			if tt.categories == nil {
				assert.Empty(t, got)
			} else {
				assert.Equal(t, tt.categories, got)
			}
		})
	}
}

func TestRender_SearchKeepsOriginalIndexes(t *testing.T) {
	blocks := Render(testCatalog(t), "iphone")

	require.Len(t, blocks, 1)
	require.Len(t, blocks[0].Rows, 1)
	// индекс адресует продукт в полном списке категории
	assert.Equal(t, 1, blocks[0].Rows[0].Index)
	assert.Equal(t, "iPhone 15", blocks[0].Rows[0].Name)
}

func TestRender_Discount(t *testing.T) {
	blocks := Render(testCatalog(t), "")

	pixel := blocks[0].Rows[0]
	assert.True(t, pixel.HasDiscount)
	assert.Equal(t, int64(50), pixel.DiscountPct)
	assert.Equal(t, "1000", pixel.MRP)

	// mrp == price — скидка не показывается
	thinkpad := blocks[1].Rows[0]
	assert.False(t, thinkpad.HasDiscount)
	assert.Empty(t, thinkpad.MRP)
}

func TestRender_Badges(t *testing.T) {
	blocks := Render(testCatalog(t), "")

	pixel := blocks[0].Rows[0]
	assert.Equal(t, BadgeInStock, pixel.StockBadge)
	assert.Equal(t, "Code: FESTIVE20", pixel.CouponBadge)

	iphone := blocks[0].Rows[1]
	assert.Equal(t, BadgeOutOfStock, iphone.StockBadge)
	assert.Empty(t, iphone.CouponBadge)
}

func TestDiscountPct(t *testing.T) {
	tests := []struct {
		name  string
		mrp   string
		price string
		pct   int64
		ok    bool
	}{
		{"half price", "1000", "500", 50, true},
		{"rounds to nearest", "300", "200", 33, true},
		{"rounds up", "3", "1", 67, true},
		{"no markup", "500", "500", 0, false},
		{"price above mrp", "400", "500", 0, false},
		{"missing mrp", "", "500", 0, false},
		{"missing price", "1000", "", 0, false},
		{"garbage mrp", "oops", "500", 0, false},
		{"garbage price", "1000", "oops", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pct, ok := discountPct(tt.mrp, tt.price)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.pct, pct)
		})
	}
}

func TestProductRow_JSONOmitsEmptyFields(t *testing.T) {
	row := ProductRow{Index: 0, Name: "Cable", StockBadge: BadgeInStock}

	data, err := json.Marshal(row)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.NotContains(t, decoded, "price")
	assert.NotContains(t, decoded, "mrp")
	assert.NotContains(t, decoded, "discountPct")
	assert.NotContains(t, decoded, "couponBadge")
	assert.Contains(t, decoded, "stockBadge")
}
