// Package render строит декларативное представление каталога для выдачи клиенту:
// чистая функция от (каталог, поисковый запрос) без побочных эффектов.
package render

import (
	"strings"

	"github.com/catalogdesk/go-backend/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	BadgeInStock    = "In Stock"
	BadgeOutOfStock = "Out of Stock"
)

// CategoryBlock — отрендеренная категория со строками продуктов.
type CategoryBlock struct {
	Category string       `json:"category"`
	Rows     []ProductRow `json:"rows"`
}

// ProductRow — строка продукта с вычисленными полями отображения.
// Index — индекс в исходном списке категории, по нему адресуются
// операции редактирования и удаления.
type ProductRow struct {
	Index       int           `json:"index"`
	Name        string        `json:"name"`
	Price       string        `json:"price,omitempty"`
	Currency    string        `json:"currency,omitempty"`
	MRP         string        `json:"mrp,omitempty"`
	HasDiscount bool          `json:"hasDiscount"`
	DiscountPct int64         `json:"discountPct,omitempty"`
	StockBadge  string        `json:"stockBadge"`
	CouponBadge string        `json:"couponBadge,omitempty"`
	Specs       string        `json:"specs,omitempty"`
	Links       []domain.Link `json:"links,omitempty"`
	Images      []string      `json:"images,omitempty"`
}

// Render строит список блоков категорий.
// При пустом запросе каждая категория выводится целиком; при непустом —
// категория попадает в выдачу, только если имя или купон хотя бы одного
// продукта содержит запрос без учёта регистра.
func Render(c *domain.Catalog, searchTerm string) []CategoryBlock {
	term := strings.ToLower(strings.TrimSpace(searchTerm))

	blocks := make([]CategoryBlock, 0, c.Len())
	for _, category := range c.Categories() {
		products, _ := c.Products(category)

		rows := make([]ProductRow, 0, len(products))
		for i, product := range products {
			if term != "" && !matches(&product, term) {
				continue
			}
			rows = append(rows, buildRow(i, &product))
		}

		if len(rows) == 0 && term != "" {
			continue // категории без совпадений при поиске не показываются
		}

		blocks = append(blocks, CategoryBlock{Category: category, Rows: rows})
	}

	return blocks
}

// matches проверяет вхождение запроса в имя или купон продукта.
func matches(p *domain.Product, term string) bool {
	if strings.Contains(strings.ToLower(p.Name), term) {
		return true
	}
	return p.Coupon != "" && strings.Contains(strings.ToLower(p.Coupon), term)
}

func buildRow(index int, p *domain.Product) ProductRow {
	row := ProductRow{
		Index:    index,
		Name:     p.Name,
		Price:    p.Price,
		Currency: p.Currency,
		Specs:    p.Specs,
		Links:    p.Links,
		Images:   p.Images,
	}

	if pct, ok := discountPct(p.MRP, p.Price); ok {
		row.HasDiscount = true
		row.DiscountPct = pct
		row.MRP = p.MRP
	}

	if p.Available() {
		row.StockBadge = BadgeInStock
	} else {
		row.StockBadge = BadgeOutOfStock
	}

	if p.Coupon != "" {
		row.CouponBadge = "Code: " + p.Coupon
	}

	return row
}

// discountPct возвращает round(100*(mrp-price)/mrp).
// Скидка показывается только при mrp > price; непарсящиеся или отсутствующие
// значения означают «нет скидки», а не ошибку.
func discountPct(mrpStr, priceStr string) (int64, bool) {
	if mrpStr == "" || priceStr == "" {
		return 0, false
	}

	mrp, err := decimal.NewFromString(mrpStr)
	if err != nil {
		return 0, false
	}

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return 0, false
	}

	if !mrp.GreaterThan(price) {
		return 0, false
	}

	pct := mrp.Sub(price).
		Mul(decimal.NewFromInt(100)).
		Div(mrp).
		Round(0)

	return pct.IntPart(), true
}
