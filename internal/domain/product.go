package domain

// Store — магазин, на который ведёт внешняя ссылка продукта.
type Store string

const (
	StoreAmazon   Store = "Amazon"
	StoreFlipkart Store = "Flipkart"
)

// ValidStore проверяет, что имя магазина входит в число поддерживаемых.
func ValidStore(s Store) bool {
	return s == StoreAmazon || s == StoreFlipkart
}

// Link — внешняя ссылка продукта на страницу магазина.
type Link struct {
	Store Store  `json:"store"`
	URL   string `json:"url"`
}

// Product описывает запись каталога.
// Price и MRP хранятся числовыми строками, как их вводит оператор;
// Images содержит только идентификаторы, байты живут в хранилище изображений.
type Product struct {
	Name     string   `json:"name"`
	Price    string   `json:"price,omitempty"`
	Currency string   `json:"currency,omitempty"`
	MRP      string   `json:"mrp,omitempty"`
	Coupon   string   `json:"coupon,omitempty"`
	InStock  *bool    `json:"inStock,omitempty"`
	Specs    string   `json:"specs,omitempty"`
	Links    []Link   `json:"links,omitempty"`
	Images   []string `json:"image,omitempty"`
}

// Available трактует отсутствие поля inStock как «в наличии».
func (p *Product) Available() bool {
	return p.InStock == nil || *p.InStock
}
