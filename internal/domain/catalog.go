package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/catalogdesk/go-backend/pkg/e"
)

// Catalog — упорядоченное отображение имени категории на список продуктов.
// Порядок категорий и продуктов внутри категории — порядок вставки.
type Catalog struct {
	order []string
	items map[string][]Product
}

func NewCatalog() *Catalog {
	return &Catalog{
		items: make(map[string][]Product),
	}
}

// Categories возвращает имена категорий в порядке вставки.
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Products возвращает список продуктов категории.
func (c *Catalog) Products(category string) ([]Product, bool) {
	products, ok := c.items[category]
	return products, ok
}

// Len возвращает количество категорий.
func (c *Catalog) Len() int {
	return len(c.order)
}

// AddCategory создаёт пустую категорию.
// Возвращает e.ErrDuplicateCategory, если имя уже занято.
func (c *Catalog) AddCategory(name string) error {
	if _, ok := c.items[name]; ok {
		return e.ErrDuplicateCategory
	}

	c.order = append(c.order, name)
	c.items[name] = []Product{}
	return nil
}

// RenameCategory переименовывает категорию, сохраняя её список продуктов
// и относительный порядок остальных категорий.
// Переименование в то же самое имя — успешный no-op.
func (c *Catalog) RenameCategory(oldName, newName string) error {
	if oldName == newName {
		if _, ok := c.items[oldName]; !ok {
			return e.ErrCategoryNotFound
		}
		return nil
	}

	products, ok := c.items[oldName]
	if !ok {
		return e.ErrCategoryNotFound
	}

	if _, ok := c.items[newName]; ok {
		return e.ErrDuplicateCategory
	}

	for i, name := range c.order {
		if name == oldName {
			c.order[i] = newName
			break
		}
	}

	delete(c.items, oldName)
	c.items[newName] = products
	return nil
}

// DeleteCategory удаляет категорию вместе со всеми её продуктами.
func (c *Catalog) DeleteCategory(name string) error {
	if _, ok := c.items[name]; !ok {
		return e.ErrCategoryNotFound
	}

	for i, n := range c.order {
		if n == name {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}

	delete(c.items, name)
	return nil
}

// AddProduct добавляет продукт в конец списка категории.
func (c *Catalog) AddProduct(category string, product Product) error {
	if _, ok := c.items[category]; !ok {
		return e.ErrCategoryNotFound
	}

	c.items[category] = append(c.items[category], product)
	return nil
}

// Product возвращает продукт категории по индексу.
func (c *Catalog) Product(category string, index int) (Product, error) {
	products, ok := c.items[category]
	if !ok {
		return Product{}, e.ErrCategoryNotFound
	}

	if index < 0 || index >= len(products) {
		return Product{}, e.ErrProductNotFound
	}

	return products[index], nil
}

// UpdateProduct заменяет продукт категории по индексу.
func (c *Catalog) UpdateProduct(category string, index int, product Product) error {
	products, ok := c.items[category]
	if !ok {
		return e.ErrCategoryNotFound
	}

	if index < 0 || index >= len(products) {
		return e.ErrProductNotFound
	}

	products[index] = product
	return nil
}

// DeleteProduct удаляет продукт категории по индексу.
// Категория с опустевшим списком остаётся в каталоге.
func (c *Catalog) DeleteProduct(category string, index int) error {
	products, ok := c.items[category]
	if !ok {
		return e.ErrCategoryNotFound
	}

	if index < 0 || index >= len(products) {
		return e.ErrProductNotFound
	}

	c.items[category] = append(products[:index], products[index+1:]...)
	return nil
}

// Clone возвращает глубокую копию каталога.
func (c *Catalog) Clone() *Catalog {
	clone := NewCatalog()
	clone.order = make([]string, len(c.order))
	copy(clone.order, c.order)

	for name, products := range c.items {
		cp := make([]Product, len(products))
		copy(cp, products)
		clone.items[name] = cp
	}

	return clone
}

// MarshalJSON сериализует каталог в JSON-объект, сохраняя порядок категорий.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, name := range c.order {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		value, err := json.Marshal(c.items[name])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON разбирает JSON-объект каталога, сохраняя порядок ключей документа.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("catalog document must be a JSON object")
	}

	c.order = nil
	c.items = make(map[string][]Product)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected category key token: %v", keyTok)
		}

		var products []Product
		if err := dec.Decode(&products); err != nil {
			return err
		}
		if products == nil {
			products = []Product{}
		}

		if _, dup := c.items[name]; dup {
			return fmt.Errorf("duplicate category %q in document", name)
		}

		c.order = append(c.order, name)
		c.items[name] = products
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	return nil
}
