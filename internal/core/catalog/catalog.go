// internal/core/catalog/catalog.go
package catalog

// Category - категория торговых инструментов
type Category string

const (
	CategoryOTC    Category = "otc"
	CategoryReal   Category = "real"
	CategoryCrypto Category = "crypto"
)

// Статический каталог инструментов. Это конфигурация, не пользовательские данные.
var otcPairs = []string{
	"EUR/USD OTC", "USD/CHF OTC", "AUD/USD OTC",
	"Gold OTC", "AUD/CAD OTC", "AUD/JPY OTC", "CAD/JPY OTC",
}

var realPairs = []string{
	"EUR/USD", "AUD/USD", "Gold", "AUD/JPY", "CAD/JPY",
}

var cryptoPairs = []string{
	"Bitcoin OTC", "Ethereum OTC", "BNB OTC", "Litecoin OTC",
	"Dogecoin OTC", "Polygon OTC", "Toncoin OTC",
	"Polkadot OTC", "Avalanche OTC", "Chainlink OTC",
	"TRON OTC", "Cardano OTC",
}

// Catalog - неизменяемый каталог инструментов по категориям
type Catalog struct {
	byCategory map[Category][]string
	all        []string
}

// New создает каталог со стандартным набором инструментов
func New() *Catalog {
	byCategory := map[Category][]string{
		CategoryOTC:    otcPairs,
		CategoryReal:   realPairs,
		CategoryCrypto: cryptoPairs,
	}

	var all []string
	all = append(all, otcPairs...)
	all = append(all, realPairs...)
	all = append(all, cryptoPairs...)

	return &Catalog{
		byCategory: byCategory,
		all:        all,
	}
}

// Instruments возвращает инструменты заданной категории
func (c *Catalog) Instruments(category Category) []string {
	return c.byCategory[category]
}

// All возвращает полный список инструментов (для рассылки)
func (c *Catalog) All() []string {
	return c.all
}

// Contains проверяет, что инструмент принадлежит категории
func (c *Catalog) Contains(category Category, instrument string) bool {
	for _, p := range c.byCategory[category] {
		if p == instrument {
			return true
		}
	}
	return false
}

// ValidCategory проверяет, что строка является известной категорией
func ValidCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryOTC, CategoryReal, CategoryCrypto:
		return Category(s), true
	}
	return "", false
}
