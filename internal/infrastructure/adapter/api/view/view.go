package view

import (
	"embed"
	"html/template"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/stock-simulator/internal/domain/entity"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names accepted by gin's HTML renderer
const (
	Apology  = "apology.html"
	Index    = "index.html"
	Buy      = "buy.html"
	Sell     = "sell.html"
	History  = "history.html"
	Quote    = "quote.html"
	Quoted   = "quoted.html"
	Login    = "login.html"
	Register = "register.html"
)

// Funcs returns the helpers available to every template
func Funcs() template.FuncMap {
	return template.FuncMap{
		"usd": func(amount decimal.Decimal) string {
			return entity.FormatUSD(amount)
		},
		"abs": func(shares int64) int64 {
			if shares < 0 {
				return -shares
			}
			return shares
		},
	}
}

// Load parses the embedded templates
func Load() (*template.Template, error) {
	return template.New("").Funcs(Funcs()).ParseFS(templateFS, "templates/*.html")
}
