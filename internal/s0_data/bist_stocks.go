package s0_data

import (
	"strings"

	"github.com/bistsignal/backend/internal/contracts"
	"github.com/bistsignal/backend/internal/s3_macro"
)

// Stock list names
const (
	ListBIST30  = "BIST30"
	ListBIST100 = "BIST100"
	ListPopular = "POPULAR"
)

// bist30 is the most liquid index basket
var bist30 = []string{
	"ASELS", "BIMAS", "EREGL", "GARAN", "HEKTS", "ISCTR", "KCHOL", "KOZAA",
	"KOZAL", "PETKM", "PGSUS", "SAHOL", "SASA", "SISE", "TAVHL", "TCELL",
	"THYAO", "TKFEN", "TOASO", "TUPRS", "VAKBN", "YKBNK",
}

var bist100 = append(append([]string{}, bist30...),
	"ADEL", "ADESE", "AEFES", "AFYON", "AGHOL", "AKBNK", "AKCNS", "AKENR",
	"AKSA", "AKSEN", "ALARK", "ALBRK", "ALGYO", "ALKIM", "ANSGR", "ARCLK",
	"ARDYZ", "ASTOR", "BAGFS", "BANVT", "BRSAN", "BFREN", "BRYAT", "BTCIM",
	"BUCIM", "CCOLA", "CEMTS", "CIMSA", "DOAS", "DOHOL", "ECILC", "EGEEN",
	"EKGYO", "ENKAI", "ENJSA", "EUPWR", "FROTO", "GESAN", "GLYHO", "GOLTS",
	"GOODY", "GOZDE", "GUBRF", "HALKB", "IPEKE", "JANTS", "KARSN", "KARTN",
	"KORDS", "KONYA", "KRDMD", "KTLEV", "LOGO", "MAVI", "MGROS", "ODAS",
	"OTKAR", "OYAKC", "PENTA", "PRKME", "QUAGR", "SELEC", "SKBNK", "SOKM",
	"TATGD", "TBORG", "TKNSA", "TMSN", "TRGYO", "TSKB", "TTKOM", "TTRAK",
	"ULKER", "VESTL", "VESBE", "YATAS",
)

// popular are the symbols warmed up after the close
var popular = []string{
	"THYAO", "PGSUS", "TUPRS", "AKBNK", "GARAN", "ISCTR", "YKBNK", "VAKBN",
	"SASA", "ASELS", "KCHOL", "SAHOL", "TCELL", "BIMAS", "SOKM", "EREGL",
	"ARCLK", "TOASO", "FROTO", "SISE",
}

// sectorCatalogue is the Turkish-named browsing catalogue
var sectorCatalogue = map[string][]string{
	"BANKA":     {"AKBNK", "GARAN", "ISCTR", "YKBNK", "VAKBN", "HALKB", "SKBNK", "ALBRK"},
	"HAVAYOLU":  {"THYAO", "PGSUS"},
	"ENERJI":    {"AKSEN", "AKENR", "EUPWR", "ENJSA"},
	"TEKNOLOJI": {"ASELS", "LOGO", "TCELL", "TTKOM"},
	"PERAKENDE": {"BIMAS", "SOKM", "MGROS", "MAVI"},
	"OTOMOTIV":  {"TOASO", "FROTO", "OTKAR", "TTRAK", "KARSN"},
	"HOLDING":   {"KCHOL", "SAHOL", "DOHOL", "AGHOL"},
	"GIDA":      {"ULKER", "CCOLA", "TATGD", "AEFES", "TBORG"},
}

func listByName(name string) []string {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case ListBIST30:
		return bist30
	case ListPopular:
		return popular
	default:
		return bist100
	}
}

// StockList returns a copy of the named list; unknown names fall back to BIST100
func StockList(name string) []string {
	return append([]string(nil), listByName(name)...)
}

// IsValid reports whether symbol is a member of the named list
func IsValid(symbol, list string) bool {
	s := s3_macro.NormalizeSymbol(symbol)
	for _, member := range listByName(list) {
		if member == s {
			return true
		}
	}
	return false
}

// SuggestSimilar proposes BIST100 symbols for a possibly misspelled one.
// An exact member is returned alone.
func SuggestSimilar(symbol string, max int) []string {
	s := s3_macro.NormalizeSymbol(symbol)
	if s == "" || max <= 0 {
		return nil
	}

	prefix := s
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}
	infix := s
	if len(infix) > 3 {
		infix = infix[:3]
	}

	similar := make([]string, 0, max)
	for _, stock := range bist100 {
		if stock == s {
			return []string{stock}
		}
		if strings.HasPrefix(stock, prefix) || strings.Contains(stock, infix) {
			similar = append(similar, stock)
		}
	}

	if len(similar) > max {
		similar = similar[:max]
	}
	return similar
}

// SectorStocks lists the symbols of a sector. Turkish catalogue names
// (BANKA, HAVAYOLU, …) are tried first, then macro sector tags (bank, airline, …).
func SectorStocks(sector string) []string {
	name := strings.ToUpper(strings.TrimSpace(sector))
	name = strings.NewReplacer("İ", "I", "Ş", "S", "Ğ", "G", "Ü", "U", "Ö", "O", "Ç", "C").Replace(name)
	if stocks, ok := sectorCatalogue[name]; ok {
		return append([]string(nil), stocks...)
	}
	return s3_macro.SectorSymbols(contracts.Sector(strings.ToLower(strings.TrimSpace(sector))))
}
