package journal

import (
	"strconv"
	"strings"
)

// Tranche is one parsed partial take-profit. Size 0 means the entry specified
// only a price; such tranches are excluded from weighted exit calculations.
type Tranche struct {
	Size  float64
	Price float64
}

// ParseTakeProfits parses the textual take-profit encoding: comma-separated
// entries of either "<size>@<price>" or a bare "<price>". Whitespace around
// tokens is trimmed and non-numeric tokens are dropped without error.
func ParseTakeProfits(raw string) []Tranche {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var out []Tranche
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if sizeStr, priceStr, found := strings.Cut(token, "@"); found {
			size, err1 := strconv.ParseFloat(strings.TrimSpace(sizeStr), 64)
			price, err2 := strconv.ParseFloat(strings.TrimSpace(priceStr), 64)
			if err1 != nil || err2 != nil {
				continue
			}
			out = append(out, Tranche{Size: size, Price: price})
			continue
		}
		price, err := strconv.ParseFloat(token, 64)
		if err != nil {
			continue
		}
		out = append(out, Tranche{Price: price})
	}
	return out
}
