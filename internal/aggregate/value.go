package aggregate

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tiagoarodrigues55/moveo-report/internal/model"
)

// currencyMarker is stripped from monetary strings before parsing.
const currencyMarker = "R$"

// MaxValue is the largest amount accepted for a single conversation. Larger
// values are treated as malformed.
var MaxValue = decimal.New(1, 15)

// plainAmount matches a normalized amount: digits with an optional decimal
// fraction. Signs and exponents are rejected.
var plainAmount = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// ParseValue converts a raw context value into a non-negative decimal.
//
// Strings use the pt-BR convention: "." groups thousands and "," separates
// decimals, optionally prefixed by "R$". Absent, malformed, negative,
// non-finite and implausibly large values all yield zero.
func ParseValue(raw any) decimal.Decimal {
	var d decimal.Decimal
	switch v := raw.(type) {
	case nil:
		return decimal.Zero
	case string:
		d = parseLocaleString(v)
	case json.Number:
		// Going through float64 bounds the exponent of values like 1e-50000000.
		f, err := v.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero
		}
		d = decimal.NewFromFloat(f)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero
		}
		d = decimal.NewFromFloat(v)
	case int:
		d = decimal.NewFromInt(int64(v))
	case int64:
		d = decimal.NewFromInt(v)
	default:
		return decimal.Zero
	}
	if d.IsNegative() || d.GreaterThan(MaxValue) {
		return decimal.Zero
	}
	return d
}

func parseLocaleString(s string) decimal.Decimal {
	if s == "" {
		s = "0"
	}
	s = strings.ReplaceAll(s, currencyMarker, "")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.TrimSpace(s)
	if !plainAmount.MatchString(s) {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ExtractValue reads the tenant's monetary variable from a conversation.
func ExtractValue(c *model.Conversation, tenant model.TenantConfig) decimal.Decimal {
	if tenant.ValueNested {
		return ParseValue(c.ContextValue(tenant.ERVVariable))
	}
	return ParseValue(c.LiveInstruction(tenant.ERVVariable))
}
