package validation

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	emailRegex        = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	passwordCharRegex = regexp.MustCompile(`^[A-Za-z\d]{8,}$`)
	uuidRegex         = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
)

// IsNameValid accepts exactly two whitespace-separated tokens (first and last name).
func IsNameValid(name string) bool {
	return len(strings.Fields(name)) == 2
}

func IsEmailValid(email string) bool {
	return emailRegex.MatchString(email)
}

// IsValidPassword requires at least 8 ASCII letters or digits, with at least
// one lowercase letter, one uppercase letter and one digit.
func IsValidPassword(password string) bool {
	if !passwordCharRegex.MatchString(password) {
		return false
	}

	var hasUpper, hasLower, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		}
	}

	return hasUpper && hasLower && hasNumber
}

// IsValidQuantity reports whether quantity is strictly positive.
// decimal.Decimal cannot hold NaN or infinities.
func IsValidQuantity(quantity decimal.Decimal) bool {
	return quantity.IsPositive()
}

// IsValidUUID matches RFC-4122 shaped identifiers (version 1-5, variant 8/9/a/b).
func IsValidUUID(value string) bool {
	return uuidRegex.MatchString(value)
}

// CanonicalID is the lower-case form every store keys on. Call it after IsValidUUID.
func CanonicalID(value string) string {
	return strings.ToLower(value)
}

// AssetSet is the fixed set of tradable asset symbols.
type AssetSet struct {
	symbols map[string]struct{}
}

// DefaultAssets are the symbols accepted when nothing else is configured.
var DefaultAssets = NewAssetSet("BTC", "USD")

func NewAssetSet(symbols ...string) AssetSet {
	set := AssetSet{symbols: make(map[string]struct{}, len(symbols))}
	for _, s := range symbols {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		set.symbols[s] = struct{}{}
	}
	return set
}

// Contains is case-sensitive: "btc" is not "BTC".
func (s AssetSet) Contains(assetID string) bool {
	_, ok := s.symbols[assetID]
	return ok
}

func (s AssetSet) Len() int {
	return len(s.symbols)
}

// Symbols returns the members in lexical order.
func (s AssetSet) Symbols() []string {
	out := make([]string, 0, len(s.symbols))
	for symbol := range s.symbols {
		out = append(out, symbol)
	}
	sort.Strings(out)
	return out
}
