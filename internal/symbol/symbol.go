package symbol

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"stockdash/internal/provider"
)

// ErrNoSymbol is returned when the input is empty or whitespace only.
var ErrNoSymbol = errors.New("no symbol selected")

// Lookup resolves company info for a candidate symbol. It is the only
// upstream dependency of the normalizer.
//
//go:generate mockgen -package=symbol_test -destination=mock_lookup_test.go -source=symbol.go Lookup
type Lookup interface {
	Info(ctx context.Context, symbol string) (*provider.CompanyInfo, error)
}

// bare alphabetic symbols (no digits, no exchange suffix) are candidates for
// the secondary-exchange retry.
var bareLetters = regexp.MustCompile(`^[A-Z]+$`)

// Normalizer canonicalizes user-entered ticker symbols. Bare alphabetic
// symbols not on the primary-exchange list are speculatively checked against
// the secondary exchange suffix; if the suffixed symbol resolves to a company
// name it wins, otherwise the bare symbol is kept.
type Normalizer struct {
	lookup  Lookup
	suffix  string
	primary map[string]struct{}
}

func NewNormalizer(lookup Lookup, suffix string, primarySymbols []string) *Normalizer {
	primary := make(map[string]struct{}, len(primarySymbols))
	for _, s := range primarySymbols {
		primary[strings.ToUpper(strings.TrimSpace(s))] = struct{}{}
	}
	return &Normalizer{lookup: lookup, suffix: suffix, primary: primary}
}

// Normalize uppercases and trims raw and applies the secondary-exchange
// heuristic. It never fails on lookup errors: the disambiguation is best
// effort and the bare symbol is always a valid fallback.
func (n *Normalizer) Normalize(ctx context.Context, raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return "", ErrNoSymbol
	}
	if n.lookup == nil || n.suffix == "" || !bareLetters.MatchString(s) {
		return s, nil
	}
	if _, ok := n.primary[s]; ok {
		return s, nil
	}

	candidate := s + n.suffix
	info, err := n.lookup.Info(ctx, candidate)
	if err != nil {
		// Failure branch deliberately ignored: a provider error here
		// must never surface to the user.
		return s, nil
	}
	if info != nil && info.ShortName != "" {
		return candidate, nil
	}
	return s, nil
}
