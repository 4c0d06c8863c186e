package analytics

import (
	"fmt"
	"strings"

	"github.com/seenimoa/nivesh/pkg/utils"
)

// AssetClass selects the data source and identifier rules for an analysis.
type AssetClass string

const (
	Equity     AssetClass = "stock"
	MutualFund AssetClass = "mutual_fund"
)

var assetAliases = map[string]AssetClass{
	"stock":       Equity,
	"equity":      Equity,
	"mutual_fund": MutualFund,
	"mutualfund":  MutualFund,
	"mutual fund": MutualFund,
	"mf":          MutualFund,
}

// ParseAssetClass resolves a user-supplied selector into an AssetClass.
func ParseAssetClass(s string) (AssetClass, error) {
	if ac, ok := assetAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return ac, nil
	}
	return "", fmt.Errorf("unknown asset class %q", s)
}

// String implements fmt.Stringer.
func (a AssetClass) String() string { return string(a) }

// NormalizeIdentifier validates id for this asset class and returns its
// canonical form: an exchange-suffixed ticker for equities, a bare numeric
// scheme code for mutual funds.
func (a AssetClass) NormalizeIdentifier(id string) (string, error) {
	id = strings.TrimSpace(id)
	switch a {
	case Equity:
		if !utils.IsValidTicker(id) {
			return "", fmt.Errorf("%q is not a valid ticker", id)
		}
		return utils.ToYFinanceTicker(id), nil
	case MutualFund:
		if !utils.IsSchemeCode(id) {
			return "", fmt.Errorf("%q is not a numeric scheme code", id)
		}
		return id, nil
	default:
		return "", fmt.Errorf("unknown asset class %q", string(a))
	}
}

// Label returns a human-readable description of the instrument.
func (a AssetClass) Label(id string) string {
	if a == MutualFund {
		return fmt.Sprintf("Mutual Fund (scheme code: %s)", id)
	}
	return "Stock: " + id
}
