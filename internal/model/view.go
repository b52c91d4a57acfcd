package model

import "fmt"

// View selects the grouping dimension for a composition breakdown. It is
// a closed set: validation.ParseView is the only way to obtain one from
// user input, so an invalid dimension can never reach the aggregator.
type View int

const (
	// ViewSector groups holdings by sector code.
	ViewSector View = iota
	// ViewAssetClass groups holdings by instrument type.
	ViewAssetClass
	// ViewRisk groups holdings by their VaR-contribution quantile bucket.
	ViewRisk
)

// String returns the wire name of the view.
func (v View) String() string {
	switch v {
	case ViewSector:
		return "sector"
	case ViewAssetClass:
		return "asset_class"
	case ViewRisk:
		return "risk"
	default:
		return fmt.Sprintf("View(%d)", int(v))
	}
}
