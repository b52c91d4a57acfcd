package model

// Portfolio represents a portfolio from the database
type Portfolio struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsArchived  bool   `json:"isArchived"`
}

// PortfolioFilter for querying portfolios
type PortfolioFilter struct {
	IncludeArchived bool
}

// Security represents a tradable instrument known to the system.
// Sector and AssetClass are the grouping dimensions used by the
// composition views.
type Security struct {
	ID         string `json:"id"`
	Ticker     string `json:"ticker"`
	Name       string `json:"name"`
	Sector     string `json:"sector"`
	AssetClass string `json:"assetClass"`
	Currency   string `json:"currency"`
}

// Holding represents a position inside a portfolio: a security, the
// quantity held and the total cost basis. Cost basis is carried for
// display purposes only and never feeds return calculations.
type Holding struct {
	ID          string  `json:"id"`
	PortfolioID string  `json:"portfolioId"`
	Ticker      string  `json:"ticker"`
	Sector      string  `json:"sector"`
	AssetClass  string  `json:"assetClass"`
	Quantity    float64 `json:"quantity"`
	CostBasis   float64 `json:"costBasis"`
}
