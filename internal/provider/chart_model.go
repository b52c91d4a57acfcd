package provider

// chartResponse represents the raw JSON response structure from the
// chart API. The structure maps directly onto the provider's wire
// format:
//   - Chart.Result: array of result objects (typically one element)
//   - Chart.Result[].Meta: symbol metadata (name, currency, exchange)
//   - Chart.Result[].Timestamp: unix timestamps for each data point
//   - Chart.Result[].Indicators: price data arrays
//   - Chart.Error: optional error message from the API
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency     string `json:"currency"`
				Symbol       string `json:"symbol"`
				ExchangeName string `json:"exchangeName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *string `json:"error"`
	} `json:"chart"`
}
