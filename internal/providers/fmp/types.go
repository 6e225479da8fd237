package fmp

// fmpHistoricalPrice is the /historical-price-full response.
type fmpHistoricalPrice struct {
	Historical []fmpHistoricalEntry `json:"historical"`
	Symbol     string               `json:"symbol"`
}

type fmpHistoricalEntry struct {
	Date     string  `json:"date"`
	Close    float64 `json:"close"`
	AdjClose float64 `json:"adjClose"`
}

// fmpEarning is one row of /historical/earning_calendar. EPS fields are null
// for announcements that have not happened yet.
type fmpEarning struct {
	Date             string   `json:"date"`
	Symbol           string   `json:"symbol"`
	EPS              *float64 `json:"eps"`
	EPSEstimated     *float64 `json:"epsEstimated"`
	FiscalDateEnding string   `json:"fiscalDateEnding"`
}

// fmpError is returned with HTTP 200 for bad keys and exhausted quotas.
type fmpError struct {
	Message string `json:"Error Message"`
}
