package models

// Instrument is immutable reference data for a traded instrument.
// The Symbol is exchange-qualified (e.g. "RELIANCE.NS").
type Instrument struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Sector   string `json:"sector,omitempty"`
	Exchange string `json:"exchange,omitempty"`
}

// Quote is a point-in-time snapshot of an instrument's market state.
type Quote struct {
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name,omitempty"`
	Sector           string  `json:"sector,omitempty"`
	Exchange         string  `json:"exchange,omitempty"`
	Currency         string  `json:"currency,omitempty"`
	CurrentPrice     float64 `json:"current_price"`
	PreviousClose    float64 `json:"previous_close"`
	Open             float64 `json:"open"`
	DayHigh          float64 `json:"day_high"`
	DayLow           float64 `json:"day_low"`
	FiftyTwoWeekHigh float64 `json:"fifty_two_week_high"`
	FiftyTwoWeekLow  float64 `json:"fifty_two_week_low"`
	Volume           float64 `json:"volume"`
	AverageVolume    float64 `json:"average_volume,omitempty"`
	MarketCap        float64 `json:"market_cap,omitempty"`
}
