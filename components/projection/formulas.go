package projection

// ValuationRange is the valuation of a single value at a multiple band.
type ValuationRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
	Span float64 `json:"span"`
	Mid  float64 `json:"mid"`
}

// ARR returns the annualized recurring revenue for users paying arpu.
func ARR(users, arpu float64) float64 {
	return users * arpu
}

// Valuations applies the [multMin, multMax] band to value. A reversed band
// yields a negative Span; GenerateSweep rejects those before calling here.
func Valuations(value, multMin, multMax float64) ValuationRange {
	low := value * multMin
	high := value * multMax
	return ValuationRange{
		Low:  low,
		High: high,
		Span: high - low,
		Mid:  (low + high) / 2,
	}
}
