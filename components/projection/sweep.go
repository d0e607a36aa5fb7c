package projection

import "sort"

// Band is a valuation-multiple range applied to ARR.
type Band struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// SweepParameters drive a single sweep. It is passed by value so every
// recomputation works on its own snapshot.
type SweepParameters struct {
	UsersMin    int64   `json:"usersMin" yaml:"users_min"`
	UsersMax    int64   `json:"usersMax" yaml:"users_max"`
	Step        int64   `json:"step" yaml:"step"`
	ARPUCurrent float64 `json:"arpuCurrent" yaml:"arpu_current"`
	ARPUSuper   float64 `json:"arpuSuper" yaml:"arpu_super"`
	LowBand     Band    `json:"lowBand" yaml:"low_band"`
	HighBand    Band    `json:"highBand" yaml:"high_band"`
}

// DefaultSweepParameters mirrors the starting position of the simulation
// controls.
func DefaultSweepParameters() SweepParameters {
	return SweepParameters{
		UsersMin:    0,
		UsersMax:    100_000,
		Step:        10_000,
		ARPUCurrent: 10,
		ARPUSuper:   25,
		LowBand:     Band{Min: 2, Max: 4},
		HighBand:    Band{Min: 5, Max: 8},
	}
}

// SweepPoint is one row of the generated dataset. The vC_* fields belong to
// the current ARPU tier and vS_* to the super tier; *_low/*_lowSpan come from
// the low band and *_high/*_highSpan from the high band.
type SweepPoint struct {
	Users      int64   `json:"users"`
	ARRCurrent float64 `json:"arrCurrent"`
	ARRSuper   float64 `json:"arrSuper"`
	VCLow      float64 `json:"vC_low"`
	VCLowSpan  float64 `json:"vC_lowSpan"`
	VCHigh     float64 `json:"vC_high"`
	VCHighSpan float64 `json:"vC_highSpan"`
	VSLow      float64 `json:"vS_low"`
	VSLowSpan  float64 `json:"vS_lowSpan"`
	VSHigh     float64 `json:"vS_high"`
	VSHighSpan float64 `json:"vS_highSpan"`
}

// TierValuation groups the figures of one ARPU tier.
type TierValuation struct {
	ARR      float64
	LowBand  ValuationRange
	HighBand ValuationRange
}

// Current returns the current-tier view of the point.
func (p SweepPoint) Current() TierValuation {
	return tierView(p.ARRCurrent, p.VCLow, p.VCLowSpan, p.VCHigh, p.VCHighSpan)
}

// Super returns the super-tier view of the point.
func (p SweepPoint) Super() TierValuation {
	return tierView(p.ARRSuper, p.VSLow, p.VSLowSpan, p.VSHigh, p.VSHighSpan)
}

func tierView(arr, low, lowSpan, high, highSpan float64) TierValuation {
	return TierValuation{
		ARR:      arr,
		LowBand:  rangeFrom(low, lowSpan),
		HighBand: rangeFrom(high, highSpan),
	}
}

func rangeFrom(low, span float64) ValuationRange {
	high := low + span
	return ValuationRange{Low: low, High: high, Span: span, Mid: (low + high) / 2}
}

// Dataset is the fully materialized sweep, ascending by Users.
type Dataset []SweepPoint

// Last returns the final row.
func (d Dataset) Last() (SweepPoint, bool) {
	if len(d) == 0 {
		return SweepPoint{}, false
	}
	return d[len(d)-1], true
}

// Users lists the sampled user counts in order.
func (d Dataset) Users() []int64 {
	out := make([]int64, len(d))
	for i, point := range d {
		out[i] = point.Users
	}
	return out
}

// Nearest returns the row whose Users is closest to focus. Ties go to the
// lower row.
func (d Dataset) Nearest(focus int64) (SweepPoint, bool) {
	if len(d) == 0 {
		return SweepPoint{}, false
	}
	idx := sort.Search(len(d), func(i int) bool { return d[i].Users >= focus })
	switch {
	case idx == 0:
		return d[0], true
	case idx == len(d):
		return d[len(d)-1], true
	}
	below, above := d[idx-1], d[idx]
	if above.Users-focus < focus-below.Users {
		return above, true
	}
	return below, true
}

// PointAt computes a single row for users. Parameters are not validated.
func PointAt(users int64, params SweepParameters) SweepPoint {
	u := float64(users)
	arrCurrent := ARR(u, params.ARPUCurrent)
	arrSuper := ARR(u, params.ARPUSuper)
	cLow := Valuations(arrCurrent, params.LowBand.Min, params.LowBand.Max)
	cHigh := Valuations(arrCurrent, params.HighBand.Min, params.HighBand.Max)
	sLow := Valuations(arrSuper, params.LowBand.Min, params.LowBand.Max)
	sHigh := Valuations(arrSuper, params.HighBand.Min, params.HighBand.Max)
	return SweepPoint{
		Users:      users,
		ARRCurrent: arrCurrent,
		ARRSuper:   arrSuper,
		VCLow:      cLow.Low,
		VCLowSpan:  cLow.Span,
		VCHigh:     cHigh.Low,
		VCHighSpan: cHigh.Span,
		VSLow:      sLow.Low,
		VSLowSpan:  sLow.Span,
		VSHigh:     sHigh.Low,
		VSHighSpan: sHigh.Span,
	}
}

// GenerateSweep samples the user range at a fixed step. When the step does
// not land on UsersMax a final row is appended at exactly UsersMax.
func GenerateSweep(params SweepParameters) (Dataset, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	span := params.UsersMax - params.UsersMin
	steps := span / params.Step
	out := make(Dataset, 0, params.pointCount())
	for i := int64(0); i <= steps; i++ {
		out = append(out, PointAt(params.UsersMin+i*params.Step, params))
	}
	if span%params.Step != 0 {
		out = append(out, PointAt(params.UsersMax, params))
	}
	return out, nil
}
