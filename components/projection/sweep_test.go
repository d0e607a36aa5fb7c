package projection

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleParameters() SweepParameters {
	return SweepParameters{
		UsersMin:    0,
		UsersMax:    100000,
		Step:        10000,
		ARPUCurrent: 10,
		ARPUSuper:   25,
		LowBand:     Band{Min: 2, Max: 4},
		HighBand:    Band{Min: 5, Max: 8},
	}
}

func TestGenerateSweepSampleScenario(t *testing.T) {
	dataset, err := GenerateSweep(sampleParameters())
	require.NoError(t, err)
	require.Len(t, dataset, 11)
	assert.Equal(t, []int64{0, 10000, 20000, 30000, 40000, 50000, 60000, 70000, 80000, 90000, 100000}, dataset.Users())

	point := dataset[5]
	assert.Equal(t, int64(50000), point.Users)
	assert.Equal(t, 500000.0, point.ARRCurrent)
	assert.Equal(t, 1250000.0, point.ARRSuper)
	assert.Equal(t, 1000000.0, point.VCLow)
	assert.Equal(t, 1000000.0, point.VCLowSpan)
	assert.Equal(t, 2500000.0, point.VCHigh)
	assert.Equal(t, 1500000.0, point.VCHighSpan)
	assert.Equal(t, 2500000.0, point.VSLow)
	assert.Equal(t, 2500000.0, point.VSLowSpan)
	assert.Equal(t, 6250000.0, point.VSHigh)
	assert.Equal(t, 3750000.0, point.VSHighSpan)
}

func TestGenerateSweepAppendsBoundaryPoint(t *testing.T) {
	params := sampleParameters()
	params.UsersMax = 95
	params.Step = 10

	dataset, err := GenerateSweep(params)
	require.NoError(t, err)
	require.Len(t, dataset, 11)
	assert.Equal(t, int64(90), dataset[len(dataset)-2].Users)
	last, ok := dataset.Last()
	require.True(t, ok)
	assert.Equal(t, int64(95), last.Users)
}

func TestGenerateSweepSinglePointRange(t *testing.T) {
	params := sampleParameters()
	params.UsersMin = 500
	params.UsersMax = 500

	dataset, err := GenerateSweep(params)
	require.NoError(t, err)
	require.Len(t, dataset, 1)
	assert.Equal(t, int64(500), dataset[0].Users)
}

func TestGenerateSweepStepLargerThanRange(t *testing.T) {
	params := sampleParameters()
	params.UsersMin = 10
	params.UsersMax = 40
	params.Step = 1000

	dataset, err := GenerateSweep(params)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 40}, dataset.Users())
}

func TestGenerateSweepProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		min := rng.Int63n(10000)
		params := SweepParameters{
			UsersMin:    min,
			UsersMax:    min + rng.Int63n(50000),
			Step:        1 + rng.Int63n(5000),
			ARPUCurrent: rng.Float64() * 100,
			ARPUSuper:   rng.Float64() * 300,
			LowBand:     Band{Min: 1, Max: 1 + rng.Float64()*5},
			HighBand:    Band{Min: 3, Max: 3 + rng.Float64()*10},
		}
		dataset, err := GenerateSweep(params)
		require.NoError(t, err)
		require.NotEmpty(t, dataset)

		last, _ := dataset.Last()
		assert.Equal(t, params.UsersMax, last.Users, "last row must sit on usersMax")
		assert.Equal(t, params.UsersMin, dataset[0].Users)
		for j, point := range dataset {
			if j > 0 {
				assert.Greater(t, point.Users, dataset[j-1].Users)
			}
			for _, span := range []float64{point.VCLowSpan, point.VCHighSpan, point.VSLowSpan, point.VSHighSpan} {
				assert.GreaterOrEqual(t, span, 0.0)
			}
			current := point.Current()
			assert.InDelta(t, current.LowBand.Low+current.LowBand.Span, current.LowBand.High, 1e-6)
		}
	}
}

func TestGenerateSweepRejectsInvalidParameters(t *testing.T) {
	cases := map[string]struct {
		mutate func(*SweepParameters)
		field  string
	}{
		"zero step":        {func(p *SweepParameters) { p.Step = 0 }, "step"},
		"negative step":    {func(p *SweepParameters) { p.Step = -5 }, "step"},
		"nan arpu":         {func(p *SweepParameters) { p.ARPUCurrent = math.NaN() }, "arpuCurrent"},
		"infinite arpu":    {func(p *SweepParameters) { p.ARPUSuper = math.Inf(1) }, "arpuSuper"},
		"negative arpu":    {func(p *SweepParameters) { p.ARPUSuper = -1 }, "arpuSuper"},
		"negative users":   {func(p *SweepParameters) { p.UsersMin = -10 }, "usersMin"},
		"reversed band":    {func(p *SweepParameters) { p.LowBand = Band{Min: 5, Max: 2} }, "lowBand"},
		"nan band":         {func(p *SweepParameters) { p.HighBand.Max = math.NaN() }, "highBand.max"},
		"too many points":  {func(p *SweepParameters) { p.UsersMax = math.MaxInt64; p.Step = 1 }, "step"},
		"overflowing arr":  {func(p *SweepParameters) { p.ARPUCurrent = 1e308; p.UsersMax = 10; p.Step = 5 }, "arpuCurrent"},
		"overflowing band": {func(p *SweepParameters) { p.HighBand.Max = 1e305 }, "highBand.max"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			params := sampleParameters()
			tc.mutate(&params)
			dataset, err := GenerateSweep(params)
			require.Error(t, err)
			assert.Nil(t, dataset)
			assert.True(t, errors.Is(err, ErrInvalidParameter))
			var paramErr *ParameterError
			require.ErrorAs(t, err, &paramErr)
			assert.Equal(t, tc.field, paramErr.Field)
		})
	}
}

func TestGenerateSweepRejectsDegenerateRange(t *testing.T) {
	params := sampleParameters()
	params.UsersMin = 1000
	params.UsersMax = 10

	_, err := GenerateSweep(params)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDegenerateRange)
	assert.NotErrorIs(t, err, ErrInvalidParameter)
}

func TestGenerateSweepDoesNotMutateParameters(t *testing.T) {
	params := sampleParameters()
	before := params
	_, err := GenerateSweep(params)
	require.NoError(t, err)
	assert.Equal(t, before, params)
}

func TestDatasetNearest(t *testing.T) {
	dataset, err := GenerateSweep(sampleParameters())
	require.NoError(t, err)

	cases := []struct {
		focus int64
		want  int64
	}{
		{focus: -50, want: 0},
		{focus: 0, want: 0},
		{focus: 14000, want: 10000},
		{focus: 15000, want: 10000},
		{focus: 16000, want: 20000},
		{focus: 100000, want: 100000},
		{focus: 250000, want: 100000},
	}
	for _, tc := range cases {
		point, ok := dataset.Nearest(tc.focus)
		require.True(t, ok)
		assert.Equal(t, tc.want, point.Users, "focus %d", tc.focus)
	}

	_, ok := Dataset(nil).Nearest(10)
	assert.False(t, ok)
}

func TestPointAtMatchesTierViews(t *testing.T) {
	point := PointAt(1000, sampleParameters())
	current := point.Current()
	super := point.Super()

	assert.Equal(t, 10000.0, current.ARR)
	assert.Equal(t, Valuations(10000, 2, 4), current.LowBand)
	assert.Equal(t, Valuations(10000, 5, 8), current.HighBand)
	assert.Equal(t, Valuations(25000, 2, 4), super.LowBand)
	assert.Equal(t, Valuations(25000, 5, 8), super.HighBand)
}
