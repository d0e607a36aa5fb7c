package projection

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// MaxSweepPoints caps the dataset size a single sweep may materialize.
const MaxSweepPoints = 100_000

var finite = validation.By(func(value any) error {
	f, ok := value.(float64)
	if !ok {
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return errors.New("must be a finite number")
	}
	return nil
})

// Validate reports whether the band can be applied to a value.
func (b Band) Validate() error {
	if err := validation.ValidateStruct(&b,
		validation.Field(&b.Min, finite),
		validation.Field(&b.Max, finite),
	); err != nil {
		return err
	}
	if b.Min > b.Max {
		return fmt.Errorf("min %g is greater than max %g", b.Min, b.Max)
	}
	return nil
}

// Validate checks the parameters without generating anything. The error is a
// *ParameterError wrapping ErrInvalidParameter, or ErrDegenerateRange.
func (p SweepParameters) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.UsersMin, validation.Min(int64(0)).Error("must not be negative")),
		validation.Field(&p.UsersMax, validation.Min(int64(0)).Error("must not be negative")),
		validation.Field(&p.Step, validation.Required.Error("must be greater than zero"), validation.Min(int64(1)).Error("must be greater than zero")),
		validation.Field(&p.ARPUCurrent, finite, validation.Min(0.0).Error("must not be negative")),
		validation.Field(&p.ARPUSuper, finite, validation.Min(0.0).Error("must not be negative")),
		validation.Field(&p.LowBand),
		validation.Field(&p.HighBand),
	)
	if err != nil {
		return toParameterError(err)
	}
	if p.UsersMin > p.UsersMax {
		return fmt.Errorf("%w: usersMin %d is greater than usersMax %d", ErrDegenerateRange, p.UsersMin, p.UsersMax)
	}
	if n := p.pointCount(); n > MaxSweepPoints {
		return invalidParameter("step", fmt.Sprintf("sweep would produce %d points (max %d)", n, MaxSweepPoints))
	}
	return p.checkOverflow()
}

// checkOverflow evaluates the row at UsersMax. Every value grows linearly with
// users from a non-negative UsersMin, so a finite last row means every row is
// finite.
func (p SweepParameters) checkOverflow() error {
	users := float64(p.UsersMax)
	tiers := []struct {
		field string
		arpu  float64
	}{
		{"arpuCurrent", p.ARPUCurrent},
		{"arpuSuper", p.ARPUSuper},
	}
	bands := []struct {
		field string
		band  Band
	}{
		{"lowBand.max", p.LowBand},
		{"highBand.max", p.HighBand},
	}
	for _, tier := range tiers {
		arr := ARR(users, tier.arpu)
		if !isFinite(arr) {
			return invalidParameter(tier.field, "result overflows")
		}
		for _, b := range bands {
			v := Valuations(arr, b.band.Min, b.band.Max)
			if !isFinite(v.Low) || !isFinite(v.High) || !isFinite(v.Span) || !isFinite(v.Mid) {
				return invalidParameter(b.field, "result overflows")
			}
		}
	}
	return nil
}

// pointCount assumes UsersMin <= UsersMax and Step > 0. Counts past the cap
// are reported as MaxSweepPoints+1 to stay clear of overflow.
func (p SweepParameters) pointCount() int64 {
	span := p.UsersMax - p.UsersMin
	steps := span / p.Step
	if steps >= MaxSweepPoints {
		return MaxSweepPoints + 1
	}
	n := steps + 1
	if span%p.Step != 0 {
		n++
	}
	return n
}

// toParameterError flattens ozzo errors into the first field, sorted by name,
// so the reported field is deterministic.
func toParameterError(err error) error {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return invalidParameter("", err.Error())
	}
	field, reason := firstFieldError("", errs)
	return invalidParameter(field, reason)
}

func firstFieldError(prefix string, errs validation.Errors) (string, string) {
	keys := make([]string, 0, len(errs))
	for key := range errs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fieldErr := errs[key]
		if fieldErr == nil {
			continue
		}
		name := key
		if prefix != "" {
			name = prefix + "." + key
		}
		var nested validation.Errors
		if errors.As(fieldErr, &nested) {
			return firstFieldError(name, nested)
		}
		return name, strings.TrimSpace(fieldErr.Error())
	}
	return prefix, "invalid value"
}
