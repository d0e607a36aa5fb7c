package projection

import (
	"encoding/csv"
	"io"
	"strconv"
)

// CSVHeader lists the dataset columns in the order WriteCSV emits them.
var CSVHeader = []string{
	"users", "arrCurrent", "arrSuper",
	"vC_low", "vC_lowSpan", "vC_high", "vC_highSpan",
	"vS_low", "vS_lowSpan", "vS_high", "vS_highSpan",
}

// WriteCSV writes the dataset with a header row.
func WriteCSV(w io.Writer, d Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, p := range d {
		row := []string{
			strconv.FormatInt(p.Users, 10),
			formatCSVFloat(p.ARRCurrent),
			formatCSVFloat(p.ARRSuper),
			formatCSVFloat(p.VCLow),
			formatCSVFloat(p.VCLowSpan),
			formatCSVFloat(p.VCHigh),
			formatCSVFloat(p.VCHighSpan),
			formatCSVFloat(p.VSLow),
			formatCSVFloat(p.VSLowSpan),
			formatCSVFloat(p.VSHigh),
			formatCSVFloat(p.VSHighSpan),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCSVFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
