package projection

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	params := sampleParameters()
	params.UsersMax = 10000
	dataset, err := GenerateSweep(params)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, dataset))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, CSVHeader, rows[0])
	assert.Equal(t, []string{"0", "0", "0", "0", "0", "0", "0", "0", "0", "0", "0"}, rows[1])
	assert.Equal(t, []string{
		"10000", "100000", "250000",
		"200000", "200000", "500000", "300000",
		"500000", "500000", "1250000", "750000",
	}, rows[2])
}

func TestWriteCSVEmptyDataset(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "users,arrCurrent,arrSuper,vC_low,vC_lowSpan,vC_high,vC_highSpan,vS_low,vS_lowSpan,vS_high,vS_highSpan\n", buf.String())
}
