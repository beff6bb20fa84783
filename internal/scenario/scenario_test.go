package scenario

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `year,income,full_time
2028,52000,true
2029,55000,true
2030,61000.50,false
`

func TestParse(t *testing.T) {
	records, err := Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, 2028, records[0].Year)
	assert.True(t, records[0].FullTime)
	assert.Equal(t, "55000", records[1].AnnualIncome.String())
	assert.Equal(t, "61000.5", records[2].AnnualIncome.String())
	assert.False(t, records[2].FullTime)
}

func TestParse_HeaderOnly(t *testing.T) {
	records, err := Parse(strings.NewReader("year,income,full_time\n"))
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestParse_OutOfOrderYears(t *testing.T) {
	csv := "year,income,full_time\n2030,50000,true\n2029,50000,true\n"
	_, err := Parse(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of order")
}

func TestParse_BadRows(t *testing.T) {
	cases := []struct {
		name string
		row  string
	}{
		{"bad year", "soon,50000,true"},
		{"bad income", "2030,lots,true"},
		{"negative income", "2030,-1,true"},
		{"bad full_time", "2030,50000,sort of"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader("year,income,full_time\n" + tc.row + "\n"))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "career.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	records, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}
