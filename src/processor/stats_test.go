package processor

import (
	"testing"

	"PassengerSatisfaction/src/utils"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func agesByGroup() dataframe.DataFrame {
	return dataframe.New(
		series.New([]int{1, 2, 3, 4, 5, 6, 7, 8, 1, 2, 3, 4, 5, 6, 7, 100}, series.Int, "age"),
		series.New([]string{
			"A", "A", "A", "A", "A", "A", "A", "A",
			"B", "B", "B", "B", "B", "B", "B", "B",
		}, series.String, "group"),
	)
}

func TestHistogram(t *testing.T) {
	df := dataframe.New(series.New([]string{"13", "25", "26", "29", "30", ""}, series.String, "age"))
	df, err := CastInts(df, "age")
	require.NoError(t, err)

	bins, err := Histogram(df, "age", 5)
	require.NoError(t, err)
	require.Len(t, bins, 5)

	counts := make([]int, len(bins))
	for i, b := range bins {
		counts[i] = b.Count
	}
	assert.Equal(t, []int{1, 0, 0, 3, 1}, counts)
	assert.Equal(t, 10.0, bins[0].Lower)
	assert.Equal(t, "25-30", bins[3].Label())

	_, err = Histogram(df, "age", 0)
	assert.Error(t, err)

	_, err = Histogram(dataframe.New(series.New([]string{"a"}, series.String, "gender")), "gender", 5)
	assert.ErrorIs(t, err, utils.ErrParse)
}

func TestBoxStats(t *testing.T) {
	stats, err := BoxStats(agesByGroup(), "age", "group")
	require.NoError(t, err)
	require.Len(t, stats, 2)

	a := stats[0]
	assert.Equal(t, "A", a.Group)
	assert.Equal(t, 8, a.N)
	assert.Equal(t, 2.0, a.Q1)
	assert.Equal(t, 4.0, a.Median)
	assert.Equal(t, 6.0, a.Q3)
	assert.Equal(t, 4.5, a.Mean)
	assert.Zero(t, a.Outliers)
	assert.Equal(t, 1.0, a.Lower)
	assert.Equal(t, 8.0, a.Upper)

	b := stats[1]
	assert.Equal(t, "B", b.Group)
	assert.Equal(t, 100.0, b.Max)
	assert.Equal(t, 7.0, b.Upper)
	assert.Equal(t, 1, b.Outliers)

	all, err := BoxStats(agesByGroup(), "age", "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 16, all[0].N)
}

func TestDistributions(t *testing.T) {
	d, err := Distributions(agesByGroup(), "age", "group", 50)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, d.Groups)
	require.Len(t, d.Bins, 3)
	assert.Equal(t, []float64{1, 0, 0}, d.Share["A"])
	assert.InDeltaSlice(t, []float64{0.875, 0, 0.125}, d.Share["B"], 1e-9)
}

func TestMissingCountsAndUnique(t *testing.T) {
	df := dataframe.New(
		series.New([]string{"13", "", "13"}, series.String, "age"),
		series.New([]string{"Eco", "Eco", "Business"}, series.String, "seat_class"),
	)
	df, err := CastInts(df, "age")
	require.NoError(t, err)

	missing := MissingCounts(df)
	assert.Equal(t, []string{"age", "seat_class"}, missing.Col("column").Records())
	assert.Equal(t, []string{"1", "0"}, missing.Col("missing").Records())

	unique, err := Unique(df, "seat_class")
	require.NoError(t, err)
	assert.Equal(t, []string{"Eco", "Business"}, unique)

	_, err = Unique(df, "gender")
	assert.ErrorIs(t, err, utils.ErrUnknownColumn)
}

func TestDescribeNumericOnly(t *testing.T) {
	desc, err := Describe(agesByGroup())
	require.NoError(t, err)
	assert.Contains(t, desc.Names(), "age")
	assert.NotContains(t, desc.Names(), "group")

	_, err = Describe(dataframe.New(series.New([]string{"a"}, series.String, "group")))
	assert.Error(t, err)
}
