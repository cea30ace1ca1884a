package parser_test

import (
	"os"
	"path/filepath"
	"testing"

	"ecoroute/pkg/datastructure"
	"ecoroute/pkg/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadPlacesSpace(t *testing.T) {
	t.Run("success load with comments and blanks", func(t *testing.T) {
		path := writeFile(t, "places.txt", `# city list
Dehradun 30.31 78.03

Haridwar 29.94 78.16  # on the ganges
Rishikesh 30.08 78.26
`)
		nodes, err := parser.LoadPlacesSpace(path)
		require.NoError(t, err)
		require.Len(t, nodes, 3)
		assert.Equal(t, "Dehradun", nodes[0].Name)
		assert.Equal(t, int32(0), nodes[0].IDx)
		assert.Equal(t, 29.94, nodes[1].Lat)
		assert.Equal(t, int32(2), nodes[2].IDx)
	})

	t.Run("success malformed records skipped", func(t *testing.T) {
		path := writeFile(t, "places.txt", `Dehradun 30.31 78.03
only-two-fields 1.0
NotANumber abc def
Haridwar 29.94 78.16
`)
		nodes, err := parser.LoadPlacesSpace(path)
		require.NoError(t, err)
		require.Len(t, nodes, 2)
		assert.Equal(t, "Haridwar", nodes[1].Name)
		assert.Equal(t, int32(1), nodes[1].IDx)
	})

	t.Run("failed empty input", func(t *testing.T) {
		path := writeFile(t, "places.txt", "# nothing but comments\n")
		_, err := parser.LoadPlacesSpace(path)
		assert.ErrorIs(t, err, parser.ErrNoPlaces)
	})

	t.Run("failed missing file", func(t *testing.T) {
		_, err := parser.LoadPlacesSpace(filepath.Join(t.TempDir(), "nope.txt"))
		assert.Error(t, err)
	})
}

func TestLoadCitiesComma(t *testing.T) {
	t.Run("success strict dialect with lon lat order", func(t *testing.T) {
		path := writeFile(t, "cities.csv", `Solo,110.82,-7.57
Jogja,110.36,-7.80
`)
		nodes, err := parser.LoadCitiesComma(path)
		require.NoError(t, err)
		require.Len(t, nodes, 2)
		// column order is Name,Longitude,Latitude
		assert.Equal(t, -7.57, nodes[0].Lat)
		assert.Equal(t, 110.82, nodes[0].Lon)
	})

	t.Run("failed on first malformed line", func(t *testing.T) {
		path := writeFile(t, "cities.csv", `Solo,110.82,-7.57
Jogja,garbage,-7.80
`)
		_, err := parser.LoadCitiesComma(path)
		assert.Error(t, err)
	})

	t.Run("failed wrong column count", func(t *testing.T) {
		path := writeFile(t, "cities.csv", "Solo,110.82\n")
		_, err := parser.LoadCitiesComma(path)
		assert.Error(t, err)
	})

	t.Run("failed over capacity", func(t *testing.T) {
		content := ""
		for i := 0; i <= datastructure.MaxDenseNodes; i++ {
			content += "City,110.0,-7.0\n"
		}
		path := writeFile(t, "cities.csv", content)
		_, err := parser.LoadCitiesComma(path)
		assert.ErrorIs(t, err, datastructure.ErrCapacityExceeded)
	})
}

func TestLoadVehicleProfiles(t *testing.T) {
	t.Run("success load model factors", func(t *testing.T) {
		path := writeFile(t, "cars.csv", `Toyota Prius,78
Ford F150,365
bad row without comma
NotANumber,abc
`)
		factors, err := parser.LoadVehicleProfiles(path)
		require.NoError(t, err)
		require.Len(t, factors, 2)
		assert.Equal(t, 78.0, factors["Toyota Prius"])
	})

	t.Run("success missing file yields empty map", func(t *testing.T) {
		factors, err := parser.LoadVehicleProfiles(filepath.Join(t.TempDir(), "nope.csv"))
		require.NoError(t, err)
		assert.Empty(t, factors)
	})
}
