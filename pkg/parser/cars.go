package parser

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// LoadVehicleProfiles reads "model,gramsPerKm" rows. Malformed rows are
// skipped; a missing file is not an error, callers fall back to the default
// emission factor.
func LoadVehicleProfiles(path string) (map[string]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]float64{}, nil
		}
		return nil, err
	}
	defer f.Close()

	factors := map[string]float64{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := stripComment(scanner.Text())
		if line == "" {
			continue
		}
		i := strings.LastIndexByte(line, ',')
		if i < 0 {
			continue
		}
		model := strings.TrimSpace(line[:i])
		grams, err := strconv.ParseFloat(strings.TrimSpace(line[i+1:]), 64)
		if err != nil || model == "" {
			continue
		}
		factors[model] = grams
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return factors, nil
}
