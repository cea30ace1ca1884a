package parser

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"ecoroute/pkg/datastructure"
)

var ErrNoPlaces = errors.New("no usable place records in input")

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

// LoadPlacesSpace reads the space-separated dialect: "Name lat lon", one
// record per line, '#' starts a comment. Malformed records are skipped.
func LoadPlacesSpace(path string) ([]datastructure.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	nodes := []datastructure.Node{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := stripComment(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		lat, errLat := strconv.ParseFloat(fields[1], 64)
		lon, errLon := strconv.ParseFloat(fields[2], 64)
		if errLat != nil || errLon != nil {
			continue
		}
		if len(nodes) >= datastructure.MaxNodes {
			return nil, datastructure.ErrCapacityExceeded
		}
		nodes = append(nodes, datastructure.Node{
			Name: fields[0],
			Lat:  lat,
			Lon:  lon,
			IDx:  int32(len(nodes)),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, ErrNoPlaces
	}
	return nodes, nil
}

// LoadCitiesComma reads the strict comma dialect: "Name,Longitude,Latitude".
// The first line that fails to parse is a hard error.
func LoadCitiesComma(path string) ([]datastructure.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	nodes := []datastructure.Node{}
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := stripComment(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) != 3 {
			return nil, fmt.Errorf("line %d: want Name,Longitude,Latitude, got %q", lineNo, line)
		}
		name := strings.TrimSpace(parts[0])
		lon, errLon := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if name == "" || errLon != nil || errLat != nil {
			return nil, fmt.Errorf("line %d: malformed city record %q", lineNo, line)
		}
		if len(nodes) >= datastructure.MaxDenseNodes {
			return nil, datastructure.ErrCapacityExceeded
		}
		nodes = append(nodes, datastructure.Node{
			Name: name,
			Lat:  lat,
			Lon:  lon,
			IDx:  int32(len(nodes)),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, ErrNoPlaces
	}
	return nodes, nil
}
