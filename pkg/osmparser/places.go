package osmparser

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"ecoroute/pkg/datastructure"

	"github.com/k0kubun/go-ansi"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/schollz/progressbar/v3"
)

// tags worth keeping as routable places
var validPlaceType = map[string]bool{
	"city":     true,
	"town":     true,
	"village":  true,
	"suburb":   true,
	"hamlet":   true,
	"locality": true,
}

var validAmenityType = map[string]bool{
	"university": true,
	"hospital":   true,
	"townhall":   true,
	"bus_station": true,
	"marketplace": true,
}

// ExtractPlaces scans an openstreetmap pbf extract and collects every named
// node tagged as a place or a notable amenity, up to the graph capacity.
// Duplicate names keep the first occurrence.
func ExtractPlaces(mapFile string) ([]datastructure.Node, error) {
	f, err := os.Open(mapFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := osmpbf.New(context.Background(), f, 3)
	defer scanner.Close()

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(15),
		progressbar.OptionSetDescription("[cyan][1/2][reset] scanning openstreetmap nodes ..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	seen := make(map[string]bool)
	nodes := []datastructure.Node{}
	for scanner.Scan() {
		o := scanner.Object()
		if o.ObjectID().Type() != osm.TypeNode {
			continue
		}
		bar.Add(1)

		node := o.(*osm.Node)
		tags := node.TagMap()
		name := tags["name"]
		if name == "" {
			continue
		}
		if !validPlaceType[tags["place"]] && !validAmenityType[tags["amenity"]] {
			continue
		}

		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true

		if len(nodes) >= datastructure.MaxNodes {
			break
		}
		nodes = append(nodes, datastructure.Node{
			Name: strings.ReplaceAll(name, " ", "_"),
			Lat:  node.Lat,
			Lon:  node.Lon,
			IDx:  int32(len(nodes)),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return nodes, nil
}

// WritePlacesFile writes the extracted places in the space-separated
// dialect the server loads at startup.
func WritePlacesFile(nodes []datastructure.Node, outFile string) error {
	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, n := range nodes {
		fmt.Fprintf(w, "%s %f %f\n", n.Name, n.Lat, n.Lon)
	}
	return w.Flush()
}
