package main

import (
	"flag"
	"fmt"
	"log"

	"ecoroute/pkg/osmparser"
)

var (
	mapFile = flag.String("f", "extract.osm.pbf", "openstreetmap pbf extract to pull places from")
	outFile = flag.String("o", "data/places.txt", "output places file")
)

func main() {
	flag.Parse()

	nodes, err := osmparser.ExtractPlaces(*mapFile)
	if err != nil {
		log.Fatal(err)
	}
	if len(nodes) == 0 {
		log.Fatal("no named places found in extract")
	}

	if err := osmparser.WritePlacesFile(nodes, *outFile); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("\nwrote %d places to %s\n", len(nodes), *outFile)
}
