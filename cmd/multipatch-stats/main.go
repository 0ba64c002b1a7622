// multipatch-stats prints a height histogram for a converted GeoJSON file.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/paulmach/orb/geojson"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jmapb/nyc3dbuildings-multipatch-convertor/footprint"
)

func main() {
	intervalFlag := flag.Float64("interval", 10, "Bucket size in meters")
	bucketsFlag := flag.Int("buckets", 8, "Number of buckets (last is open-ended)")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal("usage: multipatch-stats [flags] converted.geojson")
	}
	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		log.Fatal(err)
	}
	heights := footprint.Heights(fc)
	if len(heights) == 0 {
		log.Fatalf("no height properties in %s", flag.Arg(0))
	}
	hist := footprint.NewHistogram(heights, *intervalFlag, *bucketsFlag)
	for i := range hist.Buckets {
		fmt.Printf("%16s: %d (%s)\n", hist.Distrange(i), hist.Buckets[i], hist.Percent(i))
	}
	printer := message.NewPrinter(language.English)
	printer.Printf("%d polygons, average height %sm\n", len(heights), hist.Average())
}
