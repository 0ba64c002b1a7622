// multipatch-convert flattens a multipatch building dataset into a GeoJSON
// file of 2D polygons tagged with a height property in meters.
//
// The input may be a GeoJSON file with Z coordinates, a directory of such
// files, or an http(s) URL serving one.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	tss "github.com/kevinburke/tss/lib"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	yaml "gopkg.in/yaml.v2"

	multipatch "github.com/jmapb/nyc3dbuildings-multipatch-convertor"
	"github.com/jmapb/nyc3dbuildings-multipatch-convertor/client"
	"github.com/jmapb/nyc3dbuildings-multipatch-convertor/footprint"
	"github.com/jmapb/nyc3dbuildings-multipatch-convertor/geo"
)

// FileConfig carries the same settings as the command line flags. Flags given
// explicitly on the command line win over the config file.
type FileConfig struct {
	// Units of the source Z coordinates, "m" or "ft".
	Units string `yaml:"units"`

	// Elevations within this distance (in source units) merge into one
	// height band. Zero merges exact matches only.
	Tolerance *float64 `yaml:"tolerance"`

	// Report heights above ground level rather than above the vertical
	// datum.
	Relative *bool `yaml:"relative"`

	// Number of extraction workers. 1 converts sequentially.
	Workers *int `yaml:"workers"`

	// Path to a GeoJSON boundary; buildings outside it are dropped.
	Boundary string `yaml:"boundary"`

	// How long a downloaded dataset stays valid, e.g. "336h". Only used
	// with URL inputs.
	CacheTTL string `yaml:"cache_ttl"`
}

var (
	cfgPath     = flag.String("config", "", "Path to a YAML config file")
	units       = flag.String("units", "m", "Units of the source Z coordinates (m or ft)")
	tolerance   = flag.Float64("tolerance", footprint.DefaultTolerance, "Height band tolerance, in source units (0 merges exact matches only)")
	relative    = flag.Bool("relative", true, "Report heights above ground level")
	workers     = flag.Int("workers", 1, "Number of extraction workers")
	boundary    = flag.String("boundary", "", "GeoJSON boundary to clip the conversion to")
	cacheTTL    = flag.Duration("cache-ttl", 14*24*time.Hour, "Reuse downloaded datasets younger than this")
	versionFlag = flag.Bool("version", false, "Print the version string and exit")
)

func loadConfig(cfg *FileConfig) error {
	data, err := os.ReadFile(*cfgPath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyConfig overlays config file values under any flags the user did not
// set explicitly.
func applyConfig(cfg *FileConfig) error {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if cfg.Units != "" && !set["units"] {
		*units = cfg.Units
	}
	if cfg.Tolerance != nil && !set["tolerance"] {
		*tolerance = *cfg.Tolerance
	}
	if cfg.Relative != nil && !set["relative"] {
		*relative = *cfg.Relative
	}
	if cfg.Workers != nil && !set["workers"] {
		*workers = *cfg.Workers
	}
	if cfg.Boundary != "" && !set["boundary"] {
		*boundary = cfg.Boundary
	}
	if cfg.CacheTTL != "" && !set["cache-ttl"] {
		ttl, err := time.ParseDuration(cfg.CacheTTL)
		if err != nil {
			return fmt.Errorf("bad cache_ttl in config: %w", err)
		}
		*cacheTTL = ttl
	}
	return nil
}

func load(in string) (*geo.FeatureCollection, error) {
	if strings.HasPrefix(in, "http://") || strings.HasPrefix(in, "https://") {
		u, err := url.Parse(in)
		if err != nil {
			return nil, err
		}
		path := u.Path
		if u.RawQuery != "" {
			path = path + "?" + u.RawQuery
		}
		c := client.NewClient(u.Scheme + "://" + u.Host)
		c.Datasets.CacheTTL = *cacheTTL
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		return c.Datasets.Get(ctx, path)
	}
	fi, err := os.Stat(in)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return multipatch.LoadDir(in)
	}
	return multipatch.LoadFile(in)
}

func run() error {
	in, out := flag.Arg(0), flag.Arg(1)
	if in == "" || out == "" {
		return fmt.Errorf("usage: multipatch-convert [flags] input.geojson output.geojson")
	}
	cfg := new(FileConfig)
	if *cfgPath != "" {
		if err := loadConfig(cfg); err != nil {
			return err
		}
		if err := applyConfig(cfg); err != nil {
			return err
		}
	}

	w := tss.NewWriter(os.Stdout, time.Time{})
	fmt.Fprintf(w, "load %s\n", in)
	fc, err := load(in)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", in, err)
	}
	fmt.Fprintf(w, "loaded %d features\n", len(fc.Features))

	opts := footprint.Options{
		Tolerance:      *tolerance,
		Units:          footprint.Units(*units),
		RelativeHeight: *relative,
	}
	if *boundary != "" {
		b, err := geo.LoadBoundary(*boundary)
		if err != nil {
			return err
		}
		opts.Boundary = b
	}
	result, sum, err := footprint.ConvertParallel(fc, opts, *workers)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "converted\n")

	data, err := result.MarshalJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("error writing %s: %w", out, err)
	}
	fmt.Fprintf(w, "wrote %s\n", out)

	printer := message.NewPrinter(language.English)
	printer.Printf("%d features in, %d polygons out", sum.Features, sum.Parts)
	if sum.Skipped > 0 {
		printer.Printf(", %d skipped", sum.Skipped)
	}
	if sum.OutOfBounds > 0 {
		printer.Printf(", %d outside boundary", sum.OutOfBounds)
	}
	fmt.Println()
	return nil
}

func main() {
	flag.Parse()
	if *versionFlag {
		fmt.Fprintf(os.Stderr, "multipatch-convert version %s\n", multipatch.Version)
		os.Exit(0)
	}
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
