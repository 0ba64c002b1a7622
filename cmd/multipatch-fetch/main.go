// multipatch-fetch downloads a hosted multipatch dataset and writes it to
// stdout, so it can be inspected or converted later without re-downloading.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/jmapb/nyc3dbuildings-multipatch-convertor/client"
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatal("usage: multipatch-fetch https://host/path/to/dataset.geojson")
	}
	u, err := url.Parse(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	c := client.NewClient(u.Scheme + "://" + u.Host)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	path := u.Path
	if u.RawQuery != "" {
		path = path + "?" + u.RawQuery
	}
	resp, err := c.Datasets.Get(ctx, path)
	if err != nil {
		log.Fatal(err)
	}
	data, err := json.MarshalIndent(resp, "", "    ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(data))
}
