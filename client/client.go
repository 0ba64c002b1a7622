// Package client retrieves hosted multipatch datasets over HTTP, for example
// from an open data portal, with optional on-disk caching.
package client

import (
	"io"
	"net/http"

	"github.com/kevinburke/rest"

	multipatch "github.com/jmapb/nyc3dbuildings-multipatch-convertor"
)

type Client struct {
	Client *rest.Client
	Host   string

	Datasets *DatasetService
}

// NewClient returns a Client for datasets hosted at host, e.g.
// "https://data.cityofnewyork.us".
func NewClient(host string) *Client {
	c := new(Client)
	c.Host = host
	c.Client = rest.NewClient("", "", host)

	c.Datasets = &DatasetService{client: c}
	return c
}

// NewRequest creates a new HTTP request to hit the given endpoint.
func (c *Client) NewRequest(method, path string, body io.Reader) (*http.Request, error) {
	req, err := c.Client.NewRequest(method, path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "multipatch-convertor/"+multipatch.Version+" (github.com/jmapb/nyc3dbuildings-multipatch-convertor) "+req.Header.Get("User-Agent"))
	return req, nil
}
