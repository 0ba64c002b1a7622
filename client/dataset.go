package client

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	multipatch "github.com/jmapb/nyc3dbuildings-multipatch-convertor"
	"github.com/jmapb/nyc3dbuildings-multipatch-convertor/geo"
)

type DatasetService struct {
	// Set CacheTTL to a nonzero value to reuse a previously downloaded copy
	// of the dataset. Building models change rarely, so a long TTL is
	// usually fine.
	CacheTTL time.Duration
	// Directory holding downloaded datasets, if empty, "data" is assumed.
	DataDir string

	client *Client
}

func (s *DatasetService) dataDir() string {
	if s.DataDir == "" {
		return "data"
	}
	return s.DataDir
}

func (s *DatasetService) cachePath(path string) string {
	return filepath.Join(s.dataDir(), filepath.Base(path))
}

func (s *DatasetService) loadFromDisk(path string) (*geo.FeatureCollection, error) {
	if s.CacheTTL == 0 {
		return nil, errors.New("cache set to zero")
	}
	cache := s.cachePath(path)
	fi, err := os.Stat(cache)
	if err != nil {
		return nil, err
	}
	if time.Since(fi.ModTime()) > s.CacheTTL {
		return nil, errors.New("local data too old")
	}
	return multipatch.LoadFile(cache)
}

// Get fetches the dataset at path, relative to the client host. A cached
// copy younger than CacheTTL is used instead of the network when present;
// fresh downloads are cached best-effort.
func (s *DatasetService) Get(ctx context.Context, path string) (*geo.FeatureCollection, error) {
	if fc, err := s.loadFromDisk(path); err == nil {
		return fc, nil
	}
	req, err := s.client.NewRequest("GET", path, nil)
	if err != nil {
		return nil, err
	}
	req = req.WithContext(ctx)
	fc := new(geo.FeatureCollection)
	if err := s.client.Client.Do(req, fc); err != nil {
		return nil, err
	}
	if s.CacheTTL > 0 {
		if data, err := json.Marshal(fc); err == nil {
			if err := os.MkdirAll(s.dataDir(), 0755); err == nil {
				os.WriteFile(s.cachePath(path), data, 0644)
			}
		}
	}
	return fc, nil
}
