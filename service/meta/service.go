// Package meta loads YAML or JSON resources through afs with ${env.KEY} expansion.
package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"gopkg.in/yaml.v3"
)

// Service loads configuration resources
type Service struct {
	fs     afs.Service
	lookup Lookup
}

// Load reads URL, expands env expressions and decodes it into dest; a .json
// resource is decoded as JSON, anything else as YAML
func (s *Service) Load(ctx context.Context, URL string, dest interface{}) error {
	URL = url.Normalize(URL, file.Scheme)
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", URL, err)
	}
	expanded := Expand(string(data), s.lookup)
	switch strings.ToLower(path.Ext(url.Path(URL))) {
	case ".json":
		err = json.Unmarshal([]byte(expanded), dest)
	default:
		err = yaml.Unmarshal([]byte(expanded), dest)
	}
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", URL, err)
	}
	return nil
}

// New creates a meta service, lookup defaults to the process environment
func New(fs afs.Service, lookup Lookup) *Service {
	if fs == nil {
		fs = afs.New()
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &Service{fs: fs, lookup: lookup}
}
