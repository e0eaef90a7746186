// Package corpus loads and stores module corpus documents through afs.
package corpus

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/flowcorpus/internal/clock"
	"github.com/viant/flowcorpus/internal/idgen"
	"github.com/viant/flowcorpus/model"
	"github.com/viant/flowcorpus/service/dao"
)

// Service implements filesystem based corpus document storage
type Service struct {
	fs        afs.Service
	baseURL   string
	backupURL string
	codec     *Codec
}

// SaveResult describes a write
type SaveResult struct {
	URL     string
	Backup  string
	Changed bool
}

// URL returns the document location of a module
func (s *Service) URL(module *model.Module) string {
	return url.Join(s.baseURL, module.File)
}

// Codec returns the document codec
func (s *Service) Codec() *Codec {
	return s.codec
}

// Load reads and decodes a module document, dao.ErrNotFound is returned when
// the file does not exist
func (s *Service) Load(ctx context.Context, module *model.Module) (*model.Document, error) {
	URL := s.URL(module)
	exists, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to check if corpus exists: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("corpus %v: %w", URL, dao.ErrNotFound)
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus file %v: %w", URL, err)
	}
	doc, err := s.codec.Decode(URL, data, module)
	if err != nil {
		return nil, err
	}
	doc.Source = data
	return doc, nil
}

// Save encodes the document and replaces the module file. The file is
// uploaded next to its destination and moved over it; an unchanged document
// is not written.
func (s *Service) Save(ctx context.Context, doc *model.Document) (*SaveResult, error) {
	if doc == nil {
		return nil, dao.ErrNilEntity
	}
	data, err := s.codec.Encode(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode corpus %v: %w", doc.URL, err)
	}
	result := &SaveResult{URL: doc.URL}
	if doc.Source != nil && bytes.Equal(doc.Source, data) {
		return result, nil
	}
	result.Changed = true
	exists, err := s.fs.Exists(ctx, doc.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to check if corpus exists: %w", err)
	}
	if exists && s.backupURL != "" {
		if result.Backup, err = s.backup(ctx, doc.URL); err != nil {
			return nil, err
		}
	}
	parent, name := url.Split(doc.URL, file.Scheme)
	tempURL := url.Join(parent, "."+name+".tmp-"+idgen.Short())
	if err = s.fs.Upload(ctx, tempURL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to write corpus file %s: %w", tempURL, err)
	}
	if err = s.fs.Move(ctx, tempURL, doc.URL); err != nil {
		_ = s.fs.Delete(ctx, tempURL)
		return nil, fmt.Errorf("failed to replace corpus file %s: %w", doc.URL, err)
	}
	doc.Source = data
	return result, nil
}

func (s *Service) backup(ctx context.Context, URL string) (string, error) {
	_, name := url.Split(URL, file.Scheme)
	ext := path.Ext(name)
	backupURL := url.Join(s.backupURL, strings.TrimSuffix(name, ext)+"_"+clock.Stamp()+ext)
	if err := s.fs.Copy(ctx, URL, backupURL); err != nil {
		return "", fmt.Errorf("failed to back up corpus file %s: %w", URL, err)
	}
	return backupURL, nil
}

// New creates a corpus storage rooted at baseURL
func New(fs afs.Service, baseURL string, options ...Option) (*Service, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	ret := &Service{fs: fs, baseURL: url.Normalize(baseURL, file.Scheme), codec: NewCodec()}
	for _, opt := range options {
		opt(ret)
	}
	if ret.fs == nil {
		ret.fs = afs.New()
	}
	if ret.backupURL != "" {
		ret.backupURL = url.Normalize(ret.backupURL, file.Scheme)
		ctx := context.Background()
		exists, _ := ret.fs.Exists(ctx, ret.backupURL)
		if !exists {
			if err := ret.fs.Create(ctx, ret.backupURL, file.DefaultDirOsMode, true); err != nil {
				return nil, fmt.Errorf("failed to create backup directory: %w", err)
			}
		}
	}
	return ret, nil
}
