package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"

	"github.com/atomhq/atom/model/invocation"
	"github.com/atomhq/atom/service/dao"
	"github.com/atomhq/atom/service/dao/criteria"
)

// Service implements invocation storage on top of viant/afs, one JSON
// document per invocation. It works against any afs scheme (file, mem, s3).
type Service struct {
	fs      afs.Service
	baseURL string
}

var _ dao.Service[string, invocation.Invocation] = (*Service)(nil)

// New creates an afs-backed invocation DAO rooted at baseURL.
func New(fs afs.Service, baseURL string) *Service {
	return &Service{fs: fs, baseURL: baseURL}
}

func (s *Service) url(id string) string {
	return path.Join(s.baseURL, id+".json")
}

// Save persists the invocation as a JSON document.
func (s *Service) Save(ctx context.Context, inv *invocation.Invocation) error {
	if inv == nil {
		return dao.ErrNilEntity
	}
	if inv.ID == "" {
		return dao.ErrInvalidID
	}
	data, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("failed to marshal invocation %v: %w", inv.ID, err)
	}
	return s.fs.Upload(ctx, s.url(inv.ID), file.DefaultFileOsMode, bytes.NewReader(data))
}

// Load reads an invocation document.
func (s *Service) Load(ctx context.Context, id string) (*invocation.Invocation, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	URL := s.url(id)
	if exists, _ := s.fs.Exists(ctx, URL); !exists {
		return nil, dao.ErrNotFound
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to download invocation %v: %w", id, err)
	}
	inv := &invocation.Invocation{}
	if err := json.Unmarshal(data, inv); err != nil {
		return nil, fmt.Errorf("failed to unmarshal invocation %v: %w", id, err)
	}
	return inv, nil
}

// Delete removes an invocation document.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	URL := s.url(id)
	if exists, _ := s.fs.Exists(ctx, URL); !exists {
		return dao.ErrNotFound
	}
	return s.fs.Delete(ctx, URL)
}

// List loads all invocation documents matching the supplied parameters.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*invocation.Invocation, error) {
	objects, err := s.fs.List(ctx, s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to list invocations: %w", err)
	}
	var out []*invocation.Invocation
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.DownloadWithURL(ctx, object.URL())
		if err != nil {
			return nil, fmt.Errorf("failed to download %v: %w", object.URL(), err)
		}
		inv := &invocation.Invocation{}
		if err := json.Unmarshal(data, inv); err != nil {
			continue // skip corrupted documents
		}
		attributes := map[string]string{
			"State":   string(inv.State),
			"Service": inv.Service,
			"RunID":   inv.RunID,
		}
		if !criteria.Match(attributes, parameters) {
			continue
		}
		out = append(out, inv)
	}
	return out, nil
}
