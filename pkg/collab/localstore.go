package collab

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/rs/xid"
	"github.com/spf13/afero"
)

// NewLocalStore serves as upload target when no pinning service is set up:
// objects are written below prefix in fs and published under baseURL.
func NewLocalStore(fs afero.Fs, prefix, baseURL string) *LocalStore {
	return &LocalStore{
		fs:      fs,
		prefix:  strings.Trim(prefix, "/"),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type LocalStore struct {
	fs      afero.Fs
	prefix  string
	baseURL string
}

func (s *LocalStore) Upload(_ context.Context, name, _ string, data []byte) (*Upload, error) {
	id := xid.New().String()
	file := path.Join(s.prefix, fmt.Sprintf("%s-%s", id, path.Base(name)))

	if s.prefix != "" {
		if exists, err := afero.DirExists(s.fs, s.prefix); err != nil {
			return nil, err
		} else if !exists {
			if err2 := s.fs.MkdirAll(s.prefix, 0755); err2 != nil {
				return nil, err2
			}
		}
	}

	if err := afero.WriteFile(s.fs, file, data, 0644); err != nil {
		return nil, fmt.Errorf("store %s failed: %w", name, err)
	}

	u := s.baseURL + "/" + file
	return &Upload{CID: id, URI: u, Gateway: u}, nil
}
