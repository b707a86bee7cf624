package studio

import (
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// NewFs roots an fs at an existing directory.
func NewFs(path string) (afero.Fs, error) {
	fs := afero.NewOsFs()
	if exists, err := afero.DirExists(fs, path); err != nil {
		return nil, err
	} else if !exists {
		return nil, errors.Errorf("dir %s not exists", path)
	}
	return afero.NewBasePathFs(fs, path), nil
}
