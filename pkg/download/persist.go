package download

import (
	"context"
	"os"

	"github.com/glorpus-work/gnssget/pkg/archive"
	pkgerrors "github.com/glorpus-work/gnssget/pkg/errors"
	"github.com/glorpus-work/gnssget/pkg/fsutil"
)

// FilePersister writes decompressed products to the local filesystem.
type FilePersister struct {
	perm os.FileMode
}

var _ Persister = (*FilePersister)(nil)

// NewPersister creates a persister writing files with fsutil.FileModeDefault.
func NewPersister() *FilePersister {
	return &FilePersister{perm: fsutil.FileModeDefault}
}

// Persist implements Persister.
func (p *FilePersister) Persist(ctx context.Context, name string, raw []byte, dest string) (string, error) {
	if dest == "" {
		return "", pkgerrors.Wrap(pkgerrors.ErrInvalidPath, "empty destination")
	}
	if fsutil.FileExists(dest) {
		return dest, nil
	}

	data, err := archive.Decompress(ctx, name, raw)
	if err != nil {
		return "", pkgerrors.Wrapf(err, "could not decompress %s", name)
	}
	if err := fsutil.EnsureFileDir(dest); err != nil {
		return "", pkgerrors.Wrap(err, "could not create destination dir")
	}
	if err := fsutil.WriteFileAtomic(dest, data, p.perm); err != nil {
		return "", pkgerrors.Wrap(err, "could not write product")
	}
	return dest, nil
}
