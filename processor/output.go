package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
)

// OutputFactory is a function that creates a writer to an output for the
// given location. The path is a package import path followed by a file name.
// A pass opens each generated file exactly once and always closes it.
type OutputFactory func(path string) (io.WriteCloser, error)

// RootOutputFactory returns an OutputFactory that writes files under the given
// root directory. The actual full path will be <rootDir>/<path>, so files are
// organized by package import path. Directories are created as needed.
//
// After computing the destination path, os.OpenFile is used to open the file
// for writing (creating the file if necessary, truncating it if it already
// exists).
func RootOutputFactory(rootDir string) OutputFactory {
	return func(p string) (io.WriteCloser, error) {
		dir := filepath.Join(rootDir, filepath.FromSlash(path.Dir(p)))
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("could not create output directory %s: %w", dir, err)
		}
		dest := filepath.Join(dir, path.Base(p))
		return os.OpenFile(dest, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0666)
	}
}

// DirOutputFactory returns an OutputFactory that writes each file into the
// directory of its package. The given map is keyed by package import path,
// with directories as values. Hosts that load source code know these
// directories; paths for unknown packages are an error.
func DirOutputFactory(dirs map[string]string) OutputFactory {
	return func(p string) (io.WriteCloser, error) {
		pkgPath := path.Dir(p)
		dir, ok := dirs[pkgPath]
		if !ok {
			return nil, fmt.Errorf("no output directory for package %q", pkgPath)
		}
		dest := filepath.Join(dir, path.Base(p))
		return os.OpenFile(dest, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0666)
	}
}

// AFSOutputFactory returns an OutputFactory that writes files through the
// given abstract file storage service, under baseURL (for example
// "file:///tmp/gen" or "mem://localhost/gen"). Content is buffered and
// uploaded when the writer is closed.
func AFSOutputFactory(ctx context.Context, fs afs.Service, baseURL string) OutputFactory {
	return func(p string) (io.WriteCloser, error) {
		return &afsWriter{ctx: ctx, fs: fs, URL: url.Join(baseURL, p)}, nil
	}
}

var errWriterClosed = errors.New("writer already closed")

type afsWriter struct {
	ctx    context.Context
	fs     afs.Service
	URL    string
	buf    bytes.Buffer
	closed bool
}

func (w *afsWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, errWriterClosed
	}
	return w.buf.Write(p)
}

func (w *afsWriter) Close() error {
	if w.closed {
		return errWriterClosed
	}
	w.closed = true
	return w.fs.Upload(w.ctx, w.URL, file.DefaultFileOsMode, &w.buf)
}
