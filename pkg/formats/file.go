package formats

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"microct/pkg/binio"
)

// readFile opens path and hands decode a Reader that knows the file size.
func readFile(path string, o *options, decode func(*binio.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrIO, path, err)
	}
	defer f.Close()

	br := binio.NewReader(bufio.NewReader(f), o.order)
	if info, err := f.Stat(); err == nil && info.Mode().IsRegular() {
		br.SetRemaining(info.Size())
	}
	return decode(br)
}

// streamReader wraps r for decoding. Readers that report their unread length,
// such as bytes.Reader and bytes.Buffer, bound every read up front.
func streamReader(r io.Reader, o *options) *binio.Reader {
	br := binio.NewReader(r, o.order)
	if l, ok := r.(interface{ Len() int }); ok {
		br.SetRemaining(int64(l.Len()))
	}
	return br
}

// writeFile encodes into a temporary file next to path and renames it into
// place once everything has been written and flushed.
func writeFile(path string, encode func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrIO, path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = encode(bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrIO, path, err)
	}
	if err = tmp.Chmod(0644); err != nil {
		return fmt.Errorf("%w: chmod %s: %w", ErrIO, path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrIO, path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: rename to %s: %w", ErrIO, path, err)
	}
	return nil
}
