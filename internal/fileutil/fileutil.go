package fileutil

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
)

// CopyFile streams src to dst, preserving the source permission bits. A
// failed or cancelled copy removes the partial destination. Unless overwrite
// is set an existing dst is an error.
func CopyFile(ctx context.Context, src, dst string, overwrite bool) error {
	_, err := copyFile(ctx, src, dst, overwrite, false)
	return err
}

// CopyFileVerified copies like CopyFile and additionally compares size and
// SHA256 of both sides, removing dst on mismatch.
func CopyFileVerified(ctx context.Context, src, dst string, overwrite bool) error {
	_, err := copyFile(ctx, src, dst, overwrite, true)
	return err
}

// MoveFile renames src to dst, falling back to a verified copy plus removal
// of src when the rename crosses filesystems.
func MoveFile(ctx context.Context, src, dst string, overwrite bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !overwrite {
		if exists, err := Exists(dst); err != nil {
			return err
		} else if exists {
			return fmt.Errorf("%s: %w", dst, os.ErrExist)
		}
	}
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}
	if _, err := copyFile(ctx, src, dst, overwrite, true); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove source after copy: %w", err)
	}
	return nil
}

// Exists reports whether path exists. Errors other than not-exist are returned.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

func copyFile(ctx context.Context, src, dst string, overwrite, verify bool) (written int64, err error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	srcInfo, err := in.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat source: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}
	out, err := os.OpenFile(dst, flags, srcInfo.Mode().Perm())
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = out.Close()
			_ = os.Remove(dst)
		}
	}()

	srcHasher := sha256.New()
	var reader io.Reader = &contextReader{ctx: ctx, r: in}
	if verify {
		reader = io.TeeReader(reader, srcHasher)
	}

	written, err = io.Copy(out, reader)
	if err != nil {
		return written, err
	}
	if err = out.Close(); err != nil {
		return written, err
	}
	if !verify {
		return written, nil
	}
	if written != srcInfo.Size() {
		err = fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), written)
		return written, err
	}
	err = verifyCopy(ctx, dst, written, srcHasher.Sum(nil))
	return written, err
}

// verifyCopy re-reads dst from disk and compares it against the source size
// and digest captured while copying.
func verifyCopy(ctx context.Context, dst string, size int64, srcSum []byte) error {
	f, err := os.Open(dst)
	if err != nil {
		return fmt.Errorf("reopen destination: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, &contextReader{ctx: ctx, r: f})
	if err != nil {
		return fmt.Errorf("hash destination: %w", err)
	}
	if n != size {
		return fmt.Errorf("copy size mismatch: source %d bytes, destination %d bytes", size, n)
	}
	if !bytes.Equal(srcSum, h.Sum(nil)) {
		return fmt.Errorf("copy hash mismatch: destination differs from source")
	}
	return nil
}

// contextReader aborts a copy between reads once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
