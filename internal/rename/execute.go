package rename

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"imgutil/internal/batch"
	"imgutil/internal/fileutil"
	"imgutil/internal/services"
)

// ExecOptions controls how planned renames touch the filesystem.
type ExecOptions struct {
	Move      bool
	Overwrite bool
	// Verify compares size and SHA256 after each copy. Moves that fall back
	// to copying across filesystems are always verified.
	Verify bool
}

// Job returns the batch job that copies or moves each planned pair. Pairs
// with planning errors fail without touching any file.
func (p *Plan) Job(opts ExecOptions) batch.Job {
	byIndex := make(map[int]Pair, len(p.Pairs))
	for _, pair := range p.Pairs {
		byIndex[pair.Item.Index] = pair
	}
	return func(ctx context.Context, item batch.Item) (batch.Result, error) {
		var result batch.Result
		pair, ok := byIndex[item.Index]
		if !ok || pair.Item.Source != item.Source {
			return result, services.Wrap(services.ErrValidation, "rename", "execute", "file is not part of the rename plan", nil)
		}
		if pair.Err != nil {
			return result, pair.Err
		}
		result.Destination = pair.Destination

		info, err := os.Stat(item.Source)
		if err != nil {
			return result, fmt.Errorf("stat source: %w", err)
		}

		switch {
		case opts.Move:
			err = fileutil.MoveFile(ctx, item.Source, pair.Destination, opts.Overwrite)
		case opts.Verify:
			err = fileutil.CopyFileVerified(ctx, item.Source, pair.Destination, opts.Overwrite)
		default:
			err = fileutil.CopyFile(ctx, item.Source, pair.Destination, opts.Overwrite)
		}
		if errors.Is(err, os.ErrExist) {
			return result, services.Wrap(services.ErrValidation, "rename", "execute",
				fmt.Sprintf("%s already exists", filepath.Base(pair.Destination)), nil)
		}
		if err != nil {
			return result, err
		}
		result.InputBytes = info.Size()
		result.OutputBytes = info.Size()
		return result, nil
	}
}
