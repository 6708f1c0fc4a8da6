package codec

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/hexproxy/engine/internal/errs"
)

// WriteAtomic writes rows as a zstd-compressed parquet file at path,
// building the file under a temp name in the same directory and renaming it
// into place only after a clean close, so a cancelled or failed write never
// leaves a partial file at path. The same create-temp/rename-on-success
// shape a checkpoint writer uses for JSON state, applied here to parquet
// rows instead.
func WriteAtomic[T any](path string, rows []T) (err error) {
	dir := filepath.Dir(path)
	if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
		return errs.IO(path, mkErr)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*.parquet")
	if err != nil {
		return errs.IO(path, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	writer := parquet.NewGenericWriter[T](tmp, parquet.Compression(&zstd.Codec{}))
	if _, werr := writer.Write(rows); werr != nil {
		_ = tmp.Close()
		return errs.IO(path, fmt.Errorf("codec: write rows: %w", werr))
	}
	if cerr := writer.Close(); cerr != nil {
		_ = tmp.Close()
		return errs.IO(path, fmt.Errorf("codec: close writer: %w", cerr))
	}
	if cerr := tmp.Close(); cerr != nil {
		return errs.IO(path, cerr)
	}
	if rerr := os.Rename(tmpPath, path); rerr != nil {
		return errs.IO(path, rerr)
	}
	return nil
}

// Read loads every row of a parquet file written by WriteAtomic.
func Read[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.IO(path, err)
	}
	defer f.Close()

	reader := parquet.NewGenericReader[T](f)
	defer reader.Close()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && n == 0 {
		return nil, errs.Schema(path, fmt.Errorf("codec: read rows: %w", err))
	}
	return rows[:n], nil
}
