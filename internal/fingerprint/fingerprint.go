// Package fingerprint implements the incremental-recompute gate for
// DAnchorEngine: a SHA-256 digest over the canonical anchor
// files that, when unchanged since the last successful run, lets an entity's
// D_anchor output be skipped rather than recomputed.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/hexproxy/engine/internal/errs"
)

// sideFileSuffix is appended to a file's path to form its digest side-file,
// e.g. "part-000.parquet.hash" beside a D_anchor entity's output file.
const sideFileSuffix = ".hash"

// Compute returns the hex-encoded SHA-256 digest over the concatenation of
// paths' contents, read in the order given. Callers pass
// {anchors_{mode}.parquet, anchor_id_map_{mode}.parquet} so the digest
// changes whenever either anchor set or id assignment changes.
func Compute(paths ...string) (string, error) {
	h := sha256.New()
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return "", errs.IO("fingerprint", err)
		}
		_, err = io.Copy(h, f)
		closeErr := f.Close()
		if err != nil {
			return "", errs.IO("fingerprint", err)
		}
		if closeErr != nil {
			return "", errs.IO("fingerprint", closeErr)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SideFilePath returns the digest side-file path for the file at
// anchorPath. DAnchorEngine keys it on each entity's output part file.
func SideFilePath(anchorPath string) string {
	return anchorPath + sideFileSuffix
}

// Read loads a previously written digest side-file. Its absence is not an
// error: the caller treats a missing file as stale, meaning no prior
// fingerprint forces a full recompute.
func Read(path string) (digest string, present bool, err error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errs.IO("fingerprint", err)
	}
	return string(raw), true, nil
}

// Write persists digest to path, creating parent directories as needed.
func Write(path, digest string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.IO("fingerprint", err)
	}
	if err := os.WriteFile(path, []byte(digest), 0o644); err != nil {
		return errs.IO("fingerprint", err)
	}
	return nil
}

// Stale reports whether a recompute is required: true whenever no prior
// digest is present or the prior digest differs from current.
func Stale(priorDigest string, priorPresent bool, current string) bool {
	return !priorPresent || priorDigest != current
}
