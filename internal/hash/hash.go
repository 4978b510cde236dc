package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
)

// Writer wraps an io.Writer and computes a SHA-256 digest of all data
// written through it. The splitter tees every output file through one of
// these so the run summary can report a stable content digest per file.
type Writer struct {
	writer io.Writer
	hash   hash.Hash
}

// NewWriter creates a Writer that writes to w and digests as it goes.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		writer: w,
		hash:   sha256.New(),
	}
}

// Write implements io.Writer, writing to both the underlying writer and the digest.
func (hw *Writer) Write(p []byte) (n int, err error) {
	hw.hash.Write(p)
	return hw.writer.Write(p)
}

// Sum returns the hex-encoded SHA-256 digest of all data written so far.
func (hw *Writer) Sum() string {
	return hex.EncodeToString(hw.hash.Sum(nil))
}

// File returns the hex-encoded SHA-256 digest of an existing file's
// contents. Used for files a run references but never rewrites.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
