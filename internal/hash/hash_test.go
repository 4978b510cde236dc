package hash

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	hw := NewWriter(&buf)

	testData := "CREATE TABLE `accounts` (id INTEGER);\nINSERT INTO `accounts` VALUES (1);\n"

	_, err := hw.Write([]byte(testData))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// Verify data was written to buffer
	if buf.String() != testData {
		t.Errorf("Expected buffer to contain %q, got %q", testData, buf.String())
	}

	// Verify digest is 64 hex characters (SHA-256)
	sum := hw.Sum()
	if len(sum) != 64 {
		t.Errorf("Expected digest length 64, got %d", len(sum))
	}
}

func TestWriterDeterministic(t *testing.T) {
	testData := "CREATE TABLE `accounts` (id INTEGER);\n"

	var buf1, buf2 bytes.Buffer
	hw1 := NewWriter(&buf1)
	hw2 := NewWriter(&buf2)

	if _, err := hw1.Write([]byte(testData)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := hw2.Write([]byte(testData)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if hw1.Sum() != hw2.Sum() {
		t.Errorf("Expected identical digests, got %s and %s", hw1.Sum(), hw2.Sum())
	}
}

func TestFileMatchesWriter(t *testing.T) {
	testData := "INSERT INTO `accounts` VALUES (1);\n"
	path := filepath.Join(t.TempDir(), "accounts.data.sql")
	if err := os.WriteFile(path, []byte(testData), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	var buf bytes.Buffer
	hw := NewWriter(&buf)
	if _, err := hw.Write([]byte(testData)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := File(path)
	if err != nil {
		t.Fatalf("File failed: %v", err)
	}
	if got != hw.Sum() {
		t.Errorf("Expected file digest %s to match writer digest %s", got, hw.Sum())
	}
}

func TestFileMissing(t *testing.T) {
	if _, err := File(filepath.Join(t.TempDir(), "nope.sql")); err == nil {
		t.Error("Expected error for missing file")
	}
}
