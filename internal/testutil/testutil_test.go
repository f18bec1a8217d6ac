package testutil

import (
	"os"
	"testing"
)

func TestAssertNoError(t *testing.T) {
	t.Parallel()
	AssertNoError(t, nil)
}

func TestAssertError(t *testing.T) {
	t.Parallel()
	AssertError(t, os.ErrNotExist)
}

func TestAssertInDelta(t *testing.T) {
	t.Parallel()
	AssertInDelta(t, 1.00005, 1.0, 1e-3)
	AssertInDelta(t, -2.5, -2.5, 0)
}

func TestWriteTempFile(t *testing.T) {
	t.Parallel()
	path := WriteTempFile(t, "fixture.dat", "line one\nline two\n")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading temp file: %v", err)
	}
	if string(data) != "line one\nline two\n" {
		t.Errorf("unexpected contents: %q", data)
	}
}
