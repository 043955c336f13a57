package sets

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadMergesFileAndInline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sets.txt")
	body := "# vintage\nLEA\n\n  leb  \n# dup below\nlea\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path, []string{"ARN", " ", "leb", "10e"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"lea", "leb", "arn", "10e"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Load = %v; want %v", got, want)
	}
}

func TestLoadEmptyMeansNoFilter(t *testing.T) {
	got, err := Load("", nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("Load = %v, %v", got, err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.txt"), nil); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNormalizeRejectsInvalid(t *testing.T) {
	for _, bad := range []string{"x", "toolong7", "le a", "set:lea", "ünı"} {
		if _, err := Normalize([]string{bad}); err == nil {
			t.Fatalf("Normalize(%q) succeeded", bad)
		}
	}
}
