package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFixture(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.txt")
	testContent := []byte("test fixture content")

	if err := os.WriteFile(testFile, testContent, 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	result := LoadFixture(t, testFile)
	if string(result) != string(testContent) {
		t.Errorf("expected %q, got %q", testContent, result)
	}
}

func TestLoadFixtureJSON(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.json")

	if err := os.WriteFile(testFile, []byte(`{"name":"test","value":42}`), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	var result map[string]any
	LoadFixtureJSON(t, testFile, &result)

	if result["name"] != "test" {
		t.Errorf("expected name=test, got %v", result["name"])
	}
	if result["value"] != float64(42) { // JSON unmarshals numbers as float64
		t.Errorf("expected value=42, got %v", result["value"])
	}
}

func TestLoadDocuments(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "docs.json")
	content := `[{"_id":1,"name":"a","score":1.5,"meta":{"rank":3}},{"_id":2,"name":"b"}]`

	if err := os.WriteFile(testFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	docs := LoadDocuments(t, testFile)
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0]["_id"] != int64(1) {
		t.Errorf("expected integral id to be int64, got %T", docs[0]["_id"])
	}
	if docs[0]["score"] != 1.5 {
		t.Errorf("expected fractional score to stay float64, got %v", docs[0]["score"])
	}
	meta := docs[0]["meta"].(map[string]any)
	if meta["rank"] != int64(3) {
		t.Errorf("expected nested numbers to be normalized, got %T", meta["rank"])
	}
}

func TestFixturePath(t *testing.T) {
	want := filepath.Join("testdata", "users.json")
	if got := FixturePath("users.json"); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}
