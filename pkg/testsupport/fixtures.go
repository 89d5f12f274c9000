package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t testing.TB, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}

	return data
}

// LoadFixtureJSON loads JSON test data from a fixture file and unmarshals it.
// The path is relative to the test package directory.
func LoadFixtureJSON(t testing.TB, path string, dest any) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// LoadDocuments loads a JSON array of objects, decoding numbers as int64 when
// they are integral so documents compare equal to msgpack decoded payloads.
func LoadDocuments(t testing.TB, path string) []map[string]any {
	t.Helper()

	var raw []map[string]any
	LoadFixtureJSON(t, path, &raw)
	for _, doc := range raw {
		normalizeNumbers(doc)
	}
	return raw
}

func normalizeNumbers(doc map[string]any) {
	for k, v := range doc {
		switch val := v.(type) {
		case float64:
			if val == float64(int64(val)) {
				doc[k] = int64(val)
			}
		case map[string]any:
			normalizeNumbers(val)
		}
	}
}

// FixturePath constructs a path to a fixture file relative to the testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}
