package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Earthpress descriptor and record bodies, byte-for-byte as written to disk.
const (
	EarthpressNamespace = `{"openindex":"oi:earthpress","name":"Earthpress"}`
	TartarianWorld      = `{"openindex":"oi:earthpress/tartarian-world","type":"Work","title":"The Tartarian World"}`
	MudFloodEdition     = `{"openindex":"oi:earthpress/mud-flood-1st","type":"Edition","title":"Mud Flood, first edition"}`
	StarFortScan        = `{"openindex":"oi:earthpress/star-fort-scan","type":"DigitalObject","title":"Star Fort survey scan"}`
	UntypedNote         = `{"openindex":"oi:earthpress/note","title":"Untyped note"}`
)

// RecordTree maps paths relative to a records root to file contents
type RecordTree map[string]string

// Earthpress is a namespace with one record of each known type, an
// untyped record and a sibling that is not valid JSON.
func Earthpress() RecordTree {
	return RecordTree{
		"earthpress/_namespace.json":      EarthpressNamespace,
		"earthpress/tartarian-world.json": TartarianWorld,
		"earthpress/mud-flood-1st.json":   MudFloodEdition,
		"earthpress/star-fort-scan.json":  StarFortScan,
		"earthpress/note.json":            UntypedNote,
		"earthpress/broken.json":          `{"openindex": "oi:earthpress/broken",`,
		"earthpress/README.txt":           "not a record",
	}
}

// WriteRecordTree writes tree under a fresh temporary directory and returns
// its path
func WriteRecordTree(t *testing.T, tree RecordTree) string {
	t.Helper()

	root := t.TempDir()
	for rel, content := range tree {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("create %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return root
}

// WriteEarthpress writes the Earthpress tree and returns the records root
func WriteEarthpress(t *testing.T) string {
	t.Helper()
	return WriteRecordTree(t, Earthpress())
}
