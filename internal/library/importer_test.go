package library

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/rlafferty/freshtracks/internal/audio"
	"github.com/rlafferty/freshtracks/internal/model"
)

func newTestImporter(t *testing.T) (*Importer, string, string) {
	t.Helper()
	base := t.TempDir()
	processing := filepath.Join(base, "processing")
	current := filepath.Join(base, "current")
	for _, dir := range []string{processing, current} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}

	im := NewImporter(ImportConfig{
		ProcessingDir: processing,
		CurrentDir:    current,
		Source:        "freshtracks",
	}, audio.NewTagger(), zerolog.Nop())

	return im, processing, current
}

func TestImporter_Import(t *testing.T) {
	im, processing, current := newTestImporter(t)

	src := filepath.Join(t.TempDir(), "raw peer file.flac")
	if err := os.WriteFile(src, []byte("flac payload"), 0644); err != nil {
		t.Fatal(err)
	}

	track := model.WantedTrack{Artist: "Foo", Title: "Bar", Album: "Baz"}
	final, err := im.Import(context.Background(), track, src)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	if final != filepath.Join(current, "Foo - Bar.flac") {
		t.Errorf("final path = %q", final)
	}
	if _, err := os.Stat(final); err != nil {
		t.Fatalf("imported file missing: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source file should be gone after import")
	}

	// The processing buffer must be empty once the import lands.
	entries, _ := os.ReadDir(processing)
	if len(entries) != 0 {
		t.Errorf("processing buffer holds %d entries after import", len(entries))
	}

	// Sidecar written alongside the final file.
	data, err := os.ReadFile(model.SidecarPath(final))
	if err != nil {
		t.Fatalf("sidecar missing: %v", err)
	}
	for _, want := range []string{`"artist": "Foo"`, `"title": "Bar"`, `"source": "freshtracks"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("sidecar missing %s:\n%s", want, data)
		}
	}
}

func TestImporter_SanitizesNames(t *testing.T) {
	im, _, current := newTestImporter(t)

	src := filepath.Join(t.TempDir(), "x.mp3")
	os.WriteFile(src, []byte("mp3"), 0644)

	track := model.WantedTrack{Artist: "AC/DC", Title: "What?"}
	final, err := im.Import(context.Background(), track, src)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	want := filepath.Join(current, "AC_DC - What_.mp3")
	if final != want {
		t.Errorf("final path = %q, want %q", final, want)
	}
}

func TestImporter_MissingSourceFails(t *testing.T) {
	im, _, _ := newTestImporter(t)

	track := model.WantedTrack{Artist: "A", Title: "B"}
	if _, err := im.Import(context.Background(), track, "/nonexistent/file.mp3"); err == nil {
		t.Error("Import of a missing file should fail")
	}
}

func TestImporter_CancelledContext(t *testing.T) {
	im, _, _ := newTestImporter(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	track := model.WantedTrack{Artist: "A", Title: "B"}
	if _, err := im.Import(ctx, track, "/irrelevant.mp3"); err == nil {
		t.Error("Import with cancelled context should fail")
	}
}
