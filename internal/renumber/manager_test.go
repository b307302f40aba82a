package renumber

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/handiism/multialbum/internal/audio"
	"github.com/handiism/multialbum/internal/config"
	ioutils "github.com/handiism/multialbum/internal/io"
	"github.com/handiism/multialbum/internal/model"
	"github.com/handiism/multialbum/internal/scan"
)

type tagCall struct {
	name   string
	number string
}

// recordingWriter records track-number writes instead of touching tags.
type recordingWriter struct {
	mu     sync.Mutex
	calls  []tagCall
	failOn string
}

func (w *recordingWriter) WriteTrackNumber(path, trackNumber string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failOn != "" && filepath.Base(path) == w.failOn {
		return errors.New("corrupt container")
	}
	w.calls = append(w.calls, tagCall{name: filepath.Base(path), number: trackNumber})
	return nil
}

type fixedReader int

func (r fixedReader) TrackNumber(string) (int, error) {
	return int(r), nil
}

type eventLog struct {
	mu     sync.Mutex
	events []ProgressEvent
}

func (l *eventLog) add(e ProgressEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) messages(level ProgressLevel) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, e := range l.events {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

func (l *eventLog) steps(phase Phase) []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []int
	for _, e := range l.events {
		if e.IsStep() && e.Phase == phase {
			out = append(out, e.Current)
		}
	}
	return out
}

func testSettings() *config.Settings {
	s := config.DefaultSettings()
	s.Workers = 4
	return s
}

func newTestManager(s *config.Settings) (*Manager, *recordingWriter, *eventLog) {
	w := &recordingWriter{}
	events := &eventLog{}
	m := NewManager(s, nil, events.add).WithTagWriter(w)
	return m, w, events
}

// writeFiles creates files with random contents and returns their checksums.
func writeFiles(t *testing.T, dir string, names ...string) map[string][32]byte {
	t.Helper()
	sums := make(map[string][32]byte, len(names))
	for _, name := range names {
		data := []byte(strings.Repeat(uuid.NewString(), 64))
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			t.Fatal(err)
		}
		sums[name] = sha256.Sum256(data)
	}
	return sums
}

func TestRun_ConsolidatesAndRenumbers(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "merged")
	sums := writeFiles(t, in, "1-01 A.m4a", "1-02 B.m4a", "2-01 C.m4a")

	m, w, events := newTestManager(testSettings())
	result, err := m.Run(context.Background(), Options{InputDirs: []string{in}, OutputDir: out})
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}

	want := []tagCall{
		{"1-01 A.m4a", "001"},
		{"1-02 B.m4a", "002"},
		{"2-01 C.m4a", "003"},
	}
	if !slices.Equal(w.calls, want) {
		t.Errorf("calls = %v, want %v", w.calls, want)
	}

	for name, sum := range sums {
		data, err := os.ReadFile(filepath.Join(out, name))
		if err != nil {
			t.Fatalf("output %s: %v", name, err)
		}
		if sha256.Sum256(data) != sum {
			t.Errorf("%s content differs from source", name)
		}
		if _, err := os.Stat(filepath.Join(in, name)); err != nil {
			t.Errorf("source %s should remain: %v", name, err)
		}
	}

	if result.Copied != 3 || len(result.Tracks) != 3 {
		t.Errorf("result = %+v, want 3 copied and 3 tracks", result)
	}
	for i, track := range result.Tracks {
		if track.Rank != i+1 {
			t.Errorf("Tracks[%d].Rank = %d", i, track.Rank)
		}
		if filepath.Dir(track.Source) != in {
			t.Errorf("Tracks[%d].Source = %s, want file in %s", i, track.Source, in)
		}
	}

	if got := events.messages(LevelInfo); !slices.Contains(got, "Created output directory: "+out) {
		t.Errorf("info messages = %v, want created output directory", got)
	}
	if got := events.steps(PhaseCopy); !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("copy steps = %v, want [1 2 3]", got)
	}
	if got := events.steps(PhaseRenumber); !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("renumber steps = %v, want [1 2 3]", got)
	}
	if p := m.GetProgress(); p.Phase != PhaseDone {
		t.Errorf("phase after run = %v, want done", p.Phase)
	}
}

func TestRun_NumericOrdering(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFiles(t, in, "2-1 X.m4a", "1-10 Y.m4a", "1-2 Z.m4a")

	m, w, _ := newTestManager(testSettings())
	if _, err := m.Run(context.Background(), Options{InputDirs: []string{in}, OutputDir: out}); err != nil {
		t.Fatal(err)
	}

	want := []tagCall{
		{"1-2 Z.m4a", "001"},
		{"1-10 Y.m4a", "002"},
		{"2-1 X.m4a", "003"},
	}
	if !slices.Equal(w.calls, want) {
		t.Errorf("calls = %v, want %v", w.calls, want)
	}
}

func TestRun_MissingInputLeavesOutputAlone(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "nope")
	out := filepath.Join(root, "out")

	m, w, _ := newTestManager(testSettings())
	_, err := m.Run(context.Background(), Options{InputDirs: []string{in}, OutputDir: out})

	var missing *DirectoryMissingError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want DirectoryMissingError", err)
	}
	if missing.Path != in {
		t.Errorf("Path = %s, want %s", missing.Path, in)
	}
	if !errors.Is(err, ErrDirectoryMissing) {
		t.Error("error should match ErrDirectoryMissing")
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("output should not be created, stat err = %v", err)
	}
	if len(w.calls) != 0 {
		t.Errorf("writer called %d times", len(w.calls))
	}
}

func TestRun_InputIsFile(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "file.m4a")
	if err := os.WriteFile(in, nil, 0644); err != nil {
		t.Fatal(err)
	}

	m, _, _ := newTestManager(testSettings())
	_, err := m.Run(context.Background(), Options{InputDirs: []string{in}, OutputDir: filepath.Join(root, "out")})
	if !errors.Is(err, ErrDirectoryMissing) {
		t.Fatalf("error = %v, want ErrDirectoryMissing", err)
	}
}

func TestRun_IneligibleFilesAreIgnored(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFiles(t, in, "1-01 A.m4a", "cover.jpg", "track.m4a", "1-02 B.mp3", "1-03 C.M4A")
	if err := os.Mkdir(filepath.Join(in, "2-01 Dir.m4a"), 0755); err != nil {
		t.Fatal(err)
	}

	m, w, events := newTestManager(testSettings())
	if _, err := m.Run(context.Background(), Options{InputDirs: []string{in}, OutputDir: out}); err != nil {
		t.Fatal(err)
	}

	if want := []tagCall{{"1-01 A.m4a", "001"}}; !slices.Equal(w.calls, want) {
		t.Errorf("calls = %v, want %v", w.calls, want)
	}

	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "1-01 A.m4a" {
		t.Errorf("output entries = %v, want only 1-01 A.m4a", entries)
	}

	warnings := events.messages(LevelWarning)
	if len(warnings) != 1 || !strings.Contains(warnings[0], "track.m4a") {
		t.Errorf("warnings = %v, want one for track.m4a", warnings)
	}
}

func TestRun_EmptySelection(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFiles(t, in, "notes.txt")

	m, w, events := newTestManager(testSettings())
	result, err := m.Run(context.Background(), Options{InputDirs: []string{in}, OutputDir: out})
	if err != nil {
		t.Fatal(err)
	}
	if result.Copied != 0 || len(result.Tracks) != 0 {
		t.Errorf("result = %+v, want empty", result)
	}
	if len(w.calls) != 0 {
		t.Errorf("writer called %d times", len(w.calls))
	}
	if got := events.messages(LevelWarning); !slices.Contains(got, "No audio files found to copy.") {
		t.Errorf("warnings = %v", got)
	}
}

func TestRun_OutputCreationDisabled(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "missing")
	writeFiles(t, in, "1-01 A.m4a")

	s := testSettings()
	s.CreateOutputDir = false
	m, _, _ := newTestManager(s)

	_, err := m.Run(context.Background(), Options{InputDirs: []string{in}, OutputDir: out})
	var missing *DirectoryMissingError
	if !errors.As(err, &missing) || missing.Path != out {
		t.Fatalf("error = %v, want DirectoryMissingError for %s", err, out)
	}
}

func TestRun_ReplacesExistingOutputFile(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	sums := writeFiles(t, in, "1-01 A.m4a")
	if err := os.WriteFile(filepath.Join(out, "1-01 A.m4a"), []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}

	m, _, _ := newTestManager(testSettings())
	if _, err := m.Run(context.Background(), Options{InputDirs: []string{in}, OutputDir: out}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(out, "1-01 A.m4a"))
	if err != nil {
		t.Fatal(err)
	}
	if sha256.Sum256(data) != sums["1-01 A.m4a"] {
		t.Error("existing output file should be replaced by the source")
	}
}

func TestRun_CopyFailureAborts(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFiles(t, in, "1-01 A.m4a", "1-02 B.m4a")
	// A directory in the way makes the copy of B fail.
	if err := os.Mkdir(filepath.Join(out, "1-02 B.m4a"), 0755); err != nil {
		t.Fatal(err)
	}

	m, w, _ := newTestManager(testSettings())
	_, err := m.Run(context.Background(), Options{InputDirs: []string{in}, OutputDir: out})

	var copyErr *CopyError
	if !errors.As(err, &copyErr) {
		t.Fatalf("error = %v, want CopyError", err)
	}
	if filepath.Base(copyErr.Source) != "1-02 B.m4a" {
		t.Errorf("Source = %s, want 1-02 B.m4a", copyErr.Source)
	}
	if len(w.calls) != 0 {
		t.Errorf("renumbering should not start after a copy failure, got %v", w.calls)
	}
}

func TestRun_RenumberFailureStops(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFiles(t, in, "1-01 A.m4a", "1-02 B.m4a", "1-03 C.m4a")

	m, w, _ := newTestManager(testSettings())
	w.failOn = "1-02 B.m4a"

	_, err := m.Run(context.Background(), Options{InputDirs: []string{in}, OutputDir: out})

	var renumberErr *RenumberError
	if !errors.As(err, &renumberErr) {
		t.Fatalf("error = %v, want RenumberError", err)
	}
	if renumberErr.TrackNumber != "002" || filepath.Base(renumberErr.Path) != "1-02 B.m4a" {
		t.Errorf("RenumberError = %+v", renumberErr)
	}
	if want := []tagCall{{"1-01 A.m4a", "001"}}; !slices.Equal(w.calls, want) {
		t.Errorf("calls = %v, want %v", w.calls, want)
	}
}

func TestRun_Cancelled(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFiles(t, in, "1-01 A.m4a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m, w, _ := newTestManager(testSettings())
	_, err := m.Run(ctx, Options{InputDirs: []string{in}, OutputDir: out})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if len(w.calls) != 0 {
		t.Errorf("writer called after cancellation: %v", w.calls)
	}
}

func TestRun_MultipleInputs(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	out := t.TempDir()
	writeFiles(t, first, "1-01 A.m4a", "1-02 B.m4a")
	writeFiles(t, second, "2-01 C.m4a", "1-02 B.m4a")

	m, w, events := newTestManager(testSettings())
	result, err := m.Run(context.Background(), Options{InputDirs: []string{first, second}, OutputDir: out})
	if err != nil {
		t.Fatal(err)
	}

	want := []tagCall{
		{"1-01 A.m4a", "001"},
		{"1-02 B.m4a", "002"},
		{"2-01 C.m4a", "003"},
	}
	if !slices.Equal(w.calls, want) {
		t.Errorf("calls = %v, want %v", w.calls, want)
	}
	if result.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", result.Skipped)
	}
	if result.Tracks[1].Source != filepath.Join(first, "1-02 B.m4a") {
		t.Errorf("B source = %s, want the first input", result.Tracks[1].Source)
	}
	if len(events.messages(LevelWarning)) != 1 {
		t.Errorf("warnings = %v, want one collision warning", events.messages(LevelWarning))
	}
}

func TestRun_FailOnCollision(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	out := t.TempDir()
	writeFiles(t, first, "1-01 A.m4a")
	writeFiles(t, second, "1-01 A.m4a")

	s := testSettings()
	s.FailOnCollision = true
	m, _, _ := newTestManager(s)

	_, err := m.Run(context.Background(), Options{InputDirs: []string{first, second}, OutputDir: out})
	var collision *scan.CollisionError
	if !errors.As(err, &collision) {
		t.Fatalf("error = %v, want CollisionError", err)
	}
	entries, _ := os.ReadDir(out)
	if len(entries) != 0 {
		t.Errorf("nothing should be copied, got %d entries", len(entries))
	}
}

func TestRun_ManyFilesBoundedWorkers(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	var names []string
	for disk := 1; disk <= 3; disk++ {
		for track := 1; track <= 15; track++ {
			names = append(names, fmt.Sprintf("%d-%02d Song %s.m4a", disk, track, uuid.NewString()[:8]))
		}
	}
	writeFiles(t, in, names...)

	s := testSettings()
	s.Workers = 3
	m, w, events := newTestManager(s)
	if _, err := m.Run(context.Background(), Options{InputDirs: []string{in}, OutputDir: out}); err != nil {
		t.Fatal(err)
	}

	if len(w.calls) != len(names) {
		t.Fatalf("calls = %d, want %d", len(w.calls), len(names))
	}
	for i, call := range w.calls {
		if call.number != model.FormatTrackNumber(i+1, 3) {
			t.Errorf("call %d number = %s", i, call.number)
		}
		disk, track, err := model.ParseFileName(call.name)
		if err != nil {
			t.Fatal(err)
		}
		if wantDisk, wantTrack := i/15+1, i%15+1; disk != wantDisk || track != wantTrack {
			t.Errorf("call %d = %s, want disk %d track %d", i, call.name, wantDisk, wantTrack)
		}
	}

	steps := events.steps(PhaseCopy)
	for i, n := range steps {
		if n != i+1 {
			t.Fatalf("copy steps not contiguous: %v", steps)
		}
	}
	if len(steps) != len(names) {
		t.Errorf("copy steps = %d, want %d", len(steps), len(names))
	}
}

func TestRun_DryRunTouchesNothing(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	writeFiles(t, in, "2-01 C.m4a", "1-01 A.m4a")

	m, w, _ := newTestManager(testSettings())
	result, err := m.Run(context.Background(), Options{InputDirs: []string{in}, OutputDir: out, DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("dry run should not create the output directory")
	}
	if len(w.calls) != 0 {
		t.Errorf("dry run wrote tags: %v", w.calls)
	}
	if len(result.Tracks) != 2 || result.Tracks[0].Name() != "1-01 A.m4a" || result.Tracks[0].TrackNumber != "001" {
		t.Errorf("plan = %+v", result.Tracks)
	}
	if result.Tracks[1].Path != filepath.Join(out, "2-01 C.m4a") {
		t.Errorf("planned path = %s", result.Tracks[1].Path)
	}
}

func TestRun_PanickingReporterIsIgnored(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFiles(t, in, "1-01 A.m4a", "1-02 B.m4a")

	w := &recordingWriter{}
	m := NewManager(testSettings(), nil, func(ProgressEvent) {
		panic("reporter broke")
	}).WithTagWriter(w)

	if _, err := m.Run(context.Background(), Options{InputDirs: []string{in}, OutputDir: out}); err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if len(w.calls) != 2 {
		t.Errorf("calls = %v, want 2", w.calls)
	}
}

func TestRun_OutputLocked(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFiles(t, in, "1-01 A.m4a")

	lock, err := ioutils.LockDir(out)
	if err != nil {
		t.Fatal(err)
	}
	defer lock.Unlock()

	m, _, _ := newTestManager(testSettings())
	_, err = m.Run(context.Background(), Options{InputDirs: []string{in}, OutputDir: out})
	if !errors.Is(err, ioutils.ErrLocked) {
		t.Fatalf("error = %v, want ErrLocked", err)
	}
}

func TestRun_VerifyMP3(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFiles(t, in, "1-02 B.mp3", "1-01 A.mp3", "2-01 C.mp3")

	s := testSettings()
	s.AudioExtension = "mp3"
	s.Verify = true
	events := &eventLog{}
	m := NewManager(s, nil, events.add)

	result, err := m.Run(context.Background(), Options{InputDirs: []string{in}, OutputDir: out})
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if len(result.Tracks) != 3 {
		t.Fatalf("tracks = %d, want 3", len(result.Tracks))
	}
	if got := events.steps(PhaseVerify); !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("verify steps = %v", got)
	}
}

func TestRun_VerifyMismatch(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFiles(t, in, "1-01 A.m4a", "1-02 B.m4a")

	s := testSettings()
	s.Verify = true
	m, _, _ := newTestManager(s)
	m.WithTagReader(fixedReader(1))

	_, err := m.Run(context.Background(), Options{InputDirs: []string{in}, OutputDir: out})
	var verifyErr *VerifyError
	if !errors.As(err, &verifyErr) {
		t.Fatalf("error = %v, want VerifyError", err)
	}
	if verifyErr.Want != 2 || verifyErr.Got != 1 {
		t.Errorf("VerifyError = %+v, want 2 got 1", verifyErr)
	}
}

func TestRun_Playlist(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFiles(t, in, "1-02 B.m4a", "1-01 A.m4a")

	s := testSettings()
	s.CreatePlaylist = true
	s.M3UExtended = false
	m, _, _ := newTestManager(s)

	result, err := m.Run(context.Background(), Options{InputDirs: []string{in}, OutputDir: out})
	if err != nil {
		t.Fatal(err)
	}
	if result.PlaylistPath != filepath.Join(out, "playlist.m3u") {
		t.Fatalf("PlaylistPath = %s", result.PlaylistPath)
	}
	data, err := os.ReadFile(result.PlaylistPath)
	if err != nil {
		t.Fatal(err)
	}
	if want := "1-01 A.m4a\n1-02 B.m4a\n"; string(data) != want {
		t.Errorf("playlist = %q, want %q", data, want)
	}
}

func TestRun_RequiresDirectories(t *testing.T) {
	m, _, _ := newTestManager(testSettings())
	if _, err := m.Run(context.Background(), Options{OutputDir: t.TempDir()}); err == nil {
		t.Error("expected error without inputs")
	}
	if _, err := m.Run(context.Background(), Options{InputDirs: []string{t.TempDir()}}); err == nil {
		t.Error("expected error without output")
	}
}

func TestRun_OverflowingNumberIsSkipped(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFiles(t, in, "99999999999999999999-1 X.m4a", "1-1 A.m4a")

	m, w, events := newTestManager(testSettings())
	result, err := m.Run(context.Background(), Options{InputDirs: []string{in}, OutputDir: out})
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if want := []tagCall{{"1-1 A.m4a", "001"}}; !slices.Equal(w.calls, want) {
		t.Errorf("calls = %v, want %v", w.calls, want)
	}
	if result.Copied != 1 {
		t.Errorf("Copied = %d, want 1", result.Copied)
	}

	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "1-1 A.m4a" {
		t.Errorf("output entries = %v, want only 1-1 A.m4a", entries)
	}

	warnings := events.messages(LevelWarning)
	if len(warnings) != 1 || !strings.Contains(warnings[0], "99999999999999999999-1 X.m4a") {
		t.Errorf("warnings = %v, want one for the overflowing name", warnings)
	}
}

func TestRun_InvalidSettingsTouchNothing(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Settings)
		target error
	}{
		{"unsupported extension", func(s *config.Settings) { s.AudioExtension = "flac" }, audio.ErrUnsupportedFormat},
		{"unknown playlist format", func(s *config.Settings) {
			s.CreatePlaylist = true
			s.PlaylistFormat = "xspf"
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := t.TempDir()
			out := filepath.Join(t.TempDir(), "out")
			writeFiles(t, in, "1-01 A.flac", "1-01 A.m4a")

			s := testSettings()
			tt.modify(s)
			m, w, _ := newTestManager(s)

			_, err := m.Run(context.Background(), Options{InputDirs: []string{in}, OutputDir: out})
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("error = %v, want %v", err, tt.target)
			}
			if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
				t.Errorf("output should not be created, stat err = %v", err)
			}
			if len(w.calls) != 0 {
				t.Errorf("writer called %d times", len(w.calls))
			}
		})
	}
}
