package renumber

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/handiism/multialbum/internal/audio"
	"github.com/handiism/multialbum/internal/config"
	ioutils "github.com/handiism/multialbum/internal/io"
	"github.com/handiism/multialbum/internal/logging"
	"github.com/handiism/multialbum/internal/model"
	"github.com/handiism/multialbum/internal/scan"
	"github.com/sirupsen/logrus"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// Phase identifies the pipeline stage an event belongs to.
type Phase int32

const (
	PhaseSelect Phase = iota
	PhaseCopy
	PhaseRenumber
	PhaseVerify
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseSelect:
		return "select"
	case PhaseCopy:
		return "copy"
	case PhaseRenumber:
		return "renumber"
	case PhaseVerify:
		return "verify"
	default:
		return "done"
	}
}

// ProgressEvent represents a pipeline progress update.
//
// Step events have Total > 0 and count completed items of Phase.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
	Phase   Phase
	Current int
	Total   int
}

// IsStep reports whether the event advances a counter.
func (e ProgressEvent) IsStep() bool {
	return e.Total > 0
}

// Options selects what a single Run works on.
type Options struct {
	// InputDirs are scanned in order. At least one is required.
	InputDirs []string

	// OutputDir receives the copies. It is created when missing and
	// settings allow it.
	OutputDir string

	// DryRun selects, parses and sorts without touching the file system.
	DryRun bool
}

// RenumberedTrack is one file of the final sequence.
type RenumberedTrack struct {
	*model.DiskTrack

	// Source is the input file the copy was made from.
	Source string

	// Rank is the 1-based position in the sorted sequence.
	Rank int

	// TrackNumber is the tag value written, e.g. "007".
	TrackNumber string
}

// Result summarises a successful Run.
type Result struct {
	// Tracks holds the renumbered files in final order. For a dry run
	// it holds the planned order and Path names the planned destination.
	Tracks []RenumberedTrack

	// Copied is the number of files copied into the output directory.
	Copied int

	// Skipped is the number of files dropped as name collisions.
	Skipped int

	// PlaylistPath is set when a playlist was written.
	PlaylistPath string
}

// Progress is a snapshot of the running counters.
type Progress struct {
	Phase Phase
	Done  int
	Total int
}

// Manager coordinates a consolidation run.
type Manager struct {
	settings *config.Settings
	tagger   audio.TrackNumberWriter
	reader   audio.TrackNumberReader
	log      logrus.FieldLogger

	phase atomic.Int32
	done  atomic.Int32
	total atomic.Int32

	onProgress func(ProgressEvent)
}

// NewManager creates a new Manager. A nil log discards diagnostics.
func NewManager(settings *config.Settings, log logrus.FieldLogger, onProgress func(ProgressEvent)) *Manager {
	if log == nil {
		log = logging.Discard()
	}
	return &Manager{
		settings:   settings,
		tagger:     audio.NewTagger(),
		reader:     audio.NewReader(),
		log:        log,
		onProgress: onProgress,
	}
}

// WithTagWriter replaces the track-number writer.
func (m *Manager) WithTagWriter(w audio.TrackNumberWriter) *Manager {
	m.tagger = w
	return m
}

// WithTagReader replaces the reader used for verification.
func (m *Manager) WithTagReader(r audio.TrackNumberReader) *Manager {
	m.reader = r
	return m
}

// GetProgress returns the counters of the current phase.
func (m *Manager) GetProgress() Progress {
	return Progress{
		Phase: Phase(m.phase.Load()),
		Done:  int(m.done.Load()),
		Total: int(m.total.Load()),
	}
}

// Run executes the pipeline. Settings and input directories are checked
// before the output directory is touched. On error the Result is nil and files
// already copied or renumbered are left in place.
func (m *Manager) Run(ctx context.Context, opts Options) (*Result, error) {
	if len(opts.InputDirs) == 0 {
		return nil, errors.New("at least one input directory is required")
	}
	if opts.OutputDir == "" {
		return nil, errors.New("output directory is required")
	}
	if err := m.settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	inputs, err := m.checkInputs(opts.InputDirs)
	if err != nil {
		return nil, err
	}
	output, err := filepath.Abs(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("resolve output directory: %w", err)
	}

	if opts.DryRun {
		return m.plan(ctx, inputs, output)
	}

	if err := m.prepareOutput(output); err != nil {
		return nil, err
	}

	if m.settings.LockOutput {
		lock, err := ioutils.LockDir(output)
		if err != nil {
			return nil, err
		}
		m.log.WithField("lock", lock.Path()).Debug("acquired output lock")
		defer func() {
			if err := lock.Unlock(); err != nil {
				m.log.WithError(err).Warn("release output lock")
			}
		}()
	}

	m.setPhase(PhaseSelect, 0)
	sel, err := m.newScanner().Scan(ctx, inputs...)
	if err != nil {
		return nil, err
	}

	result := &Result{Skipped: len(sel.Duplicates)}
	if len(sel.Files) == 0 {
		m.progress(ProgressEvent{Message: "No audio files found to copy.", Level: LevelWarning})
		m.setPhase(PhaseDone, 0)
		return result, nil
	}

	copied, err := m.copyFiles(ctx, sel.Files, output)
	if err != nil {
		return nil, err
	}
	result.Copied = len(copied)

	tracks := make([]*model.DiskTrack, len(copied))
	sources := make(map[*model.DiskTrack]string, len(copied))
	for i, c := range copied {
		tracks[i] = c.track
		sources[c.track] = c.source
	}
	model.SortDiskTracks(tracks)

	renumbered, err := m.renumber(ctx, tracks, sources)
	if err != nil {
		return nil, err
	}
	result.Tracks = renumbered

	if m.settings.Verify {
		if err := m.verify(ctx, renumbered); err != nil {
			return nil, err
		}
	}

	if m.settings.CreatePlaylist {
		result.PlaylistPath = m.writePlaylist(ctx, output, tracks)
	}

	m.setPhase(PhaseDone, 0)
	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Renumbered %d file(s) into %s", len(renumbered), output),
		Level:   LevelSuccess,
	})
	return result, nil
}

// checkInputs resolves every input to an absolute path and requires it to
// be an existing directory.
func (m *Manager) checkInputs(dirs []string) ([]string, error) {
	inputs := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("resolve input directory %s: %w", dir, err)
		}
		ok, err := ioutils.DirExists(abs)
		if err != nil && !errors.Is(err, ioutils.ErrNotDirectory) {
			return nil, fmt.Errorf("check input directory %s: %w", abs, err)
		}
		if !ok {
			return nil, &DirectoryMissingError{Path: abs, Err: err}
		}
		inputs = append(inputs, abs)
	}
	return inputs, nil
}

// prepareOutput creates the output directory when missing. Creation
// failures are fatal.
func (m *Manager) prepareOutput(output string) error {
	ok, err := ioutils.DirExists(output)
	if errors.Is(err, ioutils.ErrNotDirectory) {
		return &DirectoryMissingError{Path: output, Err: err}
	}
	if err != nil {
		return fmt.Errorf("check output directory %s: %w", output, err)
	}
	if ok {
		return nil
	}
	if !m.settings.CreateOutputDir {
		return &DirectoryMissingError{Path: output}
	}

	created, err := ioutils.EnsureDir(output)
	if err != nil {
		return fmt.Errorf("unable to create output directory %s: %w", output, err)
	}
	if created {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Created output directory: %s", output), Level: LevelInfo})
	}
	return nil
}

func (m *Manager) newScanner() *scan.Scanner {
	warn := func(msg string) {
		m.progress(ProgressEvent{Message: msg, Level: LevelWarning, Phase: PhaseSelect})
	}
	filter := scan.NewFilter(m.settings.AudioExtension, warn)
	return scan.NewScanner(filter, m.settings.FailOnCollision, warn)
}

// plan runs selection and sorting only.
func (m *Manager) plan(ctx context.Context, inputs []string, output string) (*Result, error) {
	m.setPhase(PhaseSelect, 0)
	sel, err := m.newScanner().Scan(ctx, inputs...)
	if err != nil {
		return nil, err
	}

	result := &Result{Skipped: len(sel.Duplicates)}
	if len(sel.Files) == 0 {
		m.progress(ProgressEvent{Message: "No audio files found to copy.", Level: LevelWarning})
		return result, nil
	}

	tracks := make([]*model.DiskTrack, len(sel.Files))
	sources := make(map[*model.DiskTrack]string, len(sel.Files))
	for i, src := range sel.Files {
		dt, err := model.ParseDiskTrack(filepath.Join(output, filepath.Base(src)), i)
		if err != nil {
			return nil, err
		}
		tracks[i] = dt
		sources[dt] = src
	}
	model.SortDiskTracks(tracks)

	width := m.settings.TrackNumberWidth
	for i, dt := range tracks {
		result.Tracks = append(result.Tracks, RenumberedTrack{
			DiskTrack:   dt,
			Source:      sources[dt],
			Rank:        i + 1,
			TrackNumber: model.FormatTrackNumber(i+1, width),
		})
	}

	m.setPhase(PhaseDone, 0)
	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Dry run: %d file(s) would be renumbered into %s", len(tracks), output),
		Level:   LevelInfo,
	})
	return result, nil
}

func (m *Manager) renumber(ctx context.Context, tracks []*model.DiskTrack, sources map[*model.DiskTrack]string) ([]RenumberedTrack, error) {
	total := len(tracks)
	width := m.settings.TrackNumberWidth
	m.setPhase(PhaseRenumber, total)
	m.progress(ProgressEvent{Message: "Updating track metadata...", Level: LevelInfo, Phase: PhaseRenumber})

	out := make([]RenumberedTrack, 0, total)
	for i, track := range tracks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		number := model.FormatTrackNumber(i+1, width)
		m.log.WithFields(logrus.Fields{
			"file":  track.Name(),
			"disk":  track.Disk,
			"track": track.Track,
		}).Debugf("writing track number %s", number)

		if err := m.tagger.WriteTrackNumber(track.Path, number); err != nil {
			return nil, &RenumberError{Path: track.Path, TrackNumber: number, Err: err}
		}

		out = append(out, RenumberedTrack{
			DiskTrack:   track,
			Source:      sources[track],
			Rank:        i + 1,
			TrackNumber: number,
		})
		m.done.Store(int32(i + 1))
		m.progress(ProgressEvent{
			Message: fmt.Sprintf("Track %s for %s", number, track.Name()),
			Level:   LevelVerbose,
			Phase:   PhaseRenumber,
			Current: i + 1,
			Total:   total,
		})
	}
	return out, nil
}

func (m *Manager) verify(ctx context.Context, tracks []RenumberedTrack) error {
	total := len(tracks)
	m.setPhase(PhaseVerify, total)
	m.progress(ProgressEvent{Message: "Verifying track metadata...", Level: LevelInfo, Phase: PhaseVerify})

	for i, track := range tracks {
		if err := ctx.Err(); err != nil {
			return err
		}
		got, err := m.reader.TrackNumber(track.Path)
		if err != nil {
			return &VerifyError{Path: track.Path, Want: track.Rank, Err: err}
		}
		if got != track.Rank {
			return &VerifyError{Path: track.Path, Want: track.Rank, Got: got}
		}
		m.done.Store(int32(i + 1))
		m.progress(ProgressEvent{
			Message: fmt.Sprintf("Verified: %s", track.Name()),
			Level:   LevelVerbose,
			Phase:   PhaseVerify,
			Current: i + 1,
			Total:   total,
		})
	}
	return nil
}

// writePlaylist renders the playlist. Failures are reported as warnings.
func (m *Manager) writePlaylist(ctx context.Context, output string, tracks []*model.DiskTrack) string {
	cfg := m.settings.ToPathConfig()
	collection := model.NewCollection(output, tracks, cfg)
	content := audio.NewPlaylistCreator(cfg.PlaylistFormat, m.settings.M3UExtended).CreatePlaylist(collection)
	if err := ioutils.WriteFile(ctx, collection.PlaylistPath, []byte(content)); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating playlist: %v", err), Level: LevelWarning})
		return ""
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Created playlist: %s", collection.PlaylistPath), Level: LevelSuccess})
	return collection.PlaylistPath
}

func (m *Manager) setPhase(p Phase, total int) {
	m.phase.Store(int32(p))
	m.done.Store(0)
	m.total.Store(int32(total))
}

// progress forwards an event to the callback. A panicking callback is
// logged and otherwise ignored.
func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.log.WithField("panic", r).Warn("progress reporter failed")
		}
	}()
	m.onProgress(event)
}
