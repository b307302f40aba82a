package tui

import (
	"context"
	"errors"
	"os"
	"slices"
	"strings"
	"testing"

	"github.com/handiism/multialbum/internal/config"
	"github.com/handiism/multialbum/internal/model"
	"github.com/handiism/multialbum/internal/renumber"
)

func TestSplitDirs(t *testing.T) {
	sep := string(os.PathListSeparator)
	got := splitDirs(" /a/cd1 " + sep + sep + "/a/cd2")
	if want := []string{"/a/cd1", "/a/cd2"}; !slices.Equal(got, want) {
		t.Errorf("splitDirs = %v, want %v", got, want)
	}
	if got := splitDirs("  "); len(got) != 0 {
		t.Errorf("splitDirs(blank) = %v, want none", got)
	}
}

func TestUpdate_RunDone(t *testing.T) {
	m := NewModel(config.DefaultSettings())
	m.state = StateRunning

	result := &renumber.Result{
		Copied: 1,
		Tracks: []renumber.RenumberedTrack{{DiskTrack: &model.DiskTrack{Path: "/out/1-01 A.m4a"}, Rank: 1, TrackNumber: "001"}},
	}
	updated, _ := m.Update(RunDoneMsg{Result: result})
	done := updated.(Model)
	if done.state != StateComplete {
		t.Fatalf("state = %v, want complete", done.state)
	}
	if !strings.Contains(done.View(), "Renumbered: 1") {
		t.Errorf("view should report the renumbered count:\n%s", done.View())
	}
}

func TestUpdate_RunCancelled(t *testing.T) {
	m := NewModel(config.DefaultSettings())
	m.state = StateRunning

	updated, _ := m.Update(RunDoneMsg{Err: context.Canceled})
	got := updated.(Model)
	if got.state != StateError || got.err == nil || got.err.Error() != "cancelled by user" {
		t.Errorf("state = %v, err = %v", got.state, got.err)
	}

	updated, _ = m.Update(RunDoneMsg{Err: errors.New("boom")})
	if got := updated.(Model); got.err == nil || got.err.Error() != "boom" {
		t.Errorf("err = %v, want boom", got.err)
	}
}

func TestUpdate_VerboseFilter(t *testing.T) {
	m := NewModel(config.DefaultSettings())

	updated, _ := m.Update(ProgressMsg{Event: renumber.ProgressEvent{Message: "Copied: a", Level: renumber.LevelVerbose}})
	if got := updated.(Model); len(got.logs) != 0 {
		t.Errorf("verbose event logged without verbose mode: %v", got.logs)
	}

	updated, _ = m.Update(ProgressMsg{Event: renumber.ProgressEvent{Message: "warn", Level: renumber.LevelWarning}})
	if got := updated.(Model); len(got.logs) != 1 {
		t.Errorf("logs = %v, want the warning", got.logs)
	}
}
