package renumber

import (
	"context"
	"fmt"
	"path/filepath"

	ioutils "github.com/handiism/multialbum/internal/io"
	"github.com/handiism/multialbum/internal/model"
	"golang.org/x/sync/errgroup"
)

type copiedTrack struct {
	track  *model.DiskTrack
	source string
}

// copyFiles copies every selected file into output using a bounded pool.
//
// Workers hand their results to a single collector goroutine, which owns
// the counter and is the only caller of the progress callback while the
// pool runs. The first failure cancels the remaining copies.
func (m *Manager) copyFiles(ctx context.Context, files []string, output string) ([]copiedTrack, error) {
	total := len(files)
	workers := m.settings.WorkerCount()
	m.setPhase(PhaseCopy, total)
	m.progress(ProgressEvent{Message: fmt.Sprintf("Copying %d file(s)...", total), Level: LevelInfo, Phase: PhaseCopy})
	m.log.WithField("workers", workers).Debugf("copying %d file(s) to %s", total, output)

	results := make(chan copiedTrack)
	collected := make(chan []copiedTrack)
	go func() {
		copied := make([]copiedTrack, 0, total)
		for r := range results {
			copied = append(copied, r)
			m.done.Store(int32(len(copied)))
			m.progress(ProgressEvent{
				Message: fmt.Sprintf("Copied: %s", r.track.Name()),
				Level:   LevelVerbose,
				Phase:   PhaseCopy,
				Current: len(copied),
				Total:   total,
			})
		}
		collected <- copied
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, src := range files {
		i, src := i, src
		g.Go(func() error {
			dst := filepath.Join(output, filepath.Base(src))
			if err := ioutils.CopyFile(gctx, src, dst); err != nil {
				return &CopyError{Source: src, Destination: dst, Err: err}
			}

			track, err := model.ParseDiskTrack(dst, i)
			if err != nil {
				return err
			}

			select {
			case results <- copiedTrack{track: track, source: src}:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}

	err := g.Wait()
	close(results)
	copied := <-collected
	if err != nil {
		return nil, err
	}
	return copied, nil
}
