// Package renumber consolidates the tracks of a multi-disk album into one
// directory and renumbers them contiguously.
//
// # Manager
//
// The Manager runs the whole pipeline:
//
//  1. Check the input directories and prepare the output directory
//  2. Select eligible files ("<disk>-<track> <title>.<ext>")
//  3. Copy them concurrently into the output directory
//  4. Sort the copies by (disk, track)
//  5. Rewrite each copy's track-number tag, one file at a time, 1..N
//  6. Optionally verify the tags and write a playlist
//
// # Basic Usage
//
//	manager := renumber.NewManager(settings, log, func(event renumber.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	result, err := manager.Run(ctx, renumber.Options{
//	    InputDirs: []string{"/music/Box Set"},
//	    OutputDir: "/music/Box Set (merged)",
//	})
//
// # Concurrency
//
// Copies run on an errgroup limited to settings.WorkerCount(). The first
// failed copy cancels the rest and is returned; files that were already
// copied stay in the output directory. Renumbering is strictly sequential
// and stops at the first failure.
//
// # Progress Tracking
//
// Progress is reported via a callback that receives ProgressEvent. Step
// events (Total > 0) carry a count for the current phase. The callback is
// never invoked concurrently, and a panic inside it is logged and ignored.
//
// # Errors
//
// Fatal conditions are typed: DirectoryMissingError, CopyError,
// RenumberError, VerifyError, plus scan.CollisionError and
// model.MalformedFileNameError.
package renumber
