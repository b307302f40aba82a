// Package scan selects the audio files that take part in a renumbering run.
//
// A directory entry is eligible when it is not a directory, its name ends
// with the configured audio extension (case-sensitive), and its name
// follows the disk-track pattern:
//
//	<digits>-<digits> <title>.<ext>     e.g. "2-07 Song.m4a"
//
// Entries that have the right extension but not the pattern are reported
// through the warning callback; everything else is skipped silently.
//
//	scanner := scan.NewScanner(scan.NewFilter("m4a", warn), false, warn)
//	sel, err := scanner.Scan(ctx, "/music/Disk Set")
//	for _, path := range sel.Files {
//	    // copy path
//	}
package scan
