// Package console renders pipeline progress for the command-line front end.
//
// A Reporter turns renumber.ProgressEvent values into prefixed lines and,
// on a terminal, into one progress bar per phase. RenderTable formats the
// dry-run plan and the post-run summary.
package console
