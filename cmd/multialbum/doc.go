// Command multialbum merges the disks of a multi-disk album into a single
// directory and renumbers the track-number tags so the tracks play in
// (disk, track) order.
//
// Usage:
//
//	multialbum renumber -i "Album/CD1" -i "Album/CD2" -o "Album (merged)"
//	multialbum renumber -i "Album" -o "Album (merged)" --dry-run
//	multialbum config init
package main
