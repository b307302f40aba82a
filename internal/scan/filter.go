package scan

import (
	"fmt"
	"io/fs"
	"regexp"
	"strings"

	"github.com/handiism/multialbum/internal/model"
)

// DefaultExtension is the audio extension used when none is configured.
const DefaultExtension = "m4a"

// Filter decides which directory entries are eligible audio files.
type Filter struct {
	extension string
	pattern   *regexp.Regexp
	onWarning func(string)
}

// NewFilter creates a Filter for files ending in "."+extension. onWarning
// receives one message for every file rejected by the disk-track pattern
// or by an unparsable key; it may be nil.
func NewFilter(extension string, onWarning func(string)) *Filter {
	extension = strings.TrimPrefix(extension, ".")
	if extension == "" {
		extension = DefaultExtension
	}
	return &Filter{
		extension: extension,
		pattern:   regexp.MustCompile(`^[0-9]+-[0-9]+ .+\.` + regexp.QuoteMeta(extension) + `$`),
		onWarning: onWarning,
	}
}

// Eligible reports whether entry is a non-directory audio file whose name
// matches the disk-track pattern and whose key parses.
func (f *Filter) Eligible(entry fs.DirEntry) bool {
	if entry.IsDir() {
		return false
	}
	name := entry.Name()
	if !strings.HasSuffix(name, "."+f.extension) {
		return false
	}
	if !f.pattern.MatchString(name) {
		f.warn(fmt.Sprintf("Ignoring file (%s), since the filename does NOT match the correct pattern", name))
		return false
	}
	// The pattern allows digit runs of any length; the key must also parse.
	if _, _, err := model.ParseFileName(name); err != nil {
		f.warn(fmt.Sprintf("Ignoring file (%s), since its disk or track number is out of range", name))
		return false
	}
	return true
}

func (f *Filter) warn(msg string) {
	if f.onWarning != nil {
		f.onWarning(msg)
	}
}
