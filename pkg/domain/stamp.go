package domain

import (
	"fmt"
	"time"
)

// Stamp is the opaque modification token of a script source.
// Two stamps are equal iff the source is considered unchanged.
type Stamp struct {
	ModTime  int64 `json:"mod_time"`
	Size     int64 `json:"size"`
	Revision int64 `json:"revision,omitempty"`
}

// FileStamp builds a stamp from filesystem metadata.
func FileStamp(modTime time.Time, size int64) Stamp {
	return Stamp{ModTime: modTime.UnixNano(), Size: size}
}

// IsZero reports whether the stamp was never set.
func (s Stamp) IsZero() bool {
	return s == Stamp{}
}

func (s Stamp) String() string {
	if s.Revision != 0 {
		return fmt.Sprintf("rev:%d", s.Revision)
	}
	if s.IsZero() {
		return "none"
	}
	return fmt.Sprintf("%s/%dB", time.Unix(0, s.ModTime).UTC().Format(time.RFC3339Nano), s.Size)
}
