package discovery

import "time"

// ScriptFile represents a SQL script discovered during filesystem traversal
type ScriptFile struct {
	Path         string    // Path as found (absolute when the root was absolute)
	RelativePath string    // Path relative to search root
	ModTime      time.Time // Last modification time
}

// String returns the path used in reports
func (f ScriptFile) String() string {
	if f.RelativePath != "" && f.RelativePath != "." {
		return f.RelativePath
	}
	return f.Path
}
