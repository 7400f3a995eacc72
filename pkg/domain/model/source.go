package model

// SourceInfo represents information extracted from source code events (release, push)
type SourceInfo struct {
	Owner     string // Repository owner
	Repo      string // Repository name
	CommitSHA string // Commit SHA
	EventType string // Event type: "release" or "push"
	Ref       string // Git ref to fetch (tag for releases, commit for pushes)
	Branch    string // Pushed branch; empty for releases
	Actor     string // User who triggered the event
}

// FullName is "owner/repo"
func (s *SourceInfo) FullName() string {
	return s.Owner + "/" + s.Repo
}
