package entities

import "time"

// Project is a GitLab project handle.
type Project struct {
	ID                int64
	Name              string
	PathWithNamespace string
	WebURL            string
}

// MergeRequest is the subset of a GitLab merge request used by mrhelper.
type MergeRequest struct {
	IID          int64
	Title        string
	WebURL       string
	State        string
	SourceBranch string
	Labels       []string
}

// Commit is a commit either read from the local repository or returned by GitLab.
type Commit struct {
	ID           string
	Title        string
	Message      string
	AuthorName   string
	AuthoredDate time.Time
	WebURL       string
}

// Label is a project label. Labels are used to attach the webhook URL and the
// author's chat id to a merge request.
type Label struct {
	Name        string
	Description string
	Color       string
}

// MergeRequestUpdate holds the fields changed on an existing merge request.
type MergeRequestUpdate struct {
	Description string
	AddLabels   []string
}

// PushInput describes a branch push that also creates a merge request
// through GitLab push options.
type PushInput struct {
	Remote       string
	SourceBranch string
	TargetBranch string
	Title        string
}
