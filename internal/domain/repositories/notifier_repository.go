package repositories

import "context"

// MergeRequestMessage is the notification sent once a merge request exists.
type MergeRequestMessage struct {
	URL          string
	Author       string
	Title        string
	Repository   string
	TargetBranch string
	Mentions     []string // chat open ids
}

// NotifierRepository delivers merge request notifications to a chat channel.
type NotifierRepository interface {
	Notify(ctx context.Context, message MergeRequestMessage) error
}
