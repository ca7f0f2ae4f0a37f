package commands

import (
	"context"
	"fmt"
	"os/user"
	"slices"
	"strconv"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/mrhelper/internal/domain/entities"
	"github.com/rios0rios0/mrhelper/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/mrhelper/internal/infrastructure/repositories"
)

const (
	lookupAttempts     = 8
	labelColor         = "#8899aa"
	webhookLabelPrefix = "webhook-"
	openIDLabelPrefix  = "id-"
)

// Create is the interface for the create command.
type Create interface {
	Execute(ctx context.Context, settings *entities.Settings, opts CreateOptions) (string, error)
}

// CreateOptions holds runtime options for a merge request creation.
type CreateOptions struct {
	WorkDir      string
	TargetBranch string   // defaults to master or main
	Title        string   // defaults to the first line of the last commit message
	Mentions     []string // configured user names mentioned on top of the default ones
	Confirmed    bool
	DryRun       bool
	Verbose      bool
}

// CreateCommand pushes the current commit to a temporary branch, lets GitLab
// open a merge request for it, and fills the description with the merge
// requests of every dependency bumped in the manifest.
type CreateCommand struct {
	registry  *infraRepos.ProviderRegistry
	opener    repositories.LocalRepositoryOpener
	manifests repositories.ManifestRepository

	retryDelay time.Duration
	now        func() time.Time
}

// NewCreateCommand creates a new CreateCommand.
func NewCreateCommand(
	registry *infraRepos.ProviderRegistry,
	opener repositories.LocalRepositoryOpener,
	manifests repositories.ManifestRepository,
) *CreateCommand {
	return &CreateCommand{
		registry:   registry,
		opener:     opener,
		manifests:  manifests,
		retryDelay: time.Second,
		now:        time.Now,
	}
}

// Execute runs the whole flow and returns the merge request URL. In dry-run
// mode nothing is pushed and the returned URL is empty.
func (it *CreateCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts CreateOptions,
) (string, error) {
	if opts.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	ws, err := openWorkspace(ctx, settings, it.registry, it.opener, it.manifests, opts.WorkDir)
	if err != nil {
		return "", err
	}

	dirty, err := ws.local.IsDirty()
	if err != nil {
		return "", fmt.Errorf("failed to read worktree status: %w", err)
	}
	if dirty {
		return "", entities.ErrUncommittedChanges
	}

	lastCommit, err := ws.local.LastCommit()
	if err != nil {
		return "", fmt.Errorf("failed to read the last commit: %w", err)
	}
	logger.Infof(
		"Merge request commit: %q by %s at %s",
		strings.TrimSpace(lastCommit.Message), lastCommit.AuthorName,
		lastCommit.AuthoredDate.Format("Mon, 02 Jan 2006 15:04"),
	)
	if !opts.Confirmed && !opts.DryRun {
		return "", entities.ErrNotConfirmed
	}

	target := strings.TrimPrefix(opts.TargetBranch, remoteOrigin+"/")
	if target == "" {
		target = defaultTargetBranch(ws.local)
	}
	logger.Infof("Target branch: %s", target)

	title := opts.Title
	if title == "" {
		title = firstLine(lastCommit.Message)
	}
	logger.Infof("Title: %s", title)

	if fetchErr := ws.fetchTarget(ctx, target); fetchErr != nil {
		return "", fetchErr
	}

	if !opts.DryRun {
		if rebaseErr := ws.local.Rebase(ctx, target); rebaseErr != nil {
			logger.Warnf("Rebase onto %s/%s failed: %v", remoteOrigin, target, rebaseErr)
		}
	}

	description, err := ws.relatedDescription(ctx, target)
	if err != nil {
		return "", err
	}
	if description != "" {
		logger.Infof("Description:\n%s", entities.DescriptionAsText(description))
	}

	if opts.DryRun {
		logger.Infof("[DRY RUN] Would open a merge request %q into %s", title, target)
		return "", nil
	}

	return it.publish(ctx, ws, settings, opts, target, title, description)
}

// publish pushes a temporary branch, completes the merge request and notifies the chat.
func (it *CreateCommand) publish(
	ctx context.Context,
	ws *workspace,
	settings *entities.Settings,
	opts CreateOptions,
	target, title, description string,
) (string, error) {
	original, err := ws.local.CurrentBranch()
	if err != nil {
		return "", fmt.Errorf("failed to read the current branch: %w", err)
	}

	source := it.sourceBranchName()
	if branchErr := ws.local.CreateBranch(source); branchErr != nil {
		return "", fmt.Errorf("failed to create branch %s: %w", source, branchErr)
	}
	logger.Infof("Switched from %s to %s", original, source)
	defer restoreBranch(ws.local, original, source)

	if pushErr := ws.local.PushMergeRequest(ctx, entities.PushInput{
		Remote:       remoteOrigin,
		SourceBranch: source,
		TargetBranch: target,
		Title:        title,
	}); pushErr != nil {
		return "", fmt.Errorf("failed to push %s: %w", source, pushErr)
	}

	mr, err := it.findMergeRequest(ctx, ws, source)
	if err != nil {
		return "", err
	}

	labels, err := ensureLabels(ctx, ws.hosting, ws.project, settings.Feishu.Webhook, settings.Feishu.SelfOpenID)
	if err != nil {
		logger.Warnf("Failed to prepare labels: %v", err)
	}
	if updateErr := ws.hosting.UpdateMergeRequest(ctx, ws.project, *mr, entities.MergeRequestUpdate{
		Description: description,
		AddLabels:   labels,
	}); updateErr != nil {
		logger.Warnf("Failed to update merge request %s: %v", mr.WebURL, updateErr)
	}

	logger.Infof("Merge request created: %s", mr.WebURL)
	it.notify(ctx, ws, settings, mr.WebURL, title, target, mentionIDs(settings, opts.Mentions))
	return mr.WebURL, nil
}

// findMergeRequest waits for GitLab to open the merge request requested by the push.
func (it *CreateCommand) findMergeRequest(
	ctx context.Context,
	ws *workspace,
	source string,
) (*entities.MergeRequest, error) {
	for attempt := range lookupAttempts {
		logger.Debugf("Looking up the merge request of %s (attempt %d)", source, attempt+1)
		mrs, err := ws.hosting.ListOpenMergeRequests(ctx, ws.project, source)
		if err != nil {
			logger.Debugf("Failed to list merge requests: %v", err)
		} else if len(mrs) > 0 {
			return &mrs[0], nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(it.retryDelay):
		}
	}
	return nil, fmt.Errorf("%w: no open merge request for %s", entities.ErrMergeRequestNotFound, source)
}

func (it *CreateCommand) notify(
	ctx context.Context,
	ws *workspace,
	settings *entities.Settings,
	url, title, target string,
	mentions []string,
) {
	if !settings.Feishu.SendMessage {
		return
	}

	notifier, err := it.registry.GetNotifier(notifierFeishu, settings.Feishu.Webhook)
	if err != nil {
		logger.Warnf("Failed to create notifier: %v", err)
		return
	}

	if notifyErr := notifier.Notify(ctx, repositories.MergeRequestMessage{
		URL:          url,
		Author:       ws.local.UserName(),
		Title:        strings.TrimSpace(title),
		Repository:   ws.repoName,
		TargetBranch: target,
		Mentions:     mentions,
	}); notifyErr != nil {
		logger.Warnf("Failed to notify %s: %v", notifierFeishu, notifyErr)
	}
}

// mentionIDs returns the open ids of the default users followed by the named
// ones, without duplicates. Unknown names are skipped.
func mentionIDs(settings *entities.Settings, names []string) []string {
	ids := settings.DefaultMentions()
	for _, name := range names {
		user, found := settings.FindUser(name)
		if !found || user.OpenID == "" {
			logger.Warnf("No open id configured for %q", name)
			continue
		}
		if !slices.Contains(ids, user.OpenID) {
			ids = append(ids, user.OpenID)
		}
	}
	return ids
}

// sourceBranchName returns <user>/mr<unix seconds>.
func (it *CreateCommand) sourceBranchName() string {
	name := "mrhelper"
	if current, err := user.Current(); err == nil && current.Username != "" {
		name = strings.NewReplacer(" ", "-", `\`, "-").Replace(current.Username)
	}
	return name + "/mr" + strconv.FormatInt(it.now().Unix(), 10)
}

func restoreBranch(local repositories.LocalRepository, original, temporary string) {
	logger.Infof("Deleting %s and switching back to %s", temporary, original)
	if err := local.Checkout(original); err != nil {
		logger.Errorf("Failed to checkout %s: %v", original, err)
		return
	}
	if err := local.DeleteBranch(temporary); err != nil {
		logger.Warnf("Failed to delete branch %s: %v", temporary, err)
	}
}

// ensureLabels returns the webhook and open id labels of the project, creating
// them when no label carries the value yet. Both values are required.
func ensureLabels(
	ctx context.Context,
	hosting repositories.HostingRepository,
	project entities.Project,
	webhook, openID string,
) ([]string, error) {
	if webhook == "" || openID == "" {
		logger.Debug("Webhook or open id is empty, no labels added")
		return nil, nil
	}

	existing, err := hosting.ListLabels(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}

	var names []string
	for _, wanted := range []struct{ prefix, value string }{
		{webhookLabelPrefix, webhook},
		{openIDLabelPrefix, openID},
	} {
		name, labelErr := ensureLabel(ctx, hosting, project, existing, wanted.prefix, wanted.value)
		if labelErr != nil {
			return names, labelErr
		}
		names = append(names, name)
	}
	return names, nil
}

func ensureLabel(
	ctx context.Context,
	hosting repositories.HostingRepository,
	project entities.Project,
	existing []entities.Label,
	prefix, value string,
) (string, error) {
	count := 0
	for _, label := range existing {
		if !strings.HasPrefix(label.Name, prefix) {
			continue
		}
		if label.Description == value {
			return label.Name, nil
		}
		count++
	}

	label := entities.Label{
		Name:        prefix + strconv.Itoa(count),
		Description: value,
		Color:       labelColor,
	}
	logger.Debugf("Creating label %s", label.Name)
	if err := hosting.CreateLabel(ctx, project, label); err != nil {
		return "", fmt.Errorf("failed to create label %s: %w", label.Name, err)
	}
	return label.Name, nil
}

func firstLine(message string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(message), "\n")
	return strings.TrimSpace(line)
}
