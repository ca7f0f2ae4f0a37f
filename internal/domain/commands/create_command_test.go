//go:build unit

package commands_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/mrhelper/internal/domain/commands"
	"github.com/rios0rios0/mrhelper/internal/domain/entities"
	"github.com/rios0rios0/mrhelper/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/mrhelper/internal/infrastructure/repositories"
	"github.com/rios0rios0/mrhelper/internal/infrastructure/repositories/manifest"
	"github.com/rios0rios0/mrhelper/test/domain/entitybuilders"
	doubles "github.com/rios0rios0/mrhelper/test/infrastructure/repositorydoubles"
)

const (
	fooMergeRequestURL = "https://gitlab.example.com/ios/Foo/-/merge_requests/7"
	appMergeRequestURL = "https://gitlab.example.com/ios/App/-/merge_requests/99"
	webhookURL         = "https://open.feishu.cn/open-apis/bot/v2/hook/abc"
)

// commandFixture is a clean checkout of App on branch feature whose Podfile
// bumps Foo to a commit merged in Foo!7.
type commandFixture struct {
	local    *doubles.StubLocalRepository
	opener   *doubles.StubLocalRepositoryOpener
	hosting  *doubles.SpyHostingRepository
	notifier *doubles.SpyNotifierRepository
	registry *infraRepos.ProviderRegistry
	settings *entities.Settings
}

func newCommandFixture() *commandFixture {
	app := entitybuilders.NewProjectBuilder().WithID(1).WithName("App").BuildProject()
	foo := entitybuilders.NewProjectBuilder().WithID(2).WithName("Foo").BuildProject()

	local := &doubles.StubLocalRepository{
		WorkDir:        "/work/App",
		Branch:         "feature",
		Origin:         "git@gitlab.example.com:ios/App.git",
		User:           "Jane Doe",
		RemoteBranches: map[string]bool{"master": true, "develop": true},
		Commit: &entities.Commit{
			ID:         "1234567",
			Message:    "Bump Foo\n\nPicks up the login fix.\n",
			AuthorName: "Jane Doe",
		},
		Lines: []string{
			`pod 'Foo', :git => 'git@gitlab.example.com:ios/Foo.git', :commit => 'abc123'`,
		},
	}
	hosting := &doubles.SpyHostingRepository{
		Projects: []entities.Project{app, foo},
		MergedMRs: map[int64][]entities.MergeRequest{
			2: {{IID: 7, WebURL: fooMergeRequestURL}},
		},
		MRCommits: map[string][]entities.Commit{
			fooMergeRequestURL: {{ID: "abc123"}},
		},
		OpenMRs: []entities.MergeRequest{{IID: 99, WebURL: appMergeRequestURL}},
		Labels: []entities.Label{
			{Name: "webhook-0", Description: webhookURL},
			{Name: "id-0", Description: "ou_other"},
		},
	}
	notifier := &doubles.SpyNotifierRepository{}

	registry := infraRepos.NewProviderRegistry()
	registry.RegisterHosting("gitlab", func(_, _ string) (repositories.HostingRepository, error) {
		return hosting, nil
	})
	registry.RegisterNotifier("feishu", func(_ string) repositories.NotifierRepository {
		return notifier
	})

	return &commandFixture{
		local:    local,
		opener:   &doubles.StubLocalRepositoryOpener{Repository: local},
		hosting:  hosting,
		notifier: notifier,
		registry: registry,
		settings: &entities.Settings{
			GitLab:   entities.GitLabSettings{URL: "https://gitlab.example.com", Token: "glpat-test"},
			Manifest: entities.DefaultManifest,
			Feishu: entities.FeishuSettings{
				Webhook:     webhookURL,
				SendMessage: true,
				SelfOpenID:  "ou_self",
				Users: []entities.FeishuUser{
					{Name: "alice", OpenID: "ou_alice", DefaultSelected: true},
					{Name: "bob", OpenID: "ou_bob"},
				},
			},
		},
	}
}

func (f *commandFixture) manifests() repositories.ManifestRepository {
	return manifest.NewBillyManifestRepository(memfs.New())
}

func (f *commandFixture) createCommand() *commands.CreateCommand {
	return commands.NewCreateCommand(f.registry, f.opener, f.manifests()).
		WithRetryDelay(time.Millisecond).
		WithClock(func() time.Time { return time.Unix(1700000000, 0) })
}

func TestCreateCommandExecute(t *testing.T) {
	t.Parallel()

	t.Run("should open the merge request with related dependencies and notify", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newCommandFixture()
		cmd := fixture.createCommand()
		opts := commands.CreateOptions{WorkDir: "/work/App", Confirmed: true}

		// when
		url, err := cmd.Execute(context.Background(), fixture.settings, opts)

		// then
		require.NoError(t, err)
		assert.Equal(t, appMergeRequestURL, url)
		assert.Equal(t, []string{"master"}, fixture.local.RebasedOnto)

		require.Len(t, fixture.local.Pushes, 1)
		push := fixture.local.Pushes[0]
		assert.Equal(t, "origin", push.Remote)
		assert.Equal(t, "master", push.TargetBranch)
		assert.Equal(t, "Bump Foo", push.Title)
		assert.True(t, strings.HasSuffix(push.SourceBranch, "/mr1700000000"))
		assert.Equal(t, []string{push.SourceBranch}, fixture.local.CreatedBranches)

		require.Len(t, fixture.hosting.UpdateInputs, 1)
		update := fixture.hosting.UpdateInputs[0]
		assert.Equal(t, "<p>Related dependency commits:</p><p>    👉: "+fooMergeRequestURL+"</p>", update.Description)
		assert.Equal(t, []string{"webhook-0", "id-1"}, update.AddLabels)
		assert.Equal(t, []entities.Label{{Name: "id-1", Description: "ou_self", Color: "#8899aa"}},
			fixture.hosting.CreatedLabels)

		require.Len(t, fixture.notifier.Messages, 1)
		message := fixture.notifier.Messages[0]
		assert.Equal(t, appMergeRequestURL, message.URL)
		assert.Equal(t, "App", message.Repository)
		assert.Equal(t, "Jane Doe", message.Author)
		assert.Equal(t, "master", message.TargetBranch)
		assert.Equal(t, []string{"ou_alice"}, message.Mentions)

		assert.Equal(t, []string{"feature"}, fixture.local.CheckedOut)
		assert.Equal(t, []string{push.SourceBranch}, fixture.local.DeletedBranches)
	})

	t.Run("should use the given title and target branch", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newCommandFixture()
		cmd := fixture.createCommand()
		opts := commands.CreateOptions{
			WorkDir:      "/work/App",
			TargetBranch: "origin/develop",
			Title:        "Release 2.0",
			Confirmed:    true,
		}

		// when
		_, err := cmd.Execute(context.Background(), fixture.settings, opts)

		// then
		require.NoError(t, err)
		require.Len(t, fixture.local.Pushes, 1)
		assert.Equal(t, "develop", fixture.local.Pushes[0].TargetBranch)
		assert.Equal(t, "Release 2.0", fixture.local.Pushes[0].Title)
	})

	t.Run("should refuse a dirty working tree", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newCommandFixture()
		fixture.local.Dirty = true
		cmd := fixture.createCommand()

		// when
		_, err := cmd.Execute(context.Background(), fixture.settings, commands.CreateOptions{Confirmed: true})

		// then
		require.ErrorIs(t, err, entities.ErrUncommittedChanges)
		assert.Empty(t, fixture.local.Pushes)
	})

	t.Run("should refuse to run without confirmation", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newCommandFixture()
		cmd := fixture.createCommand()

		// when
		_, err := cmd.Execute(context.Background(), fixture.settings, commands.CreateOptions{})

		// then
		require.ErrorIs(t, err, entities.ErrNotConfirmed)
		assert.Zero(t, fixture.local.FetchCalls)
	})

	t.Run("should only resolve the description in dry-run mode", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newCommandFixture()
		cmd := fixture.createCommand()

		// when
		url, err := cmd.Execute(context.Background(), fixture.settings, commands.CreateOptions{DryRun: true})

		// then
		require.NoError(t, err)
		assert.Empty(t, url)
		assert.Equal(t, 1, fixture.local.FetchCalls)
		assert.Equal(t, []int64{2}, fixture.hosting.MergedProjects)
		assert.Empty(t, fixture.local.RebasedOnto)
		assert.Empty(t, fixture.local.Pushes)
		assert.Empty(t, fixture.notifier.Messages)
	})

	t.Run("should fail when the target branch is missing on the remote", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newCommandFixture()
		fixture.local.RemoteBranches = map[string]bool{}
		cmd := fixture.createCommand()

		// when
		_, err := cmd.Execute(context.Background(), fixture.settings, commands.CreateOptions{Confirmed: true})

		// then
		require.ErrorIs(t, err, entities.ErrDiffUnavailable)
		assert.Contains(t, err.Error(), "origin/main")
		assert.Empty(t, fixture.local.DiffedFiles)
	})

	t.Run("should fail when a bumped dependency has no project", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newCommandFixture()
		fixture.local.Lines = []string{`pod 'Gone', :git => 'git@gitlab.example.com:ios/Gone.git', :commit => 'fff000'`}
		cmd := fixture.createCommand()

		// when
		_, err := cmd.Execute(context.Background(), fixture.settings, commands.CreateOptions{Confirmed: true})

		// then
		require.ErrorIs(t, err, entities.ErrProjectNotFound)
		assert.Empty(t, fixture.local.Pushes)
	})

	t.Run("should keep going when the rebase fails", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newCommandFixture()
		fixture.local.RebaseErr = errors.New("conflict in Podfile.lock")
		cmd := fixture.createCommand()

		// when
		url, err := cmd.Execute(context.Background(), fixture.settings, commands.CreateOptions{Confirmed: true})

		// then
		require.NoError(t, err)
		assert.Equal(t, appMergeRequestURL, url)
	})

	t.Run("should wait until the merge request shows up", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newCommandFixture()
		fixture.hosting.OpenMRsDelayed = 2
		cmd := fixture.createCommand()

		// when
		url, err := cmd.Execute(context.Background(), fixture.settings, commands.CreateOptions{Confirmed: true})

		// then
		require.NoError(t, err)
		assert.Equal(t, appMergeRequestURL, url)
		assert.Equal(t, 3, fixture.hosting.OpenMRsCalls)
	})

	t.Run("should fail and restore the branch when the merge request never shows up", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newCommandFixture()
		fixture.hosting.OpenMRs = nil
		cmd := fixture.createCommand()

		// when
		_, err := cmd.Execute(context.Background(), fixture.settings, commands.CreateOptions{Confirmed: true})

		// then
		require.ErrorIs(t, err, entities.ErrMergeRequestNotFound)
		assert.Equal(t, 8, fixture.hosting.OpenMRsCalls)
		assert.Equal(t, []string{"feature"}, fixture.local.CheckedOut)
		assert.Len(t, fixture.local.DeletedBranches, 1)
		assert.Empty(t, fixture.notifier.Messages)
	})

	t.Run("should mention the requested users once", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newCommandFixture()
		cmd := fixture.createCommand()
		opts := commands.CreateOptions{Confirmed: true, Mentions: []string{"bob", "alice", "carol"}}

		// when
		_, err := cmd.Execute(context.Background(), fixture.settings, opts)

		// then
		require.NoError(t, err)
		require.Len(t, fixture.notifier.Messages, 1)
		assert.Equal(t, []string{"ou_alice", "ou_bob"}, fixture.notifier.Messages[0].Mentions)
	})

	t.Run("should not fail when the push works but the notification does not", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newCommandFixture()
		fixture.notifier.NotifyErr = errors.New("webhook rejected message")
		cmd := fixture.createCommand()

		// when
		url, err := cmd.Execute(context.Background(), fixture.settings, commands.CreateOptions{Confirmed: true})

		// then
		require.NoError(t, err)
		assert.Equal(t, appMergeRequestURL, url)
		assert.Len(t, fixture.notifier.Messages, 1)
	})

	t.Run("should skip labels and notification when messaging is disabled", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newCommandFixture()
		fixture.settings.Feishu = entities.FeishuSettings{}
		cmd := fixture.createCommand()

		// when
		_, err := cmd.Execute(context.Background(), fixture.settings, commands.CreateOptions{Confirmed: true})

		// then
		require.NoError(t, err)
		require.Len(t, fixture.hosting.UpdateInputs, 1)
		assert.Empty(t, fixture.hosting.UpdateInputs[0].AddLabels)
		assert.Empty(t, fixture.notifier.Messages)
	})

	t.Run("should fail when the push is rejected", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newCommandFixture()
		fixture.local.PushErr = errors.New("remote rejected")
		cmd := fixture.createCommand()

		// when
		_, err := cmd.Execute(context.Background(), fixture.settings, commands.CreateOptions{Confirmed: true})

		// then
		require.Error(t, err)
		assert.Zero(t, fixture.hosting.OpenMRsCalls)
		assert.Equal(t, []string{"feature"}, fixture.local.CheckedOut)
	})
}

func TestFirstLine(t *testing.T) {
	t.Parallel()

	t.Run("should return the trimmed first line of a commit message", func(t *testing.T) {
		t.Parallel()

		// given
		message := "\n  Bump Foo  \n\nBody text\n"

		// when
		line := commands.FirstLine(message)

		// then
		assert.Equal(t, "Bump Foo", line)
	})
}
