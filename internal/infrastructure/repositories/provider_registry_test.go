//go:build unit

package repositories_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainRepos "github.com/rios0rios0/mrhelper/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/mrhelper/internal/infrastructure/repositories"
	doubles "github.com/rios0rios0/mrhelper/test/infrastructure/repositorydoubles"
)

func TestProviderRegistry(t *testing.T) {
	t.Parallel()

	t.Run("should build a hosting client with the given credentials", func(t *testing.T) {
		t.Parallel()

		// given
		spy := &doubles.SpyHostingRepository{}
		var gotURL, gotToken string
		registry := infraRepos.NewProviderRegistry()
		registry.RegisterHosting("gitlab", func(baseURL, token string) (domainRepos.HostingRepository, error) {
			gotURL, gotToken = baseURL, token
			return spy, nil
		})

		// when
		hosting, err := registry.GetHosting("gitlab", "https://gitlab.example.com", "glpat-test")

		// then
		require.NoError(t, err)
		assert.Same(t, spy, hosting)
		assert.Equal(t, "https://gitlab.example.com", gotURL)
		assert.Equal(t, "glpat-test", gotToken)
	})

	t.Run("should build a notifier for the webhook", func(t *testing.T) {
		t.Parallel()

		// given
		spy := &doubles.SpyNotifierRepository{}
		registry := infraRepos.NewProviderRegistry()
		registry.RegisterNotifier("feishu", func(_ string) domainRepos.NotifierRepository { return spy })

		// when
		notifier, err := registry.GetNotifier("feishu", "https://hook")

		// then
		require.NoError(t, err)
		assert.Same(t, spy, notifier)
	})

	t.Run("should reject unknown names", func(t *testing.T) {
		t.Parallel()

		// given
		registry := infraRepos.NewProviderRegistry()

		// when
		_, hostingErr := registry.GetHosting("bitbucket", "", "")
		_, notifierErr := registry.GetNotifier("slack", "")

		// then
		require.Error(t, hostingErr)
		require.Error(t, notifierErr)
	})

	t.Run("should list every registered name in order", func(t *testing.T) {
		t.Parallel()

		// given
		registry := infraRepos.NewProviderRegistry()
		registry.RegisterNotifier("feishu", func(_ string) domainRepos.NotifierRepository { return nil })
		registry.RegisterHosting("gitlab", func(_, _ string) (domainRepos.HostingRepository, error) { return nil, nil })

		// when
		names := registry.Names()

		// then
		assert.Equal(t, []string{"feishu", "gitlab"}, names)
	})
}
