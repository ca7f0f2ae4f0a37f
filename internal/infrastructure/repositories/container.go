package repositories

import (
	"go.uber.org/dig"

	domainRepos "github.com/rios0rios0/mrhelper/internal/domain/repositories"
	feishuRepo "github.com/rios0rios0/mrhelper/internal/infrastructure/repositories/feishu"
	gitRepo "github.com/rios0rios0/mrhelper/internal/infrastructure/repositories/git"
	glRepo "github.com/rios0rios0/mrhelper/internal/infrastructure/repositories/gitlab"
	manifestRepo "github.com/rios0rios0/mrhelper/internal/infrastructure/repositories/manifest"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register provider registry with the hosting and notifier factories
	if err := container.Provide(func() *ProviderRegistry {
		reg := NewProviderRegistry()
		reg.RegisterHosting("gitlab", glRepo.NewHostingRepository)
		reg.RegisterNotifier("feishu", feishuRepo.NewNotifierRepository)
		return reg
	}); err != nil {
		return err
	}

	if err := container.Provide(func() domainRepos.LocalRepositoryOpener {
		return gitRepo.NewOpener()
	}); err != nil {
		return err
	}

	if err := container.Provide(func() domainRepos.ManifestRepository {
		return manifestRepo.NewOSManifestRepository()
	}); err != nil {
		return err
	}

	return nil
}
