package repositories

import (
	"fmt"
	"sort"
	"strings"

	domainRepos "github.com/rios0rios0/mrhelper/internal/domain/repositories"
)

// HostingFactory creates a HostingRepository for a GitLab instance.
type HostingFactory func(baseURL, token string) (domainRepos.HostingRepository, error)

// NotifierFactory creates a NotifierRepository posting to the given webhook.
type NotifierFactory func(webhook string) domainRepos.NotifierRepository

// ProviderRegistry manages the hosting and notifier implementations by name.
type ProviderRegistry struct {
	hosting   map[string]HostingFactory
	notifiers map[string]NotifierFactory
}

// NewProviderRegistry creates an empty provider registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		hosting:   make(map[string]HostingFactory),
		notifiers: make(map[string]NotifierFactory),
	}
}

// RegisterHosting adds a hosting factory under the given name (e.g. "gitlab").
func (r *ProviderRegistry) RegisterHosting(name string, factory HostingFactory) {
	r.hosting[name] = factory
}

// RegisterNotifier adds a notifier factory under the given name (e.g. "feishu").
func (r *ProviderRegistry) RegisterNotifier(name string, factory NotifierFactory) {
	r.notifiers[name] = factory
}

// GetHosting returns a configured hosting client for the given name.
func (r *ProviderRegistry) GetHosting(name, baseURL, token string) (domainRepos.HostingRepository, error) {
	factory, ok := r.hosting[name]
	if !ok {
		return nil, fmt.Errorf("unknown hosting type: %q (registered: %s)", name, strings.Join(r.Names(), ", "))
	}
	return factory(baseURL, token)
}

// GetNotifier returns a notifier for the given name and webhook.
func (r *ProviderRegistry) GetNotifier(name, webhook string) (domainRepos.NotifierRepository, error) {
	factory, ok := r.notifiers[name]
	if !ok {
		return nil, fmt.Errorf("unknown notifier type: %q (registered: %s)", name, strings.Join(r.Names(), ", "))
	}
	return factory(webhook), nil
}

// Names returns the sorted names of every registered implementation.
func (r *ProviderRegistry) Names() []string {
	names := make([]string, 0, len(r.hosting)+len(r.notifiers))
	for name := range r.hosting {
		names = append(names, name)
	}
	for name := range r.notifiers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
