package processor

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registryLock        sync.Mutex
	registeredProviders = map[string]Provider{}
)

// RegisterProvider registers the given processor provider under a name.
// Registering a second provider with the same name panics.
func RegisterProvider(name string, p Provider) {
	registryLock.Lock()
	defer registryLock.Unlock()
	if _, ok := registeredProviders[name]; ok {
		panic(fmt.Sprintf("processor provider %q already registered", name))
	}
	registeredProviders[name] = p
}

// LookupProvider returns the provider registered with the given name.
func LookupProvider(name string) (Provider, bool) {
	registryLock.Lock()
	defer registryLock.Unlock()
	p, ok := registeredProviders[name]
	return p, ok
}

// RegisteredProviderNames returns the names of all registered providers,
// sorted.
func RegisteredProviderNames() []string {
	registryLock.Lock()
	defer registryLock.Unlock()
	names := make([]string, 0, len(registeredProviders))
	for n := range registeredProviders {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// AllRegisteredProviders returns all registered providers, ordered by name.
func AllRegisteredProviders() []Provider {
	names := RegisteredProviderNames()
	registryLock.Lock()
	defer registryLock.Unlock()
	provs := make([]Provider, len(names))
	for i, n := range names {
		provs[i] = registeredProviders[n]
	}
	return provs
}
