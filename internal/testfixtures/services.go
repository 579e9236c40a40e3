package testfixtures

import (
	"time"

	"github.com/example/bookcafe-client/internal/application"
	"github.com/example/bookcafe-client/internal/persistence"
)

// ServiceFactory assists tests with constructing application services using
// a deterministic clock and in-memory client storage.
type ServiceFactory struct {
	Clock           *Clock
	SuperAdminEmail string
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{Clock: NewClock(time.Time{})}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithSuperAdminEmail overrides the sentinel super-admin address.
func WithSuperAdminEmail(email string) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.SuperAdminEmail = email
	}
}

// NewServices wires application services around api. The returned store is
// the client storage the session is persisted in.
func (f *ServiceFactory) NewServices(api application.API) (*application.Services, *persistence.MemoryStore) {
	store := persistence.NewMemoryStore()
	return f.NewServicesWithStore(api, store), store
}

// NewServicesWithStore wires application services around api and an existing store.
func (f *ServiceFactory) NewServicesWithStore(api application.API, store persistence.KeyValueStore) *application.Services {
	return application.NewServices(api, persistence.NewSessionRepository(store, nil), application.ServicesConfig{
		SuperAdminEmail: f.SuperAdminEmail,
		Now:             f.Clock.NowFunc(),
	})
}
