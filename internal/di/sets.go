package di

import "github.com/google/wire"

// InfrastructureProviders build the AWS clients, the repository chain and
// observability.
var InfrastructureProviders = wire.NewSet(
	provideAWSClients,
	provideDynamoDBClient,
	provideDynamoRepository,
	provideCollector,
	provideTracerProvider,
	provideGateRepository,
	provideEventPublisher,
)

// ServiceProviders build the domain switch and the gate use cases.
var ServiceProviders = wire.NewSet(
	provideBusinessHours,
	provideClock,
	provideIDGenerator,
	provideGateService,
)

// InterfaceProviders build the HTTP layer.
var InterfaceProviders = wire.NewSet(
	provideGateHandler,
	provideInfoHandler,
	provideRouter,
)

// SuperSet combines all provider sets.
var SuperSet = wire.NewSet(
	InfrastructureProviders,
	ServiceProviders,
	InterfaceProviders,
	provideContainer,
)
