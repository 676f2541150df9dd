package gates

import (
	"sort"

	"gates-backend/internal/domain/gate"
)

// ServiceGates groups the environments of one service.
type ServiceGates struct {
	Name  string
	Gates []gate.Gate
}

// Group is one group and its services.
type Group struct {
	Name     string
	Services []ServiceGates
}

// GroupGates arranges gates for display. Groups and services sort by name.
// Environments sort by display order, gates without an order first, then by
// environment name.
func GroupGates(all []gate.Gate) []Group {
	byGroup := make(map[string]map[string][]gate.Gate)
	for _, g := range all {
		services, ok := byGroup[g.Key.Group]
		if !ok {
			services = make(map[string][]gate.Gate)
			byGroup[g.Key.Group] = services
		}
		services[g.Key.Service] = append(services[g.Key.Service], g)
	}

	groups := make([]Group, 0, len(byGroup))
	for groupName, services := range byGroup {
		group := Group{Name: groupName, Services: make([]ServiceGates, 0, len(services))}
		for serviceName, envs := range services {
			sortEnvironments(envs)
			group.Services = append(group.Services, ServiceGates{Name: serviceName, Gates: envs})
		}
		sort.Slice(group.Services, func(i, j int) bool {
			return group.Services[i].Name < group.Services[j].Name
		})
		groups = append(groups, group)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups
}

func sortEnvironments(envs []gate.Gate) {
	sort.SliceStable(envs, func(i, j int) bool {
		a, b := envs[i].DisplayOrder, envs[j].DisplayOrder
		switch {
		case a == nil && b != nil:
			return true
		case a != nil && b == nil:
			return false
		case a != nil && b != nil && *a != *b:
			return *a < *b
		}
		return envs[i].Key.Environment < envs[j].Key.Environment
	})
}
