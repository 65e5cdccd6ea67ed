package projections

import (
	"context"

	"athleteportal/internal/domain/athlete"
	"athleteportal/internal/domain/entitlement"
	"athleteportal/internal/domain/feature"
)

// RosterSource exposes the current working set snapshot.
type RosterSource interface {
	Current() *athlete.Roster
}

// DashboardFeatureStore lists the feature catalog.
type DashboardFeatureStore interface {
	List(ctx context.Context) ([]feature.Feature, error)
}

// GetDashboardQuery carries input for the dashboard projection.
type GetDashboardQuery struct {
	Key string // athlete id or email
}

// DashboardFeature is one catalog entry as it renders for this athlete.
type DashboardFeature struct {
	Key          string               `json:"key"`
	Title        string               `json:"title"`
	Description  string               `json:"description,omitempty"`
	Kind         feature.Kind         `json:"kind"`
	Availability feature.Availability `json:"availability"`
}

// Dashboard is the presentation-ready view of one athlete's entitlements.
type Dashboard struct {
	AthleteID       string                    `json:"athleteId"`
	Name            string                    `json:"name"`
	Gate            entitlement.GateResult    `json:"gate"`
	BlockingMessage string                    `json:"blockingMessage,omitempty"`
	Capabilities    entitlement.CapabilitySet `json:"capabilities"`
	Categories      []string                  `json:"categories"`
	Features        []DashboardFeature        `json:"features"`
}

// GetDashboardDeps holds dependencies for the dashboard projection.
// Policy defaults to entitlement.DefaultPolicy; a nil FeatureStore uses the
// built-in catalog.
type GetDashboardDeps struct {
	Roster       RosterSource
	Policy       *entitlement.Policy
	FeatureStore DashboardFeatureStore
}

// QueryGetDashboard resolves one athlete and lays out their dashboard.
// PRE: Key identifies a record in the current working set
// POST: Blocked athletes get a blocking message and no features; otherwise
// every enabled feature is listed as visible or locked
// INVARIANT: Disabled features never appear; locked features never grant access
func QueryGetDashboard(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps) (Dashboard, error) {
	rec, err := deps.Roster.Current().Lookup(query.Key)
	if err != nil {
		return Dashboard{}, err
	}
	res := policyOrDefault(deps.Policy).Resolve(rec)

	view := Dashboard{
		AthleteID:    rec.ID,
		Name:         rec.Name,
		Gate:         res.Gate,
		Capabilities: res.Capabilities,
		Categories:   res.Categories,
		Features:     []DashboardFeature{},
	}
	if res.Gate.IsBlocked() {
		view.BlockingMessage = entitlement.BlockingMessage(res.Gate)
		return view, nil
	}

	catalog := feature.DefaultCatalog()
	if deps.FeatureStore != nil {
		if catalog, err = deps.FeatureStore.List(ctx); err != nil {
			return Dashboard{}, err
		}
	}
	for _, f := range catalog {
		avail := f.AvailabilityFor(res.Capabilities)
		if avail == feature.Hidden {
			continue
		}
		view.Features = append(view.Features, DashboardFeature{
			Key:          f.Key,
			Title:        f.Title,
			Description:  f.Description,
			Kind:         f.Kind,
			Availability: avail,
		})
	}
	return view, nil
}

func policyOrDefault(p *entitlement.Policy) *entitlement.Policy {
	if p == nil {
		return entitlement.DefaultPolicy()
	}
	return p
}
