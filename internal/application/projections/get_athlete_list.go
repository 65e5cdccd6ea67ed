package projections

import (
	"context"
	"sort"
	"strings"

	"athleteportal/internal/application/listutil"
	"athleteportal/internal/domain/athlete"
	"athleteportal/internal/domain/entitlement"
)

// Athlete list filters and sort columns accepted from the request.
var (
	AthleteListSortColumns = []string{"name", "email", "tier"}
	AthleteListFilterKeys  = []string{"gate", "category", "membership"}
)

// GetAthleteListQuery carries list parameters.
// Filters: "gate" is "passed", "blocked" or a block reason; "category" is a
// tier category name; "membership" is "prg" or "standard" (any other type).
type GetAthleteListQuery struct {
	Params listutil.ListParams
}

// AthleteAccessRow is one roster entry with its resolution.
type AthleteAccessRow struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Email        string                 `json:"email"`
	Tier         string                 `json:"tier"`
	Membership   string                 `json:"membership,omitempty"`
	TierConflict bool                   `json:"tierConflict,omitempty"`
	Resolution   entitlement.Resolution `json:"resolution"`
}

// GetAthleteListResult carries one page of rows plus roster-wide gate counts.
type GetAthleteListResult struct {
	Athletes []AthleteAccessRow `json:"athletes"`
	Page     listutil.PageInfo  `json:"page"`
	Blocked  map[string]int     `json:"blocked"`
}

// GetAthleteListDeps holds dependencies for GetAthleteList.
type GetAthleteListDeps struct {
	Roster RosterSource
	Policy *entitlement.Policy
}

// QueryGetAthleteList resolves every athlete in the working set for staff review.
// POST: Blocked counts cover the whole roster, not just the returned page
// INVARIANT: The working set is not modified
func QueryGetAthleteList(_ context.Context, query GetAthleteListQuery, deps GetAthleteListDeps) (GetAthleteListResult, error) {
	policy := policyOrDefault(deps.Policy)
	search := strings.ToLower(strings.TrimSpace(query.Params.Search))
	gateFilter := strings.ToLower(query.Params.Filters["gate"])
	categoryFilter := strings.ToLower(query.Params.Filters["category"])
	membershipFilter := strings.ToLower(strings.TrimSpace(query.Params.Filters["membership"]))

	blocked := map[string]int{}
	rows := []AthleteAccessRow{}
	for _, rec := range deps.Roster.Current().Records() {
		res := policy.Resolve(rec)
		if res.Gate.IsBlocked() {
			blocked[string(res.Gate.Reason)]++
		}
		if search != "" && !strings.Contains(strings.ToLower(rec.Name), search) && !strings.Contains(strings.ToLower(rec.Email), search) {
			continue
		}
		if gateFilter != "" && !matchesGate(res.Gate, gateFilter) {
			continue
		}
		if categoryFilter != "" && !containsFold(res.Categories, categoryFilter) {
			continue
		}
		if membershipFilter != "" && rec.IsPRG() != (membershipFilter == "prg") {
			continue
		}
		rows = append(rows, AthleteAccessRow{
			ID:           rec.ID,
			Name:         rec.Name,
			Email:        rec.Email,
			Tier:         rec.Tier(),
			Membership:   rec.MembershipType,
			TierConflict: rec.TierConflict(),
			Resolution:   res,
		})
	}

	sortRows(rows, query.Params.SortParams)
	page, info := listutil.Paginate(rows, query.Params.PageParams)
	return GetAthleteListResult{Athletes: page, Page: info, Blocked: blocked}, nil
}

// GetAthleteAccessQuery identifies one athlete.
type GetAthleteAccessQuery struct {
	Key string
}

// QueryGetAthleteAccess resolves a single athlete by id or email.
// PRE: Key identifies a record in the current working set
// POST: Returns athlete.ErrNotFound (wrapped) for unknown keys
func QueryGetAthleteAccess(_ context.Context, query GetAthleteAccessQuery, deps GetAthleteListDeps) (AthleteAccessRow, error) {
	rec, err := deps.Roster.Current().Lookup(query.Key)
	if err != nil {
		return AthleteAccessRow{}, err
	}
	return AthleteAccessRow{
		ID:           rec.ID,
		Name:         rec.Name,
		Email:        rec.Email,
		Tier:         rec.Tier(),
		Membership:   rec.MembershipType,
		TierConflict: rec.TierConflict(),
		Resolution:   policyOrDefault(deps.Policy).Resolve(rec),
	}, nil
}

func matchesGate(g entitlement.GateResult, filter string) bool {
	switch filter {
	case "passed":
		return !g.IsBlocked()
	case "blocked":
		return g.IsBlocked()
	default:
		return string(g.Reason) == filter
	}
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

func sortRows(rows []AthleteAccessRow, sp listutil.SortParams) {
	key := func(r AthleteAccessRow) string {
		switch sp.Sort {
		case "email":
			return athlete.NormalizeKey(r.Email)
		case "tier":
			return athlete.NormalizeKey(r.Tier)
		case "name":
			return strings.ToLower(r.Name)
		}
		return ""
	}
	if sp.Sort == "" {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if sp.Dir == "desc" {
			return key(rows[i]) > key(rows[j])
		}
		return key(rows[i]) < key(rows[j])
	})
}
