package services

import (
	"context"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/tommyfonseca7/teams-coms-public/internal/apperrors"
	"github.com/tommyfonseca7/teams-coms-public/internal/models"
)

type TeamService struct {
	users UserStore
}

func NewTeamService(users UserStore) *TeamService {
	return &TeamService{users: users}
}

// List returns the roster sorted by name, without the caller.
func (s *TeamService) List(ctx context.Context, callerUID string) ([]*models.TeamMember, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	members := make([]*models.TeamMember, 0, len(users))
	for _, u := range users {
		// Don't include current user in results
		if u.UID == callerUID {
			continue
		}
		members = append(members, &models.TeamMember{UID: u.UID, Name: u.Name, Role: u.Role})
	}
	sort.SliceStable(members, func(i, j int) bool {
		return strings.ToLower(members[i].Name) < strings.ToLower(members[j].Name)
	})
	return members, nil
}

// Search returns the members whose name fuzzily matches query, closest
// match first. An empty query lists everyone.
func (s *TeamService) Search(ctx context.Context, callerUID, query string) ([]*models.TeamMember, error) {
	members, err := s.List(ctx, callerUID)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return members, nil
	}

	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
	}
	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.Stable(ranks)

	out := make([]*models.TeamMember, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, members[r.OriginalIndex])
	}
	return out, nil
}

// UpdateRole sets the role of uid.
func (s *TeamService) UpdateRole(ctx context.Context, uid string, role models.Role) error {
	if !role.Valid() {
		return apperrors.BadRequest("team", "invalid role")
	}
	return s.users.UpdateRole(ctx, uid, role)
}

// Role returns the role of uid, empty when none was assigned.
func (s *TeamService) Role(ctx context.Context, uid string) (models.Role, error) {
	u, err := s.users.Get(ctx, uid)
	if err != nil {
		return "", err
	}
	return u.Role, nil
}

// names maps every uid to its display name.
func names(ctx context.Context, users UserStore) (map[string]string, error) {
	list, err := users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(list))
	for _, u := range list {
		out[u.UID] = u.Name
	}
	return out, nil
}
