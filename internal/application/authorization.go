package application

import "github.com/bjax13/CookbookClub/internal/state"

// parseRole validates a caller supplied role string.
func parseRole(value string) (state.Role, error) {
	role := state.Role(value)
	if !role.Valid() {
		return "", invalid("role", "Invalid role: "+value)
	}
	return role, nil
}

func parsePolicy(value string) (state.MembershipPolicy, error) {
	policy := state.MembershipPolicy(value)
	if !policy.Valid() {
		return "", invalid("policy", "Invalid policy: "+value)
	}
	return policy, nil
}

// privileged reports whether role may manage membership and cookbook access.
func privileged(role state.Role) bool {
	switch role {
	case state.RoleHost, state.RoleAdmin, state.RoleCoAdmin:
		return true
	case state.RoleMember:
		return false
	default:
		return false
	}
}

// canAssignRoles reports whether role may change other members' roles.
func canAssignRoles(role state.Role) bool {
	switch role {
	case state.RoleHost, state.RoleAdmin:
		return true
	case state.RoleCoAdmin, state.RoleMember:
		return false
	default:
		return false
	}
}

func (s *Service) roleOf(club *state.Club, userID string) (state.Role, bool) {
	m := s.findMembership(club.ID, userID)
	if m == nil {
		return "", false
	}
	return m.Role, true
}

func (s *Service) requireHost(club *state.Club, actorUserID string) error {
	if club.HostUserID != actorUserID {
		return unauthorized("Only current host can perform this action.")
	}
	return nil
}

func (s *Service) requirePrivileged(club *state.Club, actorUserID string) error {
	role, ok := s.roleOf(club, actorUserID)
	if !ok || !privileged(role) {
		return unauthorized("Only host/admin/co_admin can perform this action.")
	}
	return nil
}

// requireCanInvite lets any member invite into an open club; closed clubs
// need a privileged role.
func (s *Service) requireCanInvite(club *state.Club, actorUserID string) error {
	role, ok := s.roleOf(club, actorUserID)
	if !ok {
		return unauthorized("User is not a member of this club.")
	}
	if club.MembershipPolicy == state.PolicyOpen || privileged(role) {
		return nil
	}
	return unauthorized("Club is closed. Only host/admin/co_admin can invite members.")
}

func (s *Service) requireMember(club *state.Club, userID string) (*state.Membership, error) {
	m := s.findMembership(club.ID, userID)
	if m == nil {
		return nil, unauthorized("User is not a member of this club.")
	}
	return m, nil
}
