package application

import (
	"context"
	"strings"

	"github.com/bjax13/CookbookClub/internal/reminder"
	"github.com/bjax13/CookbookClub/internal/state"
)

// InitClub founds the single club together with its host and first meetup.
func (s *Service) InitClub(ctx context.Context, params InitClubParams) (result InitClubResult, err error) {
	logger := serviceLogger(ctx, s.logger, serviceName, "InitClub")
	defer func() {
		s.logOutcome(ctx, logger, "InitClub", err, "club initialized", "club_id", result.Club.ID, "host_user_id", result.Host.ID)
	}()

	if len(s.state.Clubs) > 0 {
		return InitClubResult{}, precondition("Only single club is supported in MVP. Club already initialized.")
	}

	vErr := &ValidationError{}
	clubName := strings.TrimSpace(params.ClubName)
	if clubName == "" {
		vErr.add("clubName", "Club name is required.")
	}
	hostName := strings.TrimSpace(params.HostName)
	if hostName == "" {
		vErr.add("hostName", "Host name is required.")
	}
	if vErr.HasErrors() {
		return InitClubResult{}, vErr
	}

	now := s.timestamp()
	clubID, _ := s.state.NextID(state.KindClub)
	userID, _ := s.state.NextID(state.KindUser)
	membershipID, _ := s.state.NextID(state.KindMembership)
	meetupID, meetupSeq := s.state.NextID(state.KindMeetup)

	host := state.User{
		ID:        userID,
		Name:      hostName,
		Email:     optionalText(params.HostEmail),
		Phone:     optionalText(params.HostPhone),
		CreatedAt: now,
	}
	club := state.Club{
		ID:                clubID,
		Name:              clubName,
		HostUserID:        userID,
		MembershipPolicy:  state.PolicyClosed,
		ReminderPolicy:    reminder.Default(),
		ReminderTemplates: map[string]reminder.Policy{},
		CreatedAt:         now,
	}
	membership := state.Membership{
		ID:       membershipID,
		ClubID:   clubID,
		UserID:   userID,
		Role:     state.RoleHost,
		JoinedAt: now,
	}
	meetup := state.Meetup{
		ID:         meetupID,
		Seq:        meetupSeq,
		ClubID:     clubID,
		HostUserID: userID,
		Theme:      "TBD",
		Status:     state.MeetupUpcoming,
		CreatedAt:  now,
	}

	s.state.Users = append(s.state.Users, host)
	s.state.Clubs = append(s.state.Clubs, club)
	s.state.Memberships = append(s.state.Memberships, membership)
	s.state.Meetups = append(s.state.Meetups, meetup)

	return InitClubResult{Club: club, Host: host, Membership: membership, Meetup: meetup}, nil
}

// CreateUser registers a person who may later be invited.
func (s *Service) CreateUser(ctx context.Context, params CreateUserParams) (user state.User, err error) {
	logger := serviceLogger(ctx, s.logger, serviceName, "CreateUser")
	defer func() {
		s.logOutcome(ctx, logger, "CreateUser", err, "user created", "user_id", user.ID)
	}()

	name, err := requireText("name", params.Name, "User name")
	if err != nil {
		return state.User{}, err
	}

	id, _ := s.state.NextID(state.KindUser)
	user = state.User{
		ID:        id,
		Name:      name,
		Email:     optionalText(params.Email),
		Phone:     optionalText(params.Phone),
		CreatedAt: s.timestamp(),
	}
	s.state.Users = append(s.state.Users, user)
	return user, nil
}

// ListUsers returns every known user in creation order.
func (s *Service) ListUsers(ctx context.Context) ([]state.User, error) {
	users := make([]state.User, len(s.state.Users))
	copy(users, s.state.Users)
	serviceLogger(ctx, s.logger, serviceName, "ListUsers").DebugContext(ctx, "users listed", "result_count", len(users))
	return users, nil
}

// InviteMember adds a user to the club. Inviting an existing member returns
// the existing membership unchanged.
func (s *Service) InviteMember(ctx context.Context, params InviteMemberParams) (membership state.Membership, err error) {
	logger := serviceLogger(ctx, s.logger, serviceName, "InviteMember",
		"actor_user_id", params.ActorUserID,
		"user_id", params.UserID,
	)
	defer func() {
		s.logOutcome(ctx, logger, "InviteMember", err, "member invited", "membership_id", membership.ID)
	}()

	club, err := s.requireClub()
	if err != nil {
		return state.Membership{}, err
	}
	if _, err = s.requireUser(params.ActorUserID); err != nil {
		return state.Membership{}, err
	}
	if _, err = s.requireUser(params.UserID); err != nil {
		return state.Membership{}, err
	}
	if err = s.requireCanInvite(club, params.ActorUserID); err != nil {
		return state.Membership{}, err
	}

	roleValue := params.Role
	if roleValue == "" {
		roleValue = string(state.RoleMember)
	}
	role, err := parseRole(roleValue)
	if err != nil {
		return state.Membership{}, err
	}
	if role == state.RoleHost {
		return state.Membership{}, invalid("role", "Use host transfer to assign host role.")
	}

	if existing := s.findMembership(club.ID, params.UserID); existing != nil {
		return *existing, nil
	}

	id, _ := s.state.NextID(state.KindMembership)
	membership = state.Membership{
		ID:       id,
		ClubID:   club.ID,
		UserID:   params.UserID,
		Role:     role,
		JoinedAt: s.timestamp(),
	}
	upcoming := s.upcomingMeetup(club.ID)
	if upcoming != nil {
		from := upcoming.ID
		membership.CookbookAccessFrom = &from
	}
	s.state.Memberships = append(s.state.Memberships, membership)

	if upcoming != nil && upcoming.ScheduledFor != nil {
		s.scheduleMeetupReminders(club, upcoming, []string{params.UserID})
	}
	return membership, nil
}

// ListMembers returns memberships joined with their users.
func (s *Service) ListMembers(ctx context.Context) (members []MemberView, err error) {
	logger := serviceLogger(ctx, s.logger, serviceName, "ListMembers")
	defer func() {
		s.logOutcome(ctx, logger, "ListMembers", err, "members listed", "result_count", len(members))
	}()

	club, err := s.requireClub()
	if err != nil {
		return nil, err
	}
	members = make([]MemberView, 0)
	for _, m := range s.state.Memberships {
		if m.ClubID != club.ID {
			continue
		}
		user, uErr := s.requireUser(m.UserID)
		if uErr != nil {
			return nil, uErr
		}
		members = append(members, MemberView{Membership: m, User: *user})
	}
	return members, nil
}

// SetRole changes a non-host member's role.
func (s *Service) SetRole(ctx context.Context, params SetRoleParams) (membership state.Membership, err error) {
	logger := serviceLogger(ctx, s.logger, serviceName, "SetRole",
		"actor_user_id", params.ActorUserID,
		"user_id", params.UserID,
	)
	defer func() {
		s.logOutcome(ctx, logger, "SetRole", err, "member role updated", "role", membership.Role)
	}()

	club, err := s.requireClub()
	if err != nil {
		return state.Membership{}, err
	}
	role, err := parseRole(params.Role)
	if err != nil {
		return state.Membership{}, err
	}
	if role == state.RoleHost {
		return state.Membership{}, invalid("role", "Use host transfer to assign host role.")
	}
	if club.HostUserID == params.UserID {
		return state.Membership{}, precondition("Use host transfer before changing the current host role.")
	}
	if actorRole, ok := s.roleOf(club, params.ActorUserID); !ok || !canAssignRoles(actorRole) {
		return state.Membership{}, unauthorized("Only host/admin can set member roles.")
	}

	target, err := s.requireMember(club, params.UserID)
	if err != nil {
		return state.Membership{}, err
	}
	target.Role = role
	return *target, nil
}

// SetHost transfers the host role and re-points the upcoming meetup.
func (s *Service) SetHost(ctx context.Context, params SetHostParams) (club state.Club, err error) {
	logger := serviceLogger(ctx, s.logger, serviceName, "SetHost",
		"actor_user_id", params.ActorUserID,
		"new_host_user_id", params.NewHostUserID,
	)
	defer func() {
		s.logOutcome(ctx, logger, "SetHost", err, "host transferred")
	}()

	current, err := s.requireClub()
	if err != nil {
		return state.Club{}, err
	}
	if err = s.requireHost(current, params.ActorUserID); err != nil {
		return state.Club{}, err
	}
	newHost, err := s.requireMember(current, params.NewHostUserID)
	if err != nil {
		return state.Club{}, err
	}
	oldHost, err := s.requireMember(current, current.HostUserID)
	if err != nil {
		return state.Club{}, err
	}

	oldHost.Role = state.RoleMember
	newHost.Role = state.RoleHost
	current.HostUserID = params.NewHostUserID
	if upcoming := s.upcomingMeetup(current.ID); upcoming != nil {
		upcoming.HostUserID = params.NewHostUserID
	}
	return *current, nil
}

// ShowHost returns the current host with their membership.
func (s *Service) ShowHost(ctx context.Context) (HostView, error) {
	club, err := s.requireClub()
	if err != nil {
		return HostView{}, err
	}
	host, err := s.requireUser(club.HostUserID)
	if err != nil {
		return HostView{}, err
	}
	view := HostView{Host: *host}
	if m := s.findMembership(club.ID, host.ID); m != nil {
		view.Membership = *m
	}
	return view, nil
}

// SetPolicy switches the club between open and closed invitations.
func (s *Service) SetPolicy(ctx context.Context, params SetPolicyParams) (club state.Club, err error) {
	logger := serviceLogger(ctx, s.logger, serviceName, "SetPolicy", "actor_user_id", params.ActorUserID)
	defer func() {
		s.logOutcome(ctx, logger, "SetPolicy", err, "membership policy updated", "policy", club.MembershipPolicy)
	}()

	policy, err := parsePolicy(params.Policy)
	if err != nil {
		return state.Club{}, err
	}
	current, err := s.requireClub()
	if err != nil {
		return state.Club{}, err
	}
	if err = s.requireHost(current, params.ActorUserID); err != nil {
		return state.Club{}, err
	}
	current.MembershipPolicy = policy
	return *current, nil
}

// ShowClub returns the club with its host and upcoming meetup.
func (s *Service) ShowClub(ctx context.Context) (ClubOverview, error) {
	club, err := s.requireClub()
	if err != nil {
		return ClubOverview{}, err
	}
	host, err := s.requireUser(club.HostUserID)
	if err != nil {
		return ClubOverview{}, err
	}
	overview := ClubOverview{Club: *club, Host: *host}
	if upcoming := s.upcomingMeetup(club.ID); upcoming != nil {
		m := *upcoming
		overview.Upcoming = &m
	}
	return overview, nil
}

// Initialized reports whether a club exists.
func (s *Service) Initialized() bool {
	return s.club() != nil
}
