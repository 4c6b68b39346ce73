package application

import (
	"context"

	"github.com/bjax13/CookbookClub/internal/state"
)

// canViewCookbook applies forward-only visibility: members see meetups from
// their cookbookAccessFrom onwards, plus any meetup they hold a grant for.
func (s *Service) canViewCookbook(club *state.Club, userID, meetupID string) (bool, error) {
	membership, err := s.requireMember(club, userID)
	if err != nil {
		return false, err
	}
	meetup := s.findMeetup(meetupID)
	if meetup == nil {
		return false, notFound("Unknown meetup: %s", meetupID)
	}
	if membership.CookbookAccessFrom == nil {
		return true, nil
	}
	if s.meetupSeq(meetup.ID) >= s.meetupSeq(*membership.CookbookAccessFrom) {
		return true, nil
	}
	return s.hasGrant(userID, meetupID), nil
}

// CanViewMeetupCookbook reports whether userID may read the recipes of
// meetupID. Non-members and unknown meetups are errors, not false.
func (s *Service) CanViewMeetupCookbook(ctx context.Context, userID, meetupID string) (bool, error) {
	club, err := s.requireClub()
	if err != nil {
		return false, err
	}
	return s.canViewCookbook(club, userID, meetupID)
}

func (s *Service) hasGrant(userID, meetupID string) bool {
	for _, g := range s.state.CookbookAccessGrants {
		if g.UserID == userID && g.MeetupID == meetupID {
			return true
		}
	}
	return false
}

// GrantPastCookbookAccess lets a member view cookbooks of meetups that closed
// before they joined. Only newly created grants are returned.
func (s *Service) GrantPastCookbookAccess(ctx context.Context, params GrantAccessParams) (grants []state.CookbookAccessGrant, err error) {
	logger := serviceLogger(ctx, s.logger, serviceName, "GrantPastCookbookAccess",
		"actor_user_id", params.ActorUserID,
		"target_user_id", params.TargetUserID,
	)
	defer func() {
		s.logOutcome(ctx, logger, "GrantPastCookbookAccess", err, "cookbook access granted", "grant_count", len(grants))
	}()

	club, err := s.requireClub()
	if err != nil {
		return nil, err
	}
	if err = s.requirePrivileged(club, params.ActorUserID); err != nil {
		return nil, err
	}
	if _, err = s.requireMember(club, params.TargetUserID); err != nil {
		return nil, err
	}

	grants = make([]state.CookbookAccessGrant, 0)
	past := s.pastMeetups(club.ID)
	if len(past) == 0 {
		return grants, nil
	}

	var fromSeq int64
	if params.FromMeetupID != "" {
		found := false
		for _, m := range past {
			if m.ID == params.FromMeetupID {
				fromSeq, found = m.Seq, true
				break
			}
		}
		if !found {
			return nil, notFound("Unknown past meetup: %s", params.FromMeetupID)
		}
	}

	now := s.timestamp()
	for _, meetup := range past {
		if !params.All && params.FromMeetupID != "" && meetup.Seq < fromSeq {
			continue
		}
		if s.hasGrant(params.TargetUserID, meetup.ID) {
			continue
		}
		id, _ := s.state.NextID(state.KindAccessGrant)
		grant := state.CookbookAccessGrant{
			ID:              id,
			ClubID:          meetup.ClubID,
			UserID:          params.TargetUserID,
			MeetupID:        meetup.ID,
			GrantedByUserID: params.ActorUserID,
			CreatedAt:       now,
		}
		s.state.CookbookAccessGrants = append(s.state.CookbookAccessGrants, grant)
		grants = append(grants, grant)
	}
	return grants, nil
}
