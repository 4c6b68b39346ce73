package state

import (
	"time"

	"github.com/bjax13/CookbookClub/internal/reminder"
)

// Clone returns a deep copy that shares no mutable memory with s.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := &Snapshot{
		Version:              s.Version,
		Clubs:                make([]Club, len(s.Clubs)),
		Users:                make([]User, len(s.Users)),
		Memberships:          make([]Membership, len(s.Memberships)),
		Meetups:              make([]Meetup, len(s.Meetups)),
		Recipes:              append([]Recipe{}, s.Recipes...),
		Favorites:            append([]Favorite{}, s.Favorites...),
		PersonalCollections:  append([]PersonalCollection{}, s.PersonalCollections...),
		CollectionItems:      append([]CollectionItem{}, s.CollectionItems...),
		CookbookAccessGrants: append([]CookbookAccessGrant{}, s.CookbookAccessGrants...),
		Notifications:        make([]Notification, len(s.Notifications)),
		Counters:             make(map[string]int64, len(s.Counters)),
	}
	for i, club := range s.Clubs {
		club.ReminderPolicy = club.ReminderPolicy.Clone()
		club.ReminderTemplates = reminder.CloneTemplates(club.ReminderTemplates)
		c.Clubs[i] = club
	}
	for i, user := range s.Users {
		user.Email = cloneString(user.Email)
		user.Phone = cloneString(user.Phone)
		c.Users[i] = user
	}
	for i, membership := range s.Memberships {
		membership.CookbookAccessFrom = cloneString(membership.CookbookAccessFrom)
		c.Memberships[i] = membership
	}
	for i, meetup := range s.Meetups {
		meetup.ScheduledFor = cloneTime(meetup.ScheduledFor)
		c.Meetups[i] = meetup
	}
	for i, n := range s.Notifications {
		n.Key = cloneString(n.Key)
		n.DueAt = cloneTime(n.DueAt)
		n.DeliveredAt = cloneTime(n.DeliveredAt)
		c.Notifications[i] = n
	}
	for k, v := range s.Counters {
		c.Counters[k] = v
	}
	return c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
