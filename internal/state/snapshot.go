// Package state holds the aggregate snapshot of the club together with its
// monotonic identifier counters.
package state

import (
	"strconv"
	"strings"

	"github.com/bjax13/CookbookClub/internal/reminder"
)

// CurrentVersion is the snapshot format version written by this build.
const CurrentVersion = 1

// Kind names an entity family. Identifiers are "<kind>_<n>".
type Kind string

const (
	KindClub           Kind = "club"
	KindUser           Kind = "user"
	KindMembership     Kind = "membership"
	KindMeetup         Kind = "meetup"
	KindRecipe         Kind = "recipe"
	KindFavorite       Kind = "favorite"
	KindCollection     Kind = "collection"
	KindCollectionItem Kind = "collectionItem"
	KindAccessGrant    Kind = "accessGrant"
	KindNotification   Kind = "notification"
)

// Kinds lists every counter key in a stable order.
var Kinds = []Kind{
	KindClub, KindUser, KindMembership, KindMeetup, KindRecipe,
	KindFavorite, KindCollection, KindCollectionItem, KindAccessGrant, KindNotification,
}

// Snapshot is the complete persisted state.
type Snapshot struct {
	Version              int                   `json:"version"`
	Clubs                []Club                `json:"clubs" validate:"required"`
	Users                []User                `json:"users" validate:"required"`
	Memberships          []Membership          `json:"memberships" validate:"required"`
	Meetups              []Meetup              `json:"meetups" validate:"required"`
	Recipes              []Recipe              `json:"recipes" validate:"required"`
	Favorites            []Favorite            `json:"favorites" validate:"required"`
	PersonalCollections  []PersonalCollection  `json:"personalCollections" validate:"required"`
	CollectionItems      []CollectionItem      `json:"collectionItems" validate:"required"`
	CookbookAccessGrants []CookbookAccessGrant `json:"cookbookAccessGrants" validate:"required"`
	Notifications        []Notification        `json:"notifications" validate:"required"`
	Counters             map[string]int64      `json:"counters" validate:"required,dive,gte=0"`
}

// New returns an empty snapshot with zeroed counters.
func New() *Snapshot {
	s := &Snapshot{Version: CurrentVersion}
	s.Normalize()
	return s
}

// NextID increments the counter for kind and returns the new identifier with
// its sequence number.
func (s *Snapshot) NextID(kind Kind) (string, int64) {
	if s.Counters == nil {
		s.Counters = make(map[string]int64, len(Kinds))
	}
	next := s.Counters[string(kind)] + 1
	s.Counters[string(kind)] = next
	return string(kind) + "_" + strconv.FormatInt(next, 10), next
}

// Sequence parses the numeric suffix of an identifier. It returns 0 when the
// identifier does not end in "_<n>".
func Sequence(id string) int64 {
	idx := strings.LastIndexByte(id, '_')
	if idx < 0 || idx == len(id)-1 {
		return 0
	}
	n, err := strconv.ParseInt(id[idx+1:], 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Normalize fills missing collections, back-fills meetup sequence numbers,
// sanitises club reminder settings and raises counters so that no future
// identifier can collide with an existing one.
func (s *Snapshot) Normalize() {
	if s.Version == 0 {
		s.Version = CurrentVersion
	}
	if s.Clubs == nil {
		s.Clubs = []Club{}
	}
	if s.Users == nil {
		s.Users = []User{}
	}
	if s.Memberships == nil {
		s.Memberships = []Membership{}
	}
	if s.Meetups == nil {
		s.Meetups = []Meetup{}
	}
	if s.Recipes == nil {
		s.Recipes = []Recipe{}
	}
	if s.Favorites == nil {
		s.Favorites = []Favorite{}
	}
	if s.PersonalCollections == nil {
		s.PersonalCollections = []PersonalCollection{}
	}
	if s.CollectionItems == nil {
		s.CollectionItems = []CollectionItem{}
	}
	if s.CookbookAccessGrants == nil {
		s.CookbookAccessGrants = []CookbookAccessGrant{}
	}
	if s.Notifications == nil {
		s.Notifications = []Notification{}
	}
	if s.Counters == nil {
		s.Counters = make(map[string]int64, len(Kinds))
	}
	for _, kind := range Kinds {
		if _, ok := s.Counters[string(kind)]; !ok {
			s.Counters[string(kind)] = 0
		}
	}

	for i := range s.Clubs {
		club := &s.Clubs[i]
		club.ReminderPolicy = reminder.Normalize(club.ReminderPolicy.Input())
		club.ReminderTemplates = reminder.Sanitize(club.ReminderTemplates)
	}
	for i := range s.Meetups {
		if s.Meetups[i].Seq <= 0 {
			s.Meetups[i].Seq = Sequence(s.Meetups[i].ID)
		}
	}

	s.raiseCounters()
}

func (s *Snapshot) raiseCounters() {
	raise := func(kind Kind, id string) {
		if n := Sequence(id); n > s.Counters[string(kind)] {
			s.Counters[string(kind)] = n
		}
	}
	for _, v := range s.Clubs {
		raise(KindClub, v.ID)
	}
	for _, v := range s.Users {
		raise(KindUser, v.ID)
	}
	for _, v := range s.Memberships {
		raise(KindMembership, v.ID)
	}
	for _, v := range s.Meetups {
		raise(KindMeetup, v.ID)
	}
	for _, v := range s.Recipes {
		raise(KindRecipe, v.ID)
	}
	for _, v := range s.Favorites {
		raise(KindFavorite, v.ID)
	}
	for _, v := range s.PersonalCollections {
		raise(KindCollection, v.ID)
	}
	for _, v := range s.CollectionItems {
		raise(KindCollectionItem, v.ID)
	}
	for _, v := range s.CookbookAccessGrants {
		raise(KindAccessGrant, v.ID)
	}
	for _, v := range s.Notifications {
		raise(KindNotification, v.ID)
	}
}

// Counts summarises collection sizes for diagnostics.
type Counts struct {
	Clubs         int `json:"clubs"`
	Users         int `json:"users"`
	Meetups       int `json:"meetups"`
	Recipes       int `json:"recipes"`
	Notifications int `json:"notifications"`
}

// Counts returns the diagnostic collection sizes.
func (s *Snapshot) Counts() Counts {
	return Counts{
		Clubs:         len(s.Clubs),
		Users:         len(s.Users),
		Meetups:       len(s.Meetups),
		Recipes:       len(s.Recipes),
		Notifications: len(s.Notifications),
	}
}
