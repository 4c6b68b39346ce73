package application

import (
	"github.com/bjax13/CookbookClub/internal/reminder"
	"github.com/bjax13/CookbookClub/internal/state"
)

// InitClubParams captures the founding details of the club.
type InitClubParams struct {
	ClubName  string
	HostName  string
	HostEmail *string
	HostPhone *string
}

// InitClubResult is returned after the club is founded.
type InitClubResult struct {
	Club       state.Club       `json:"club"`
	Host       state.User       `json:"host"`
	Membership state.Membership `json:"membership"`
	Meetup     state.Meetup     `json:"meetup"`
}

// CreateUserParams captures a new person's details.
type CreateUserParams struct {
	Name  string
	Email *string
	Phone *string
}

// InviteMemberParams wraps the data required to add a member.
type InviteMemberParams struct {
	ActorUserID string
	UserID      string
	// Role defaults to member when empty.
	Role string
}

// SetRoleParams wraps the data required to change a member's role.
type SetRoleParams struct {
	ActorUserID string
	UserID      string
	Role        string
}

// SetHostParams wraps a host transfer.
type SetHostParams struct {
	ActorUserID   string
	NewHostUserID string
}

// SetPolicyParams wraps a membership policy change.
type SetPolicyParams struct {
	ActorUserID string
	Policy      string
}

// SetReminderPolicyParams wraps a reminder policy change.
type SetReminderPolicyParams struct {
	ActorUserID string
	Policy      reminder.Input
}

// AddReminderTemplateParams wraps the creation of a custom template.
type AddReminderTemplateParams struct {
	ActorUserID string
	Name        string
	Policy      reminder.Input
}

// RemoveReminderTemplateParams wraps the removal of a custom template.
type RemoveReminderTemplateParams struct {
	ActorUserID string
	Name        string
}

// ApplyReminderTemplateParams wraps activating a template.
type ApplyReminderTemplateParams struct {
	ActorUserID  string
	TemplateName string
}

// ImportReminderTemplatesParams wraps a bulk template import.
type ImportReminderTemplatesParams struct {
	ActorUserID string
	Templates   map[string]reminder.Input
	Overwrite   bool
	Prefix      string
}

// AppliedTemplate reports the template that became the active policy.
type AppliedTemplate struct {
	Template string          `json:"template"`
	Source   reminder.Source `json:"source"`
	Policy   reminder.Policy `json:"policy"`
}

// RemovedTemplate reports a deleted custom template.
type RemovedTemplate struct {
	Removed string `json:"removed"`
}

// ScheduleMeetupParams wraps scheduling of the upcoming meetup.
type ScheduleMeetupParams struct {
	ActorUserID  string
	ScheduledFor string
}

// SetThemeParams wraps a theme change on the upcoming meetup.
type SetThemeParams struct {
	ActorUserID string
	Theme       string
}

// AdvanceMeetupResult pairs the closed meetup with its successor.
type AdvanceMeetupResult struct {
	Past state.Meetup `json:"past"`
	Next state.Meetup `json:"next"`
}

// AddRecipeParams wraps a recipe submission for the upcoming meetup.
type AddRecipeParams struct {
	ActorUserID string
	Title       string
	Content     string
	ImagePath   string
}

// ListRecipesParams selects the meetup whose cookbook is listed. An empty
// MeetupID selects the upcoming meetup.
type ListRecipesParams struct {
	ActorUserID string
	MeetupID    string
}

// FavoriteRecipeParams wraps a favorite.
type FavoriteRecipeParams struct {
	ActorUserID string
	RecipeID    string
}

// AddToCollectionParams wraps adding a favorite to a named personal collection.
type AddToCollectionParams struct {
	ActorUserID    string
	RecipeID       string
	CollectionName string
}

// GrantAccessParams wraps a past cookbook access grant. With neither
// FromMeetupID nor All set, every past meetup is granted.
type GrantAccessParams struct {
	ActorUserID  string
	TargetUserID string
	FromMeetupID string
	All          bool
}

// RunNotificationsParams carries the delivery instant. Empty means now.
type RunNotificationsParams struct {
	At string
}

// ListNotificationsParams filters the pending preview.
type ListNotificationsParams struct {
	At     string
	UserID string
}

// MemberView is a membership joined with its user.
type MemberView struct {
	state.Membership
	User state.User `json:"user"`
}

// MeetupView is a meetup joined with its host.
type MeetupView struct {
	state.Meetup
	Host state.User `json:"host"`
}

// RecipeView is a recipe joined with its author.
type RecipeView struct {
	state.Recipe
	Author state.User `json:"author"`
}

// CollectionView is a personal collection with its recipes.
type CollectionView struct {
	state.PersonalCollection
	Recipes []state.Recipe `json:"recipes"`
}

// NotificationView is a notification joined with its recipient.
type NotificationView struct {
	state.Notification
	User state.User `json:"user"`
}

// ClubOverview summarises the club.
type ClubOverview struct {
	Club     state.Club    `json:"club"`
	Host     state.User    `json:"host"`
	Upcoming *state.Meetup `json:"upcoming"`
}

// HostView describes the current host.
type HostView struct {
	Host       state.User       `json:"host"`
	Membership state.Membership `json:"membership"`
}
