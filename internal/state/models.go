package state

import (
	"time"

	"github.com/bjax13/CookbookClub/internal/reminder"
)

// Role is the authority level of a membership.
type Role string

const (
	RoleHost    Role = "host"
	RoleAdmin   Role = "admin"
	RoleCoAdmin Role = "co_admin"
	RoleMember  Role = "member"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleHost, RoleAdmin, RoleCoAdmin, RoleMember:
		return true
	default:
		return false
	}
}

// MembershipPolicy controls who may invite new members.
type MembershipPolicy string

const (
	PolicyOpen   MembershipPolicy = "open"
	PolicyClosed MembershipPolicy = "closed"
)

// Valid reports whether p is one of the known policies.
func (p MembershipPolicy) Valid() bool {
	return p == PolicyOpen || p == PolicyClosed
}

// MeetupStatus is the lifecycle stage of a meetup.
type MeetupStatus string

const (
	MeetupUpcoming MeetupStatus = "upcoming"
	MeetupPast     MeetupStatus = "past"
)

// NotificationType classifies queued notifications.
type NotificationType string

const (
	NotificationMeetupReminder NotificationType = "meetup_reminder"
	NotificationRecipePrompt   NotificationType = "recipe_prompt"
	NotificationMeetupUpdated  NotificationType = "meetup_updated"
)

// Club is the single club managed by a snapshot.
type Club struct {
	ID                string                     `json:"id"`
	Name              string                     `json:"name"`
	HostUserID        string                     `json:"hostUserId"`
	MembershipPolicy  MembershipPolicy           `json:"membershipPolicy"`
	ReminderPolicy    reminder.Policy            `json:"reminderPolicy"`
	ReminderTemplates map[string]reminder.Policy `json:"reminderTemplates"`
	CreatedAt         time.Time                  `json:"createdAt"`
}

// User is a person known to the system, member or not.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

// Membership links a user to the club with a role.
type Membership struct {
	ID                 string    `json:"id"`
	ClubID             string    `json:"clubId"`
	UserID             string    `json:"userId"`
	Role               Role      `json:"role"`
	JoinedAt           time.Time `json:"joinedAt"`
	CookbookAccessFrom *string   `json:"cookbookAccessFrom"`
}

// Meetup is one gathering. Seq is the meetup counter value at creation;
// snapshots written without it are back-filled from the ID suffix.
type Meetup struct {
	ID           string       `json:"id"`
	Seq          int64        `json:"seq"`
	ClubID       string       `json:"clubId"`
	HostUserID   string       `json:"hostUserId"`
	ScheduledFor *time.Time   `json:"scheduledFor"`
	Theme        string       `json:"theme"`
	Status       MeetupStatus `json:"status"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// Recipe is a dish submitted for a meetup.
type Recipe struct {
	ID           string    `json:"id"`
	ClubID       string    `json:"clubId"`
	MeetupID     string    `json:"meetupId"`
	AuthorUserID string    `json:"authorUserId"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	ImagePath    string    `json:"imagePath"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Favorite records that a user liked a recipe.
type Favorite struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	RecipeID  string    `json:"recipeId"`
	CreatedAt time.Time `json:"createdAt"`
}

// PersonalCollection is a user's private cookbook.
type PersonalCollection struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// CollectionItem places a recipe in a personal collection.
type CollectionItem struct {
	ID           string    `json:"id"`
	CollectionID string    `json:"collectionId"`
	RecipeID     string    `json:"recipeId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CookbookAccessGrant lets a user see the cookbook of one past meetup.
type CookbookAccessGrant struct {
	ID              string    `json:"id"`
	ClubID          string    `json:"clubId"`
	UserID          string    `json:"userId"`
	MeetupID        string    `json:"meetupId"`
	GrantedByUserID string    `json:"grantedByUserId"`
	CreatedAt       time.Time `json:"createdAt"`
}

// NotificationPayload is the user-facing content of a notification.
type NotificationPayload struct {
	MeetupID string `json:"meetupId"`
	Message  string `json:"message"`
}

// Notification is a queued or delivered message for one user.
type Notification struct {
	ID          string              `json:"id"`
	ClubID      string              `json:"clubId"`
	UserID      string              `json:"userId"`
	Type        NotificationType    `json:"type"`
	Key         *string             `json:"key"`
	Payload     NotificationPayload `json:"payload"`
	DueAt       *time.Time          `json:"dueAt"`
	CreatedAt   time.Time           `json:"createdAt"`
	DeliveredAt *time.Time          `json:"deliveredAt"`
}

// Pending reports whether the notification has not been delivered yet.
func (n Notification) Pending() bool {
	return n.DeliveredAt == nil
}
