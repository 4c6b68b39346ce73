package cli

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/bjax13/CookbookClub/internal/application"
	"github.com/bjax13/CookbookClub/internal/datastore"
	"github.com/bjax13/CookbookClub/internal/reminder"
)

type commandEnv struct {
	inv       invocation
	handle    *datastore.Handle
	workspace *application.Workspace
	now       func() time.Time
	logger    *slog.Logger
}

type serviceFunc func(ctx context.Context, env *commandEnv, svc *application.Service) (any, error)

// command runs either against the service (read-only or mutating) or, when
// stateless, directly against the opened datastore.
type command struct {
	mutating  bool
	stateless bool
	service   serviceFunc
	direct    func(ctx context.Context, env *commandEnv) (any, error)
}

func view(fn serviceFunc) command   { return command{service: fn} }
func mutate(fn serviceFunc) command { return command{service: fn, mutating: true} }

func (c command) execute(ctx context.Context, env *commandEnv) (any, error) {
	if c.direct != nil {
		return c.direct(ctx, env)
	}
	var output any
	run := func(svc *application.Service) error {
		var err error
		output, err = c.service(ctx, env, svc)
		return err
	}
	var err error
	if c.mutating {
		err = env.workspace.Update(ctx, run)
	} else {
		err = env.workspace.View(ctx, run)
	}
	return output, err
}

// listOf keeps empty results as [] rather than null.
func listOf[T any](items []T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

var clubCommands = map[string]command{
	"club:init": mutate(func(ctx context.Context, env *commandEnv, svc *application.Service) (any, error) {
		name, err := env.inv.required("name")
		if err != nil {
			return nil, err
		}
		hostName, err := env.inv.required("host-name")
		if err != nil {
			return nil, err
		}
		return svc.InitClub(ctx, application.InitClubParams{
			ClubName:  name,
			HostName:  hostName,
			HostEmail: env.inv.optionalPtr("host-email"),
			HostPhone: env.inv.optionalPtr("host-phone"),
		})
	}),
	"club:show": view(func(ctx context.Context, env *commandEnv, svc *application.Service) (any, error) {
		overview, err := svc.ShowClub(ctx)
		if err != nil {
			return nil, err
		}
		return formatClub(overview), nil
	}),
	"club:set-policy": mutate(func(ctx context.Context, env *commandEnv, svc *application.Service) (any, error) {
		actor, err := env.inv.required("actor")
		if err != nil {
			return nil, err
		}
		policy, err := env.inv.required("policy")
		if err != nil {
			return nil, err
		}
		return svc.SetPolicy(ctx, application.SetPolicyParams{ActorUserID: actor, Policy: policy})
	}),
	"club:set-reminders": mutate(func(ctx context.Context, env *commandEnv, svc *application.Service) (any, error) {
		actor, err := env.inv.required("actor")
		if err != nil {
			return nil, err
		}
		var in reminder.Input
		if windows := env.inv.optional("windows"); windows != "" {
			if in.MeetupWindowHours, err = parseHoursList(windows); err != nil {
				return nil, err
			}
		}
		if in.RecipePromptHours, err = env.inv.optionalHours("recipe-prompt-hours"); err != nil {
			return nil, err
		}
		return svc.SetReminderPolicy(ctx, application.SetReminderPolicyParams{ActorUserID: actor, Policy: in})
	}),
	"club:reminder-templates": view(func(ctx context.Context, env *commandEnv, svc *application.Service) (any, error) {
		return listOf(svc.ListReminderTemplates(ctx))
	}),
	"club:set-reminder-template": mutate(func(ctx context.Context, env *commandEnv, svc *application.Service) (any, error) {
		actor, err := env.inv.required("actor")
		if err != nil {
			return nil, err
		}
		name, err := env.inv.required("template")
		if err != nil {
			return nil, err
		}
		return svc.ApplyReminderTemplate(ctx, application.ApplyReminderTemplateParams{ActorUserID: actor, TemplateName: name})
	}),
	"club:add-reminder-template": mutate(func(ctx context.Context, env *commandEnv, svc *application.Service) (any, error) {
		actor, err := env.inv.required("actor")
		if err != nil {
			return nil, err
		}
		name, err := env.inv.required("name")
		if err != nil {
			return nil, err
		}
		windows, err := env.inv.required("windows")
		if err != nil {
			return nil, err
		}
		var in reminder.Input
		if in.MeetupWindowHours, err = parseHoursList(windows); err != nil {
			return nil, err
		}
		if in.RecipePromptHours, err = env.inv.optionalHours("recipe-prompt-hours"); err != nil {
			return nil, err
		}
		return svc.AddReminderTemplate(ctx, application.AddReminderTemplateParams{ActorUserID: actor, Name: name, Policy: in})
	}),
	"club:remove-reminder-template": mutate(func(ctx context.Context, env *commandEnv, svc *application.Service) (any, error) {
		actor, err := env.inv.required("actor")
		if err != nil {
			return nil, err
		}
		name, err := env.inv.required("name")
		if err != nil {
			return nil, err
		}
		return svc.RemoveReminderTemplate(ctx, application.RemoveReminderTemplateParams{ActorUserID: actor, Name: name})
	}),
	"club:export-reminder-templates": view(exportTemplates),
	"club:import-reminder-templates": mutate(importTemplates),
	"user:add": mutate(func(ctx context.Context, env *commandEnv, svc *application.Service) (any, error) {
		name, err := env.inv.required("name")
		if err != nil {
			return nil, err
		}
		return svc.CreateUser(ctx, application.CreateUserParams{
			Name:  name,
			Email: env.inv.optionalPtr("email"),
			Phone: env.inv.optionalPtr("phone"),
		})
	}),
	"user:list": view(func(ctx context.Context, env *commandEnv, svc *application.Service) (any, error) {
		return listOf(svc.ListUsers(ctx))
	}),
	"member:invite": mutate(func(ctx context.Context, env *commandEnv, svc *application.Service) (any, error) {
		actor, err := env.inv.required("actor")
		if err != nil {
			return nil, err
		}
		user, err := env.inv.required("user")
		if err != nil {
			return nil, err
		}
		return svc.InviteMember(ctx, application.InviteMemberParams{ActorUserID: actor, UserID: user, Role: env.inv.optional("role")})
	}),
	"member:list": view(func(ctx context.Context, env *commandEnv, svc *application.Service) (any, error) {
		return listOf(svc.ListMembers(ctx))
	}),
	"member:set-role": mutate(func(ctx context.Context, env *commandEnv, svc *application.Service) (any, error) {
		actor, err := env.inv.required("actor")
		if err != nil {
			return nil, err
		}
		user, err := env.inv.required("user")
		if err != nil {
			return nil, err
		}
		role, err := env.inv.required("role")
		if err != nil {
			return nil, err
		}
		return svc.SetRole(ctx, application.SetRoleParams{ActorUserID: actor, UserID: user, Role: role})
	}),
	"host:show": view(func(ctx context.Context, env *commandEnv, svc *application.Service) (any, error) {
		return svc.ShowHost(ctx)
	}),
	"host:set": mutate(func(ctx context.Context, env *commandEnv, svc *application.Service) (any, error) {
		actor, err := env.inv.required("actor")
		if err != nil {
			return nil, err
		}
		user, err := env.inv.required("user")
		if err != nil {
			return nil, err
		}
		return svc.SetHost(ctx, application.SetHostParams{ActorUserID: actor, NewHostUserID: user})
	}),
	"meetup:show": view(func(ctx context.Context, env *commandEnv, svc *application.Service) (any, error) {
		if id := env.inv.optional("id"); id != "" {
			return svc.GetMeetup(ctx, id)
		}
		return svc.UpcomingMeetup(ctx)
	}),
	"meetup:list": view(func(ctx context.Context, env *commandEnv, svc *application.Service) (any, error) {
		return listOf(svc.ListMeetups(ctx))
	}),
	"meetup:schedule": mutate(func(ctx context.Context, env *commandEnv, svc *application.Service) (any, error) {
		actor, err := env.inv.required("actor")
		if err != nil {
			return nil, err
		}
		at, err := env.inv.required("at")
		if err != nil {
			return nil, err
		}
		return svc.ScheduleUpcomingMeetup(ctx, application.ScheduleMeetupParams{ActorUserID: actor, ScheduledFor: at})
	}),
	"meetup:set-theme": mutate(func(ctx context.Context, env *commandEnv, svc *application.Service) (any, error) {
		actor, err := env.inv.required("actor")
		if err != nil {
			return nil, err
		}
		theme, err := env.inv.required("theme")
		if err != nil {
			return nil, err
		}
		return svc.SetMeetupTheme(ctx, application.SetThemeParams{ActorUserID: actor, Theme: theme})
	}),
	"meetup:advance": mutate(func(ctx context.Context, env *commandEnv, svc *application.Service) (any, error) {
		actor, err := env.inv.required("actor")
		if err != nil {
			return nil, err
		}
		return svc.AdvanceMeetup(ctx, actor)
	}),
	"recipe:add": mutate(func(ctx context.Context, env *commandEnv, svc *application.Service) (any, error) {
		actor, err := env.inv.required("actor")
		if err != nil {
			return nil, err
		}
		title, err := env.inv.required("title")
		if err != nil {
			return nil, err
		}
		content, err := env.inv.required("content")
		if err != nil {
			return nil, err
		}
		image, err := env.inv.required("image")
		if err != nil {
			return nil, err
		}
		if image, err = filepath.Abs(image); err != nil {
			return nil, err
		}
		return svc.AddRecipe(ctx, application.AddRecipeParams{ActorUserID: actor, Title: title, Content: content, ImagePath: image})
	}),
	"recipe:list": view(func(ctx context.Context, env *commandEnv, svc *application.Service) (any, error) {
		actor, err := env.inv.required("actor")
		if err != nil {
			return nil, err
		}
		return listOf(svc.ListMeetupRecipes(ctx, application.ListRecipesParams{ActorUserID: actor, MeetupID: env.inv.optional("meetup")}))
	}),
	"recipe:favorite": mutate(func(ctx context.Context, env *commandEnv, svc *application.Service) (any, error) {
		actor, err := env.inv.required("actor")
		if err != nil {
			return nil, err
		}
		recipe, err := env.inv.required("recipe")
		if err != nil {
			return nil, err
		}
		return svc.FavoriteRecipe(ctx, application.FavoriteRecipeParams{ActorUserID: actor, RecipeID: recipe})
	}),
	"cookbook:personal-add": mutate(func(ctx context.Context, env *commandEnv, svc *application.Service) (any, error) {
		actor, err := env.inv.required("actor")
		if err != nil {
			return nil, err
		}
		recipe, err := env.inv.required("recipe")
		if err != nil {
			return nil, err
		}
		collection, err := env.inv.required("collection")
		if err != nil {
			return nil, err
		}
		return svc.AddFavoriteToCollection(ctx, application.AddToCollectionParams{ActorUserID: actor, RecipeID: recipe, CollectionName: collection})
	}),
	"cookbook:personal-list": view(func(ctx context.Context, env *commandEnv, svc *application.Service) (any, error) {
		actor, err := env.inv.required("actor")
		if err != nil {
			return nil, err
		}
		return listOf(svc.ListPersonalCollections(ctx, actor))
	}),
	"access:grant-past": mutate(func(ctx context.Context, env *commandEnv, svc *application.Service) (any, error) {
		actor, err := env.inv.required("actor")
		if err != nil {
			return nil, err
		}
		user, err := env.inv.required("user")
		if err != nil {
			return nil, err
		}
		return listOf(svc.GrantPastCookbookAccess(ctx, application.GrantAccessParams{
			ActorUserID:  actor,
			TargetUserID: user,
			FromMeetupID: env.inv.optional("from-meetup"),
			All:          env.inv.flag("all"),
		}))
	}),
	"notify:list": view(func(ctx context.Context, env *commandEnv, svc *application.Service) (any, error) {
		return listOf(svc.ListPendingNotifications(ctx, application.ListNotificationsParams{At: env.inv.optional("now"), UserID: env.inv.optional("user")}))
	}),
	"notify:run": mutate(func(ctx context.Context, env *commandEnv, svc *application.Service) (any, error) {
		return listOf(svc.RunNotifications(ctx, application.RunNotificationsParams{At: env.inv.optional("now")}))
	}),
}

type clubView struct {
	Club struct {
		ID               string          `json:"id"`
		Name             string          `json:"name"`
		MembershipPolicy string          `json:"membershipPolicy"`
		ReminderPolicy   reminder.Policy `json:"reminderPolicy"`
	} `json:"club"`
	Host struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"host"`
	UpcomingMeetup any `json:"upcomingMeetup"`
}

func formatClub(overview application.ClubOverview) clubView {
	var v clubView
	v.Club.ID = overview.Club.ID
	v.Club.Name = overview.Club.Name
	v.Club.MembershipPolicy = string(overview.Club.MembershipPolicy)
	v.Club.ReminderPolicy = overview.Club.ReminderPolicy
	v.Host.ID = overview.Host.ID
	v.Host.Name = overview.Host.Name
	if overview.Upcoming != nil {
		v.UpcomingMeetup = overview.Upcoming
	}
	return v
}
