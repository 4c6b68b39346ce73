package application

import (
	"context"
	"strings"

	"github.com/bjax13/CookbookClub/internal/reminder"
)

const invalidTemplateName = "Invalid template name. Use 2-40 chars: lowercase letters, numbers, underscore."

// SetReminderPolicy replaces the club's active reminder policy. Missing fields
// fall back to defaults rather than keeping the previous values.
func (s *Service) SetReminderPolicy(ctx context.Context, params SetReminderPolicyParams) (policy reminder.Policy, err error) {
	logger := serviceLogger(ctx, s.logger, serviceName, "SetReminderPolicy", "actor_user_id", params.ActorUserID)
	defer func() {
		s.logOutcome(ctx, logger, "SetReminderPolicy", err, "reminder policy updated", "window_count", len(policy.MeetupWindowHours))
	}()

	club, err := s.requireClub()
	if err != nil {
		return reminder.Policy{}, err
	}
	if err = s.requireHost(club, params.ActorUserID); err != nil {
		return reminder.Policy{}, err
	}
	club.ReminderPolicy = reminder.Normalize(params.Policy)
	return club.ReminderPolicy.Clone(), nil
}

// ListReminderTemplates returns built-in templates followed by custom ones.
func (s *Service) ListReminderTemplates(ctx context.Context) ([]reminder.Template, error) {
	club, err := s.requireClub()
	if err != nil {
		return nil, err
	}
	return reminder.List(club.ReminderTemplates), nil
}

// AddReminderTemplate creates or replaces a custom template.
func (s *Service) AddReminderTemplate(ctx context.Context, params AddReminderTemplateParams) (tmpl reminder.Template, err error) {
	logger := serviceLogger(ctx, s.logger, serviceName, "AddReminderTemplate",
		"actor_user_id", params.ActorUserID,
		"template", params.Name,
	)
	defer func() {
		s.logOutcome(ctx, logger, "AddReminderTemplate", err, "reminder template saved")
	}()

	club, err := s.requireClub()
	if err != nil {
		return reminder.Template{}, err
	}
	if err = s.requireHost(club, params.ActorUserID); err != nil {
		return reminder.Template{}, err
	}
	if !reminder.ValidTemplateName(params.Name) {
		return reminder.Template{}, invalid("name", invalidTemplateName)
	}
	if reminder.IsBuiltin(params.Name) {
		return reminder.Template{}, conflict("Cannot overwrite built-in reminder template.")
	}

	policy := reminder.Normalize(params.Policy)
	if club.ReminderTemplates == nil {
		club.ReminderTemplates = map[string]reminder.Policy{}
	}
	club.ReminderTemplates[params.Name] = policy
	return reminder.Template{Name: params.Name, Source: reminder.SourceCustom, Policy: policy.Clone()}, nil
}

// RemoveReminderTemplate deletes a custom template.
func (s *Service) RemoveReminderTemplate(ctx context.Context, params RemoveReminderTemplateParams) (removed RemovedTemplate, err error) {
	logger := serviceLogger(ctx, s.logger, serviceName, "RemoveReminderTemplate",
		"actor_user_id", params.ActorUserID,
		"template", params.Name,
	)
	defer func() {
		s.logOutcome(ctx, logger, "RemoveReminderTemplate", err, "reminder template removed")
	}()

	club, err := s.requireClub()
	if err != nil {
		return RemovedTemplate{}, err
	}
	if err = s.requireHost(club, params.ActorUserID); err != nil {
		return RemovedTemplate{}, err
	}
	if _, ok := club.ReminderTemplates[params.Name]; !ok {
		return RemovedTemplate{}, notFound("Unknown custom reminder template: %s", params.Name)
	}
	delete(club.ReminderTemplates, params.Name)
	return RemovedTemplate{Removed: params.Name}, nil
}

// ApplyReminderTemplate makes a template the active policy. Custom templates
// shadow built-ins of the same name.
func (s *Service) ApplyReminderTemplate(ctx context.Context, params ApplyReminderTemplateParams) (applied AppliedTemplate, err error) {
	logger := serviceLogger(ctx, s.logger, serviceName, "ApplyReminderTemplate",
		"actor_user_id", params.ActorUserID,
		"template", params.TemplateName,
	)
	defer func() {
		s.logOutcome(ctx, logger, "ApplyReminderTemplate", err, "reminder template applied", "source", applied.Source)
	}()

	club, err := s.requireClub()
	if err != nil {
		return AppliedTemplate{}, err
	}
	if err = s.requireHost(club, params.ActorUserID); err != nil {
		return AppliedTemplate{}, err
	}
	tmpl, ok := reminder.Resolve(club.ReminderTemplates, params.TemplateName)
	if !ok {
		return AppliedTemplate{}, notFound("Unknown reminder template: %s", params.TemplateName)
	}
	club.ReminderPolicy = reminder.Normalize(tmpl.Policy.Input())
	return AppliedTemplate{Template: tmpl.Name, Source: tmpl.Source, Policy: club.ReminderPolicy.Clone()}, nil
}

// ExportReminderTemplates returns the normalised custom template map.
func (s *Service) ExportReminderTemplates(ctx context.Context) (map[string]reminder.Policy, error) {
	club, err := s.requireClub()
	if err != nil {
		return nil, err
	}
	return reminder.Sanitize(club.ReminderTemplates), nil
}

// ImportReminderTemplates merges a template map into the club's custom
// templates.
func (s *Service) ImportReminderTemplates(ctx context.Context, params ImportReminderTemplatesParams) (result reminder.ImportResult, err error) {
	logger := serviceLogger(ctx, s.logger, serviceName, "ImportReminderTemplates",
		"actor_user_id", params.ActorUserID,
		"overwrite", params.Overwrite,
	)
	defer func() {
		s.logOutcome(ctx, logger, "ImportReminderTemplates", err, "reminder templates imported",
			"imported_count", len(result.Imported),
			"skipped_count", len(result.Skipped),
		)
	}()

	club, err := s.requireClub()
	if err != nil {
		return reminder.ImportResult{}, err
	}
	if err = s.requireHost(club, params.ActorUserID); err != nil {
		return reminder.ImportResult{}, err
	}
	if params.Templates == nil {
		return reminder.ImportResult{}, invalid("templates", "Invalid template payload. Expected an object keyed by template name.")
	}
	prefix := strings.TrimSpace(params.Prefix)
	if prefix != "" && !reminder.ValidPrefix(prefix) {
		return reminder.ImportResult{}, invalid("prefix", "Invalid template prefix. Use 1-20 chars: lowercase letters, numbers, underscore.")
	}

	if club.ReminderTemplates == nil {
		club.ReminderTemplates = map[string]reminder.Policy{}
	}
	return reminder.Merge(club.ReminderTemplates, params.Templates, prefix, params.Overwrite), nil
}
