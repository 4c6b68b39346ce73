// Package http exposes the cookbook club over a small JSON API.
//
// The router serves:
//   - GET /health: liveness probe, {"ok":true}.
//   - GET /metrics: Prometheus exposition when a metrics handler is configured.
//   - GET /api/status: storage details plus club, host, upcoming meetup and
//     counts; {"initialized":false,...} before the club exists.
//   - GET /api/club, POST /api/club/init: club overview and founding.
//   - GET /api/users, POST /api/users: people known to the club.
//   - GET /api/members, POST /api/members/invite: memberships.
//   - GET /api/meetup, GET /api/meetups, POST /api/meetup/schedule,
//     POST /api/meetup/theme, POST /api/meetup/advance: meetup lifecycle.
//   - GET /api/recipes?actorUserId=&meetupId=, POST /api/recipes,
//     POST /api/recipes/{id}/favorite: cookbook entries.
//   - GET /api/notifications?now=&userId=, POST /api/notifications/run:
//     pending preview and delivery.
//
// Failures are reported as {"error","error_code","errors"}. Request DTOs live
// next to the handlers that decode them.
package http
