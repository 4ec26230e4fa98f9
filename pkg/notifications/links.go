package notifications

import (
	"net/url"
	"strings"
)

// Links builds absolute, locale-free URLs for notification actions. Paths
// never carry tokens so a link keeps working outside the session that
// produced it.
type Links struct {
	BaseURL string
}

// NewLinks trims a trailing slash from base.
func NewLinks(base string) Links {
	return Links{BaseURL: strings.TrimRight(strings.TrimSpace(base), "/")}
}

func (l Links) path(segments ...string) string {
	var b strings.Builder
	b.WriteString(l.BaseURL)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	if len(segments) == 0 {
		b.WriteByte('/')
	}
	return b.String()
}

func (l Links) Home() string                     { return l.path() }
func (l Links) Event(slug string) string         { return l.path("events", slug) }
func (l Links) EventFeedback(slug string) string { return l.path("events", slug, "feedback") }
func (l Links) EventComments(slug string) string { return l.Event(slug) + "#comments" }
func (l Links) Tribe(slug string) string         { return l.path("tribes", slug) }
func (l Links) TribeMembers(slug string) string  { return l.path("tribes", slug, "members") }
func (l Links) Tribes() string                   { return l.path("tribes") }
func (l Links) Moment(id string) string          { return l.path("moments", id) }
func (l Links) Profile(username string) string   { return l.path("u", username) }
func (l Links) Inbox() string                    { return l.path("notifications") }
func (l Links) Settings() string                 { return l.path("settings", "notifications") }
func (l Links) SignUp() string                   { return l.path("signup") }
