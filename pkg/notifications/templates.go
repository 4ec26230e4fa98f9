package notifications

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/tribehub/notify/pkg/email/templates"
	"github.com/tribehub/notify/pkg/i18n"
	"github.com/tribehub/notify/pkg/logger"
)

//go:embed translations/*.yaml
var translationsFS embed.FS

// SupportedLocales are the locales notification copy is maintained in.
var SupportedLocales = []string{"en", "fr", "nl"}

var localeMatcher = i18n.NewLocaleMatcher(i18n.DefaultLanguage, SupportedLocales...)

// SupportedLocale clamps any BCP 47 tag to a supported locale. Unsupported
// languages fall back to English.
func SupportedLocale(locale string) string {
	return localeMatcher.Match(locale)
}

// Renderer turns payloads into per-channel content. It holds no mutable
// state and is safe for concurrent use.
type Renderer struct {
	tr     *i18n.Translator
	links  Links
	logger *slog.Logger
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithRendererLogger sets the logger used for missing translation warnings.
func WithRendererLogger(l *slog.Logger) RendererOption {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRenderer loads the embedded translations.
func NewRenderer(links Links, opts ...RendererOption) (*Renderer, error) {
	r := &Renderer{links: links, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}

	tr, err := i18n.NewTranslator(
		context.Background(),
		i18n.NewFSAdapter(i18n.NewYAMLParser(), translationsFS, "translations"),
		i18n.WithDefaultLanguage(i18n.DefaultLanguage),
		i18n.WithLogger(r.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("load notification translations: %w", err)
	}
	r.tr = tr
	return r, nil
}

// MustRender is Render that panics on error.
func (r *Renderer) MustRender(p Payload) Rendered {
	out, err := r.Render(p)
	if err != nil {
		panic(err)
	}
	return out
}

// emailTemplate is the locale-resolved structure of an email before it is
// turned into HTML and text.
type emailTemplate struct {
	subject    string
	heading    string
	paragraphs []string
	quote      string
	action     *Action
	footer     string
}

// Render produces content for every channel in the payload's locale. A
// payload without a template yields ErrUnknownType.
func (r *Renderer) Render(p Payload) (Rendered, error) {
	if p == nil {
		return Rendered{}, fmt.Errorf("%w: nil payload", ErrUnknownType)
	}

	lang := SupportedLocale(p.Lang())
	ph := &phrases{tr: r.tr, lang: lang}
	l := r.links

	var (
		in   InAppContent
		mail *emailTemplate
	)

	switch v := p.(type) {
	case RSVPConfirmation:
		const k = "rsvp_confirmation."
		in.Title = ph.get(k+"title", "event", v.EventTitle)
		if v.EventDescription != "" {
			in.Body = ph.get(k+"body", "description", v.EventDescription)
		} else {
			in.Body = ph.get(k + "body_plain")
		}
		in.Action = ph.action("view_event", l.Event(v.EventSlug))

	case EventReminder24h:
		in = reminder(ph, "event_reminder_24h.", v.EventTitle, v.EventTime, v.VenueName)
		in.Action = ph.action("view_event", l.Event(v.EventSlug))

	case EventReminder2h:
		in = reminder(ph, "event_reminder_2h.", v.EventTitle, v.EventTime, v.VenueName)
		in.Action = ph.action("view_event", l.Event(v.EventSlug))

	case WaitlistPromoted:
		in.Title = ph.get("waitlist_promoted.title")
		in.Body = ph.get("waitlist_promoted.body", "event", v.EventTitle)
		in.Action = ph.action("view_event", l.Event(v.EventSlug))

	case WaitlistPosition:
		in.Title = ph.get("waitlist_position.title", "event", v.EventTitle)
		in.Body = ph.get("waitlist_position.body", "position", strconv.Itoa(v.Position))
		in.Action = ph.action("view_event", l.Event(v.EventSlug))

	case NewRSVP:
		in.Title = ph.get("new_rsvp.title", "event", v.EventTitle)
		in.Body = ph.get("new_rsvp.body", "name", v.AttendeeName)
		in.Action = ph.action("view_event", l.Event(v.EventSlug))

	case FeedbackRequest:
		const k = "feedback_request."
		in.Title = ph.get(k+"title", "event", v.EventTitle)
		in.Body = ph.get(k + "body")
		in.Action = ph.action("give_feedback", l.EventFeedback(v.EventSlug))
		mail = &emailTemplate{
			subject:    ph.get(k+"email_subject", "event", v.EventTitle),
			heading:    ph.get(k+"email_heading", "event", v.EventTitle),
			paragraphs: []string{ph.get(k + "email_body")},
			action:     in.Action,
			footer:     ph.get("email.footer_settings"),
		}

	case EventInvitation:
		const k = "event_invitation."
		in.Title = ph.get(k+"title", "inviter", v.InviterName)
		in.Body = ph.get(k+"body", "event", v.EventTitle, "date", v.EventDate)
		in.Action = ph.action("view_event", l.Event(v.EventSlug))
		mail = &emailTemplate{
			subject: ph.get(k+"email_subject", "inviter", v.InviterName, "event", v.EventTitle),
			heading: ph.get(k+"email_heading", "inviter", v.InviterName, "event", v.EventTitle),
			paragraphs: []string{
				ph.get(k+"email_when", "date", v.EventDate),
				ph.get(k + "email_body"),
			},
			quote:  v.EventDescription,
			action: in.Action,
			footer: ph.get("email.footer_invite", "inviter", v.InviterName),
		}

	case UserInvitation:
		const k = "user_invitation."
		in.Title = ph.get(k+"title", "inviter", v.InviterName)
		in.Body = ph.get(k + "body")
		in.Action = ph.action("join", l.SignUp())
		mail = &emailTemplate{
			subject:    ph.get(k+"email_subject", "inviter", v.InviterName),
			heading:    ph.get(k+"email_heading", "inviter", v.InviterName),
			paragraphs: []string{ph.get(k + "email_body")},
			quote:      v.Message,
			action:     in.Action,
			footer:     ph.get("email.footer_invite", "inviter", v.InviterName),
		}

	case TribeJoinRequest:
		in.Title = ph.get("tribe_join_request.title", "tribe", v.TribeName)
		in.Body = ph.get("tribe_join_request.body", "name", v.RequesterName, "tribe", v.TribeName)
		in.Action = ph.action("review_request", l.TribeMembers(v.TribeSlug))
		in.SecondaryAction = ph.action("view_tribe", l.Tribe(v.TribeSlug))

	case TribeApproved:
		in.Title = ph.get("tribe_approved.title", "tribe", v.TribeName)
		in.Body = ph.get("tribe_approved.body", "tribe", v.TribeName)
		in.Action = ph.action("view_tribe", l.Tribe(v.TribeSlug))

	case TribeRejected:
		in.Title = ph.get("tribe_rejected.title", "tribe", v.TribeName)
		in.Body = ph.get("tribe_rejected.body", "tribe", v.TribeName)
		in.Action = ph.action("explore_tribes", l.Tribes())

	case TribeNewEvent:
		in.Title = ph.get("tribe_new_event.title", "tribe", v.TribeName)
		in.Body = ph.get("tribe_new_event.body", "tribe", v.TribeName, "event", v.EventTitle)
		in.Action = ph.action("view_event", l.Event(v.EventSlug))

	case EventComment:
		const k = "event_comment."
		in.Title = ph.get(k+"title", "event", v.EventTitle)
		in.Body = commentBody(ph, k, v.CommenterName, v.CommentPreview)
		in.Action = ph.action("view_comments", l.EventComments(v.EventSlug))

	case MomentComment:
		const k = "moment_comment."
		in.Title = ph.get(k + "title")
		in.Body = commentBody(ph, k, v.CommenterName, v.CommentPreview)
		in.Action = ph.action("view_moment", l.Moment(v.MomentID))

	case CommentReply:
		const k = "comment_reply."
		in.Title = ph.get(k+"title", "name", v.ReplierName)
		if v.ReplyPreview != "" {
			in.Body = ph.get(k+"body", "preview", preview(v.ReplyPreview))
		} else {
			in.Body = ph.get(k+"body_plain", "name", v.ReplierName)
		}
		if v.MomentID != "" {
			in.Action = ph.action("view_moment", l.Moment(v.MomentID))
		} else {
			in.Action = ph.action("view_comments", l.EventComments(v.EventSlug))
		}

	case ThreadActivity:
		const k = "thread_activity."
		key := k + "body_other"
		if v.CommentCount == 1 {
			key = k + "body_one"
		}
		if v.LatestCommenter == "" {
			key += "_anonymous"
		}
		in.Title = ph.get(k+"title", "event", v.EventTitle)
		in.Body = ph.get(key, "count", strconv.Itoa(v.CommentCount), "name", v.LatestCommenter)
		in.Action = ph.action("view_conversation", l.EventComments(v.EventSlug))
		mail = &emailTemplate{
			subject:    ph.get(k+"email_subject", "event", v.EventTitle),
			heading:    ph.get(k+"email_heading", "event", v.EventTitle),
			paragraphs: []string{in.Body, ph.get(k + "email_body")},
			action:     in.Action,
			footer:     ph.get("email.footer_settings"),
		}

	case VideoReady:
		in = ready(ph, "video_ready.", v.EventTitle)
		in.Action = ph.action("view_moment", l.Moment(v.MomentID))

	case MomentReady:
		in = ready(ph, "moment_ready.", v.EventTitle)
		in.Action = ph.action("view_moment", l.Moment(v.MomentID))

	case NewFollower:
		in.Title = ph.get("new_follower.title")
		in.Body = ph.get("new_follower.body", "name", v.FollowerName)
		in.Action = ph.action("view_profile", l.Profile(v.FollowerUsername))

	default:
		return Rendered{}, fmt.Errorf("%w: %T", ErrUnknownType, p)
	}

	out := Rendered{
		Type:  p.NotificationType(),
		Lang:  lang,
		InApp: in,
		Push: PushContent{
			Title: in.Title,
			Body:  in.Body,
			URL:   l.Inbox(),
			Tag:   DedupTag(p),
		},
	}
	if in.Action != nil {
		out.Push.URL = in.Action.URL
	}

	var signature string
	if mail != nil {
		signature = ph.get("email.signature")
	}
	if err := ph.err(); err != nil {
		r.logger.Error("notification template is incomplete",
			logger.NotificationType(p.NotificationType()),
			slog.String("lang", lang),
			logger.Error(err),
		)
		return Rendered{}, err
	}

	if mail != nil {
		content, err := renderEmail(lang, *mail, signature)
		if err != nil {
			return Rendered{}, fmt.Errorf("render %s email: %w", p.NotificationType(), err)
		}
		out.Email = content
	}
	return out, nil
}

func reminder(ph *phrases, k, event, at, venue string) InAppContent {
	c := InAppContent{Title: ph.get(k+"title", "event", event)}
	if venue != "" {
		c.Body = ph.get(k+"body", "event", event, "time", at, "venue", venue)
	} else {
		c.Body = ph.get(k+"body_no_venue", "event", event, "time", at)
	}
	return c
}

func ready(ph *phrases, k, event string) InAppContent {
	c := InAppContent{Title: ph.get(k + "title")}
	if event != "" {
		c.Body = ph.get(k+"body", "event", event)
	} else {
		c.Body = ph.get(k + "body_plain")
	}
	return c
}

func commentBody(ph *phrases, k, name, text string) string {
	if text == "" {
		return ph.get(k+"body_plain", "name", name)
	}
	return ph.get(k+"body", "name", name, "preview", preview(text))
}

const previewLength = 120

// preview shortens user text to a single line of at most previewLength runes.
func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= previewLength {
		return s
	}
	return strings.TrimSpace(string(runes[:previewLength-1])) + "…"
}

func renderEmail(lang string, t emailTemplate, signature string) (*EmailContent, error) {
	props := templates.LayoutProps{
		Lang:       lang,
		Preheader:  t.subject,
		Heading:    t.heading,
		Paragraphs: t.paragraphs,
		Quote:      t.quote,
		FooterNote: t.footer,
		Signature:  signature,
	}
	if t.action != nil {
		props.Actions = []templates.Button{{Label: t.action.Label, URL: t.action.URL}}
	}

	html, err := templates.Render(context.Background(), templates.Layout(props))
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	text.WriteString(t.heading)
	for _, p := range t.paragraphs {
		text.WriteString("\n\n")
		text.WriteString(p)
	}
	if t.quote != "" {
		text.WriteString("\n\n> ")
		text.WriteString(strings.ReplaceAll(strings.TrimSpace(t.quote), "\n", "\n> "))
	}
	if t.action != nil {
		fmt.Fprintf(&text, "\n\n%s: %s", t.action.Label, t.action.URL)
	}
	if signature != "" {
		text.WriteString("\n\n")
		text.WriteString(signature)
	}
	if t.footer != "" {
		text.WriteString("\n\n")
		text.WriteString(t.footer)
	}

	return &EmailContent{Subject: t.subject, HTML: html, Text: text.String()}, nil
}

// phrases looks up keys for one locale and remembers the ones that are
// missing in every locale.
type phrases struct {
	tr      *i18n.Translator
	lang    string
	missing []string
}

func (p *phrases) get(key string, args ...string) string {
	s, ok := p.tr.Lookup(p.lang, key, args...)
	if !ok {
		p.missing = append(p.missing, key)
		return key
	}
	return s
}

func (p *phrases) action(key, url string) *Action {
	return &Action{Label: p.get("actions." + key), URL: url}
}

func (p *phrases) err() error {
	if len(p.missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s: %s", ErrMissingTranslation, p.lang, strings.Join(p.missing, ", "))
}
