package inbox

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/tribehub/notify/pkg/notifications"
)

// Selectors the stream patches. The page renders an element with id
// "inbox" that holds one ItemID(rec.ID) element per notification.
const (
	InboxSelector = "#inbox"
	itemIDPrefix  = "notification-"
)

// ItemID is the DOM id of a notification's list item.
func ItemID(id string) string {
	return itemIDPrefix + id
}

// Item renders one inbox entry. Unread entries carry the "unread" class.
func Item(rec notifications.InboxRecord) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		class := "notification"
		if !rec.Read {
			class += " unread"
		}
		if _, err := io.WriteString(w, `<li id="`+templ.EscapeString(ItemID(rec.ID))+`" class="`+class+`" data-type="`+templ.EscapeString(string(rec.Type))+`">`); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<strong>`+templ.EscapeString(rec.Title)+`</strong><p>`+templ.EscapeString(rec.Body)+`</p>`); err != nil {
			return err
		}
		for _, a := range []*notifications.Action{rec.Action, rec.SecondaryAction} {
			if a == nil {
				continue
			}
			if _, err := io.WriteString(w, `<a href="`+templ.EscapeString(string(templ.URL(a.URL)))+`">`+templ.EscapeString(a.Label)+`</a>`); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</li>`)
		return err
	})
}
