// Package email sends transactional email.
//
// PostmarkClient delivers through Postmark and supports batches of up to
// MaxBatchSize messages per call. DevSender writes messages to disk for local
// development. Both implement BatchSender.
//
// Every message carries an HTML body and a plain-text alternative; Validate
// rejects params without either.
//
//	client, err := email.NewPostmarkClient(cfg)
//	if err != nil {
//	    return err
//	}
//	id, err := client.SendEmail(ctx, email.SendEmailParams{
//	    SendTo:   "guest@example.com",
//	    Subject:  "You're invited",
//	    BodyHTML: html,
//	    BodyText: text,
//	    Tag:      "event_invitation",
//	})
//
// The templates subpackage renders the shared HTML layout with templ.
//
// Errors wrap the sentinels ErrInvalidConfig, ErrInvalidParams,
// ErrBatchTooLarge and ErrFailedToSendEmail for use with errors.Is.
package email
