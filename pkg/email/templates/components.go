package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Button is a call-to-action link rendered as a button.
type Button struct {
	Label string
	URL   string
}

// LayoutProps describes a transactional email.
type LayoutProps struct {
	Lang       string
	Preheader  string
	Heading    string
	Paragraphs []string
	Quote      string
	Actions    []Button
	FooterNote string
	Signature  string
}

const (
	bodyStyle    = "margin:0;padding:0;background:#f6f6f4;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Helvetica,Arial,sans-serif;color:#1f1f1f;"
	cardStyle    = "max-width:560px;margin:24px auto;background:#ffffff;border-radius:12px;padding:32px;"
	headingStyle = "margin:0 0 16px;font-size:22px;line-height:1.3;"
	textStyle    = "margin:0 0 16px;font-size:16px;line-height:1.5;"
	quoteStyle   = "margin:0 0 16px;padding:12px 16px;border-left:4px solid #ff6b35;background:#fff6f1;font-size:15px;line-height:1.5;"
	buttonStyle  = "display:inline-block;margin:8px 8px 8px 0;padding:12px 20px;border-radius:8px;background:#ff6b35;color:#ffffff;text-decoration:none;font-weight:600;"
	footerStyle  = "max-width:560px;margin:0 auto 24px;font-size:13px;line-height:1.5;color:#6b6b6b;text-align:center;"
)

// Layout renders a complete HTML document. All text is escaped.
func Layout(p LayoutProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		lang := p.Lang
		if lang == "" {
			lang = "en"
		}
		var err error
		write := func(s string) {
			if err == nil {
				_, err = io.WriteString(w, s)
			}
		}
		text := func(s string) { write(templ.EscapeString(s)) }

		write(`<!DOCTYPE html><html lang="`)
		text(lang)
		write(`"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width,initial-scale=1"><title>`)
		text(p.Heading)
		write(`</title></head><body style="` + bodyStyle + `">`)
		if p.Preheader != "" {
			write(`<div style="display:none;max-height:0;overflow:hidden;">`)
			text(p.Preheader)
			write(`</div>`)
		}
		write(`<div style="` + cardStyle + `"><h1 style="` + headingStyle + `">`)
		text(p.Heading)
		write(`</h1>`)
		for _, para := range p.Paragraphs {
			write(`<p style="` + textStyle + `">`)
			text(para)
			write(`</p>`)
		}
		if p.Quote != "" {
			write(`<blockquote style="` + quoteStyle + `">`)
			text(p.Quote)
			write(`</blockquote>`)
		}
		if len(p.Actions) > 0 {
			write(`<p>`)
			for _, a := range p.Actions {
				write(`<a href="`)
				text(string(templ.URL(a.URL)))
				write(`" style="` + buttonStyle + `">`)
				text(a.Label)
				write(`</a>`)
			}
			write(`</p>`)
		}
		write(`</div><div style="` + footerStyle + `">`)
		if p.FooterNote != "" {
			write(`<p style="margin:0 0 8px;">`)
			text(p.FooterNote)
			write(`</p>`)
		}
		if p.Signature != "" {
			write(`<p style="margin:0;">`)
			text(p.Signature)
			write(`</p>`)
		}
		write(`</div></body></html>`)
		return err
	})
}
