package binder

import "net/http"

// Query creates a query parameter binder function.
//
// Only fields tagged `query:"name"` are bound. Slices accept repeated parameters or comma-separated values, and
// pointers mark optional fields:
//
//	type listRequest struct {
//		Limit    int   `query:"limit"`
//		Offset   int   `query:"offset"`
//		Unread   bool  `query:"unread"`
//		Archived *bool `query:"archived"`
//	}
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if r.URL.RawQuery == "" {
			return ErrBinderNotApplicable
		}
		return bindValues(v, "query", r.URL.Query(), ErrFailedToParseQuery)
	}
}
