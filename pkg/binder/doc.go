// Package binder fills request structs from HTTP requests.
//
// Each binder reads one source and only the fields tagged for it:
//
//	JSON()             // request body, `json:"..."` tags
//	Query()            // URL query, `query:"..."` tags
//	Path(chi.URLParam) // router params, `path:"..."` tags
//
// Binders are combined with handler.WithBinders and applied in order. A
// binder with nothing to read returns ErrBinderNotApplicable and is
// skipped. Every other failure wraps one of the package errors, so
// callers can match with errors.Is:
//
//	if errors.Is(err, binder.ErrFailedToParseQuery) {
//		// 400
//	}
package binder
