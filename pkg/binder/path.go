package binder

import (
	"fmt"
	"net/http"
	"reflect"
)

// Path creates a path parameter binder using the router's extractor,
// chi.URLParam for example:
//
//	type markReadRequest struct {
//		ID string `path:"id"`
//	}
//
//	r.Post("/{id}/read", handler.Wrap(s.markRead,
//		handler.WithBinders[handler.Context, markReadRequest](binder.Path(chi.URLParam)),
//	))
//
// Only basic types and pointers to them are supported.
func Path(extractor func(r *http.Request, key string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if extractor == nil {
			return fmt.Errorf("%w: extractor function is nil", ErrFailedToParsePath)
		}
		fields, err := taggedFields(v, "path")
		if err != nil {
			return fmt.Errorf("%w: %v", ErrFailedToParsePath, err)
		}
		for _, f := range fields {
			if f.value.Kind() == reflect.Slice {
				return fmt.Errorf("%w: field %s: %v", ErrFailedToParsePath, f.name, errSliceUnsupported)
			}
			value := extractor(r, f.param)
			if value == "" {
				continue
			}
			if err := assign(f.value, []string{value}); err != nil {
				return fmt.Errorf("%w: field %s: %v", ErrFailedToParsePath, f.name, err)
			}
		}
		return nil
	}
}
