// Package jwt verifies the HS256 access tokens issued by the auth
// provider and exposes the authenticated user to handlers.
//
// A Service checks the signature along with exp, nbf and, when configured,
// aud and iss. Middleware extracts a token, verifies it and stores Claims
// in the request context; UserID reads the subject back.
//
//	var cfg jwt.Config
//	config.MustLoad(&cfg)
//
//	svc, err := jwt.NewFromConfig(cfg)
//	if err != nil {
//	    return err
//	}
//
//	r.Use(jwt.MiddlewareWithConfig(jwt.MiddlewareConfig{
//	    Service:   svc,
//	    Extractor: jwt.ChainExtractors(jwt.BearerTokenExtractor, jwt.QueryTokenExtractor("access_token")),
//	}))
//
//	r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
//	    fmt.Fprint(w, jwt.UserID(r.Context()))
//	})
//
// Failures are sentinel errors such as ErrExpiredToken and
// ErrInvalidSignature, comparable with errors.Is.
package jwt
