package jwt

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

type TokenExtractorFunc func(r *http.Request) (string, error)

type SkipFunc func(r *http.Request) bool

type MiddlewareConfig struct {
	Service   *Service           // verifies tokens
	Extractor TokenExtractorFunc // defaults to BearerTokenExtractor
	Skip      SkipFunc           // requests that bypass authentication
}

// Middleware authenticates requests with a bearer token and stores the
// verified Claims in the request context. Tokens without a subject are
// rejected: every route behind it acts for a specific user.
func Middleware(service *Service) func(next http.Handler) http.Handler {
	return MiddlewareWithConfig(MiddlewareConfig{Service: service})
}

func MiddlewareWithConfig(config MiddlewareConfig) func(next http.Handler) http.Handler {
	if config.Extractor == nil {
		config.Extractor = BearerTokenExtractor
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.Skip != nil && config.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			token, err := config.Extractor(r)
			if err != nil {
				unauthorized(w, err)
				return
			}

			var claims Claims
			if err := config.Service.Parse(token, &claims); err != nil {
				unauthorized(w, err)
				return
			}
			if claims.Subject == "" {
				unauthorized(w, ErrMissingSubject)
				return
			}

			ctx := SetToken(r.Context(), token)
			ctx = SetClaims(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    "unauthorized",
			"message": err.Error(),
		},
	})
}

func BearerTokenExtractor(r *http.Request) (string, error) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", ErrInvalidToken
	}
	return token, nil
}

func CookieTokenExtractor(cookieName string) TokenExtractorFunc {
	return func(r *http.Request) (string, error) {
		cookie, err := r.Cookie(cookieName)
		if err != nil || cookie.Value == "" {
			return "", ErrInvalidToken
		}
		return cookie.Value, nil
	}
}

// QueryTokenExtractor reads the token from a query parameter. Browsers
// can't set headers on an EventSource, so the live stream accepts it.
func QueryTokenExtractor(paramName string) TokenExtractorFunc {
	return func(r *http.Request) (string, error) {
		token := r.URL.Query().Get(paramName)
		if token == "" {
			return "", ErrInvalidToken
		}
		return token, nil
	}
}

// ChainExtractors returns the first token any extractor finds.
func ChainExtractors(extractors ...TokenExtractorFunc) TokenExtractorFunc {
	return func(r *http.Request) (string, error) {
		for _, extract := range extractors {
			token, err := extract(r)
			if err == nil {
				return token, nil
			}
			if !errors.Is(err, ErrInvalidToken) {
				return "", err
			}
		}
		return "", ErrInvalidToken
	}
}
