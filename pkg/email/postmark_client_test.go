package email_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tribehub/notify/pkg/email"
)

func testConfig() email.Config {
	return email.Config{
		PostmarkServerToken: "server-token",
		SenderEmail:         "hello@tribehub.app",
		SenderName:          "TribeHub",
		SupportEmail:        "support@tribehub.app",
	}
}

type recordedRequest struct {
	Path string
	Body []map[string]any
}

func postmarkServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request, body []map[string]any)) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var (
		mu       sync.Mutex
		requests []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []map[string]any
		var raw json.RawMessage
		_ = json.NewDecoder(r.Body).Decode(&raw)
		if err := json.Unmarshal(raw, &body); err != nil {
			var single map[string]any
			_ = json.Unmarshal(raw, &single)
			body = []map[string]any{single}
		}
		mu.Lock()
		requests = append(requests, recordedRequest{Path: r.URL.Path, Body: body})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		handler(w, r, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func TestNewPostmarkClient_Config(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*email.Config)
		errMsg string
	}{
		{name: "valid", mutate: func(*email.Config) {}},
		{name: "account token optional", mutate: func(c *email.Config) { c.PostmarkAccountToken = "" }},
		{name: "missing server token", mutate: func(c *email.Config) { c.PostmarkServerToken = "" }, errMsg: "PostmarkServerToken is required"},
		{name: "invalid sender", mutate: func(c *email.Config) { c.SenderEmail = "nope" }, errMsg: "SenderEmail must be a valid email address"},
		{name: "invalid support", mutate: func(c *email.Config) { c.SupportEmail = "nope" }, errMsg: "SupportEmail must be a valid email address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := testConfig()
			tt.mutate(&cfg)

			client, err := email.NewPostmarkClient(cfg)
			if tt.errMsg == "" {
				require.NoError(t, err)
				assert.NotNil(t, client)
				return
			}
			assert.Nil(t, client)
			assert.ErrorIs(t, err, email.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	assert.Panics(t, func() { email.MustNewPostmarkClient(email.Config{}) })
}

func TestPostmarkClient_SendEmail(t *testing.T) {
	t.Parallel()

	srv, requests := postmarkServer(t, func(w http.ResponseWriter, _ *http.Request, _ []map[string]any) {
		_, _ = w.Write([]byte(`{"To":"user@example.com","MessageID":"msg-1","ErrorCode":0,"Message":"OK"}`))
	})
	client, err := email.NewPostmarkClient(testConfig(), email.WithBaseURL(srv.URL))
	require.NoError(t, err)

	id, err := client.SendEmail(context.Background(), validParams())
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, "/email", req.Path)
	require.Len(t, req.Body, 1)
	assert.Equal(t, `"TribeHub" <hello@tribehub.app>`, req.Body[0]["From"])
	assert.Equal(t, "support@tribehub.app", req.Body[0]["ReplyTo"])
	assert.Equal(t, "Test body", req.Body[0]["TextBody"])
	assert.Equal(t, "<p>Test body</p>", req.Body[0]["HtmlBody"])
}

func TestPostmarkClient_SendEmail_Failures(t *testing.T) {
	t.Parallel()

	t.Run("provider error code", func(t *testing.T) {
		t.Parallel()
		srv, _ := postmarkServer(t, func(w http.ResponseWriter, _ *http.Request, _ []map[string]any) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"ErrorCode":300,"Message":"Invalid email request"}`))
		})
		client := email.MustNewPostmarkClient(testConfig(), email.WithBaseURL(srv.URL))

		_, err := client.SendEmail(context.Background(), validParams())
		assert.ErrorIs(t, err, email.ErrFailedToSendEmail)
	})

	t.Run("invalid params are not sent", func(t *testing.T) {
		t.Parallel()
		srv, requests := postmarkServer(t, func(w http.ResponseWriter, _ *http.Request, _ []map[string]any) {})
		client := email.MustNewPostmarkClient(testConfig(), email.WithBaseURL(srv.URL))

		p := validParams()
		p.Subject = ""
		_, err := client.SendEmail(context.Background(), p)
		assert.ErrorIs(t, err, email.ErrInvalidParams)
		assert.Empty(t, *requests)
	})
}

func TestPostmarkClient_SendBatch(t *testing.T) {
	t.Parallel()

	srv, requests := postmarkServer(t, func(w http.ResponseWriter, _ *http.Request, body []map[string]any) {
		_, _ = w.Write([]byte(`[
			{"To":"a@example.com","MessageID":"m-a","ErrorCode":0,"Message":"OK"},
			{"To":"c@example.com","ErrorCode":406,"Message":"Inactive recipient"}
		]`))
	})
	client := email.MustNewPostmarkClient(testConfig(), email.WithBaseURL(srv.URL))

	a, b, c := validParams(), validParams(), validParams()
	a.SendTo = "a@example.com"
	b.SendTo = "not-an-address"
	c.SendTo = "c@example.com"

	results, err := client.SendBatch(context.Background(), []email.SendEmailParams{a, b, c})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "m-a", results[0].MessageID)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, email.ErrInvalidParams)
	assert.ErrorIs(t, results[2].Err, email.ErrFailedToSendEmail)
	assert.Contains(t, results[2].Err.Error(), "Inactive recipient")

	require.Len(t, *requests, 1)
	assert.Equal(t, "/email/batch", (*requests)[0].Path)
	assert.Len(t, (*requests)[0].Body, 2, "invalid message must not be submitted")

	_, err = client.SendBatch(context.Background(), make([]email.SendEmailParams, email.MaxBatchSize+1))
	assert.ErrorIs(t, err, email.ErrBatchTooLarge)
}
