package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	fbauth "firebase.google.com/go/v4/auth"
)

type fakeVerifier struct {
	tokens map[string]*fbauth.Token
}

func (f fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*fbauth.Token, error) {
	if t, ok := f.tokens[idToken]; ok {
		return t, nil
	}
	return nil, errors.New("bad token")
}

func newTestAuth() *Auth {
	return &Auth{Verifier: fakeVerifier{tokens: map[string]*fbauth.Token{
		"good":  {UID: "u1", Claims: map[string]interface{}{"email": "a@example.com"}},
		"noUID": {UID: "  "},
	}}}
}

func echoIdentity(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := CurrentIdentity(r)
		if !ok {
			w.Header().Set("X-UID", "-")
		} else {
			w.Header().Set("X-UID", id.UID)
			w.Header().Set("X-Email", id.Email)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth(t *testing.T) {
	cases := []struct {
		name     string
		required bool
		header   string
		status   int
		uid      string
	}{
		{"optional anonymous", false, "", http.StatusOK, "-"},
		{"optional good", false, "Bearer good", http.StatusOK, "u1"},
		{"optional stale token is anonymous", false, "Bearer nope", http.StatusOK, "-"},
		{"optional not bearer is anonymous", false, "Basic abc", http.StatusOK, "-"},
		{"optional empty uid is anonymous", false, "Bearer noUID", http.StatusOK, "-"},
		{"required bad token", true, "Bearer nope", http.StatusUnauthorized, ""},
		{"required anonymous", true, "", http.StatusUnauthorized, ""},
		{"required good", true, "Bearer good", http.StatusOK, "u1"},
		{"required empty uid", true, "Bearer noUID", http.StatusUnauthorized, ""},
		{"required empty token", true, "Bearer ", http.StatusUnauthorized, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestAuth()
			h := m.Optional(echoIdentity(t))
			if tc.required {
				h = m.Required(echoIdentity(t))
			}
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			if tc.uid != "" && rec.Header().Get("X-UID") != tc.uid {
				t.Fatalf("uid = %q, want %q", rec.Header().Get("X-UID"), tc.uid)
			}
		})
	}
}

func TestOptionalAuthWithoutVerifierIsAnonymous(t *testing.T) {
	m := &Auth{}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")

	rec := httptest.NewRecorder()
	m.Optional(echoIdentity(t)).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Header().Get("X-UID") != "-" {
		t.Fatalf("optional = %d uid %q, want 200 anonymous", rec.Code, rec.Header().Get("X-UID"))
	}

	rec = httptest.NewRecorder()
	m.Required(echoIdentity(t)).ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("required = %d, want 503", rec.Code)
	}
}

func TestAuthCarriesEmail(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	newTestAuth().Required(echoIdentity(t)).ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Email"); got != "a@example.com" {
		t.Fatalf("email = %q, want a@example.com", got)
	}
}

func TestRecover(t *testing.T) {
	h := Recover(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestRequestLogKeepsClientID(t *testing.T) {
	var seen string
	h := RequestLog(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "rid-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "rid-1" || rec.Header().Get(RequestIDHeader) != "rid-1" {
		t.Fatalf("request id = %q / %q, want rid-1", seen, rec.Header().Get(RequestIDHeader))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || seen == "rid-1" {
		t.Fatalf("generated request id = %q", seen)
	}
}
