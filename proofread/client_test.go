package proofread

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"redpen/config"
	apperrors "redpen/errors"

	"go.uber.org/zap"
)

func testConfig(url string) *config.Config {
	return &config.Config{
		LanguageToolURL:      url,
		LanguageToolLanguage: "en-US",
		LanguageToolPerMin:   0,
		LLMRequestTimeout:    5 * time.Second,
		MaxRetries:           3,
		RetryDelaySeconds:    time.Millisecond,
		LLMBackoffMaxSeconds: 5 * time.Millisecond,
	}
}

func TestClientCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostForm.Get("text"); got != "Teh cat" {
			t.Errorf("text = %q", got)
		}
		if got := r.PostForm.Get("language"); got != "en-US" {
			t.Errorf("language = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"software":{"name":"LanguageTool"},"matches":[
			{"message":"Possible spelling mistake found.","offset":0,"length":3,
			 "replacements":[{"value":"The"},{"value":"Tea"}],
			 "rule":{"id":"MORFOLOGIK_RULE_EN_US","issueType":"misspelling","category":{"id":"TYPOS","name":"Possible Typo"}}}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), zap.NewNop())
	matches, err := c.Check(context.Background(), "Teh cat")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("len(matches) = %d", len(matches))
	}
	m := matches[0]
	if m.Offset != 0 || m.Length != 3 || m.Replacements[0].Value != "The" || m.Rule.Category.ID != "TYPOS" {
		t.Errorf("match = %+v", m)
	}
}

func TestClientRetriesUnavailable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"matches":[]}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), zap.NewNop())
	matches, err := c.Check(context.Background(), "Fine.")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if matches == nil || len(matches) != 0 {
		t.Errorf("matches = %#v, want empty slice", matches)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestClientFailsOnBadRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "missing text", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), zap.NewNop())
	_, err := c.Check(context.Background(), "x")
	if !errors.Is(err, apperrors.ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want no retry on 400", calls.Load())
	}
}

func TestClientMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>oops</html>`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), zap.NewNop())
	if _, err := c.Check(context.Background(), "x"); !errors.Is(err, apperrors.ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
}
