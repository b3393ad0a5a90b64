package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "redpen/errors"
	"redpen/proofread"
	"redpen/web/middleware"
	"redpen/web/services"
	"redpen/web/types"
	"redpen/writing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func do(r http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

type stubChecker struct {
	res writing.Result
	err error
}

func (s stubChecker) Check(context.Context, string) (writing.Result, error) { return s.res, s.err }

func TestHealth(t *testing.T) {
	r := gin.New()
	r.GET("/api/health", Health)
	w := do(r, http.MethodGet, "/api/health", "")
	body := decode(t, w)
	if w.Code != http.StatusOK || body["ok"] != true || body["name"] != "RedPen" {
		t.Errorf("health = %d %v", w.Code, body)
	}
}

func TestCheckHandler(t *testing.T) {
	ok := writing.Result{
		CorrectedText: "I have an apple.",
		Suggestions:   []writing.Suggestion{{Original: "has", Suggestion: "have", Message: "Agreement", Category: writing.CategoryGrammar}},
		Insights:      writing.Insights{WordCount: 4, SentenceCount: 1},
	}
	tests := []struct {
		name         string
		checker      stubChecker
		body         string
		wantStatus   int
		wantText     string
		wantInsights bool
		wantError    string
	}{
		{"success", stubChecker{res: ok}, `{"text":"I has a apple."}`, http.StatusOK, "I have an apple.", true, ""},
		{"not configured", stubChecker{err: apperrors.ErrNotConfigured}, `{"text":"abc"}`, http.StatusInternalServerError, "abc", false, "Writing check is not configured. Set LLM_API_KEY in the environment"},
		{"upstream", stubChecker{err: apperrors.ErrUpstream}, `{"text":"abc"}`, http.StatusInternalServerError, "abc", false, "Writing check failed. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/api/check", NewCheckHandler(tt.checker, zap.NewNop()).Check)
			w := do(r, http.MethodPost, "/api/check", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			body := decode(t, w)
			if body["correctedText"] != tt.wantText {
				t.Errorf("correctedText = %v", body["correctedText"])
			}
			if (body["insights"] != nil) != tt.wantInsights {
				t.Errorf("insights = %v", body["insights"])
			}
			if tt.wantError != "" && body["error"] != tt.wantError {
				t.Errorf("error = %v", body["error"])
			}
			if _, ok := body["suggestions"].([]any); !ok {
				t.Errorf("suggestions not an array: %v", body["suggestions"])
			}
		})
	}
}

func TestCheckHandlerSuccessShape(t *testing.T) {
	r := gin.New()
	res := writing.Result{
		CorrectedText: "x",
		Suggestions:   []writing.Suggestion{{Original: "a", Suggestion: "b", Message: "m", Category: writing.CategoryTone}},
	}
	r.POST("/api/check", NewCheckHandler(stubChecker{res: res}, zap.NewNop()).Check)
	body := decode(t, do(r, http.MethodPost, "/api/check", `{"text":"y"}`))
	if body["hasSuggestions"] != true || body["totalIssues"] != float64(1) {
		t.Errorf("body = %v", body)
	}
	if _, present := body["error"]; present {
		t.Error("error key should be omitted on success")
	}
}

func TestBindJSON(t *testing.T) {
	r := gin.New()
	r.POST("/api/check", NewCheckHandler(stubChecker{res: writing.Empty("")}, zap.NewNop()).Check)

	if w := do(r, http.MethodPost, "/api/check", `{not json`); w.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", w.Code)
	}
	if w := do(r, http.MethodPost, "/api/check", ``); w.Code != http.StatusOK {
		t.Errorf("empty body status = %d, want 200", w.Code)
	}
}

type stubProofreader struct {
	res proofread.Correction
	err error
}

func (s stubProofreader) Grammar(context.Context, string) (proofread.Correction, error) {
	return s.res, s.err
}

func (s stubProofreader) Spelling(context.Context, string) (proofread.Correction, error) {
	return s.res, s.err
}

func TestProofreadHandler(t *testing.T) {
	res := proofread.Correction{
		CorrectedText: "The cat",
		Errors:        []proofread.Edit{{Offset: 0, Length: 3, Original: "Teh", Suggestion: "The", Message: "Spelling error", Rule: "SPELLING"}},
	}
	r := gin.New()
	h := NewProofreadHandler(stubProofreader{res: res}, zap.NewNop())
	r.POST("/api/grammarcheck", h.Grammar)
	r.POST("/api/spellcheck", h.Spelling)

	for _, path := range []string{"/api/grammarcheck", "/api/spellcheck"} {
		w := do(r, http.MethodPost, path, `{"text":"Teh cat"}`)
		body := decode(t, w)
		if w.Code != http.StatusOK || body["correctedText"] != "The cat" {
			t.Errorf("%s: %d %v", path, w.Code, body)
		}
		errs, _ := body["errors"].([]any)
		if len(errs) != 1 {
			t.Fatalf("%s: errors = %v", path, body["errors"])
		}
		edit := errs[0].(map[string]any)
		if edit["original"] != "Teh" || edit["rule"] != "SPELLING" || edit["offset"] != float64(0) {
			t.Errorf("%s: edit = %v", path, edit)
		}
	}

	r = gin.New()
	r.POST("/api/spellcheck", NewProofreadHandler(stubProofreader{err: errors.New("down")}, zap.NewNop()).Spelling)
	w := do(r, http.MethodPost, "/api/spellcheck", `{"text":"Teh cat"}`)
	body := decode(t, w)
	if w.Code != http.StatusInternalServerError || body["correctedText"] != "Teh cat" || body["error"] != "Error checking spelling" {
		t.Errorf("failure = %d %v", w.Code, body)
	}
	if errs, ok := body["errors"].([]any); !ok || len(errs) != 0 {
		t.Errorf("errors = %v, want []", body["errors"])
	}
}

type stubTools struct {
	err error
}

func (s stubTools) Paraphrase(_ context.Context, text string) (string, []string, error) {
	if s.err != nil {
		return text, []string{text}, s.err
	}
	return text, []string{"p1", "p2"}, nil
}

func (s stubTools) Improve(_ context.Context, text string) (services.Improvement, error) {
	if s.err != nil {
		return services.Improvement{Original: text, Improved: text, Alternatives: []string{}}, s.err
	}
	return services.Improvement{Original: text, Improved: "better", Alternatives: []string{"alt"}}, nil
}

func (s stubTools) Synonyms(_ context.Context, word string) (string, []string, error) {
	if s.err != nil {
		return word, []string{}, s.err
	}
	return word, []string{"glad"}, nil
}

func (s stubTools) Rewrite(_ context.Context, text string, mode services.RewriteMode) (string, string, error) {
	if s.err != nil {
		return text, text, s.err
	}
	return text, string(mode), nil
}

func toolsRouter(tools WritingTools) *gin.Engine {
	r := gin.New()
	h := NewToolsHandler(tools, zap.NewNop())
	r.POST("/api/tools/paraphrase", h.Paraphrase)
	r.POST("/api/tools/improve", h.Improve)
	r.POST("/api/tools/synonyms", h.Synonyms)
	r.POST("/api/tools/rewrite", h.Rewrite)
	return r
}

func TestToolsHandlerSuccess(t *testing.T) {
	r := toolsRouter(stubTools{})

	body := decode(t, do(r, http.MethodPost, "/api/tools/paraphrase", `{"text":"abc"}`))
	if body["original"] != "abc" || body["error"] != nil || len(body["options"].([]any)) != 2 {
		t.Errorf("paraphrase = %v", body)
	}
	if _, present := body["error"]; !present {
		t.Error("paraphrase error key should be present as null")
	}

	body = decode(t, do(r, http.MethodPost, "/api/tools/improve", `{"text":"abc"}`))
	if body["improved"] != "better" || len(body["alternatives"].([]any)) != 1 {
		t.Errorf("improve = %v", body)
	}

	body = decode(t, do(r, http.MethodPost, "/api/tools/synonyms", `{"word":"happy"}`))
	if body["word"] != "happy" || body["synonyms"].([]any)[0] != "glad" {
		t.Errorf("synonyms = %v", body)
	}

	body = decode(t, do(r, http.MethodPost, "/api/tools/rewrite", `{"text":"abc","mode":"EXPAND"}`))
	if body["text"] != "abc" || body["result"] != "expand" {
		t.Errorf("rewrite = %v", body)
	}
}

func TestToolsHandlerFailures(t *testing.T) {
	upstream := toolsRouter(stubTools{err: apperrors.ErrUpstream})

	w := do(upstream, http.MethodPost, "/api/tools/paraphrase", `{"text":"abc"}`)
	body := decode(t, w)
	if w.Code != http.StatusOK || body["error"] == nil || body["options"].([]any)[0] != "abc" {
		t.Errorf("paraphrase upstream failure = %d %v", w.Code, body)
	}

	for _, path := range []string{"/api/tools/improve", "/api/tools/synonyms", "/api/tools/rewrite"} {
		if w := do(upstream, http.MethodPost, path, `{"text":"abc","word":"abc"}`); w.Code != http.StatusInternalServerError {
			t.Errorf("%s: status = %d, want 500", path, w.Code)
		}
	}

	unconfigured := toolsRouter(stubTools{err: apperrors.ErrNotConfigured})
	w = do(unconfigured, http.MethodPost, "/api/tools/paraphrase", `{"text":"abc"}`)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("paraphrase unconfigured status = %d", w.Code)
	}
	body = decode(t, do(unconfigured, http.MethodPost, "/api/tools/synonyms", `{"word":"x"}`))
	if body["error"] != notConfiguredMessage {
		t.Errorf("synonyms unconfigured = %v", body)
	}
}

type stubRephraser struct{}

func (stubRephraser) Rephrase(_ context.Context, s string) []string { return []string{s + "!"} }
func (stubRephraser) Analyze(_ context.Context, s string) []string { return []string{s + "?"} }

func TestAnalyzeHandler(t *testing.T) {
	r := gin.New()
	h := NewAnalyzeHandler(stubRephraser{})
	r.POST("/api/analyze", h.Analyze)
	r.POST("/api/analyze/rephrase", h.Rephrase)

	body := decode(t, do(r, http.MethodPost, "/api/analyze", `{"sentence":"Hi"}`))
	if body["rephrasedSentences"].([]any)[0] != "Hi?" {
		t.Errorf("analyze = %v", body)
	}
	body = decode(t, do(r, http.MethodPost, "/api/analyze/rephrase", `{"sentence":"Hi"}`))
	if body["original"] != "Hi" || body["alternatives"].([]any)[0] != "Hi!" {
		t.Errorf("rephrase = %v", body)
	}
}

type stubAuth struct {
	err  error
	user *types.User
}

func (s stubAuth) Register(context.Context, types.RegisterRequest) (*types.AuthResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &types.AuthResponse{Message: "Account created", User: s.user, Token: "t", ExpiresIn: "7d"}, nil
}

func (s stubAuth) Login(context.Context, types.LoginRequest) (*types.AuthResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &types.AuthResponse{Message: "Logged in", User: s.user, Token: "t", ExpiresIn: "7d"}, nil
}

func (s stubAuth) GoogleLogin(context.Context, string) (*types.AuthResponse, error) {
	return s.Login(context.Background(), types.LoginRequest{})
}

func (s stubAuth) Me(_ context.Context, userID string) (*types.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if userID != "u1" {
		return nil, &services.AuthError{Kind: apperrors.ErrUnauthorized, Message: "User not found"}
	}
	return s.user, nil
}

func (s stubAuth) ParseToken(token string) (*services.Claims, error) {
	if token != "t" {
		return nil, errors.New("bad token")
	}
	return &services.Claims{UserID: "u1"}, nil
}

func authRouter(a stubAuth) *gin.Engine {
	r := gin.New()
	h := NewAuthHandler(a, zap.NewNop())
	r.POST("/api/auth/register", h.Register)
	r.POST("/api/auth/login", h.Login)
	r.POST("/api/auth/google", h.Google)
	r.GET("/api/auth/me", middleware.RequireAuth(a), h.Me)
	return r
}

func TestAuthHandlerSuccess(t *testing.T) {
	r := authRouter(stubAuth{user: &types.User{Email: "a@b.co"}})

	w := do(r, http.MethodPost, "/api/auth/register", `{"email":"a@b.co","password":"secret1"}`)
	if w.Code != http.StatusCreated {
		t.Errorf("register status = %d, want 201", w.Code)
	}
	body := decode(t, w)
	if body["token"] != "t" || body["expiresIn"] != "7d" {
		t.Errorf("register body = %v", body)
	}
	user := body["user"].(map[string]any)
	if _, leaked := user["password_hash"]; leaked {
		t.Error("password hash leaked")
	}
	if _, present := user["name"]; !present {
		t.Error("name should be present as null")
	}

	if w := do(r, http.MethodPost, "/api/auth/login", `{"email":"a@b.co","password":"secret1"}`); w.Code != http.StatusOK {
		t.Errorf("login status = %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/auth/me", "", "Authorization", "Bearer t"); w.Code != http.StatusOK {
		t.Errorf("me status = %d", w.Code)
	}
}

func TestAuthHandlerErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		method     string
		path       string
		headers    []string
		wantStatus int
		wantError  string
	}{
		{"invalid", &services.AuthError{Kind: apperrors.ErrInvalidInput, Message: "Invalid email address"}, http.MethodPost, "/api/auth/register", nil, http.StatusBadRequest, "Invalid email address"},
		{"conflict", &services.AuthError{Kind: apperrors.ErrConflict, Message: "exists"}, http.MethodPost, "/api/auth/register", nil, http.StatusConflict, "exists"},
		{"unauthorized", &services.AuthError{Kind: apperrors.ErrUnauthorized, Message: "Invalid email or password"}, http.MethodPost, "/api/auth/login", nil, http.StatusUnauthorized, "Invalid email or password"},
		{"google unconfigured", &services.AuthError{Kind: apperrors.ErrNotConfigured, Message: "Google sign-in is not configured"}, http.MethodPost, "/api/auth/google", nil, http.StatusBadRequest, "Google sign-in is not configured"},
		{"internal", errors.New("db down"), http.MethodPost, "/api/auth/register", nil, http.StatusInternalServerError, "Registration failed"},
		{"me without token", nil, http.MethodGet, "/api/auth/me", nil, http.StatusUnauthorized, "Not authenticated"},
		{"me bad token", nil, http.MethodGet, "/api/auth/me", []string{"Authorization", "Bearer x"}, http.StatusUnauthorized, "Invalid or expired token"},
		{"me user gone", &services.AuthError{Kind: apperrors.ErrUnauthorized, Message: "User not found"}, http.MethodGet, "/api/auth/me", []string{"Authorization", "Bearer t"}, http.StatusUnauthorized, "User not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := authRouter(stubAuth{err: tt.err})
			w := do(r, tt.method, tt.path, `{}`, tt.headers...)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if body := decode(t, w); body["error"] != tt.wantError {
				t.Errorf("error = %v, want %q", body["error"], tt.wantError)
			}
		})
	}
}

func TestAuthMeWithoutRequireAuth(t *testing.T) {
	r := gin.New()
	r.GET("/me", NewAuthHandler(stubAuth{}, zap.NewNop()).Me)
	w := do(r, http.MethodGet, "/me", "", "Authorization", "Bearer t")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
