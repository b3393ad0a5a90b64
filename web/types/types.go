package types

import (
	"time"

	"redpen/proofread"
	"redpen/writing"

	"github.com/google/uuid"
)

// User is an account as exposed to clients. The password hash never leaves
// the database layer.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name"`
	CreatedAt time.Time `json:"-"`
}

// TextRequest is the body shared by the text-in endpoints.
type TextRequest struct {
	Text string `json:"text"`
}

// CheckResponse is returned by /api/check. Insights is null on failures.
type CheckResponse struct {
	Error          string               `json:"error,omitempty"`
	CorrectedText  string               `json:"correctedText"`
	Suggestions    []writing.Suggestion `json:"suggestions"`
	HasSuggestions bool                 `json:"hasSuggestions"`
	TotalIssues    int                  `json:"totalIssues"`
	Insights       *writing.Insights    `json:"insights"`
}

// NewCheckResponse wraps a normalized result.
func NewCheckResponse(res writing.Result) CheckResponse {
	insights := res.Insights
	return CheckResponse{
		CorrectedText:  res.CorrectedText,
		Suggestions:    res.Suggestions,
		HasSuggestions: len(res.Suggestions) > 0,
		TotalIssues:    len(res.Suggestions),
		Insights:       &insights,
	}
}

// FailedCheckResponse echoes the input back with an error message.
func FailedCheckResponse(text, msg string) CheckResponse {
	return CheckResponse{
		Error:         msg,
		CorrectedText: text,
		Suggestions:   []writing.Suggestion{},
	}
}

// ProofreadResponse is returned by /api/grammarcheck and /api/spellcheck.
type ProofreadResponse struct {
	Error         string           `json:"error,omitempty"`
	CorrectedText string           `json:"correctedText"`
	Errors        []proofread.Edit `json:"errors"`
}

type ParaphraseResponse struct {
	Original string   `json:"original"`
	Options  []string `json:"options"`
	Error    *string  `json:"error"`
}

type ImproveResponse struct {
	Error        string   `json:"error,omitempty"`
	Original     string   `json:"original"`
	Improved     string   `json:"improved"`
	Alternatives []string `json:"alternatives"`
}

type SynonymsRequest struct {
	Word string `json:"word"`
}

type SynonymsResponse struct {
	Error    string   `json:"error,omitempty"`
	Word     string   `json:"word"`
	Synonyms []string `json:"synonyms"`
}

type RewriteRequest struct {
	Text string `json:"text"`
	Mode string `json:"mode"`
}

type RewriteResponse struct {
	Error  string `json:"error,omitempty"`
	Text   string `json:"text"`
	Result string `json:"result"`
}

// SentenceRequest is the body for the analyze endpoints.
type SentenceRequest struct {
	Sentence string `json:"sentence"`
}

type AnalyzeResponse struct {
	RephrasedSentences []string `json:"rephrasedSentences"`
}

type RephraseResponse struct {
	Original     string   `json:"original"`
	Alternatives []string `json:"alternatives"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"id_token"`
}

// AuthResponse is returned on successful register or login.
type AuthResponse struct {
	Message   string `json:"message"`
	User      *User  `json:"user"`
	Token     string `json:"token"`
	ExpiresIn string `json:"expiresIn"`
}

type MeResponse struct {
	User *User `json:"user"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
