package services

import (
	"context"
	"sync"
	"time"

	apperrors "redpen/errors"
	"redpen/llmclient"
	"redpen/proofread"
	"redpen/web/types"

	"github.com/google/uuid"
)

type fakeLLM struct {
	mu         sync.Mutex
	configured bool
	response   string
	err        error
	calls      int
	last       llmclient.ChatRequest
}

func (f *fakeLLM) Configured() bool { return f.configured }

func (f *fakeLLM) Complete(_ context.Context, req llmclient.ChatRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = req
	return f.response, f.err
}

type fakeChecker struct {
	matches []proofread.Match
	err     error
	calls   int
}

func (f *fakeChecker) Check(context.Context, string) ([]proofread.Match, error) {
	f.calls++
	return f.matches, f.err
}

type fakeParaphraser struct {
	out   []string
	err   error
	model string
	n     int
}

func (f *fakeParaphraser) Paraphrase(_ context.Context, model, _ string, n int) ([]string, error) {
	f.model, f.n = model, n
	return f.out, f.err
}

type storedUser struct {
	user types.User
	hash string
}

type memStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*storedUser
}

func newMemStore() *memStore {
	return &memStore{users: make(map[uuid.UUID]*storedUser)}
}

func (m *memStore) CreateUser(_ context.Context, email, hash string, name *string) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.user.Email == email {
			return nil, apperrors.WrapErrorf(apperrors.ErrConflict, "user %s", email)
		}
	}
	u := &storedUser{
		user: types.User{ID: uuid.New(), Email: email, Name: name, CreatedAt: time.Now()},
		hash: hash,
	}
	m.users[u.user.ID] = u
	copied := u.user
	return &copied, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*types.User, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.user.Email == email {
			copied := u.user
			return &copied, u.hash, nil
		}
	}
	return nil, "", apperrors.WrapErrorf(apperrors.ErrNotFound, "user %s", email)
}

func (m *memStore) GetUserByID(_ context.Context, id uuid.UUID) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperrors.WrapErrorf(apperrors.ErrNotFound, "user %s", id)
	}
	copied := u.user
	return &copied, nil
}

func (m *memStore) UpdateUserName(_ context.Context, id uuid.UUID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return apperrors.WrapErrorf(apperrors.ErrNotFound, "user %s", id)
	}
	u.user.Name = &name
	return nil
}

type fakeGoogle struct {
	configured bool
	identity   *GoogleIdentity
	err        error
}

func (f *fakeGoogle) Configured() bool { return f.configured }

func (f *fakeGoogle) Verify(context.Context, string) (*GoogleIdentity, error) {
	return f.identity, f.err
}
