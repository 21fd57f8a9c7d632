package service

import (
	"context"
	"sync"
	"time"

	"hirelane/api/internal/models"
	"hirelane/api/internal/repository"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]models.User // keyed by id
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]models.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id string, digest []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = digest
	r.users[id] = u
	return nil
}

func (r *fakeUserRepo) SetEmailVerified(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.EmailVerified = true
	r.users[id] = u
	return nil
}

func (r *fakeUserRepo) Activate(_ context.Context, id string, firstName, lastName string, digest []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.FirstName = firstName
	u.LastName = lastName
	u.PasswordHash = digest
	u.IsActive = true
	r.users[id] = u
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.LastLoginAt = &at
	r.users[id] = u
	return nil
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]models.EmailToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: map[string]models.EmailToken{}}
}

func (r *fakeTokenRepo) Insert(_ context.Context, token models.EmailToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.Token] = token
	return nil
}

func (r *fakeTokenRepo) ConsumeByToken(_ context.Context, token string, kind models.TokenKind) (models.EmailToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok || t.Kind != kind {
		return models.EmailToken{}, repository.ErrTokenRowNotFound
	}
	delete(r.tokens, token)
	return t, nil
}

func (r *fakeTokenRepo) GetByToken(_ context.Context, token string, kind models.TokenKind) (models.EmailToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok || t.Kind != kind {
		return models.EmailToken{}, repository.ErrTokenRowNotFound
	}
	return t, nil
}

func (r *fakeTokenRepo) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
	return nil
}

func (r *fakeTokenRepo) DeleteByEmailAndKind(_ context.Context, email string, kind models.TokenKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, t := range r.tokens {
		if t.Email == email && t.Kind == kind {
			delete(r.tokens, k)
		}
	}
	return nil
}

func (r *fakeTokenRepo) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	now := time.Now()
	for k, t := range r.tokens {
		if t.ExpiresAt.Before(now) {
			delete(r.tokens, k)
			removed++
		}
	}
	return removed, nil
}

func (r *fakeTokenRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}

type fakeLinkRepo struct {
	mu    sync.Mutex
	links []models.LinkedAccount
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{}
}

func (r *fakeLinkRepo) Create(_ context.Context, account models.LinkedAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.links {
		if l.Provider == account.Provider && l.ProviderAccountID == account.ProviderAccountID {
			return repository.ErrDuplicateLink
		}
		if l.Provider == account.Provider && l.UserID == account.UserID {
			return repository.ErrDuplicateLink
		}
	}
	r.links = append(r.links, account)
	return nil
}

func (r *fakeLinkRepo) FindByProviderAccount(_ context.Context, provider, providerAccountID string) (models.LinkedAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.links {
		if l.Provider == provider && l.ProviderAccountID == providerAccountID {
			return l, nil
		}
	}
	return models.LinkedAccount{}, repository.ErrLinkedAccountNotFound
}

func (r *fakeLinkRepo) FindByUserAndProvider(_ context.Context, userID, provider string) (models.LinkedAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.links {
		if l.UserID == userID && l.Provider == provider {
			return l, nil
		}
	}
	return models.LinkedAccount{}, repository.ErrLinkedAccountNotFound
}

type fakeMigrator struct {
	mu    sync.Mutex
	calls []string // "email->userID"
}

func (m *fakeMigrator) AttachGuestApplications(_ context.Context, email string, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, email+"->"+userID)
	return nil
}

// fakeLimiter mimics the redis cooldown: first call per key admits, later
// calls within the window refuse.
type fakeLimiter struct {
	mu     sync.Mutex
	window time.Duration
	seen   map[string]time.Time
}

func newFakeLimiter(window time.Duration) *fakeLimiter {
	return &fakeLimiter{window: window, seen: map[string]time.Time{}}
}

func (l *fakeLimiter) CheckAndRecord(_ context.Context, email string, kind models.TokenKind) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := string(kind) + ":" + email
	if at, ok := l.seen[key]; ok {
		if remaining := l.window - time.Since(at); remaining > 0 {
			return &CooldownError{Remaining: remaining}
		}
	}
	l.seen[key] = time.Now()
	return nil
}

type recordedEmail struct {
	To      string
	Subject string
	HTML    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []recordedEmail
}

func (m *fakeMailer) Send(to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, recordedEmail{To: to, Subject: subject, HTML: html})
	return nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}
