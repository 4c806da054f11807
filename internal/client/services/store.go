package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/clouddash/internal/client/models"
	"github.com/dmitrijs2005/clouddash/internal/client/repositories/localstore"
)

// Durable keys. The first four make up the session and are always cleared
// together; KeyTotalFiles belongs to the statistics view and outlives it.
const (
	KeyAuthenticated = "authenticated"
	KeyUser          = "user"
	KeyUserEmail     = "user_email"
	KeyUserName      = "user_name"
	KeyTotalFiles    = "totalFiles"
)

var sessionKeys = []string{KeyAuthenticated, KeyUser, KeyUserEmail, KeyUserName}

// SessionStore persists the session across process restarts.
type SessionStore interface {
	// Load returns the stored session; ok is false when none was saved.
	Load(ctx context.Context) (s models.Session, ok bool, err error)
	Save(ctx context.Context, s models.Session) error
	Clear(ctx context.Context) error
}

// LocalSessionStore keeps the session in the local key/value table.
type LocalSessionStore struct {
	repo localstore.Repository
}

func NewLocalSessionStore(repo localstore.Repository) *LocalSessionStore {
	return &LocalSessionStore{repo: repo}
}

func (s *LocalSessionStore) Load(ctx context.Context) (models.Session, bool, error) {
	var sess models.Session

	auth, ok, err := s.repo.Get(ctx, KeyAuthenticated)
	if err != nil {
		return sess, false, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return sess, false, nil
	}
	sess.Authenticated = auth == "true"

	fields := map[string]*string{
		KeyUser:      &sess.User.Username,
		KeyUserEmail: &sess.User.Email,
		KeyUserName:  &sess.User.Name,
	}
	for key, dst := range fields {
		v, _, err := s.repo.Get(ctx, key)
		if err != nil {
			return sess, false, fmt.Errorf("load session: %w", err)
		}
		*dst = v
	}
	return sess, true, nil
}

func (s *LocalSessionStore) Save(ctx context.Context, sess models.Session) error {
	auth := "false"
	if sess.Authenticated {
		auth = "true"
	}
	err := s.repo.SetMany(ctx, map[string]string{
		KeyAuthenticated: auth,
		KeyUser:          sess.User.Username,
		KeyUserEmail:     sess.User.Email,
		KeyUserName:      sess.User.Name,
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *LocalSessionStore) Clear(ctx context.Context) error {
	if err := s.repo.Delete(ctx, sessionKeys...); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
