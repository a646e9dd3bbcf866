package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/faithbaptist/manna"
	"github.com/faithbaptist/manna/config"
	"github.com/faithbaptist/manna/identity"
	"github.com/rs/zerolog"
)

// resolveSession signs the member in. A stored token wins over email and
// password. It returns a nil session when neither is configured, and when
// the credentials are rejected, so the chat can still open signed out.
// Env values are passed in; only main reads the environment.
func resolveSession(ctx context.Context, cfg *config.Client, password string, log zerolog.Logger) (*identity.Session, error) {
	if cfg.Token != "" {
		s, err := identity.SessionFromToken(cfg.Token)
		if err != nil {
			log.Warn().Err(err).Msg("stored token is unusable")
			return nil, nil
		}
		return s, nil
	}
	if cfg.Email == "" {
		return nil, nil
	}
	if password == "" {
		return nil, fmt.Errorf("MANNA_PASSWORD is required to sign in as %s", cfg.Email)
	}

	client := identity.NewClient(cfg.AuthURL, cfg.AnonKey, identity.WithLogger(log))
	defer client.Close()
	s, err := client.SignIn(ctx, cfg.Email, password)
	if errors.Is(err, manna.ErrSignedOut) {
		log.Warn().Err(err).Str("email", cfg.Email).Msg("sign in rejected")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	log.Info().Str("user_id", s.Member.UserID).Str("role", string(s.Member.Role)).Msg("signed in")
	return s, nil
}
