package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/safeplate/internal/auth"
	"github.com/gosuda/safeplate/internal/domain"
)

// runToken prints a signed access token for local testing. Tokens in
// production come from the external identity service sharing
// SAFEPLATE_JWT_SECRET.
func runToken(args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	userFlag := fs.String("user", "", "user id (uuid); random when empty")
	role := fs.String("role", domain.RoleBusiness, "role claim: business, consumer or admin")
	ttl := fs.Duration("ttl", time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	secret := os.Getenv("SAFEPLATE_JWT_SECRET")
	if secret == "" {
		return errors.New("SAFEPLATE_JWT_SECRET is required")
	}

	userID := uuid.New()
	if *userFlag != "" {
		parsed, err := uuid.Parse(*userFlag)
		if err != nil {
			return fmt.Errorf("token: invalid -user: %w", err)
		}
		userID = parsed
	}

	switch *role {
	case domain.RoleBusiness, domain.RoleConsumer, domain.RoleAdmin:
	default:
		return fmt.Errorf("token: unknown role %q", *role)
	}

	tok, err := auth.IssueAccessToken(secret, userID, *role, *ttl)
	if err != nil {
		return err
	}

	fmt.Println(tok)
	return nil
}
