package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/wattline/wattline/backend-go/internal/auth"
	"github.com/wattline/wattline/backend-go/internal/config"
)

// runToken prints a signed token for the server's JWT_SECRET.
func runToken(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	subject := fs.String("subject", "dev", "token subject (user id)")
	ttl := fs.Duration("ttl", auth.DefaultTokenTTL, "token lifetime")
	secret := fs.String("secret", "", "signing secret (default: JWT_SECRET from the environment)")
	if err := fs.Parse(args); err != nil {
		return &usageError{err: err}
	}
	if *subject == "" {
		return usageErrorf("subject must not be empty")
	}

	if *secret == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		*secret = cfg.JWTSecret
	}

	token, err := auth.NewService(*secret).IssueToken(*subject, *ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, token)
	return err
}
