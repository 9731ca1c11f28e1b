// devtoken mints HS256 access tokens accepted by the API when JWT_SECRET is
// set. Intended for local runs and scripted integration tests.
//
//	devtoken --sub alice --email alice@example.com --ttl 1h
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/chatmarkmap/chatmarkmap/api/internal/identity"
	"github.com/chatmarkmap/chatmarkmap/api/internal/tokens"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Getenv); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer, getenv func(string) string) error {
	var (
		caller identity.Caller
		secret string
		ttl    time.Duration
	)
	flagSet := pflag.NewFlagSet("devtoken", pflag.ContinueOnError)
	flagSet.SetOutput(out)
	flagSet.StringVar(&caller.Subject, "sub", "", "subject (caller identifier), required")
	flagSet.StringVar(&caller.Email, "email", "", "email claim")
	flagSet.StringVar(&caller.Name, "name", "", "name claim")
	flagSet.StringVar(&secret, "secret", "", "HMAC secret (default: $JWT_SECRET)")
	flagSet.DurationVar(&ttl, "ttl", time.Hour, "token lifetime")

	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if secret == "" {
		secret = getenv("JWT_SECRET")
	}
	if caller.Subject == "" {
		return errors.New("--sub is required")
	}
	if ttl <= 0 {
		return errors.New("--ttl must be positive")
	}

	tok, err := tokens.GenerateAccessToken(secret, caller, ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, tok)
	return err
}
