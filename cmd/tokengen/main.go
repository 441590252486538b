// Package main mints caller tokens for local testing of the registry API.
// Tokens are signed with the same key the server reads from JWT_SIGNING_KEY.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"

	"microauth/internal/callertoken"
	"microauth/internal/platform/config"
)

type options struct {
	Wallet string        `short:"w" long:"wallet" required:"true" description:"caller wallet address (60 letters A-Z)"`
	TTL    time.Duration `long:"ttl" default:"15m" description:"token lifetime"`
	Key    string        `long:"key" env:"JWT_SIGNING_KEY" default:"dev-signing-key-change-in-production" description:"HMAC signing key"`
	Issuer string        `long:"issuer" env:"JWT_ISSUER" default:"microauth" description:"token issuer"`
	JSON   bool          `long:"json" description:"print JSON instead of text"`
}

type tokenOutput struct {
	Token     string            `json:"token"`
	Type      string            `json:"type"`
	Wallet    string            `json:"wallet"`
	ExpiresIn string            `json:"expires_in"`
	ExpiresAt time.Time         `json:"expires_at"`
	JTI       string            `json:"jti"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			return
		}
		os.Exit(2)
	}

	svc := callertoken.NewService(opts.Key, opts.Issuer, opts.TTL)
	token, claims, err := svc.Issue(opts.Wallet)
	if err != nil {
		fmt.Fprintln(os.Stderr, "tokengen:", err)
		os.Exit(1)
	}

	out := tokenOutput{
		Token:     token,
		Type:      "Bearer",
		Wallet:    claims.Wallet(),
		ExpiresIn: opts.TTL.String(),
		ExpiresAt: claims.ExpiresAt.Time,
		JTI:       claims.ID,
		Usage: map[string]string{
			"header": "Authorization: Bearer " + token,
		},
	}

	if opts.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintln(os.Stderr, "tokengen:", err)
			os.Exit(1)
		}
		return
	}

	keyType := "custom"
	if opts.Key == config.DevSigningKey {
		keyType = "dev (will NOT work in production)"
	}
	fmt.Printf("Signing Key: %s\n", keyType)
	fmt.Printf("Expires In:  %s\n", out.ExpiresIn)
	fmt.Printf("Wallet:      %s\n", out.Wallet)
	fmt.Printf("JTI:         %s\n", out.JTI)
	fmt.Println()
	fmt.Println(out.Usage["header"])
}
