package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/noah-isme/contoso-university-api/internal/models"
	"github.com/noah-isme/contoso-university-api/internal/service"
	"github.com/noah-isme/contoso-university-api/pkg/config"
)

// issue-token prints a signed bearer token for staff tooling and local testing.
func main() {
	var (
		subject string
		role    string
		ttl     time.Duration
	)
	flag.StringVar(&subject, "subject", "", "Token subject, usually the staff e-mail")
	flag.StringVar(&role, "role", string(models.RoleRegistrar), "Role claim: ADMIN or REGISTRAR")
	flag.DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to JWT_EXPIRATION)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if ttl <= 0 {
		ttl = cfg.Auth.Expiration
	}

	tokens := service.NewTokenService(service.TokenConfig{
		Secret:     cfg.Auth.Secret,
		Issuer:     cfg.Auth.Issuer,
		Expiration: ttl,
	})
	issued, err := tokens.Issue(subject, models.UserRole(role))
	if err != nil {
		log.Fatalf("failed to issue token: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(issued); err != nil {
		log.Fatalf("failed to write token: %v", err)
	}
}
