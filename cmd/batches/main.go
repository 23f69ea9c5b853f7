// Command batches lists the purchased batch catalog so the operator can
// fill selected_batch_ids in the config file. It verifies the configured
// token, fetches the catalog once and prints one line per batch.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	appcfg "pw-announcer/internal/config"
	"pw-announcer/internal/domain/entity"
	"pw-announcer/internal/infra/remote"
	envcfg "pw-announcer/pkg/config"
)

func main() {
	logLevel := slog.LevelWarn
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	configPath := envcfg.GetEnvString("CONFIG_PATH", "config.yaml")
	store, err := appcfg.NewStore(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration from %s: %v\n", configPath, err)
		os.Exit(1)
	}
	cfg := store.Current()

	cred := entity.Credential(cfg.Token)
	if cred.IsPlaceholder() {
		fmt.Fprintln(os.Stderr, "access token is not configured; paste your bearer token into the token field of the config file")
		os.Exit(1)
	}

	client := buildClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	verdict, failure := client.VerifyToken(ctx)
	switch verdict {
	case remote.VerdictInvalid:
		fmt.Fprintln(os.Stderr, "the remote API rejected the access token; refresh it from a logged-in browser session")
		os.Exit(1)
	case remote.VerdictUnknown:
		fmt.Fprintf(os.Stderr, "warning: token verification inconclusive (%v), trying the catalog anyway\n", failure)
	}

	batches, bfail := client.ListBatches(ctx)
	if bfail != nil {
		fmt.Fprintf(os.Stderr, "failed to fetch the purchased catalog: %v\n", bfail)
		os.Exit(1)
	}
	if len(batches) == 0 {
		fmt.Println("no purchased batches found for this account")
		return
	}

	fmt.Printf("purchased batches (%d):\n\n", len(batches))
	for i, b := range batches {
		fmt.Printf("%2d. %s\n", i+1, b.Name)
		fmt.Printf("    id:   %s\n", b.ID)
		if b.Slug != "" {
			fmt.Printf("    slug: %s\n", b.Slug)
		}
		if b.StartDate != "" || b.EndDate != "" {
			fmt.Printf("    runs: %s .. %s\n", orDash(b.StartDate), orDash(b.EndDate))
		}
		fmt.Println()
	}

	fmt.Println("add the ids you want to watch to selected_batch_ids in the config file, e.g.:")
	fmt.Println()
	fmt.Println("selected_batch_ids:")
	for i, b := range batches {
		if i >= 2 {
			break
		}
		fmt.Printf("  - %q\n", b.ID)
	}
}

func buildClient(cfg *appcfg.RuntimeConfig) *remote.Client {
	rc := remote.DefaultConfig()
	if cfg.API.BaseURL != "" {
		rc.BaseURL = cfg.API.BaseURL
	}
	if cfg.API.Referer != "" {
		rc.Referer = cfg.API.Referer
	}
	if cfg.API.Timeout > 0 {
		rc.Timeout = cfg.API.Timeout.Std()
	}
	rc.Token = entity.Credential(cfg.Token)
	return remote.NewClient(rc)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
