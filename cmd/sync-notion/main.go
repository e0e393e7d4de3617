package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dsommer/bankfeed/internal/bank"
	"github.com/dsommer/bankfeed/internal/domain"
	"github.com/dsommer/bankfeed/internal/logger"
	"github.com/dsommer/bankfeed/internal/notionsync"
)

func main() {
	// Initialize structured logger
	log := logger.New()

	// Parse CLI flags
	authURL := flag.String("auth-url", os.Getenv("BANKFEED_AUTH_URL"), "Base URL of the auth domain")
	apiURL := flag.String("api-url", os.Getenv("BANKFEED_API_URL"), "Base URL of the banking domain")
	sinceStr := flag.String("since", "", "Sync transactions since this date (YYYY-MM-DD, default 90 days ago)")
	notionToken := flag.String("notion-token", "", "Notion API token (required)")
	notionDBID := flag.String("notion-db-id", "", "Notion database ID (required)")
	dryRun := flag.Bool("dry-run", false, "Dry run mode - preview changes without syncing")
	flag.Parse()

	// Validate required flags
	if *notionToken == "" {
		log.Fatal().Msg("Error: --notion-token is required")
	}
	if *notionDBID == "" {
		log.Fatal().Msg("Error: --notion-db-id is required")
	}

	since := time.Now().AddDate(0, 0, -90)
	if *sinceStr != "" {
		parsed, err := time.Parse("2006-01-02", *sinceStr)
		if err != nil {
			log.Fatal().Err(err).Str("since", *sinceStr).Msg("Error: invalid since date, expected YYYY-MM-DD")
		}
		since = parsed
	}

	creds := domain.Credentials{
		Username: os.Getenv("BANKFEED_USERNAME"),
		Password: os.Getenv("BANKFEED_PASSWORD"),
	}
	if creds.Username == "" || creds.Password == "" {
		log.Fatal().Msg("Error: BANKFEED_USERNAME and BANKFEED_PASSWORD are required")
	}

	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	// Add logger to context
	ctx = logger.WithContext(ctx, log)

	log.Info().
		Time("since", since).
		Bool("dry_run", *dryRun).
		Msg("Starting Notion sync")

	session, err := bank.NewSession(bank.Config{
		AuthBaseURL: *authURL,
		APIBaseURL:  *apiURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Error: --auth-url and --api-url are required")
	}

	challenge, err := session.Login(ctx, creds)
	if err != nil {
		log.Fatal().Err(err).Msg("Login failed")
	}
	if challenge != nil {
		fmt.Fprintf(os.Stderr, "%s\n%s\n%s: ", challenge.Title, challenge.Instruction, challenge.InputLabel)
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if err := session.SubmitOTP(ctx, strings.TrimSpace(line)); err != nil {
			log.Fatal().Err(err).Msg("One-time code rejected")
		}
	}
	defer session.Logout(ctx)

	results, err := session.Fetch(ctx, since)
	if err != nil {
		log.Fatal().Err(err).Msg("Fetch failed")
	}

	// Initialize Notion client
	notionClient := notionsync.NewNotionClient(*notionToken)

	// Sync transactions
	if err := notionsync.SyncTransactions(ctx, notionClient, *notionDBID, results, *dryRun); err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}

	fmt.Println("Sync completed successfully.")
}
