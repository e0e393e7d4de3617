package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dsommer/bankfeed/internal/bank"
	"github.com/dsommer/bankfeed/internal/domain"
	"github.com/dsommer/bankfeed/internal/logger"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "fetch":
		runFetch(log)
	case "accounts":
		runAccounts(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("bankfeed")
	fmt.Println("\nUsage:")
	fmt.Println("  bankfeed <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  fetch     Log in and fetch balances and transactions as JSON")
	fmt.Println("  accounts  Log in and list accounts")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nCredentials are read from BANKFEED_USERNAME and BANKFEED_PASSWORD;")
	fmt.Println("the one-time code is prompted for interactively when the portal asks.")
	fmt.Println("\nRun 'bankfeed <command> -h' for more information on a command.")
}

// portalFlags registers the flags every command shares.
func portalFlags(fs *flag.FlagSet) (authURL, apiURL *string) {
	authURL = fs.String("auth-url", os.Getenv("BANKFEED_AUTH_URL"), "Base URL of the auth domain")
	apiURL = fs.String("api-url", os.Getenv("BANKFEED_API_URL"), "Base URL of the banking domain")
	return authURL, apiURL
}

func runFetch(log zerolog.Logger) {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	authURL, apiURL := portalFlags(fs)
	sinceStr := fs.String("since", "", "Fetch transactions since this date (YYYY-MM-DD, default 90 days ago)")
	fs.Parse(os.Args[2:])

	since := time.Now().AddDate(0, 0, -90)
	if *sinceStr != "" {
		parsed, err := time.Parse("2006-01-02", *sinceStr)
		if err != nil {
			log.Fatal().Err(err).Str("since", *sinceStr).Msg("Error: invalid since date, expected YYYY-MM-DD")
		}
		since = parsed
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	log = log.With().Str("run_id", uuid.NewString()).Logger()
	ctx = logger.WithContext(ctx, log)

	session := login(ctx, log, *authURL, *apiURL)
	defer session.Logout(ctx)

	results, err := session.Fetch(ctx, since)
	if err != nil {
		log.Fatal().Err(err).Msg("Fetch failed")
	}

	writeJSON(log, results)
}

func runAccounts(log zerolog.Logger) {
	fs := flag.NewFlagSet("accounts", flag.ExitOnError)
	authURL, apiURL := portalFlags(fs)
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	log = log.With().Str("run_id", uuid.NewString()).Logger()
	ctx = logger.WithContext(ctx, log)

	session := login(ctx, log, *authURL, *apiURL)
	defer session.Logout(ctx)

	accounts, err := session.Accounts(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Listing accounts failed")
	}

	writeJSON(log, accounts)
}

// login drives the full challenge flow: primary credentials from the
// environment, then an interactive prompt for the SMS one-time code when the
// portal asks for one.
func login(ctx context.Context, log zerolog.Logger, authURL, apiURL string) *bank.Session {
	creds := domain.Credentials{
		Username: os.Getenv("BANKFEED_USERNAME"),
		Password: os.Getenv("BANKFEED_PASSWORD"),
	}
	if creds.Username == "" || creds.Password == "" {
		log.Fatal().Msg("Error: BANKFEED_USERNAME and BANKFEED_PASSWORD are required")
	}

	session, err := bank.NewSession(bank.Config{
		AuthBaseURL: authURL,
		APIBaseURL:  apiURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Error: --auth-url and --api-url are required")
	}

	challenge, err := session.Login(ctx, creds)
	if err != nil {
		log.Fatal().Err(err).Msg("Login failed")
	}

	if challenge != nil {
		code := promptOTP(challenge)
		if err := session.SubmitOTP(ctx, code); err != nil {
			log.Fatal().Err(err).Msg("One-time code rejected")
		}
	}

	return session
}

func promptOTP(challenge *domain.AuthChallenge) string {
	fmt.Fprintf(os.Stderr, "%s\n%s\n%s: ", challenge.Title, challenge.Instruction, challenge.InputLabel)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func writeJSON(log zerolog.Logger, v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatal().Err(err).Msg("Failed to write output")
	}
}
