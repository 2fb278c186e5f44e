// Command mondo is a CLI client for the Mondo banking API.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mondosdk/mondo"
	"github.com/mondosdk/mondo/secstore"
)

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "mondo")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "mondo")
}

func storePath() string { return filepath.Join(cfgDir(), "secrets.bin") }

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func printJSON(v any) {
	j, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(j))
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// newClient builds the SDK client from the environment. The secret
// store passphrase comes from MONDO_STORE_KEY so the persisted token
// survives restarts without being readable on disk.
func newClient(log *zap.Logger) *mondo.Client {
	_ = godotenv.Load()

	passphrase := env("MONDO_STORE_KEY", "")
	if passphrase == "" {
		fail(fmt.Errorf("MONDO_STORE_KEY is required"))
	}
	store, err := secstore.Open(storePath(), []byte(passphrase))
	if err != nil {
		fail(err)
	}

	c, err := mondo.New(mondo.Config{
		ClientID:     env("MONDO_CLIENT_ID", ""),
		ClientSecret: env("MONDO_CLIENT_SECRET", ""),
		RedirectURI:  env("MONDO_REDIRECT_URI", "mondoapp://oauth/callback"),
		BaseURL:      env("MONDO_API_URL", ""),
		AuthURL:      env("MONDO_AUTH_URL", ""),
	},
		mondo.WithLogger(log),
		mondo.WithSecretStore(store),
	)
	if err != nil {
		fail(err)
	}
	return c
}

func withTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func cmdLogin(c *mondo.Client, args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("username", "", "username (password grant)")
	password := fs.String("password", "", "password (password grant)")
	web := fs.Bool("web", false, "use the authorization-code flow")
	_ = fs.Parse(args)

	ctx, cancel := withTimeout()
	defer cancel()

	if *web {
		auth, err := c.BeginAuth()
		if err != nil {
			fail(err)
		}
		fmt.Println("open in a browser:")
		fmt.Println("  " + auth.URL())
		fmt.Print("paste the redirect URL: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			fail(err)
		}
		if err := auth.HandleRedirect(ctx, strings.TrimSpace(line)); err != nil {
			fail(err)
		}
	} else {
		if *username == "" || *password == "" {
			fmt.Fprintln(os.Stderr, "username and password required (or use -web)")
			os.Exit(2)
		}
		if err := c.LoginWithPassword(ctx, *username, *password); err != nil {
			fail(err)
		}
	}
	fmt.Println("logged in")
}

func cmdAccounts(c *mondo.Client) {
	ctx, cancel := withTimeout()
	defer cancel()
	accounts, err := c.ListAccounts(ctx)
	if err != nil {
		fail(err)
	}
	printJSON(accounts)
}

func cmdBalance(c *mondo.Client, args []string) {
	fs := flag.NewFlagSet("balance", flag.ExitOnError)
	account := fs.String("account", "", "account id")
	_ = fs.Parse(args)
	if *account == "" {
		fmt.Fprintln(os.Stderr, "account required")
		os.Exit(2)
	}
	ctx, cancel := withTimeout()
	defer cancel()
	balance, err := c.GetBalance(ctx, *account)
	if err != nil {
		fail(err)
	}
	printJSON(balance)
}

func cmdTransactions(c *mondo.Client, args []string) {
	fs := flag.NewFlagSet("transactions", flag.ExitOnError)
	account := fs.String("account", "", "account id")
	expand := fs.Bool("expand-merchant", false, "embed merchant objects")
	limit := fs.Int("limit", 0, "page size")
	since := fs.String("since", "", "cursor: transaction id or RFC 3339 timestamp")
	_ = fs.Parse(args)
	if *account == "" {
		fmt.Fprintln(os.Stderr, "account required")
		os.Exit(2)
	}
	opts := &mondo.TransactionsOptions{Limit: *limit, Since: *since}
	if *expand {
		opts.Expand = []string{mondo.ExpandMerchant}
	}
	ctx, cancel := withTimeout()
	defer cancel()
	txs, err := c.ListTransactions(ctx, *account, opts)
	if err != nil {
		fail(err)
	}
	printJSON(txs)
}

func cmdAnnotate(c *mondo.Client, args []string) {
	fs := flag.NewFlagSet("annotate", flag.ExitOnError)
	id := fs.String("id", "", "transaction id")
	key := fs.String("key", "", "metadata key")
	value := fs.String("value", "", "metadata value")
	_ = fs.Parse(args)
	if *id == "" || *key == "" {
		fmt.Fprintln(os.Stderr, "id and key required")
		os.Exit(2)
	}
	ctx, cancel := withTimeout()
	defer cancel()
	tx, err := c.GetTransaction(ctx, *id)
	if err != nil {
		fail(err)
	}
	tx, err = c.AnnotateTransaction(ctx, tx, *key, *value)
	if err != nil {
		fail(err)
	}
	printJSON(tx)
}

func cmdFeed(c *mondo.Client, args []string) {
	fs := flag.NewFlagSet("feed", flag.ExitOnError)
	account := fs.String("account", "", "account id")
	_ = fs.Parse(args)
	if *account == "" {
		fmt.Fprintln(os.Stderr, "account required")
		os.Exit(2)
	}
	ctx, cancel := withTimeout()
	defer cancel()
	items, err := c.ListFeed(ctx, *account)
	if err != nil {
		fail(err)
	}
	printJSON(items)
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: mondo <command> [flags]

commands:
  login         -username U -password P | -web
  accounts
  balance       -account ID
  transactions  -account ID [-expand-merchant] [-limit N] [-since CURSOR]
  annotate      -id TX -key K [-value V]
  feed          -account ID
  logout`)
	os.Exit(2)
}

func main() {
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
	}

	log := zap.NewNop()
	if *verbose {
		log, _ = zap.NewDevelopment()
	}
	defer func() { _ = log.Sync() }()

	c := newClient(log)
	args := flag.Args()[1:]

	switch flag.Arg(0) {
	case "login":
		cmdLogin(c, args)
	case "accounts":
		cmdAccounts(c)
	case "balance":
		cmdBalance(c, args)
	case "transactions":
		cmdTransactions(c, args)
	case "annotate":
		cmdAnnotate(c, args)
	case "feed":
		cmdFeed(c, args)
	case "logout":
		if err := c.SignOut(); err != nil {
			fail(err)
		}
		fmt.Println("logged out")
	default:
		usage()
	}
}
