package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/eringen/editshell"
	"github.com/eringen/editshell/client"
	"github.com/eringen/editshell/internal/log"
	"github.com/eringen/editshell/views"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(os.Args[2:])
	case "login":
		err = runSession(os.Args[2:], true)
	case "logout":
		err = runSession(os.Args[2:], false)
	case "token":
		err = runToken(os.Args[2:])
	case "version":
		fmt.Printf("editshell %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", editshell.EnvOr("EDITSHELL_CONFIG", ""), "optional YAML config file")
	_ = fs.Parse(args)

	cfg, err := editshell.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	log.Configure(log.Config{Level: cfg.LogLevel})

	app := editshell.New(cfg, views.Default())
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		_ = app.Echo.Close()
	}()
	return app.Start()
}

func runSession(args []string, login bool) error {
	name := "logout"
	if login {
		name = "login"
	}
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	siteURL := fs.String("url", editshell.EnvOr("SITE_URL", "http://localhost:3000"), "site root URL")
	path := fs.String("path", "/", "page to reload afterwards")
	storePath := fs.String("store", defaultStorePath(), "local token storage file")
	_ = fs.Parse(args)

	httpClient, err := client.NewHTTPClient()
	if err != nil {
		return err
	}
	nav, err := client.NewHTTPNavigator(*siteURL, httpClient)
	if err != nil {
		return err
	}
	c, err := client.New(client.Options{
		BaseURL:    *siteURL,
		Path:       *path,
		HTTPClient: httpClient,
		Tokens:     client.NewFileTokenStore(*storePath),
		Navigator:  nav,
	})
	if err != nil {
		return err
	}

	ctx := context.Background()
	if login {
		err = c.Login(ctx)
	} else {
		err = c.Logout(ctx)
	}
	var loginErr *client.LoginError
	if errors.As(err, &loginErr) {
		return fmt.Errorf("login rejected (%d): %s", loginErr.Status, loginErr.Message)
	}
	if err != nil {
		return err
	}
	fmt.Printf("reloaded %s: status %d, edit mode %t\n", *path, nav.Status, nav.EditMode)
	return nil
}

// runToken writes the signed token issued by /api/create-github-access-token
// into local token storage.
func runToken(args []string) error {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	storePath := fs.String("store", defaultStorePath(), "local token storage file")
	clearToken := fs.Bool("clear", false, "remove the stored token")
	_ = fs.Parse(args)

	store := client.NewFileTokenStore(*storePath)
	if *clearToken {
		return store.SetToken("")
	}
	if fs.NArg() != 1 {
		return errors.New("usage: editshell token [-store file] <signed-token>")
	}
	return store.SetToken(fs.Arg(0))
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "editshell-storage.json"
	}
	return filepath.Join(dir, "editshell", "storage.json")
}

func printUsage() {
	fmt.Println(`editshell - static site shell with a GitHub-backed edit mode

Usage:
  editshell <command> [arguments]

Commands:
  serve [-config file]                  Serve the site
  login [-url u] [-path p] [-store f]   Enter edit mode with the stored token
  logout [-url u] [-path p]             Leave edit mode
  token [-store f] [-clear] <token>     Store or clear the signed access token
  version                               Print the editshell version
  help                                  Show this help message`)
}
