package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/wiretap/internal/app"
	"github.com/sadopc/wiretap/internal/capture"
	"github.com/sadopc/wiretap/internal/config"
	"github.com/sadopc/wiretap/internal/store"
	"github.com/sadopc/wiretap/internal/trace"
	"github.com/sadopc/wiretap/pkg/version"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "send":
			sendCmd()
			return
		case "clear":
			clearCmd()
			return
		case "version":
			fmt.Printf("wiretap %s (%s) built %s\n", version.Version, version.Commit, version.Date)
			return
		case "help":
			printHelp()
			return
		}
	}
	tuiCmd()
}

func printHelp() {
	fmt.Fprintf(os.Stderr, `wiretap - Inspect HTTP exchanges as curl-style traces

Usage:
  wiretap [flags]                  Launch TUI (interactive mode)
  wiretap <command> [args]         Run a subcommand

Commands:
  send      Send a request headlessly and print its trace
  clear     Delete all captured exchanges
  version   Print version information
  help      Show this help message

TUI Flags:
  --config <path>   Path to a config.yaml
  --version         Print version and exit

Run 'wiretap send --help' for more information.
`)
}

// headerList collects repeated -H flags.
type headerList []capture.Header

func (h *headerList) String() string {
	return fmt.Sprintf("%d headers", len(*h))
}

func (h *headerList) Set(value string) error {
	name, val, ok := strings.Cut(value, ":")
	if !ok {
		return fmt.Errorf("header must be 'Name: Value', got %q", value)
	}
	*h = append(*h, capture.Header{
		Name:  strings.TrimSpace(name),
		Value: strings.TrimSpace(val),
	})
	return nil
}

func sendCmd() {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	methodFlag := fs.String("X", "GET", "Request method")
	bodyFlag := fs.String("d", "", "Request body")
	timeoutFlag := fs.Duration("timeout", 30*time.Second, "Request timeout")
	var headers headerList
	fs.Var(&headers, "H", "Request header 'Name: Value' (repeatable)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: wiretap send [flags] <url>\n\n")
		fmt.Fprintf(os.Stderr, "Send a request, persist the exchange, and print its trace.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  wiretap send https://example.com\n")
		fmt.Fprintf(os.Stderr, "  wiretap send -X POST -H 'Content-Type: application/json' -d '{}' https://api.test/users\n")
	}

	if err := fs.Parse(os.Args[2:]); err != nil {
		os.Exit(2)
	}
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	cfg.Timeout = *timeoutFlag
	st := openStore(cfg)
	defer st.Close()

	req := &capture.Request{
		ID:        capture.NewRequestID(),
		CreatedAt: capture.Now(),
		Method:    strings.ToUpper(*methodFlag),
		URL:       fs.Arg(0),
		Headers:   headers,
		Body:      []byte(*bodyFlag),
	}
	if err := st.CreateRequest(req); err != nil {
		fatal(err)
	}

	executor := capture.NewExecutor(cfg.DataDir, cfg.Timeout)
	ex, err := executor.Send(context.Background(), req)
	if err != nil {
		fatal(err)
	}
	if err := st.SaveExchange(ex); err != nil {
		fatal(err)
	}

	body, err := st.BodyText(ex)
	if err != nil {
		fatal(err)
	}
	tr, err := trace.Render(trace.Input{Exchange: ex, Method: req.Method, Body: body.Data})
	if err != nil {
		fatal(err)
	}
	fmt.Println(tr.String())

	if ex.Error != "" {
		os.Exit(1)
	}
}

func clearCmd() {
	cfg := config.Load()
	st := openStore(cfg)
	defer st.Close()

	if err := st.Clear(); err != nil {
		fatal(err)
	}
	fmt.Println("history cleared")
}

func tuiCmd() {
	versionFlag := flag.Bool("version", false, "Print version and exit")
	configFlag := flag.String("config", "", "Path to a config.yaml")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("wiretap %s (%s) built %s\n", version.Version, version.Commit, version.Date)
		os.Exit(0)
	}

	var cfg config.Config
	if *configFlag != "" {
		cfg = config.LoadFrom(*configFlag)
	} else {
		cfg = config.Load()
	}

	st := openStore(cfg)
	defer st.Close()

	p := tea.NewProgram(
		app.New(cfg, st),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func openStore(cfg config.Config) *store.Store {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		fatal(err)
	}
	st, err := store.New(filepath.Join(cfg.DataDir, "wiretap.db"))
	if err != nil {
		fatal(err)
	}
	return st
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
