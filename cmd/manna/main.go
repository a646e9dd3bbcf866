// Command manna is the congregation's Bible study chat in the terminal.
//
// Usage:
//
//	MANNA_TOKEN=eyJ... manna [flags]
//	MANNA_EMAIL=ruth@example.org MANNA_PASSWORD=... manna [flags]
//
// Flags:
//
//	-config string      Path to a YAML config file
//	-transcript string  Path to a transcript file to resume and save on exit
//	-email string       Sign in with this email (password from MANNA_PASSWORD)
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/faithbaptist/manna"
	bt "github.com/faithbaptist/manna/bubbletea"
	"github.com/faithbaptist/manna/chat"
	"github.com/faithbaptist/manna/config"
	mannajson "github.com/faithbaptist/manna/json"
	"github.com/faithbaptist/manna/logger"
	"github.com/faithbaptist/manna/openai"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "manna: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath     = flag.String("config", "", "Path to a YAML config file")
		transcriptPath = flag.String("transcript", "", "Path to a transcript file to resume and save on exit")
		email          = flag.String("email", "", "Sign in with this email (password from MANNA_PASSWORD)")
	)
	flag.Parse()

	cfg, err := config.LoadClient(*configPath, nil)
	if err != nil {
		return err
	}
	if *transcriptPath != "" {
		cfg.TranscriptPath = *transcriptPath
	}
	if *email != "" {
		cfg.Email = *email
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// The TUI owns the terminal, so logs go to a file.
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, logFile)
	if err != nil {
		return err
	}

	session, err := resolveSession(ctx, cfg, os.Getenv("MANNA_PASSWORD"), log)
	if err != nil {
		return err
	}
	member, err := session.Identity(ctx)
	if err != nil {
		// Signed-out visitors still see the greeting and the sign-in prompt.
		member = nil
	}

	transcript, err := loadOrCreateTranscript(cfg.TranscriptPath, time.Now())
	if err != nil {
		return err
	}

	var token string
	if session != nil {
		token = session.AccessToken
	}
	conv := chat.New(openai.New(cfg.ChatURL, token), transcript,
		chat.WithIdentity(member),
		chat.WithLogger(log),
	)
	send := func(ctx context.Context, text string, onEvent func(manna.Event)) error {
		return conv.Send(ctx, text, chat.WithEventHandler(onEvent))
	}

	m := bt.New(send, transcript, manna.DefaultTheme(), bt.WithIdentity(member))
	if err := bt.Run(ctx, m); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}

	if cfg.TranscriptPath != "" {
		if err := mannajson.Save(cfg.TranscriptPath, transcript, time.Now()); err != nil {
			return fmt.Errorf("save transcript: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Transcript saved to %s\n", cfg.TranscriptPath)
	}
	return nil
}

// loadOrCreateTranscript resumes the transcript at path, or starts a new one
// when path is empty or does not exist yet.
func loadOrCreateTranscript(path string, now time.Time) (*manna.Transcript, error) {
	if path == "" {
		return manna.NewTranscript(manna.DefaultGreeting, now), nil
	}
	t, err := mannajson.Load(path)
	switch {
	case err == nil:
		return t, nil
	case errors.Is(err, os.ErrNotExist):
		return manna.NewTranscript(manna.DefaultGreeting, now), nil
	default:
		return nil, fmt.Errorf("load transcript %s: %w", filepath.Base(path), err)
	}
}
