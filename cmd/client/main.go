package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"linkin/config"
	"linkin/internal/api"
	"linkin/internal/auth"
	"linkin/internal/session"
	"linkin/internal/socket"
	"linkin/internal/storage"
	"linkin/pkg/logger"
)

// logNotifier routes user-facing notifications to the log; a UI would
// substitute its own toast implementation here.
type logNotifier struct {
	log *logger.Logger
}

func (n *logNotifier) Success(message string) { n.log.Infof("%s", message) }
func (n *logNotifier) Error(message string)   { n.log.Errorf("%s", message) }

func main() {
	cfg := config.LoadConfig()
	lg := logger.New(cfg.AppMode)
	logger.SetGlobalLogger(lg)
	defer lg.Sync()

	state, err := storage.Open(cfg.StatePath)
	if err != nil {
		lg.Errorf("Failed to open state store: %v", err)
		os.Exit(1)
	}
	defer state.Close()

	if lang, _ := state.Language(); lang == "" {
		_ = state.SaveLanguage(cfg.DefaultLanguage)
	}

	notifier := &logNotifier{log: lg}
	apiClient := api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, func() string {
		t, _ := state.Token()
		return t
	})
	channel := socket.NewManager(cfg.SocketURL, cfg.ReconnectDelay, cfg.ReconnectAttempts, func(err error) {
		notifier.Error("realtime connection lost: " + err.Error())
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	token := resolveToken(ctx, state, apiClient, lg)
	if token == "" {
		lg.Errorf("No usable token; set LINKIN_LINK_ID and LINKIN_PASSWORD or log in first")
		os.Exit(1)
	}

	sess := session.New(apiClient, channel, notifier)
	if err := sess.Bootstrap(ctx, token); err != nil {
		lg.Errorf("Bootstrap failed: %v", err)
		os.Exit(1)
	}
	lg.Infof("Logged in as %s", sess.Me().Nickname)

	sess.Run(ctx)
	sess.Logout()
}

// resolveToken prefers the persisted token (dropping it when expired) and
// falls back to a credential login from the environment.
func resolveToken(ctx context.Context, state *storage.StateStore, apiClient *api.Client, lg *logger.Logger) string {
	token, err := state.Token()
	if err != nil {
		lg.Warnf("Reading stored token: %v", err)
	}
	if token != "" {
		if !auth.Expired(token, time.Now()) {
			return token
		}
		lg.Warnf("Stored token expired")
		_ = state.ClearToken()
	}

	linkID := os.Getenv("LINKIN_LINK_ID")
	password := os.Getenv("LINKIN_PASSWORD")
	if linkID == "" || password == "" {
		return ""
	}
	creds, err := apiClient.Login(ctx, linkID, password)
	if err != nil {
		lg.Errorf("Login failed: %v", err)
		return ""
	}
	if err := state.SaveToken(creds.Token); err != nil {
		lg.Warnf("Persisting token: %v", err)
	}
	return creds.Token
}
