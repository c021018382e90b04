package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"

	"github.com/agentwire/agentwire/cmd/common"
	"github.com/agentwire/agentwire/internal/config"
	"github.com/agentwire/agentwire/pkg/credman"
	"github.com/agentwire/agentwire/pkg/credman/keyring"
	"github.com/agentwire/agentwire/pkg/httpclient"
	"github.com/agentwire/agentwire/pkg/logger"
	"github.com/agentwire/agentwire/pkg/session"
	"github.com/agentwire/agentwire/pkg/webclient"
	"github.com/spf13/afero"
	"github.com/urfave/cli"
)

// Seams replaced in tests.
var (
	loadConfig = func(envFiles ...string) (*config.Config, error) {
		return config.Load(envFiles...)
	}
	openInput = func() (io.ReadCloser, error) {
		return os.Stdin, nil
	}
	newFs = afero.NewOsFs

	keyProviders = func(cfg *config.Config) []credman.KeyProvider {
		return []credman.KeyProvider{keyring.NewKeyring(), keyring.NewFileKeyStore(cfg.ConfigDir)}
	}

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// ExitError wraps a failure that has already been reported to the user;
// main exits non-zero without printing it again.
type ExitError struct {
	Err error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

// fail reports err and returns it as an *ExitError.
func fail(ctx *cli.Context, cmd, action string, err error) error {
	common.PrintRuntimeErr(ctx, cmd, action, err)
	return &ExitError{Err: err}
}

// env is everything a command needs, built from the configuration.
type env struct {
	cfg *config.Config
	fs  afero.Fs
	log logger.Logger
}

func newEnv(ctx *cli.Context) (*env, error) {
	cfg, err := loadConfig(ctx.GlobalStringSlice("env-file")...)
	if err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}
	console := logger.NewStandardLogger(log.New(stderr, "", 0))
	var l logger.Logger = console
	path := ctx.GlobalString("log-file")
	if path == "" {
		path = cfg.LogFile
	}
	if path != "" {
		fl, err := logger.NewFileLogger(path)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l = logger.NewMultiLogger(console, fl)
	}
	return &env{cfg: cfg, fs: newFs(), log: l}, nil
}

func (e *env) Close() {
	_ = e.log.Close()
}

// store opens the session store, attaching a sealer when sealing is on.
func (e *env) store() (*session.FileStore, error) {
	var opts []session.StoreOption
	if e.cfg.SealingEnabled() {
		key, err := credman.ResolveKey(e.cfg.SessionKey, keyProviders(e.cfg)...)
		if err != nil {
			return nil, fmt.Errorf("session key: %w", err)
		}
		sealer, err := credman.NewSealer(key, "cookies")
		if err != nil {
			return nil, err
		}
		opts = append(opts, session.WithSealer(sealer))
	}
	return session.NewFileStore(e.fs, e.cfg.SessionDir, opts...), nil
}

func (e *env) httpClient() (*http.Client, error) {
	return httpclient.New(httpclient.Options{Proxy: e.cfg.Proxy})
}

func (e *env) client() (*webclient.Client, error) {
	hc, err := e.httpClient()
	if err != nil {
		return nil, err
	}
	return webclient.New(e.cfg.ServiceURL,
		webclient.WithHTTPClient(hc),
		webclient.WithUserAgent(e.cfg.UserAgent),
	)
}

func (e *env) manager() (*session.Manager, error) {
	st, err := e.store()
	if err != nil {
		return nil, err
	}
	c, err := e.client()
	if err != nil {
		return nil, err
	}
	named := e.log
	if sl, ok := e.log.(*logger.StandardLogger); ok {
		named = sl.Named("session")
	}
	opts := []session.Option{
		session.WithCredential(e.cfg.Credential()),
		session.WithDomain(e.cfg.CookieDomain),
		session.WithLoginDelay(e.cfg.LoginDelay),
		session.WithCallTimeout(e.cfg.Timeout),
		session.WithLogger(named),
	}
	return session.NewManager(c, st, opts...), nil
}

// signalContext is cancelled on interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
