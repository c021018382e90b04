package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/agentwire/agentwire/internal/cookies"
	"github.com/agentwire/agentwire/internal/poster"
	"github.com/agentwire/agentwire/pkg/session"
	"github.com/urfave/cli"
)

func post(ctx *cli.Context) error {
	in, err := openInput()
	if err != nil {
		return fail(ctx, "post", "open_input", err)
	}
	defer in.Close()

	e, err := newEnv(ctx)
	if err != nil {
		return fail(ctx, "post", "setup", err)
	}
	defer e.Close()

	mgr, err := e.manager()
	if err != nil {
		return fail(ctx, "post", "setup", err)
	}

	sctx, cancel := signalContext()
	defer cancel()
	if _, err := poster.Run(sctx, mgr, in, stdout, e.log); err != nil {
		return fail(ctx, "post", "run", err)
	}
	return nil
}

func login(ctx *cli.Context) error {
	e, err := newEnv(ctx)
	if err != nil {
		return fail(ctx, "login", "setup", err)
	}
	defer e.Close()

	mgr, err := e.manager()
	if err != nil {
		return fail(ctx, "login", "setup", err)
	}
	if ctx.Bool("force") {
		if err := mgr.Invalidate(); err != nil {
			return fail(ctx, "login", "invalidate", err)
		}
	}

	sctx, cancel := signalContext()
	defer cancel()
	s, err := mgr.Acquire(sctx)
	if err != nil {
		return fail(ctx, "login", "acquire", err)
	}
	how := "fresh login"
	if s.Restored {
		how = "saved cookies"
	}
	fmt.Fprintf(stdout, "Session %s (%s)\n", s.State, how)
	return nil
}

func logout(ctx *cli.Context) error {
	e, err := newEnv(ctx)
	if err != nil {
		return fail(ctx, "logout", "setup", err)
	}
	defer e.Close()

	st, err := e.store()
	if err != nil {
		return fail(ctx, "logout", "setup", err)
	}
	if err := session.NewManager(nil, st, session.WithLogger(e.log)).Invalidate(); err != nil {
		return fail(ctx, "logout", "invalidate", err)
	}
	fmt.Fprintln(stdout, "Saved session removed")
	return nil
}

var errNoCookiesImported = errors.New("no usable cookies found for the service domain")

func importSession(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" {
		return fail(ctx, "session import", "args", errors.New("cookie file path required"))
	}
	e, err := newEnv(ctx)
	if err != nil {
		return fail(ctx, "session import", "setup", err)
	}
	defer e.Close()

	res, err := cookies.Import(path, e.cfg.CookieDomain, e.log)
	if err != nil {
		return fail(ctx, "session import", "read", err)
	}
	cs := cookies.ToSession(res.Cookies, time.Now(), session.DefaultTTL)
	if len(cs) == 0 {
		return fail(ctx, "session import", "read", errNoCookiesImported)
	}

	st, err := e.store()
	if err != nil {
		return fail(ctx, "session import", "setup", err)
	}
	if err := st.Save(cs); err != nil {
		return fail(ctx, "session import", "save", err)
	}
	fmt.Fprintf(stdout, "Imported %d %s cookies into %s\n", len(cs), res.Format, st.Path())
	return nil
}
