package cmd

import (
	"fmt"

	"github.com/agentwire/agentwire/internal/fetch"
	"github.com/urfave/cli"
)

func fetchImages(ctx *cli.Context) error {
	e, err := newEnv(ctx)
	if err != nil {
		return fail(ctx, "fetch", "setup", err)
	}
	defer e.Close()

	hc, err := e.httpClient()
	if err != nil {
		return fail(ctx, "fetch", "setup", err)
	}

	urls := []string(ctx.Args())
	if len(urls) == 0 {
		urls = fetch.DefaultURLs
	}
	dir := ctx.String("dir")
	if dir == "" {
		dir = e.cfg.DownloadDir
	}
	d := &fetch.Downloader{
		Client:    hc,
		Fs:        e.fs,
		Dir:       dir,
		Workers:   ctx.Int("workers"),
		UserAgent: e.cfg.UserAgent,
		Log:       e.log,
	}
	if !ctx.Bool("quiet") {
		d.Progress = stderr
	}

	sctx, cancel := signalContext()
	defer cancel()
	paths, err := d.DownloadAll(sctx, urls)
	if err != nil {
		return fail(ctx, "fetch", "download", err)
	}
	fmt.Fprintln(stdout, "Downloaded:")
	for _, p := range paths {
		fmt.Fprintf(stdout, "  %s\n", p)
	}
	return nil
}
