package cmd

import (
	"fmt"

	"github.com/agentwire/agentwire/internal/character"
	"github.com/agentwire/agentwire/internal/relay"
	"github.com/urfave/cli"
)

func chat(ctx *cli.Context) error {
	in, err := openInput()
	if err != nil {
		return fail(ctx, "chat", "open_input", err)
	}
	defer in.Close()

	e, err := newEnv(ctx)
	if err != nil {
		return fail(ctx, "chat", "setup", err)
	}
	defer e.Close()

	list := ctx.String("characters")
	if list == "" {
		list = ctx.String("character")
	}
	chars, err := character.Load(e.fs, list)
	if err != nil {
		return fail(ctx, "chat", "characters", err)
	}
	agent := ctx.String("agent")
	if agent == "" {
		primary, err := character.Primary(chars)
		if err != nil {
			return fail(ctx, "chat", "characters", err)
		}
		agent = primary.Name
	}

	r := relay.New(e.cfg.RelayEndpoint(), agent)
	r.Log = e.log
	e.log.Info("chat started with %s at %s, type 'exit' to quit", agent, e.cfg.RelayEndpoint())

	sctx, cancel := signalContext()
	defer cancel()
	if err := r.Loop(sctx, in, stdout); err != nil {
		return fail(ctx, "chat", "loop", err)
	}
	fmt.Fprintln(stdout)
	return nil
}
