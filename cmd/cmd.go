package cmd

import (
	"fmt"
	"runtime"

	"github.com/agentwire/agentwire/cmd/common"
	"github.com/urfave/cli"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

func Execute(args []string, bArgs BuildArgs) error {
	app := cli.App{
		Name:                  "agentwire",
		HelpName:              "agentwire",
		Usage:                 "Session keeper and chat relay for social agents.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "agentwire [global options] <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          common.UsageErrorCallback,
		Writer:                stdout,
		ErrWriter:             stderr,
		Flags:                 globalFlags,
		Commands: []cli.Command{
			{
				Name:               "post",
				Aliases:            []string{"p"},
				Usage:              "send one message through the saved session",
				Action:             post,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        PostDescription,
			},
			{
				Name:               "login",
				Usage:              "establish and save a session",
				Action:             login,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        LoginDescription,
				Flags:              loginFlags,
			},
			{
				Name:               "logout",
				Usage:              "forget the saved session",
				Action:             logout,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        LogoutDescription,
			},
			{
				Name:  "session",
				Usage: "manage the saved session",
				Subcommands: []cli.Command{
					{
						Name:               "import",
						Usage:              "import cookies from a browser",
						UsageText:          "<cookie file>",
						Action:             importSession,
						OnUsageError:       common.UsageErrorCallback,
						CustomHelpTemplate: CMD_HELP_TEMPL,
						Description:        ImportDescription,
					},
				},
			},
			{
				Name:               "chat",
				Aliases:            []string{"c"},
				Usage:              "chat with the local agent server",
				Action:             chat,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        ChatDescription,
				Flags:              chatFlags,
			},
			{
				Name:                   "fetch",
				Aliases:                []string{"f"},
				Usage:                  "download images",
				UsageText:              "[url...]",
				Action:                 fetchImages,
				OnUsageError:           common.UsageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            FetchDescription,
				Flags:                  fetchFlags,
				UseShortOptionHandling: true,
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  common.Help,
			},
			{
				Name:               "version",
				Aliases:            []string{"v"},
				Usage:              "prints installed version of agentwire",
				UsageText:          " ",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             common.GetVersion,
			},
		},
		HideHelp:    true,
		HideVersion: true,
	}
	common.VersionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(args)
}
