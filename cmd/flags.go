package cmd

import "github.com/urfave/cli"

var (
	envFileFlag = cli.StringSliceFlag{
		Name:  "env-file",
		Usage: "load settings from this .env file (repeatable, default: .env)",
	}
	logFileFlag = cli.StringFlag{
		Name:   "log-file",
		Usage:  "also append log lines to this file",
		EnvVar: "AGENTWIRE_LOG_FILE",
	}

	globalFlags = []cli.Flag{envFileFlag, logFileFlag}

	loginFlags = []cli.Flag{
		cli.BoolFlag{
			Name:  "force, f",
			Usage: "discard the saved session before logging in",
		},
	}

	chatFlags = []cli.Flag{
		cli.StringFlag{
			Name:  "character",
			Usage: "path to a character file",
		},
		cli.StringFlag{
			Name:  "characters",
			Usage: "comma separated list of character files",
		},
		cli.StringFlag{
			Name:  "agent",
			Usage: "agent id to talk to (default: first character's name)",
		},
	}

	fetchFlags = []cli.Flag{
		cli.StringFlag{
			Name:  "dir, d",
			Usage: "download directory (default: AGENTWIRE_DOWNLOAD_DIR)",
		},
		cli.IntFlag{
			Name:  "workers, w",
			Usage: "parallel downloads",
			Value: 4,
		},
		cli.BoolFlag{
			Name:  "quiet, q",
			Usage: "hide progress bars",
		},
	}
)
