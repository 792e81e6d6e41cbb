package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"mira/internal/app"
	"mira/internal/config"
	"mira/internal/logger"
	"mira/internal/model"
	"mira/internal/service"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:   "mira",
		Usage:  "Run the property search pipeline from the command line",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:  "provider",
				Usage: "Override AI_PROVIDER (openai, gemini, lexical)",
			},
			&cli.StringFlag{
				Name:  "data-dir",
				Usage: "Override CATALOG_DATA_DIR",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "ask",
				Usage:     "Run one message through the full pipeline",
				ArgsUsage: "<message>",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "history",
						Aliases: []string{"H"},
						Usage:   "Prior turn as role:content, repeatable and oldest first",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the raw result as JSON",
					},
				},
			},
			{
				Name:      "extract",
				Usage:     "Print the preferences extracted from a message",
				ArgsUsage: "<message>",
				Action:    extractCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "history",
						Aliases: []string{"H"},
						Usage:   "Prior turn as role:content, repeatable and oldest first",
					},
				},
			},
			{
				Name:   "catalog",
				Usage:  "List the loaded catalog",
				Action: catalogCommand,
			},
		},
	}
}

// setup loads configuration, applies flag overrides and builds the application
func setup(c *cli.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.Logging.Level = c.String("log-level")
	cfg.Logging.Format = "console"
	if p := c.String("provider"); p != "" {
		cfg.AI.Provider = p
	}
	if dir := c.String("data-dir"); dir != "" {
		cfg.Catalog.DataDir = dir
	}
	logger.SetupWithWriter(cfg.Logging, "mira-cli", os.Stderr)

	return app.New(c.Context, cfg)
}

func messageArg(c *cli.Context) (string, error) {
	message := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if message == "" {
		return "", fmt.Errorf("a message is required")
	}
	return message, nil
}

// parseHistory turns role:content pairs into turns. A missing role means user.
func parseHistory(values []string) []model.ConversationTurn {
	turns := make([]model.ConversationTurn, 0, len(values))
	for _, v := range values {
		role, content, ok := strings.Cut(v, ":")
		if !ok {
			role, content = model.RoleUser, v
		}
		role = strings.ToLower(strings.TrimSpace(role))
		if role != model.RoleAssistant {
			role = model.RoleUser
		}
		turns = append(turns, model.ConversationTurn{Role: role, Content: strings.TrimSpace(content)})
	}
	return turns
}

func askCommand(c *cli.Context) error {
	message, err := messageArg(c)
	if err != nil {
		return err
	}
	a, err := setup(c)
	if err != nil {
		return err
	}
	defer a.Close()

	result := a.Chat.Process(c.Context, message, parseHistory(c.StringSlice("history")))

	if c.Bool("json") {
		return writeJSON(c.App.Writer, result)
	}
	printResult(c.App.Writer, result)
	return nil
}

func extractCommand(c *cli.Context) error {
	message, err := messageArg(c)
	if err != nil {
		return err
	}
	a, err := setup(c)
	if err != nil {
		return err
	}
	defer a.Close()

	prefs, source := a.Chat.Extract(c.Context, message, parseHistory(c.StringSlice("history")))
	log.Debug().Str("provider", source).Msg("extracted")
	return writeJSON(c.App.Writer, struct {
		Provider    string             `json:"provider"`
		Preferences *model.Preferences `json:"preferences"`
	}{source, prefs})
}

func catalogCommand(c *cli.Context) error {
	a, err := setup(c)
	if err != nil {
		return err
	}
	defer a.Close()

	listings, err := a.Catalog.ListAll(c.Context)
	if err != nil {
		return err
	}
	for _, l := range listings {
		fmt.Fprintf(c.App.Writer, "%4d  %-40s  $%-12s  %d bd  %s\n",
			l.ID, l.Title, humanize.Comma(int64(l.Price)), l.Bedrooms, l.Location)
	}
	fmt.Fprintf(c.App.Writer, "%d listings\n", len(listings))
	return nil
}

func printResult(w io.Writer, result service.ChatResult) {
	fmt.Fprintln(w, result.ResponseText)
	if len(result.Listings) > 0 {
		fmt.Fprintln(w)
	}
	for i, l := range result.Listings {
		fmt.Fprintf(w, "%2d. %s - $%s, %d bd, %s (score %.1f: %s)\n",
			i+1, l.Title, humanize.Comma(int64(l.Price)), l.Bedrooms, l.Location,
			l.Score, strings.Join(l.MatchedReasons, ", "))
	}
	if len(result.Suggestions) > 0 {
		fmt.Fprintf(w, "\nTry: %s\n", strings.Join(result.Suggestions, " | "))
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
