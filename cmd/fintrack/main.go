package main

import (
	"errors"
	"log"
	"os"

	"github.com/jessevdk/go-flags"
)

// GlobalOptions are accepted before any subcommand.
type GlobalOptions struct {
	Config   string `short:"c" long:"config" description:"Path to the YAML config file (default ~/.config/fintrack/config.yaml)"`
	LogLevel string `short:"l" long:"log-level" description:"Override the log level [trace, debug, info, warn, error]"`
	Category string `long:"category" description:"Category filter [all, transactions, budget, bills, security]" default:"all"`
}

var global GlobalOptions

func main() {
	parser := flags.NewParser(&global, flags.Default)
	parser.SubcommandsOptional = true

	commands := []struct {
		name, short, long string
		data              interface{}
	}{
		{"tui", "open the notification screen",
			"The tui command opens the interactive notification screen. It is the default.",
			&TUI{}},
		{"list", "print notifications",
			"The list command prints the merged notification list for the category, grouped by day.",
			&List{}},
		{"token", "store or clear the API token",
			"The token command prompts for the finance API token and stores it in the system keyring.",
			&Token{}},
		{"mark-all", "mark every notification read",
			"The mark-all command marks all notifications of the category read on the server in one request, then marks local ones read.",
			&MarkAll{}},
		{"record", "record a transaction",
			"The record command raises a local large-transaction alert when the amount exceeds the configured threshold.",
			&Record{}},
		{"reset", "clear local notifications",
			"The reset command deletes every locally stored notification and the demo seed marker.",
			&Reset{}},
	}
	for _, c := range commands {
		if _, err := parser.AddCommand(c.name, c.short, c.long, c.data); err != nil {
			log.Fatal(err)
		}
	}

	if _, err := parser.Parse(); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if parser.Active == nil {
		if err := (&TUI{}).Execute(nil); err != nil {
			log.Fatal(err)
		}
	}
}
