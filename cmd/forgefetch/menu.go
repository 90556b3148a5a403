package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"forgefetch/internal/download"
)

const menuText = `
forgefetch
  1) Download a full set
  2) Download a full set, named as printed
  3) Download every set (batch)
  4) Download sets listed in Sets.txt
  5) Download all prints of a card
  6) Download all prints of a card, named as printed
  7) Backfill tokens from a token manifest
  8) Backfill cards from an audit report
  9) Clean a set folder
  0) Quit
`

// runMenu drives the interactive session: prompt, dispatch, repeat until
// the user quits or the context is cancelled.
func runMenu(ctx context.Context, orch *download.Orchestrator, log *slog.Logger, assumeYes bool) error {
	in := bufio.NewScanner(os.Stdin)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fmt.Print(menuText + "> ")
		choice, ok := readLine(in)
		if !ok {
			return nil
		}

		var (
			sum *download.Summary
			err error
		)
		switch choice {
		case "0", "q", "quit", "exit":
			return nil
		case "1", "2":
			code, ok := prompt(in, "Set code or name: ")
			if !ok || code == "" {
				continue
			}
			sum, err = orch.DownloadSet(ctx, code, false, choice == "2")
		case "3":
			sum, err = orch.DownloadAllSets(ctx, download.ScopeSanctioned, false)
		case "4":
			sum, err = orch.DownloadSetsFromFile(ctx, "Sets.txt", false)
		case "5", "6":
			name, ok := prompt(in, "Card name: ")
			if !ok || name == "" {
				continue
			}
			sum, err = orch.DownloadCardPrints(ctx, name, choice == "6")
		case "7":
			path, ok := prompt(in, "Token manifest path: ")
			if !ok || path == "" {
				continue
			}
			sum, err = orch.RunTokenAudit(ctx, path)
		case "8":
			path, ok := prompt(in, "Audit report path: ")
			if !ok || path == "" {
				continue
			}
			sum, err = orch.RunCardAudit(ctx, path)
		case "9":
			code, ok := prompt(in, "Set code to clean: ")
			if !ok || code == "" {
				continue
			}
			if !assumeYes && !confirm(in, fmt.Sprintf("Delete all files for %s?", strings.ToUpper(code))) {
				continue
			}
			err = orch.CleanSetFolder(code)
		default:
			fmt.Println("Unknown choice.")
			continue
		}

		if err != nil {
			log.Error("workflow failed", "err", err)
			continue
		}
		if sum != nil {
			printSummary(log, sum)
		}
	}
}

func prompt(in *bufio.Scanner, msg string) (string, bool) {
	fmt.Print(msg)
	return readLine(in)
}

func confirm(in *bufio.Scanner, msg string) bool {
	fmt.Print(msg + " [y/N] ")
	line, ok := readLine(in)
	return ok && strings.EqualFold(line, "y")
}

func readLine(in *bufio.Scanner) (string, bool) {
	if !in.Scan() {
		return "", false
	}
	return strings.TrimSpace(in.Text()), true
}
