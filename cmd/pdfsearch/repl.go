package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"pdfsearch/internal/domain"
	"pdfsearch/internal/eval"
)

// querier is the part of the pipeline the REPL drives.
type querier interface {
	Query(ctx context.Context, query string, verbose bool) (*domain.QueryOutcome, error)
}

var (
	boldGreen = color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan  = color.New(color.FgCyan, color.Bold).SprintFunc()
	red       = color.New(color.FgRed).SprintFunc()
	faint     = color.New(color.Faint).SprintFunc()
)

func isQuit(line string) bool {
	switch strings.ToLower(line) {
	case "quit", "exit", "q":
		return true
	}
	return false
}

func joinArgs(args []string) string { return strings.TrimSpace(strings.Join(args, " ")) }

// repl reads one question per line until a quit word, EOF or cancellation.
// Query errors are printed and the loop continues.
func repl(ctx context.Context, q querier, in io.Reader, out io.Writer, verbose bool) error {
	fmt.Fprintln(out, boldGreen("PDF SEARCH"))
	fmt.Fprintln(out, "Ready! Enter your questions (or 'quit' to exit)")
	fmt.Fprintln(out)

	scanner := bufio.NewScanner(in)
	for {
		if ctx.Err() != nil {
			fmt.Fprintln(out, "\nGoodbye!")
			return nil
		}
		fmt.Fprint(out, boldGreen("Query: "))
		if !scanner.Scan() {
			fmt.Fprintln(out, "\nGoodbye!")
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if isQuit(line) {
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}
		if line == "" {
			continue
		}
		fmt.Fprintln(out, "\nSearching...")
		if err := answerOnce(ctx, q, line, verbose, out); err != nil {
			fmt.Fprintln(out, red("Error: "+err.Error()))
			fmt.Fprintln(out)
		}
	}
}

func answerOnce(ctx context.Context, q querier, question string, verbose bool, out io.Writer) error {
	outcome, err := q.Query(ctx, question, true)
	if err != nil {
		return err
	}
	printOutcome(out, outcome, verbose)
	return nil
}

func printOutcome(out io.Writer, o *domain.QueryOutcome, verbose bool) {
	rule := strings.Repeat("-", 40)
	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, boldCyan("ANSWER:"))
	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, o.Answer)
	fmt.Fprintln(out)
	if o.Trace == nil {
		return
	}
	if verbose && len(o.Trace.SearchResults) > 0 {
		fmt.Fprintln(out, "Search results:")
		for _, r := range o.Trace.SearchResults {
			fmt.Fprintf(out, "  - %s (distance: %.3f)\n", r.Filename, r.Distance)
		}
	}
	if len(o.Trace.RerankedResults) > 0 {
		fmt.Fprintln(out, "Sources used:")
		for _, r := range o.Trace.RerankedResults {
			fmt.Fprintf(out, "  - %s (score: %.3f)\n", r.Filename, r.Score)
			if verbose {
				fmt.Fprintf(out, "    %s\n", faint(r.Preview))
			}
		}
	}
	fmt.Fprintln(out)
}

func printEval(out io.Writer, r *eval.Report) {
	fmt.Fprintln(out, boldGreen("GOLDEN TEST SET - RETRIEVAL QUALITY"))
	for i, c := range r.Results {
		if c.Found() {
			fmt.Fprintf(out, "  %s [%2d] Rank %d: %s\n", boldGreen("ok"), i+1, c.Rank, c.Top[c.Rank-1])
			continue
		}
		got := "(no results)"
		if len(c.Top) > 0 {
			got = c.Top[0]
		}
		fmt.Fprintf(out, "  %s [%2d] Expected %q not in top %d, got %s\n", red("miss"), i+1, c.Expected, r.K, got)
	}
	fmt.Fprintf(out, "\nRecall@%d: %.1f%% (%d/%d)\n", r.K, r.Recall*100, r.Found, len(r.Results))
	fmt.Fprintf(out, "MRR:      %.3f\n", r.MRR)
	fmt.Fprintf(out, "Targets:  Recall@%d >= %.0f%%, MRR >= %.2f\n", r.K, eval.RecallTarget*100, eval.MRRTarget)
}
