package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nostalgicskinco/plagiarism-detector/pkg/analysis"
	"github.com/nostalgicskinco/plagiarism-detector/pkg/query"
)

var (
	// errQuit ends the interactive loop normally.
	errQuit = errors.New("quit")
	// errInterrupted ends the loop when the context is cancelled (SIGINT).
	errInterrupted = errors.New("interrupted")
)

// promptFunc prints msg and returns the next trimmed input line. It fails
// with errQuit at end of input and errInterrupted on cancellation.
type promptFunc func(msg string) (string, error)

// menuItem is one choice in the interactive menu.
type menuItem struct {
	key   string
	label string
	run   func(c *cli, s *analysis.Session, prompt promptFunc) error
}

var menu = []menuItem{
	{"1", "Compare Essays and Show Common Words", func(c *cli, s *analysis.Session, _ promptFunc) error {
		printCommonWords(c.out, s.CommonWords())
		return nil
	}},
	{"2", "Search for a Specific Word", func(c *cli, s *analysis.Session, prompt promptFunc) error {
		word, err := prompt("Enter a word to search: ")
		if err != nil {
			return err
		}
		res, err := s.Lookup(word)
		if err != nil {
			return err
		}
		printLookup(c.out, res)
		return nil
	}},
	{"3", "Calculate Plagiarism Percentage", func(c *cli, s *analysis.Session, _ promptFunc) error {
		printScore(c.out, s.Report())
		return nil
	}},
	{"4", "Run Complete Analysis", func(c *cli, s *analysis.Session, _ promptFunc) error {
		rep := s.Report()
		printCommonWords(c.out, rep.CommonWords)
		printScore(c.out, rep)
		return c.writeReport(s)
	}},
	{"5", "Exit", func(c *cli, _ *analysis.Session, _ promptFunc) error {
		fmt.Fprintln(c.out, "\nThank You for using our Plagiarism Detector!")
		return errQuit
	}},
}

func printBanner(c *cli) {
	rule := strings.Repeat("=", 60)
	headingColor.Fprintln(c.out, rule)
	headingColor.Fprintln(c.out, "         PLAGIARISM APPLICATION")
	headingColor.Fprintln(c.out, rule)
}

func printMenu(c *cli) {
	section(c.out, "PLAGIARISM DETECTOR MENU")
	for _, m := range menu {
		fmt.Fprintf(c.out, "%s. %s\n", m.key, m.label)
	}
	fmt.Fprintln(c.out, strings.Repeat("-", 50))
}

// newPrompt reads lines from c.in on a separate goroutine so a blocked
// read never delays cancellation.
func newPrompt(ctx context.Context, c *cli) promptFunc {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	return func(msg string) (string, error) {
		fmt.Fprint(c.out, msg)
		select {
		case <-ctx.Done():
			return "", errInterrupted
		case line, more := <-lines:
			if !more {
				fmt.Fprintln(c.out)
				return "", errQuit
			}
			return strings.TrimSpace(line), nil
		}
	}
}

// runInteractive loads both documents and loops over the menu until the
// user exits, input ends, or ctx is cancelled. Invalid choices and invalid
// search terms are reported and the loop continues.
func runInteractive(ctx context.Context, c *cli, args []string) int {
	printBanner(c)

	s, err := c.session(ctx, args[0], args[1])
	if err != nil {
		fmt.Fprintf(c.errOut, "Error: %v\n", err)
		return exitError
	}
	printSummary(c.out, s.Report())

	prompt := newPrompt(ctx, c)
	actions := make(map[string]menuItem, len(menu))
	for _, m := range menu {
		actions[m.key] = m
	}

	for {
		printMenu(c)
		choice, err := prompt("Enter your choice (1-5): ")
		if err == nil {
			m, found := actions[choice]
			if !found {
				fmt.Fprintln(c.out, "Invalid choice. Please enter a number between 1 and 5.")
				continue
			}
			err = m.run(c, s, prompt)
		}

		switch {
		case err == nil:
		case errors.Is(err, errQuit):
			return exitOK
		case errors.Is(err, errInterrupted):
			fmt.Fprintln(c.out, "\n\nProgram interrupted by user.")
			return exitInterrupted
		case errors.Is(err, query.ErrInvalidQuery):
			fmt.Fprintln(c.out, "Error: Please enter a valid word.")
		default:
			fmt.Fprintf(c.errOut, "An error occurred: %v\n", err)
		}
	}
}
