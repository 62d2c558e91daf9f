// Copyright 2025 The like Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements like, a tool that finds the closest string to a
pattern in a newline delimited list.

like reads candidate strings from a file (or stdin), indexes them in a
ternary search tree and prints the string matching the pattern. When the
pattern itself is not in the list, like prints the nearest string sharing
the part of the pattern that did match.

# Usage

	like [-f file] [-n max] pattern

Find the best match for a pattern in a word list:

	like -f /usr/share/dict/words spectac

Read the list from stdin:

	ls /usr/bin | like gi

Print up to 3 matches, then every indexed string starting with the pattern:

	like -f words.txt -n 3 -l TE

Keep the index loaded and answer msgpack requests on stdin/stdout:

	like -s -f words.txt

Interactive prompt for testing:

	like -i -f words.txt -d

# Matching

An exact match always wins. Otherwise the pattern is walked through the
tree as far as it matches; if it matched completely, the first stored
string extending it is printed, and if it diverged, the longest stored
string that is a prefix of the matched part is printed. Among several
strings extending the same prefix, the one listed first in the input wins.

# Configuration

Defaults come from a TOML file (created on first run in the user config
dir, or passed with -config):

	[index]
	max_keys = 1024
	duplicate_policy = "skip"

	[match]
	max_matches = 1
	max_pattern = 60

	[server]
	data_file = ""
	reload_every = 0
	similar_limit = 24

	[cli]
	show_similar = false
	color = true

Flags override the file. Input beyond max_keys lines is ignored.
Duplicate strings are skipped, or abort the run with "abort".

# Exit status

like exits 0 when it ran, whether or not a match was found, and 1 on
errors such as a missing pattern or an unreadable file.
*/
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/like/internal/cli"
	"github.com/bastiangx/like/internal/utils"
	"github.com/bastiangx/like/pkg/config"
	"github.com/bastiangx/like/pkg/dictionary"
	"github.com/bastiangx/like/pkg/index"
	"github.com/bastiangx/like/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.1.0"
	AppName = "like"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [-f file] [-n max] [-k max_keys] [-config path] [-l] [-d] pattern\n", AppName)
	fmt.Fprintf(os.Stderr, "       %s -i -f file\n", AppName)
	fmt.Fprintf(os.Stderr, "       %s -s [-f file]\n\n", AppName)
	flag.PrintDefaults()
}

// main wires flags, config, the word list and the index together and
// hands over to one of the three modes. It does not implement matching.
func main() {
	flag.Usage = usage

	showVersion := flag.Bool("version", false, "Show current version")
	file := flag.String("f", "", "Word list file, one string per line (default: stdin)")
	maxMatches := flag.Int("n", 0, "Maximum number of matches to print (default from config)")
	maxKeys := flag.Int("k", 0, "Maximum number of strings to index (default from config)")
	configPath := flag.String("config", "", "Path to a like.toml config file")
	listSimilar := flag.Bool("l", false, "Also list indexed strings starting with the pattern")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	interactive := flag.Bool("i", false, "Read patterns interactively from stdin (needs -f)")
	serverMode := flag.Bool("s", false, "Serve msgpack requests on stdin/stdout")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}
	sigHandler()

	cfg, usedConfig, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", utils.GetAbsolutePath(usedConfig))
	applyFlags(cfg, *maxMatches, *maxKeys, *listSimilar)

	policy, err := index.ParsePolicy(cfg.Index.DuplicatePolicy)
	if err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	opts := index.Options{MaxMatches: cfg.Match.MaxMatches, Duplicates: policy}

	switch {
	case *serverMode:
		runServer(cfg, usedConfig, *file, opts)
	case *interactive:
		runInteractive(cfg, *file, opts)
	default:
		if err := runOnce(cfg, *file, flag.Args(), opts, os.Stdin, os.Stdout); err != nil {
			log.Error(err)
			if errors.Is(err, errMissingPattern) {
				usage()
			}
			os.Exit(1)
		}
	}
}

// applyFlags lets explicit flags win over config values.
func applyFlags(cfg *config.Config, maxMatches, maxKeys int, listSimilar bool) {
	if maxMatches > 0 {
		cfg.Match.MaxMatches = maxMatches
	}
	if maxKeys > 0 {
		cfg.Index.MaxKeys = maxKeys
	}
	if listSimilar {
		cfg.CLI.ShowSimilar = true
	}
}

// keySource returns a loader for the word list at path, or stdin when path is empty.
func keySource(path string, stdin io.Reader) server.KeySource {
	if path == "" {
		return func(maxKeys int) ([]string, error) {
			keys, _, err := dictionary.ReadKeys(stdin, maxKeys)
			return keys, err
		}
	}

	resolved := path
	if pr, err := utils.NewPathResolver(); err == nil {
		resolved = pr.ResolveDataFile(path)
	} else {
		log.Debugf("Path resolver unavailable, using %s as given: %v", path, err)
	}
	return func(maxKeys int) ([]string, error) {
		keys, _, err := dictionary.LoadFile(resolved, maxKeys)
		return keys, err
	}
}

func buildIndex(cfg *config.Config, source server.KeySource, opts index.Options) (*index.Index, error) {
	keys, err := source(cfg.Index.MaxKeys)
	if err != nil {
		return nil, err
	}
	ix := index.New(opts)
	if _, err := ix.Build(keys); err != nil {
		return nil, fmt.Errorf("error building index of keys: %w", err)
	}
	return ix, nil
}

func runServer(cfg *config.Config, configPath, file string, opts index.Options) {
	if file == "" {
		file = cfg.Server.DataFile
	}
	if file == "" {
		log.Fatal("Server mode needs a word list: pass -f or set server.data_file")
	}

	source := keySource(file, nil)
	ix, err := buildIndex(cfg, source, opts)
	if err != nil {
		log.Fatalf("Failed to build index: %v", err)
	}

	showStartupInfo(file, ix.Len())
	srv := server.NewServer(ix, cfg, configPath, source)
	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func runInteractive(cfg *config.Config, file string, opts index.Options) {
	if file == "" {
		log.Fatal("Interactive mode reads patterns from stdin, pass the word list with -f")
	}
	ix, err := buildIndex(cfg, keySource(file, nil), opts)
	if err != nil {
		log.Fatalf("Failed to build index: %v", err)
	}

	log.SetReportTimestamp(false)
	log.Debug("Input info:",
		"keys", ix.Len(),
		"maxMatches", cfg.Match.MaxMatches,
		"maxPattern", cfg.Match.MaxPattern,
		"showSimilar", cfg.CLI.ShowSimilar)

	handler := cli.NewInputHandler(ix, cfg.Match.MaxPattern, cfg.Match.MaxMatches, cfg.CLI.ShowSimilar, cfg.CLI.Color)
	if err := handler.Start(os.Stdin); err != nil {
		log.Fatalf("CLI error: %v", err)
	}
}

var errMissingPattern = errors.New("pattern is required")

// runOnce is the classic one-shot mode: build, match once, print, drop the index.
func runOnce(cfg *config.Config, file string, args []string, opts index.Options, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 || args[0] == "" {
		return errMissingPattern
	}
	pattern := args[0]

	keys, err := keySource(file, stdin)(cfg.Index.MaxKeys)
	if err != nil {
		return err
	}

	if !cfg.CLI.ShowSimilar {
		matches, err := index.BuildAndMatchWith(keys, pattern, opts)
		if err != nil {
			return fmt.Errorf("error finding matches: %w", err)
		}
		printMatches(stdout, matches)
		return nil
	}

	ix := index.New(opts)
	defer ix.Reset()
	if _, err := ix.Build(keys); err != nil {
		return fmt.Errorf("error finding matches: %w", err)
	}
	matches, err := ix.Match(pattern, opts.MaxMatches)
	if err != nil {
		return fmt.Errorf("error finding matches: %w", err)
	}
	printMatches(stdout, matches)

	// the rest of the strings under the pattern, minus what was already printed
	filter := utils.NewSeenFilter(matches...)
	for _, s := range ix.Similar(pattern, 0) {
		if filter.ShouldInclude(s) {
			fmt.Fprintln(stdout, s)
		}
	}
	return nil
}

func printMatches(stdout io.Writer, matches []string) {
	if len(matches) == 0 {
		fmt.Fprintln(stdout, "No match found")
	}
	for _, m := range matches {
		fmt.Fprintln(stdout, m)
	}
}

func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ like ] find similar strings")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
}

// showStartupInfo displays some basic info about the loaded index on stderr.
func showStartupInfo(file string, keys int) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("word list: ( %s )", file)
	log.Infof("keys: %d", keys)
	log.Info("status: ready")

	log.SetLevel(currentLevel)
}
