// Copyright 2025 The pinyinctrlf Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main runs pinyin name search over an HTML page, as a msgpack IPC
server or as an interactive CLI.

pinyinctrlf scans the visible text of a page for runs of two to four Chinese
characters, romanizes each candidate name and indexes its pinyin keys (full,
spaced, initials and ü spellings). Queries typed in Latin letters are matched
against those keys with prefix, substring and edit distance scoring, and a
picked name is highlighted everywhere it occurs on the page.

# Usage

Serve a page over stdin/stdout:

	pinyinctrlf -page novel.html

Explore it interactively, writing highlighted HTML on :w:

	pinyinctrlf -page novel.html -c -out marked.html

# Configuration

Settings live in config.toml, created with defaults on first run:

	[index]
	min_name_len = 2
	max_name_len = 4
	build_delay_ms = 10
	surnames_file = ""
	text_layer_class = "textLayer"

	[search]
	max_results = 8
	debounce_ms = 120

	[highlight]
	max_matches = 200

The surnames file adds readings for polyphonic surnames, one "<char> <pinyin>"
per line, on top of the builtin list.

# Command Line Flags

	-page string
	    HTML page to index (required)
	-config string
	    Path to a config.toml
	-surnames string
	    Surname reading overrides
	-out string
	    Where :w writes the highlighted page
	-c  Run the interactive CLI instead of the IPC server
	-d  Enable debug logging
	-version
	    Show current version
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bastiangx/pinyinctrlf/internal/cli"
	"github.com/bastiangx/pinyinctrlf/internal/logger"
	"github.com/bastiangx/pinyinctrlf/internal/utils"
	"github.com/bastiangx/pinyinctrlf/pkg/candidate"
	"github.com/bastiangx/pinyinctrlf/pkg/config"
	"github.com/bastiangx/pinyinctrlf/pkg/dictionary"
	"github.com/bastiangx/pinyinctrlf/pkg/dom"
	"github.com/bastiangx/pinyinctrlf/pkg/fuzzy"
	"github.com/bastiangx/pinyinctrlf/pkg/highlight"
	"github.com/bastiangx/pinyinctrlf/pkg/romanize"
	"github.com/bastiangx/pinyinctrlf/pkg/server"
	"github.com/bastiangx/pinyinctrlf/pkg/session"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.3.0-beta"
	AppName = "pinyinctrlf"
	gh      = "https://github.com/bastiangx/pinyinctrlf"
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

// main wires the packages together and picks server or CLI mode.
func main() {
	sigHandler()

	showVersion := flag.Bool("version", false, "Show current version")
	pagePath := flag.String("page", "", "HTML page to index")
	configPath := flag.String("config", "", "Path to config.toml")
	surnamesPath := flag.String("surnames", "", "Surname reading overrides (<char> <pinyin> per line)")
	outPath := flag.String("out", "", "Where the CLI :w command writes the page")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger.Setup(*debugMode)

	if *pagePath == "" {
		log.Error("Missing -page")
		flag.Usage()
		os.Exit(2)
	}

	cfg, activeConfig, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config: %s", config.GetActiveConfigPath(activeConfig))

	doc, err := dom.ParseFile(*pagePath)
	if err != nil {
		log.Fatalf("Failed to load page: %v", err)
	}
	doc.TextLayerClass = cfg.Index.TextLayerClass

	surnames := dictionary.DefaultSurnames()
	if extra := loadSurnames(*surnamesPath, cfg.Index.SurnamesFile, activeConfig); extra != nil {
		surnames.Merge(extra)
	}

	buildDelay := time.Duration(cfg.Index.BuildDelayMs) * time.Millisecond
	if buildDelay == 0 {
		buildDelay = -1
	}
	s := session.New(doc, romanize.NewPinyin(surnames), session.Options{
		BuildDelay:  buildDelay,
		Extractor:   candidate.NewExtractor(cfg.Index.MinNameLen, cfg.Index.MaxNameLen),
		Matcher:     fuzzy.NewMatcher(cfg.Search.MatcherOptions()),
		Highlighter: highlight.New(cfg.Highlight.MaxMatches),
	})

	if *cliMode {
		log.SetReportTimestamp(false)
		inputHandler := cli.NewInputHandler(s, cfg.Search.MaxResults, *outPath)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(s, server.Options{
		MaxLimit:      cfg.Server.MaxLimit,
		MaxQueryLen:   cfg.Server.MaxQueryLen,
		CompleteLimit: cfg.Search.CompleteLimit,
		Debounce:      time.Duration(cfg.Search.DebounceMs) * time.Millisecond,
	})

	showStartupInfo(*pagePath)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// loadSurnames reads the override file named by the flag or, failing that,
// the config. Relative config paths resolve next to the config file.
func loadSurnames(flagPath, configured, activeConfig string) dictionary.Overrides {
	name := flagPath
	if name == "" {
		name = configured
	}
	if name == "" {
		return nil
	}

	var dirs []string
	if activeConfig != "" {
		dirs = append(dirs, filepath.Dir(activeConfig))
	}
	if execDir, err := utils.GetExecutableDir(); err == nil {
		dirs = append(dirs, execDir)
	}

	path, err := utils.FindFile(name, dirs...)
	if err != nil {
		log.Warnf("Surname file %s not found, using builtin readings", name)
		return nil
	}
	overrides, err := dictionary.LoadOverrides(path)
	if err != nil {
		log.Warnf("Failed to load surnames from %s: %v", path, err)
		return nil
	}
	log.Debugf("Loaded %d surname readings from %s", len(overrides), path)
	return overrides
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
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ pinyinctrlf ] Find Chinese names on a page by typing pinyin")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo prints basic info to stderr; stdout is reserved for IPC.
func showStartupInfo(page string) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)
	defer log.SetLevel(currentLevel)

	log.Infof("%s %s", AppName, Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("page: ( %s )", page)
	log.Info("status: ready")
}
