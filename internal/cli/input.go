// Package cli is an interactive prompt over a session, for debugging searches
// and highlights on a page without an IPC client.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bastiangx/pinyinctrlf/internal/logger"
	"github.com/bastiangx/pinyinctrlf/pkg/fuzzy"
	"github.com/bastiangx/pinyinctrlf/pkg/session"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var nameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))

// InputHandler reads commands and queries line by line.
//
// A plain line is a pinyin query. Commands:
//
//	:h N     highlight result N of the last search
//	:h NAME  highlight NAME
//	:c KEY   complete a key prefix
//	:r       force a rebuild
//	:s       print stats
//	:w       write the page to the output path
//	:q       quit
type InputHandler struct {
	session  *session.Session
	limit    int
	outPath  string
	in       io.Reader
	out      *log.Logger
	last     []fuzzy.Result
	requests int
}

// NewInputHandler creates a prompt on stdin that prints to stderr.
func NewInputHandler(s *session.Session, limit int, outPath string) *InputHandler {
	return NewInputHandlerWithIO(s, limit, outPath, os.Stdin, os.Stderr)
}

// NewInputHandlerWithIO is NewInputHandler with explicit streams.
func NewInputHandlerWithIO(s *session.Session, limit int, outPath string, in io.Reader, out io.Writer) *InputHandler {
	l := logger.NewTo(out, "")
	l.SetReportTimestamp(false)
	return &InputHandler{
		session: s,
		limit:   limit,
		outPath: outPath,
		in:      in,
		out:     l,
	}
}

// Start runs the prompt until :q or end of input.
func (h *InputHandler) Start() error {
	h.out.Print("pinyinctrlf CLI")
	h.out.Print("type a pinyin query and press Enter, :h N to highlight a result (:q to exit)")

	if h.session.Rebuild(false) {
		if idx := h.session.Index(); idx != nil {
			h.out.Printf("indexed %d names in %dms", idx.Total, idx.ElapsedMs())
		}
	}

	reader := bufio.NewReader(h.in)
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if line != "" {
			if quit := h.handleInput(line); quit {
				return nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// handleInput runs one line and reports whether the prompt should exit.
func (h *InputHandler) handleInput(line string) bool {
	h.requests++
	if !strings.HasPrefix(line, ":") {
		h.search(line)
		return false
	}

	cmd, arg, _ := strings.Cut(line[1:], " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "q":
		return true
	case "h":
		h.highlight(arg)
	case "c":
		h.complete(arg)
	case "r":
		h.session.Rebuild(true)
		idx := h.session.Index()
		h.out.Printf("rebuilt: %d names in %dms", idx.Total, idx.ElapsedMs())
	case "s":
		st := h.session.Stats()
		h.out.Printf("names: %d  builds: %d  searches: %d  highlights: %d  mean search: %.0fµs  requests: %d",
			st.Candidates, st.Builds, st.Searches, st.Highlights, st.MeanSearchUs, h.requests)
	case "w":
		if err := h.write(); err != nil {
			h.out.Errorf("write failed: %v", err)
		}
	default:
		h.out.Errorf("unknown command: %s", line)
	}
	return false
}

func (h *InputHandler) search(query string) {
	start := time.Now()
	h.last = h.session.Search(query, h.limit)
	log.Debugf("Took [ %v ] for query '%s'", time.Since(start), query)

	if len(h.last) == 0 {
		h.out.Warnf("no names match '%s'", query)
		return
	}
	h.out.Printf("found %d names for '%s':", len(h.last), query)
	for i, r := range h.last {
		h.out.Printf("%2d. %s  %-16s x%d  (%.1f)", i+1, nameStyle.Render(r.Item.Name), r.Item.Pinyin, r.Item.Count, r.Score)
	}
}

func (h *InputHandler) highlight(arg string) {
	if arg == "" {
		h.out.Error("usage: :h N or :h NAME")
		return
	}
	name := arg
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(h.last) {
			h.out.Errorf("no result %d in the last search", n)
			return
		}
		name = h.last[n-1].Item.Name
	}

	report := h.session.Highlight(name)
	h.out.Printf("highlighted %s: %d of %d (cleared %d, skipped %d)",
		nameStyle.Render(name), report.Applied, report.Found, report.Cleared, report.Skipped)
}

func (h *InputHandler) complete(prefix string) {
	completions := h.session.Complete(prefix, h.limit)
	if len(completions) == 0 {
		h.out.Warnf("no names complete '%s'", prefix)
		return
	}
	for i, c := range completions {
		h.out.Printf("%2d. %s  %s", i+1, nameStyle.Render(c.Name), c.Key)
	}
}

func (h *InputHandler) write() error {
	if h.outPath == "" {
		return fmt.Errorf("no output path, start with -out")
	}
	f, err := os.Create(h.outPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", h.outPath, err)
	}
	defer f.Close()

	if err := h.session.Render(f); err != nil {
		return err
	}
	h.out.Printf("wrote %s", h.outPath)
	return nil
}
