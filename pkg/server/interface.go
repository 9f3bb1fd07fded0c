/*
Package server implements msgpack IPC for pinyin name search on a loaded page.

The server reads a stream of msgpack requests from stdin and writes one msgpack
response per request to stdout. Logs go to stderr so they never interleave with
the protocol.

# IPC

Every request carries an ID that is echoed back, and an action:

	{"id": "q1", "action": "search", "q": "zs", "l": 5}

Search responses list names ranked by score:

	{"id": "q1", "r": [{"n": "张三", "py": "zhang san", "c": 2, "s": 102, "rk": 1}], "c": 1, "t": 85}

A request without an action is a search when it has "q" and a completion when
it has "p", so the minimal shapes stay short:

	{"id": "c1", "p": "zh", "l": 8}

Highlighting marks a name picked from the results:

	{"id": "h1", "action": "highlight", "name": "张三"}
	{"id": "h1", "f": 2, "a": 2, "k": 0, "x": 0}

The "input" action is a search meant for keystrokes: it is debounced, and a
newer input cancels an older one that has not run yet, so only the latest
input of a burst gets a response.

Other actions: "rebuild" (with "force"), "complete", "stats" and "render",
which returns the page HTML with its highlights.

Failed requests get an ErrorResponse with a 400 code for bad input and 500
for internal failures.
*/
package server

// Request is the single request shape for every action.
type Request struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"action,omitempty"`
	Query  string `msgpack:"q,omitempty"`
	Prefix string `msgpack:"p,omitempty"`
	Name   string `msgpack:"name,omitempty"`
	Force  bool   `msgpack:"force,omitempty"`
	Limit  int    `msgpack:"l,omitempty"`
}

// SearchResult is one ranked name.
type SearchResult struct {
	Name   string  `msgpack:"n"`
	Pinyin string  `msgpack:"py"`
	Count  int     `msgpack:"c"`
	Score  float64 `msgpack:"s"`
	Rank   uint16  `msgpack:"rk"`
}

// SearchResponse answers search and input.
type SearchResponse struct {
	ID        string         `msgpack:"id"`
	Results   []SearchResult `msgpack:"r"`
	Count     int            `msgpack:"c"`
	TimeTaken int64          `msgpack:"t"` // microseconds
}

// CompletionSuggestion is one name reachable from a key prefix.
type CompletionSuggestion struct {
	Name  string `msgpack:"n"`
	Key   string `msgpack:"k"`
	Count int    `msgpack:"c"`
}

// CompletionResponse answers complete.
type CompletionResponse struct {
	ID          string                 `msgpack:"id"`
	Suggestions []CompletionSuggestion `msgpack:"s"`
	Count       int                    `msgpack:"c"`
}

// HighlightResponse answers highlight.
type HighlightResponse struct {
	ID      string `msgpack:"id"`
	Found   int    `msgpack:"f"`
	Applied int    `msgpack:"a"`
	Skipped int    `msgpack:"k"`
	Cleared int    `msgpack:"x"`
}

// RebuildResponse answers rebuild.
type RebuildResponse struct {
	ID      string `msgpack:"id"`
	Rebuilt bool   `msgpack:"ok"`
	Total   int    `msgpack:"n"`
	BuildMs int64  `msgpack:"ms"`
}

// StatsResponse answers stats.
type StatsResponse struct {
	ID           string  `msgpack:"id"`
	Indexed      bool    `msgpack:"indexed"`
	Candidates   int     `msgpack:"candidates"`
	Items        int     `msgpack:"items"`
	BuildMs      int64   `msgpack:"build_ms"`
	Builds       int64   `msgpack:"builds"`
	Searches     int64   `msgpack:"searches"`
	Highlights   int64   `msgpack:"highlights"`
	MeanSearchUs float64 `msgpack:"mean_search_us"`
	Requests     int     `msgpack:"requests"`
}

// RenderResponse answers render.
type RenderResponse struct {
	ID   string `msgpack:"id"`
	HTML string `msgpack:"html"`
}

// ReadyResponse is written once before the first request is read.
type ReadyResponse struct {
	Status string `msgpack:"status"`
}

// ErrorResponse holds basic error information for a failed request
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
