package server

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/bastiangx/pinyinctrlf/pkg/dom"
	"github.com/bastiangx/pinyinctrlf/pkg/romanize"
	"github.com/bastiangx/pinyinctrlf/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

const page = `<html><body>
<p>张三</p>
<p>李四</p>
<div><span>张三</span>，来了</div>
</body></html>`

// serve runs a server over the encoded requests and returns a decoder
// positioned after the ready message.
func serve(t *testing.T, requests ...any) *msgpack.Decoder {
	t.Helper()
	doc, err := dom.Parse(strings.NewReader(page))
	require.NoError(t, err)
	s := session.New(doc, romanize.NewPinyin(nil), session.Options{})

	var in bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, r := range requests {
		require.NoError(t, enc.Encode(r))
	}

	var out bytes.Buffer
	srv := NewServerWithIO(s, Options{Debounce: time.Hour}, &in, &out)
	require.NoError(t, srv.Start())

	dec := msgpack.NewDecoder(&out)
	var ready ReadyResponse
	require.NoError(t, dec.Decode(&ready))
	require.Equal(t, "ready", ready.Status)
	return dec
}

func TestSearchAndHighlight(t *testing.T) {
	dec := serve(t,
		Request{ID: "1", Action: "search", Query: "zs"},
		Request{ID: "2", Query: "ls", Limit: 1},
		Request{ID: "3", Action: "highlight", Name: "张三"},
		Request{ID: "4", Action: "highlight", Name: "李四"},
	)

	var search SearchResponse
	require.NoError(t, dec.Decode(&search))
	assert.Equal(t, "1", search.ID)
	require.NotEmpty(t, search.Results)
	assert.Equal(t, "张三", search.Results[0].Name)
	assert.Equal(t, "zhang san", search.Results[0].Pinyin)
	assert.Equal(t, 2, search.Results[0].Count)
	assert.Equal(t, uint16(1), search.Results[0].Rank)
	assert.Equal(t, len(search.Results), search.Count)

	require.NoError(t, dec.Decode(&search))
	assert.Equal(t, "2", search.ID)
	require.Len(t, search.Results, 1)
	assert.Equal(t, "李四", search.Results[0].Name)

	var hl HighlightResponse
	require.NoError(t, dec.Decode(&hl))
	assert.Equal(t, HighlightResponse{ID: "3", Found: 2, Applied: 2}, hl)

	require.NoError(t, dec.Decode(&hl))
	assert.Equal(t, HighlightResponse{ID: "4", Found: 1, Applied: 1, Cleared: 2}, hl)
}

func TestCompleteRebuildStatsRender(t *testing.T) {
	dec := serve(t,
		Request{ID: "r1", Action: "rebuild"},
		Request{ID: "r2", Action: "rebuild"},
		Request{ID: "c1", Prefix: "zh"},
		Request{ID: "h1", Action: "highlight", Name: "李四"},
		Request{ID: "s1", Action: "stats"},
		Request{ID: "w1", Action: "render"},
	)

	var rebuild RebuildResponse
	require.NoError(t, dec.Decode(&rebuild))
	assert.True(t, rebuild.Rebuilt)
	assert.Equal(t, 3, rebuild.Total)
	require.NoError(t, dec.Decode(&rebuild))
	assert.False(t, rebuild.Rebuilt)

	var complete CompletionResponse
	require.NoError(t, dec.Decode(&complete))
	require.Len(t, complete.Suggestions, 1)
	assert.Equal(t, "张三", complete.Suggestions[0].Name)

	var hl HighlightResponse
	require.NoError(t, dec.Decode(&hl))

	var stats StatsResponse
	require.NoError(t, dec.Decode(&stats))
	assert.True(t, stats.Indexed)
	assert.Equal(t, 3, stats.Candidates)
	assert.Equal(t, int64(1), stats.Builds)
	assert.Equal(t, int64(1), stats.Highlights)
	assert.Equal(t, 5, stats.Requests)

	var render RenderResponse
	require.NoError(t, dec.Decode(&render))
	assert.Contains(t, render.HTML, `<span class="pinyinctrlf-hit"`)
	assert.Contains(t, render.HTML, `>李四</span>`)
}

func TestInputLatestWins(t *testing.T) {
	dec := serve(t,
		Request{ID: "i1", Action: "input", Query: "z"},
		Request{ID: "i2", Action: "input", Query: "zs"},
		Request{ID: "i3", Action: "input", Query: "ls"},
	)

	var search SearchResponse
	require.NoError(t, dec.Decode(&search))
	assert.Equal(t, "i3", search.ID)
	require.NotEmpty(t, search.Results)
	assert.Equal(t, "李四", search.Results[0].Name)

	var extra any
	assert.Error(t, dec.Decode(&extra))
}

func TestErrors(t *testing.T) {
	dec := serve(t,
		Request{ID: "e1", Action: "teleport"},
		Request{ID: "e2", Action: "search"},
		Request{ID: "e3", Action: "search", Query: strings.Repeat("z", 61)},
		Request{ID: "e4", Action: "highlight"},
		Request{ID: "e5", Action: "complete"},
		42,
		Request{ID: "ok", Query: "zs"},
	)

	for _, id := range []string{"e1", "e2", "e3", "e4", "e5", ""} {
		var resp ErrorResponse
		require.NoError(t, dec.Decode(&resp), id)
		assert.Equal(t, id, resp.ID)
		assert.Equal(t, 400, resp.Code)
		assert.NotEmpty(t, resp.Error)
	}

	var search SearchResponse
	require.NoError(t, dec.Decode(&search))
	assert.Equal(t, "ok", search.ID)
}
