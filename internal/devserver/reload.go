package devserver

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/net/html"
)

const reloadPath = "/_livereload"

const reloadScript = `<script>new EventSource("` + reloadPath + `").addEventListener("reload", function () { location.reload(); });</script>`

// hub fans reload notifications out to connected browsers.
type hub struct {
	mu      sync.Mutex
	clients map[chan struct{}]struct{}
}

func newHub() *hub {
	return &hub{clients: make(map[chan struct{}]struct{})}
}

func (h *hub) subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *hub) unsubscribe(ch chan struct{}) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
}

// broadcast never blocks; a client with a reload pending gets just one.
func (h *hub) broadcast() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return len(h.clients)
}

// ServeHTTP streams server-sent events, one "reload" event per rebuild.
func (h *hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := h.subscribe()
	defer h.unsubscribe(ch)

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ch:
			fmt.Fprint(w, "event: reload\ndata: reload\n\n")
			flusher.Flush()
		}
	}
}

// injectReload adds the reload script to HTML responses of next.
func injectReload(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		iw := &injectWriter{ResponseWriter: w, status: http.StatusOK}
		if r.Method == http.MethodHead {
			// Render the GET body so the injected length is known.
			iw.head = true
			r = r.Clone(r.Context())
			r.Method = http.MethodGet
		}
		next.ServeHTTP(iw, r)
		iw.finish()
	})
}

// injectWriter buffers successful HTML responses and passes everything else
// straight through.
type injectWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	buffering   bool
	head        bool
	buf         bytes.Buffer
}

func (w *injectWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.status = code
	if code == http.StatusOK && strings.HasPrefix(w.Header().Get("Content-Type"), "text/html") {
		w.buffering = true
		return
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *injectWriter) Write(p []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if w.buffering {
		return w.buf.Write(p)
	}
	if w.head {
		return len(p), nil
	}
	return w.ResponseWriter.Write(p)
}

func (w *injectWriter) finish() {
	if !w.buffering {
		return
	}
	body := insertBeforeBodyEnd(w.buf.Bytes(), []byte(reloadScript))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.ResponseWriter.WriteHeader(w.status)
	if !w.head {
		_, _ = w.ResponseWriter.Write(body)
	}
}

// insertBeforeBodyEnd puts snippet in front of the last </body> tag, or at
// the end when there is none. Tags inside scripts and comments don't count.
func insertBeforeBodyEnd(doc, snippet []byte) []byte {
	at := -1
	offset := 0
	z := html.NewTokenizer(bytes.NewReader(doc))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		raw := z.Raw()
		if tt == html.EndTagToken {
			if name, _ := z.TagName(); string(name) == "body" {
				at = offset
			}
		}
		offset += len(raw)
	}
	if at < 0 {
		at = len(doc)
	}

	out := make([]byte, 0, len(doc)+len(snippet))
	out = append(out, doc[:at]...)
	out = append(out, snippet...)
	return append(out, doc[at:]...)
}
