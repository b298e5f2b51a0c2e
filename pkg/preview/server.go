// Package preview is the daemon's rendering front end: a localhost HTTP
// viewer for the current document. It consumes only the controller's public
// surface (the snapshot query and the notification bus), so the daemon core
// stays renderer-agnostic.
package preview

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/b/mview/pkg/document"
	"github.com/b/mview/pkg/events"
	"github.com/b/mview/pkg/viewer"
)

// Server renders the controller's current document over localhost HTTP and
// pushes payload-free change notifications to browsers via SSE.
type Server struct {
	ctrl            *viewer.Controller
	md              goldmark.Markdown
	diagramsEnabled bool

	clientsMu sync.Mutex
	clients   map[chan events.Event]struct{}
}

// NewServer creates a preview server for ctrl. diagramsEnabled controls
// whether .puml/.plantuml files get highlighted source or a plain block.
func NewServer(ctrl *viewer.Controller, diagramsEnabled bool) *Server {
	return &Server{
		ctrl:            ctrl,
		diagramsEnabled: diagramsEnabled,
		clients:         make(map[chan events.Event]struct{}),
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(
					highlighting.WithStyle("github"),
				),
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				gmhtml.WithUnsafe(),
			),
		),
	}
}

// Forward consumes bus events and fans them out to connected SSE clients.
// Run it on its own goroutine; it returns when ch closes.
func (s *Server) Forward(ch <-chan events.Event) {
	for e := range ch {
		s.broadcast(e)
	}
}

func (s *Server) broadcast(e events.Event) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for client := range s.clients {
		select {
		case client <- e:
		default:
		}
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", s.handleIndex)
	r.Get("/state", s.handleState)
	r.Get("/events", s.handleEvents)
	return r
}

// NewHTTPServer wraps the handler in an http.Server bound to addr.
// No write timeout: the SSE stream is long-lived.
func (s *Server) NewHTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
}

// handleState implements the query contract: the full current document
// state as JSON. The front end re-queries this after every notification.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.ctrl.Snapshot()
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "no document loaded"})
		return
	}
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		log.Printf("[preview] state encode error: %v", err)
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	client := make(chan events.Event, 8)
	s.clientsMu.Lock()
	s.clients[client] = struct{}{}
	s.clientsMu.Unlock()
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, client)
		s.clientsMu.Unlock()
	}()

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case e := <-client:
			// Events carry no payload; receivers re-query /state.
			fmt.Fprintf(w, "event: %s\ndata: {}\n\n", e)
			flusher.Flush()
		}
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.ctrl.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if !ok {
		pageTmpl.Execute(w, pageData{Title: "mview", Body: template.HTML("<p>No document loaded. Run <code>mview &lt;file.md&gt;</code>.</p>")})
		return
	}

	body, err := s.renderBody(&doc)
	if err != nil {
		log.Printf("[preview] render error: %v", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	data := pageData{Title: doc.Name, Path: doc.Path, Body: body}
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		log.Printf("[preview] template error: %v", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	buf.WriteTo(w)
}

func (s *Server) renderBody(doc *document.Document) (template.HTML, error) {
	if doc.Kind == document.KindDiagram {
		return s.renderDiagram(doc)
	}
	if doc.Large {
		return s.renderSections(doc)
	}
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(doc.Content), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// renderDiagram shows diagram source rather than converting it; with
// diagrams enabled the source goes through the highlighter as a fenced
// plantuml block.
func (s *Server) renderDiagram(doc *document.Document) (template.HTML, error) {
	if s.diagramsEnabled {
		fenced := "```plantuml\n" + doc.Content + "\n```\n"
		var buf bytes.Buffer
		if err := s.md.Convert([]byte(fenced), &buf); err != nil {
			return "", err
		}
		return template.HTML(buf.String()), nil
	}
	var buf bytes.Buffer
	buf.WriteString("<pre>")
	template.HTMLEscape(&buf, []byte(doc.Content))
	buf.WriteString("</pre>")
	return template.HTML(buf.String()), nil
}

// renderSections shows a large file as a collapsed outline, first section
// expanded, so the browser never has to lay out the whole document at once.
func (s *Server) renderSections(doc *document.Document) (template.HTML, error) {
	var out bytes.Buffer
	for i, sec := range doc.Sections {
		var body bytes.Buffer
		if err := s.md.Convert([]byte(sec.Body), &body); err != nil {
			return "", err
		}
		open := ""
		if i == 0 {
			open = " open"
		}
		fmt.Fprintf(&out, "<details class=\"section\"%s><summary>", open)
		template.HTMLEscape(&out, []byte(sec.Title))
		out.WriteString("</summary>\n")
		out.Write(body.Bytes())
		out.WriteString("</details>\n")
	}
	return template.HTML(out.String()), nil
}

type pageData struct {
	Title string
	Path  string
	Body  template.HTML
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
body { max-width: 52rem; margin: 2rem auto; padding: 0 1rem; font-family: -apple-system, sans-serif; line-height: 1.6; }
pre { background: #f6f8fa; padding: 1em; overflow-x: auto; border-radius: 6px; }
code { font-family: ui-monospace, monospace; }
details.section { border-bottom: 1px solid #eee; padding: .25rem 0; }
details.section > summary { cursor: pointer; font-weight: 600; }
</style>
</head>
<body>
<main>{{.Body}}</main>
<script>
const es = new EventSource('/events');
es.addEventListener('file-loaded', () => location.reload());
es.addEventListener('file-changed', () => location.reload());
</script>
</body>
</html>
`))
