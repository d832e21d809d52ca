package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/pretty"
	"google.golang.org/protobuf/proto"

	config "github.com/hanpama/gqladmin/internal/config"
	eventbus "github.com/hanpama/gqladmin/internal/eventbus"
	events "github.com/hanpama/gqladmin/internal/events"
	overlay "github.com/hanpama/gqladmin/internal/overlay"
	reqid "github.com/hanpama/gqladmin/internal/reqid"
	schema "github.com/hanpama/gqladmin/internal/schema"
	shape "github.com/hanpama/gqladmin/internal/shape"
)

// ContentTypeProtobuf selects a binary google.protobuf.Value response.
const ContentTypeProtobuf = "application/x-protobuf"

// Handler is an http.Handler that serves the admin shape of a schema.
// Every GET derives the shape afresh and overlays the configured rules.
type Handler struct {
	doc *schema.Document
	opt Options
}

type Options struct {
	// Timeout sets a default timeout if the incoming request context has none.
	// 0 means no default timeout.
	Timeout time.Duration

	// Pretty enables indented JSON responses (useful for dev).
	Pretty bool

	// CORS configuration. If AllowedOrigins is empty, CORS is disabled.
	CORS CORSOptions

	// Rules are overlaid on every generated shape. They are never modified.
	Rules overlay.Value

	// Exclude lists type names left out of the shape.
	Exclude []string

	// Logger receives notes about skipped schema types. Nil discards them.
	Logger *log.Logger

	// Path is where Router mounts the handler.
	Path string
}

type Option func(*Options)

func WithTimeout(d time.Duration) Option   { return func(o *Options) { o.Timeout = d } }
func WithPretty() Option                   { return func(o *Options) { o.Pretty = true } }
func WithRules(rules overlay.Value) Option { return func(o *Options) { o.Rules = rules } }
func WithExclude(types ...string) Option   { return func(o *Options) { o.Exclude = types } }
func WithLogger(l *log.Logger) Option      { return func(o *Options) { o.Logger = l } }
func WithPath(path string) Option          { return func(o *Options) { o.Path = path } }
func WithCORS(origins ...string) Option {
	return func(o *Options) { o.CORS.AllowedOrigins = origins }
}

// CORSOptions holds simple CORS settings.
type CORSOptions struct {
	AllowedOrigins []string
}

// New creates a shape handler for doc. A nil doc is refused with
// config.ErrMissingSchema.
func New(doc *schema.Document, opts ...Option) (*Handler, error) {
	if doc == nil {
		return nil, config.ErrMissingSchema
	}
	op := Options{Timeout: 10 * time.Second, Path: "/admin/shape"}
	for _, f := range opts {
		f(&op)
	}
	return &Handler{doc: doc, opt: op}, nil
}

// Path returns the mount path of the handler.
func (h *Handler) Path() string { return h.opt.Path }

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := ctx.Deadline(); !ok && h.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opt.Timeout)
		defer cancel()
	}

	ctx, rid := reqid.WithID(ctx, r.Header.Get(reqid.Header))
	w.Header().Set(reqid.Header, rid)
	cw := &countingWriter{ResponseWriter: w}
	w = cw
	status := http.StatusOK
	start := time.Now()
	eventbus.Publish(ctx, events.HTTPStart{Request: r, RequestID: rid})
	defer func() {
		eventbus.Publish(ctx, events.HTTPFinish{
			Request:   r,
			RequestID: rid,
			Status:    status,
			Bytes:     cw.n,
			Duration:  time.Since(start),
		})
	}()

	if r.Method == http.MethodOptions {
		if len(h.opt.CORS.AllowedOrigins) > 0 {
			setCORSHeaders(w, r, h.opt.CORS)
		}
		status = http.StatusNoContent
		w.WriteHeader(status)
		return
	}

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		status = http.StatusMethodNotAllowed
		w.Header().Set("Allow", "GET, HEAD, OPTIONS")
		writeError(w, status, "method not allowed")
		return
	}

	if len(h.opt.CORS.AllowedOrigins) > 0 {
		setCORSHeaders(w, r, h.opt.CORS)
	}

	out, err := h.generate(ctx)
	if err != nil {
		status = http.StatusInternalServerError
		writeError(w, status, err.Error())
		return
	}
	if err := ctx.Err(); err != nil {
		status = http.StatusServiceUnavailable
		writeError(w, status, "request timed out")
		return
	}

	if acceptsProtobuf(r.Header.Get("Accept")) {
		body, err := proto.Marshal(out.ToProto())
		if err != nil {
			status = http.StatusInternalServerError
			writeError(w, status, err.Error())
			return
		}
		w.Header().Set("Content-Type", ContentTypeProtobuf)
		write(w, r, status, body)
		return
	}

	body, err := out.MarshalJSON()
	if err != nil {
		status = http.StatusInternalServerError
		writeError(w, status, err.Error())
		return
	}
	if h.opt.Pretty || wantsPretty(r) {
		body = pretty.PrettyOptions(body, &pretty.Options{Width: 80, Indent: "  "})
	} else {
		body = append(body, '\n')
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	write(w, r, status, body)
}

// generate builds the shape and overlays the rules, reporting both steps on
// the event bus.
func (h *Handler) generate(ctx context.Context) (overlay.Value, error) {
	start := time.Now()
	eventbus.Publish(ctx, events.ShapeStart{Schema: h.doc.Name})
	s, err := shape.Build(h.doc, shape.Options{
		Rules:   h.opt.Rules,
		Exclude: h.opt.Exclude,
		Logger:  h.opt.Logger,
	})
	finish := events.ShapeFinish{Schema: h.doc.Name, Err: err, Duration: time.Since(start)}
	if s != nil {
		finish.Types = s.Len()
	}
	eventbus.Publish(ctx, finish)
	if err != nil {
		return overlay.Value{}, err
	}

	start = time.Now()
	tree := s.Tree()
	out := overlay.Merge(tree, h.opt.Rules)
	eventbus.Publish(ctx, events.MergeFinish{
		Types:    out.Len(),
		Pruned:   overlay.ResolverCount(tree) - overlay.ResolverCount(out),
		Duration: time.Since(start),
	})
	return out, nil
}

// ------------------ Response formatting ------------------

type apiError struct {
	Message string `json:"message"`
}

type errorResult struct {
	Errors []apiError `json:"errors"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResult{Errors: []apiError{{Message: msg}}})
}

func write(w http.ResponseWriter, r *http.Request, status int, body []byte) {
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(body)
}

type countingWriter struct {
	http.ResponseWriter
	n int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	n, err := w.ResponseWriter.Write(p)
	w.n += n
	return n, err
}

func wantsPretty(r *http.Request) bool {
	switch r.URL.Query().Get("pretty") {
	case "1", "true":
		return true
	}
	return false
}

func acceptsProtobuf(accept string) bool {
	for _, p := range strings.Split(accept, ",") {
		mt, _, _ := strings.Cut(strings.TrimSpace(p), ";")
		if mt == ContentTypeProtobuf {
			return true
		}
	}
	return false
}

func setCORSHeaders(w http.ResponseWriter, r *http.Request, opts CORSOptions) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return
	}
	allowed := false
	for _, o := range opts.AllowedOrigins {
		if o == "*" || o == origin {
			allowed = true
			break
		}
	}
	if !allowed {
		return
	}
	if contains(opts.AllowedOrigins, "*") {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	} else {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Add("Vary", "Origin")
	}
	if r.Method == http.MethodOptions {
		if hdr := r.Header.Get("Access-Control-Request-Headers"); hdr != "" {
			w.Header().Set("Access-Control-Allow-Headers", hdr)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET,HEAD,OPTIONS")
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
