// Package server exposes the admission guard as an HTTP proxy in front
// of a GraphQL endpoint: requests are parsed, analyzed against the
// current configuration snapshot, and either forwarded upstream or
// rejected with a structured GraphQL error.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	config "github.com/apollosolutions/graphguard/internal/config"
	eventbus "github.com/apollosolutions/graphguard/internal/eventbus"
	events "github.com/apollosolutions/graphguard/internal/events"
	guard "github.com/apollosolutions/graphguard/internal/guard"
	language "github.com/apollosolutions/graphguard/internal/language"
	reqid "github.com/apollosolutions/graphguard/internal/reqid"
)

// Handler is an http.Handler guarding a GraphQL endpoint. Each request
// captures one configuration snapshot and uses it for every operation
// in the request, batches included.
type Handler struct {
	store *config.Store
	exec  Executor
	opt   Options
}

type Options struct {
	// Timeout sets a default timeout if the incoming request context has none.
	// 0 means no default timeout.
	Timeout time.Duration

	// Pretty enables indented JSON responses (useful for dev).
	Pretty bool

	// MaxBodyBytes limits the size of the request body. 0 means unlimited.
	MaxBodyBytes int64
}

type Option func(*Options)

func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }
func WithPretty() Option                 { return func(o *Options) { o.Pretty = true } }
func WithMaxBodyBytes(n int64) Option    { return func(o *Options) { o.MaxBodyBytes = n } }

// New creates a handler that admits requests against snapshots from
// store and hands accepted ones to exec.
func New(store *config.Store, exec Executor, opts ...Option) *Handler {
	op := Options{Timeout: 10 * time.Second}
	for _, f := range opts {
		f(&op)
	}
	return &Handler{store: store, exec: exec, opt: op}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := ctx.Deadline(); !ok && h.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opt.Timeout)
		defer cancel()
	}

	ctx, _ = reqid.NewContext(ctx)
	status := http.StatusOK
	start := time.Now()
	eventbus.Publish(ctx, events.HTTPStart{Request: r})
	defer func() {
		eventbus.Publish(ctx, events.HTTPFinish{Request: r, Status: status, Duration: time.Since(start)})
	}()

	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		status = http.StatusMethodNotAllowed
		writeJSON(w, status, errorResponse("method not allowed"), h.opt.Pretty)
		return
	}

	req, batch, berr := parseRequest(r, h.opt.MaxBodyBytes)
	if berr != nil {
		status = http.StatusBadRequest
		if berr.Message == errBodyTooLargeMessage {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, errorResponse(berr.Message), h.opt.Pretty)
		return
	}

	snap := h.store.Current()

	if batch != nil {
		out := make([]any, len(batch))
		for i := range batch {
			out[i] = h.admitOne(ctx, batch[i], snap)
		}
		writeJSON(w, status, out, h.opt.Pretty)
		return
	}

	// Rejections and malformed operations answer 200 with a GraphQL
	// error body; only transport failures change the HTTP status.
	res := h.admitOne(ctx, req, snap)
	if sr, ok := res.(specResult); ok && sr.transportError {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, res, h.opt.Pretty)
}

// admitOne analyzes a single request against snap and forwards it
// upstream when allowed.
func (h *Handler) admitOne(ctx context.Context, req GraphQLRequest, snap *guard.Snapshot) any {
	doc, err := language.ParseQuery(req.Query)
	if err != nil {
		if ge, ok := err.(*language.Error); ok {
			return errorResponse(ge.Message)
		}
		return errorResponse(err.Error())
	}

	opType := ""
	if op := doc.Operations.ForName(req.OperationName); op != nil {
		opType = string(op.Operation)
	}

	start := time.Now()
	eventbus.Publish(ctx, events.AdmissionStart{OperationName: req.OperationName, OperationType: opType})
	result := guard.Check(doc, req.OperationName, snap)
	eventbus.Publish(ctx, events.AdmissionFinish{
		OperationName: req.OperationName,
		OperationType: opType,
		Verdict:       string(result.Verdict),
		Depth:         result.Depth,
		Cost:          result.Cost,
		Codes:         violationCodes(result),
		Duration:      time.Since(start),
	})

	if result.Verdict == guard.VerdictReject {
		return rejectionResponse(result)
	}

	body, err := h.exec.Execute(ctx, req)
	if err != nil {
		res := errorResponse("upstream request failed: "+err.Error())
		res.transportError = true
		return res
	}
	return json.RawMessage(body)
}

func violationCodes(result guard.AnalysisResult) []string {
	if len(result.Violations) == 0 {
		return nil
	}
	codes := make([]string, len(result.Violations))
	for i, v := range result.Violations {
		codes[i] = v.Code
	}
	return codes
}

// ------------------ Request parsing ------------------

type GraphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
	Extensions    map[string]any `json:"extensions,omitempty"`
}

const errBodyTooLargeMessage = "request body too large"

func parseRequest(r *http.Request, maxBody int64) (GraphQLRequest, []GraphQLRequest, *language.Error) {
	if r.Method == http.MethodGet {
		q := r.URL.Query().Get("query")
		if q == "" {
			return GraphQLRequest{}, nil, &language.Error{Message: "missing 'query'"}
		}
		vars := map[string]any{}
		if v := r.URL.Query().Get("variables"); v != "" {
			if err := json.Unmarshal([]byte(v), &vars); err != nil {
				return GraphQLRequest{}, nil, &language.Error{Message: "invalid 'variables' JSON"}
			}
		}
		op := r.URL.Query().Get("operationName")
		return GraphQLRequest{Query: q, Variables: vars, OperationName: op}, nil, nil
	}

	reader := io.Reader(r.Body)
	if maxBody > 0 {
		reader = io.LimitReader(r.Body, maxBody+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return GraphQLRequest{}, nil, &language.Error{Message: "failed to read body"}
	}
	defer r.Body.Close()
	if maxBody > 0 && int64(len(body)) > maxBody {
		return GraphQLRequest{}, nil, &language.Error{Message: errBodyTooLargeMessage}
	}

	// Try array (batch)
	if len(body) > 0 && body[0] == '[' {
		var arr []GraphQLRequest
		if err := json.Unmarshal(body, &arr); err != nil {
			return GraphQLRequest{}, nil, &language.Error{Message: "invalid JSON"}
		}
		if len(arr) == 0 {
			return GraphQLRequest{}, nil, &language.Error{Message: "empty batch"}
		}
		return GraphQLRequest{}, arr, nil
	}
	// Single
	var req GraphQLRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return GraphQLRequest{}, nil, &language.Error{Message: "invalid JSON"}
	}
	if req.Query == "" {
		return GraphQLRequest{}, nil, &language.Error{Message: "missing 'query'"}
	}
	return req, nil, nil
}

// ------------------ Response formatting ------------------

type specError struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

type specResult struct {
	Data   any         `json:"data"`
	Errors []specError `json:"errors,omitempty"`

	transportError bool `json:"-"`
}

func errorResponse(message string) specResult {
	return specResult{Errors: []specError{{Message: message}}}
}

// rejectionResponse renders each violation as a GraphQL error whose
// extensions carry the code and, for measured limits, the measured
// value and the configured limit.
func rejectionResponse(result guard.AnalysisResult) specResult {
	out := specResult{Errors: make([]specError, len(result.Violations))}
	for i, v := range result.Violations {
		ext := map[string]any{"code": v.Code}
		switch v.Code {
		case guard.CodeDepthLimitExceeded:
			ext["depth"] = v.Measured
			ext["maxDepth"] = v.Limit
		case guard.CodeCostLimitExceeded:
			ext["cost"] = v.Measured
			ext["maxCost"] = v.Limit
		}
		out.Errors[i] = specError{Message: v.Message, Extensions: ext}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any, pretty bool) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
}
