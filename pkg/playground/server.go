// Package playground serves an HTTP API for running and checking Lox
// snippets. Compiled programs are cached by source so repeated runs skip the
// scan, parse and resolve phases.
package playground

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/gofiber/fiber/v2"
	"github.com/oarkflow/json"
	"github.com/oarkflow/log"
	"github.com/oarkflow/xid"

	"lox/interpreter-go/pkg/diag"
	"lox/interpreter-go/pkg/interpreter"
	"lox/interpreter-go/pkg/natives"
	"lox/interpreter-go/pkg/runtime"
)

// Options configures a Server. Zero values fall back to sensible defaults,
// except CacheMB where zero disables the program cache.
type Options struct {
	Version      string
	Timeout      time.Duration
	CacheMB      int64
	Natives      []string
	MaxCallDepth int
	Logger       *log.Logger
}

// Server owns the fiber app and the compiled-program cache.
type Server struct {
	app    *fiber.App
	cache  *ristretto.Cache
	opts   Options
	logger *log.Logger
}

// RunRequest is the body of POST /api/run and POST /api/check.
type RunRequest struct {
	Source string `json:"source"`
}

// RuntimeError describes the error that aborted a run.
type RuntimeError struct {
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

// RunResponse reports everything a single run produced.
type RunResponse struct {
	ID          string        `json:"id"`
	Output      string        `json:"output"`
	Diagnostics diag.List     `json:"diagnostics,omitempty"`
	Error       *RuntimeError `json:"error,omitempty"`
	ExitCode    *int          `json:"exit_code,omitempty"`
	TimedOut    bool          `json:"timed_out,omitempty"`
	Cached      bool          `json:"cached"`
	DurationMS  float64       `json:"duration_ms"`
}

// CheckResponse is the body returned by POST /api/check.
type CheckResponse struct {
	Valid       bool      `json:"valid"`
	Diagnostics diag.List `json:"diagnostics,omitempty"`
}

const defaultTimeout = 5 * time.Second

// New builds the server and registers its routes.
func New(opts Options) (*Server, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = &log.DefaultLogger
	}
	for _, name := range opts.Natives {
		if _, ok := natives.Lookup(name); !ok {
			return nil, errors.New("playground: unknown native function " + name)
		}
	}

	s := &Server{opts: opts, logger: opts.Logger}
	if opts.CacheMB > 0 {
		maxCost := opts.CacheMB << 20
		cache, err := ristretto.NewCache(&ristretto.Config{
			NumCounters: maxCost / 100,
			MaxCost:     maxCost,
			BufferItems: 64,
		})
		if err != nil {
			return nil, err
		}
		s.cache = cache
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "lox-playground",
		DisableStartupMessage: true,
		JSONEncoder: func(v interface{}) ([]byte, error) {
			return json.Marshal(v)
		},
		JSONDecoder: func(data []byte, v interface{}) error {
			return json.Unmarshal(data, v)
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.app.Get("/api/health", s.healthHandler)
	s.app.Post("/api/run", s.runHandler)
	s.app.Post("/api/check", s.checkHandler)
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen blocks serving on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.logger.Info().Str("addr", addr).Dur("timeout", s.opts.Timeout).Msg("playground listening")
	return s.app.Listen(addr)
}

// Shutdown stops the listener and releases the cache.
func (s *Server) Shutdown() error {
	err := s.app.Shutdown()
	if s.cache != nil {
		s.cache.Close()
	}
	return err
}

func (s *Server) healthHandler(c *fiber.Ctx) error {
	names := s.opts.Natives
	if len(names) == 0 {
		names = natives.Names()
	}
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"version":   s.opts.Version,
		"natives":   names,
		"cache":     s.cache != nil,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) parseRequest(c *fiber.Ctx) (RunRequest, error) {
	var req RunRequest
	if err := c.BodyParser(&req); err != nil {
		return req, fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	return req, nil
}

func (s *Server) checkHandler(c *fiber.Ctx) error {
	req, err := s.parseRequest(c)
	if err != nil {
		return err
	}
	_, errs, _ := s.compile(req.Source)
	return c.JSON(CheckResponse{Valid: len(errs) == 0, Diagnostics: errs})
}

func (s *Server) runHandler(c *fiber.Ctx) error {
	req, err := s.parseRequest(c)
	if err != nil {
		return err
	}
	start := time.Now()
	resp := RunResponse{ID: xid.New().String()}
	program, errs, cached := s.compile(req.Source)
	resp.Cached = cached
	if len(errs) > 0 {
		resp.Diagnostics = errs
		resp.DurationMS = elapsedMS(start)
		s.logger.Info().Str("run_id", resp.ID).Int("diagnostics", len(errs)).Msg("static errors")
		return c.JSON(resp)
	}

	var out bytes.Buffer
	interp := interpreter.New(
		interpreter.WithStdout(&out),
		interpreter.WithMaxCallDepth(s.opts.MaxCallDepth),
	)
	if err := natives.Install(interp, s.opts.Natives...); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.UserContext(), s.opts.Timeout)
	defer cancel()
	runErr := interp.ExecuteContext(ctx, program)

	resp.Output = out.String()
	resp.DurationMS = elapsedMS(start)
	s.describe(&resp, runErr)
	event := s.logger.Info()
	if resp.Error != nil {
		event = s.logger.Warn().Str("error", resp.Error.Message)
	}
	event.Str("run_id", resp.ID).Bool("cached", cached).Dur("elapsed", time.Since(start)).Msg("run finished")
	return c.JSON(resp)
}

// describe folds the terminal error of a run into the response.
func (s *Server) describe(resp *RunResponse, err error) {
	if err == nil {
		return
	}
	var rtErr *runtime.Error
	var exitErr *natives.ExitError
	switch {
	case errors.As(err, &exitErr):
		code := exitErr.Code
		resp.ExitCode = &code
	case errors.As(err, &rtErr):
		resp.Error = &RuntimeError{Line: rtErr.Line(), Message: rtErr.Message}
	case errors.Is(err, context.DeadlineExceeded):
		resp.TimedOut = true
		resp.Error = &RuntimeError{Message: "Execution timed out after " + s.opts.Timeout.String() + "."}
	default:
		resp.Error = &RuntimeError{Message: err.Error()}
	}
}

// compile returns a cached program when one exists for source. Programs are
// read-only once compiled so concurrent requests may share them.
func (s *Server) compile(source string) (*interpreter.Program, diag.List, bool) {
	if s.cache != nil {
		if v, ok := s.cache.Get(source); ok {
			return v.(*interpreter.Program), nil, true
		}
	}
	program, errs := interpreter.Compile(source)
	if len(errs) > 0 || s.cache == nil {
		return program, errs, false
	}
	// Cost approximates the tree size, which grows with the source.
	s.cache.Set(source, program, int64(len(source))*16+1)
	s.cache.Wait()
	return program, nil, false
}

func elapsedMS(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
