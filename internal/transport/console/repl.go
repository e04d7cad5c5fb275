package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/staysearch/internal/domain"
	"github.com/kailas-cloud/staysearch/internal/domain/search/request"
	"github.com/kailas-cloud/staysearch/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/staysearch/internal/logger"
)

// Prompts shown for each input state.
const (
	PromptQuery    = "Enter your query: "
	PromptMinPrice = "Enter minimum price: "
	PromptMaxPrice = "Enter maximum price: "
	PromptWifi     = "Require WiFi? (y/n): "
)

const quitCommand = "quit"

// Searcher runs one FLAT/HNSW comparison.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) (result.Comparison, error)
}

// State is a step of the interactive command loop.
type State int

// Loop states. Done is terminal.
const (
	AwaitingQuery State = iota
	AwaitingMinPrice
	AwaitingMaxPrice
	AwaitingWifiFlag
	Executing
	Done
)

func (s State) String() string {
	switch s {
	case AwaitingQuery:
		return "AwaitingQuery"
	case AwaitingMinPrice:
		return "AwaitingMinPrice"
	case AwaitingMaxPrice:
		return "AwaitingMaxPrice"
	case AwaitingWifiFlag:
		return "AwaitingWifiFlag"
	case Executing:
		return "Executing"
	case Done:
		return "Done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options configures a REPL.
type Options struct {
	// TopK is the number of results shown per algorithm.
	TopK int
	// MinPrice and MaxPrice answer an empty price prompt. Both zero selects
	// request.DefaultMinPrice and request.DefaultMaxPrice.
	MinPrice int64
	MaxPrice int64
	Logger   *zap.Logger
}

// REPL is the interactive search loop. It reads one answer per line.
type REPL struct {
	searcher Searcher
	in       io.Reader
	printer  *Printer
	topK     int
	logger   *zap.Logger

	defaultMin int64
	defaultMax int64

	state    State
	queries  int
	query    string
	minPrice int64
	maxPrice int64
	wifi     bool
}

// New creates a REPL reading from in and writing to out.
func New(searcher Searcher, in io.Reader, out io.Writer, opts Options) *REPL {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = request.DefaultTopK
	}
	minPrice, maxPrice := opts.MinPrice, opts.MaxPrice
	if minPrice == 0 && maxPrice == 0 {
		minPrice, maxPrice = request.DefaultMinPrice, request.DefaultMaxPrice
	}
	return &REPL{
		searcher:   searcher,
		in:         in,
		printer:    NewPrinter(out),
		topK:       topK,
		logger:     logger,
		defaultMin: minPrice,
		defaultMax: maxPrice,
		state:      AwaitingQuery,
	}
}

// State returns the current loop state.
func (r *REPL) State() State { return r.state }

// Run drives the loop until the user types quit, input ends, or ctx is
// cancelled. Quit and end of input return nil; cancellation returns ctx.Err().
func (r *REPL) Run(ctx context.Context) error {
	lines, stop := readLines(r.in)
	defer stop()

	r.printer.Banner()

	for r.state != Done {
		if r.state == Executing {
			r.execute(ctx)
			continue
		}

		r.printer.Prompt(r.prompt())
		select {
		case <-ctx.Done():
			r.state = Done
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				r.state = Done
				return nil
			}
			r.handle(line)
		}
	}
	return nil
}

func (r *REPL) prompt() string {
	switch r.state {
	case AwaitingMinPrice:
		return PromptMinPrice
	case AwaitingMaxPrice:
		return PromptMaxPrice
	case AwaitingWifiFlag:
		return PromptWifi
	default:
		return PromptQuery
	}
}

// handle applies one line of input to the current state. Invalid input keeps
// the state so the same prompt is shown again.
func (r *REPL) handle(line string) {
	line = strings.TrimSpace(line)

	switch r.state {
	case AwaitingQuery:
		if strings.EqualFold(line, quitCommand) {
			r.state = Done
			return
		}
		if line == "" {
			return
		}
		if len(line) > request.MaxQueryLength {
			r.printer.Warn("Query too long (max %d characters).", request.MaxQueryLength)
			return
		}
		r.query = line
		r.state = AwaitingMinPrice

	case AwaitingMinPrice:
		v, err := parsePrice(line, r.defaultMin)
		if err != nil {
			r.printer.Warn("Invalid minimum price: %v", err)
			return
		}
		r.minPrice = v
		r.state = AwaitingMaxPrice

	case AwaitingMaxPrice:
		v, err := parsePrice(line, r.defaultMax)
		if err != nil {
			r.printer.Warn("Invalid maximum price: %v", err)
			return
		}
		if v < r.minPrice {
			r.printer.Warn("Maximum price must be at least the minimum price (%d).", r.minPrice)
			return
		}
		r.maxPrice = v
		r.state = AwaitingWifiFlag

	case AwaitingWifiFlag:
		r.wifi = strings.EqualFold(line, "y")
		r.state = Executing
	}
}

// execute runs the pending query. Failures are reported and the loop
// returns to AwaitingQuery.
func (r *REPL) execute(ctx context.Context) {
	defer func() { r.state = AwaitingQuery }()

	r.queries++
	log := r.logger.With(
		zap.Int("query_seq", r.queries),
		zap.Int64("min_price", r.minPrice),
		zap.Int64("max_price", r.maxPrice),
		zap.Bool("wifi_required", r.wifi),
	)

	req, err := request.New(r.query, r.topK, r.minPrice, r.maxPrice, r.wifi)
	if err != nil {
		r.printer.Warn("Invalid search: %v", err)
		return
	}

	ctx, usage := domain.NewContextWithUsage(logpkg.ContextWithLogger(ctx, log))
	cmp, err := r.searcher.Search(ctx, &req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Error("Search failed", zap.Error(err))
		r.printer.Warn("Search failed: %v", err)
		return
	}

	log.Info("Search completed",
		zap.Int("flat_hits", len(cmp.Flat.Hits())),
		zap.Int("hnsw_hits", len(cmp.HNSW.Hits())),
		zap.Duration("flat_elapsed", cmp.Flat.Elapsed()),
		zap.Duration("hnsw_elapsed", cmp.HNSW.Elapsed()),
		zap.Int("embedding_tokens", usage.TotalTokens),
	)
	r.printer.Comparison(cmp)
	r.printer.Usage(usage)
}

// parsePrice reads a whole, non-negative price. An empty line selects def.
func parsePrice(s string, def int64) (int64, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("%d is negative", v)
	}
	return v, nil
}

// readLines scans r on its own goroutine so a blocked read never prevents
// cancellation. stop releases the goroutine once the caller is done.
func readLines(r io.Reader) (<-chan string, func()) {
	lines := make(chan string)
	done := make(chan struct{})

	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 4096), 1024*1024)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-done:
				return
			}
		}
	}()

	return lines, func() { close(done) }
}
