package lang

import (
	"context"
	"io"
	"iter"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// globalCache stores parsed programs keyed by source hash.
// Parsed nodes are immutable, so cached programs are shared freely.
var globalCache sync.Map

// state tracks the one-time parse of a single source text.
type state struct {
	once  sync.Once
	exprs []*SExpr
	err   error
}

// ParseReader parses all top-level expressions from an io.Reader.
// The parsed program is cached by content hash, so re-reading identical
// source skips the parse entirely.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) ([]*SExpr, error) {
	// Wrap reader with async read-ahead so data is pre-fetched while
	// previous chunks are still being consumed.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	cfg := applyOptions(opts...)

	cfg.logger.TraceContext(
		ctx,
		"read input",
		slog.Int("source_bytes", len(data)),
		slog.Bool("read_ahead", true),
	)

	return parseProgramCached(ctx, string(data), opts...)
}

// parseProgramCached parses a source string with content-hash caching.
func parseProgramCached(
	ctx context.Context,
	source string,
	opts ...Option,
) ([]*SExpr, error) {
	cfg := applyOptions(opts...)

	sourceKey := strconv.FormatUint(xxh3.Hash([]byte(source)), 36)

	entry := new(state)
	value, cacheHit := globalCache.LoadOrStore(sourceKey, entry)

	metadata, ok := value.(*state)
	if !ok {
		return nil, ErrInvalidNode.
			With(slog.String("issue", "invalid metadata type in cache"))
	}

	cfg.logger.TraceContext(
		ctx,
		"cache lookup",
		slog.String("source_key", sourceKey),
		slog.Bool("cache_hit", cacheHit),
	)

	metadata.once.Do(func() {
		exprs, err := ParseProgram(ctx, source, opts...)
		if err != nil {
			metadata.err = WrapError(err).With(
				slog.Int("source_length", len(source)),
			)

			return
		}

		metadata.exprs = exprs
	})

	if metadata.err != nil {
		return nil, metadata.err
	}

	return metadata.exprs, nil
}

// Stream provides on-demand access to the expressions of a source text.
// The source is read and parsed once, on first access.
type Stream struct {
	reader   io.Reader
	source   string
	metadata *state
}

// NewStream creates a streaming parser from an io.Reader.
// The reader is not consumed until first access.
func NewStream(r io.Reader) *Stream {
	return &Stream{
		reader:   r,
		metadata: new(state),
	}
}

// NewStreamFromString creates a streaming parser from a source string.
func NewStreamFromString(source string) *Stream {
	return &Stream{
		source:   source,
		metadata: new(state),
	}
}

func (p *Stream) ensureParsed(ctx context.Context) error {
	p.metadata.once.Do(func() {
		if p.source == "" && p.reader != nil {
			ra := readahead.NewReader(p.reader)
			defer ra.Close()

			data, err := io.ReadAll(ra)
			if err != nil {
				p.metadata.err = ErrReadInput.Wrap(err).
					With(slog.String("source", "reader"))

				return
			}

			p.source = string(data)
		}

		exprs, err := parseProgramCached(ctx, p.source)
		if err != nil {
			p.metadata.err = err

			return
		}

		p.metadata.exprs = exprs
	})

	return p.metadata.err
}

// Expressions returns an iterator over all top-level expressions in the
// source. If parsing fails, the iterator yields no values; use [Stream.Err]
// to inspect the failure afterward.
func (p *Stream) Expressions(ctx context.Context) iter.Seq[*SExpr] {
	return func(yield func(*SExpr) bool) {
		if err := p.ensureParsed(ctx); err != nil {
			return
		}

		for _, expr := range p.metadata.exprs {
			if !yield(expr) {
				return
			}
		}
	}
}

// Err returns the parse or read error encountered by the stream, if any.
func (p *Stream) Err() error {
	return p.metadata.err
}

// Program returns all top-level expressions of the source.
func (p *Stream) Program(ctx context.Context) ([]*SExpr, error) {
	if err := p.ensureParsed(ctx); err != nil {
		return nil, err
	}

	return p.metadata.exprs, nil
}

// ExpressionsFrom returns an iterator over all top-level expressions read
// from an io.Reader.
func ExpressionsFrom(ctx context.Context, r io.Reader) iter.Seq[*SExpr] {
	return NewStream(r).Expressions(ctx)
}

// ClearCache removes all cached programs.
// This is primarily useful for testing or when memory needs to be reclaimed.
func ClearCache() {
	globalCache = sync.Map{}
}
