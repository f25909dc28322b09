package generate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/LuisCarretero/grammar-vae/internal/decoder"
	"github.com/LuisCarretero/grammar-vae/internal/grammar"
	"github.com/LuisCarretero/grammar-vae/internal/selector"
	"github.com/LuisCarretero/grammar-vae/internal/stack"
)

// #region run
// Run turns a score matrix into a leftmost derivation. Each step pops the
// leftmost pending nonterminal, masks row t of scores to the rules expanding
// it, selects one rule and pushes that rule's nonterminals. Run stops when
// the stack empties or after opts.MaxLength steps; running out of steps is
// reported through Result.Truncated, not as an error.
//
// On error the partial derivation is discarded.
func Run(c *grammar.Catalog, scores decoder.ScoreMatrix, opts Options) (Result, error) {
	return run(context.Background(), c, scores, opts, discard)
}

// run is Run with a logger that receives one debug record per step.
func run(ctx context.Context, c *grammar.Catalog, scores decoder.ScoreMatrix, opts Options, logger *slog.Logger) (Result, error) {
	maxLength := opts.maxLength()
	if err := decoder.Validate(scores, maxLength, c.Size()); err != nil {
		return Result{}, err
	}
	if opts.Mode == selector.Stochastic && opts.Rand == nil {
		return Result{}, fmt.Errorf("stochastic generation needs a random source")
	}

	stk := stack.New(c.Start())
	var (
		rules      []int
		derivation grammar.Derivation
	)
	t := 0
	for !stk.Empty() && t < maxLength {
		alpha, err := stk.Pop()
		if err != nil {
			return Result{}, fmt.Errorf("step %d: %w", t, err)
		}
		probs, err := selector.Probabilities(scores[t], c.Mask(alpha))
		if err != nil {
			return Result{}, fmt.Errorf("step %d expanding %s: %w", t, alpha, err)
		}
		i := selector.Argmax(probs)
		if opts.Mode == selector.Stochastic {
			i = selector.Sample(probs, opts.Rand)
		}
		if logger.Enabled(ctx, slog.LevelDebug) {
			logger.DebugContext(ctx, "derivation step",
				slog.Int("step", t),
				slog.String("nonterminal", alpha),
				slog.Int("rule", i),
				slog.Float64("p", probs[i]),
			)
		}
		rule, err := c.RuleAt(i)
		if err != nil {
			return Result{}, fmt.Errorf("step %d: %w", t, err)
		}
		rules = append(rules, i)
		derivation = append(derivation, rule)
		stk.PushRHS(rule)
		t++
	}

	return Result{
		Rules:      rules,
		Derivation: derivation,
		Steps:      t,
		Truncated:  !stk.Empty(),
		Pending:    stk.Pending(),
	}, nil
}

// #endregion run

// #region generator
var discard = slog.New(slog.DiscardHandler)

// Generator binds a catalog to a decoder. It holds no per-call state and may
// be shared between goroutines as long as each call brings its own Rand.
type Generator struct {
	catalog *grammar.Catalog
	decoder decoder.Decoder
	logger  *slog.Logger
}

// New creates a generator. A nil logger discards output.
func New(c *grammar.Catalog, d decoder.Decoder, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = discard
	}
	return &Generator{catalog: c, decoder: d, logger: logger}
}

// Catalog returns the generator's grammar catalog.
func (g *Generator) Catalog() *grammar.Catalog { return g.catalog }

// Generate decodes z once into a score matrix and runs the masked derivation
// loop over it.
func (g *Generator) Generate(ctx context.Context, z []float64, opts Options) (Result, error) {
	maxLength := opts.maxLength()
	mode := opts.Mode.String()

	ctx, span := tracer.Start(ctx, "generate.Generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("mode", mode),
		attribute.Int("max_length", maxLength),
		attribute.Int("z_dim", len(z)),
	)

	start := time.Now()
	scores, err := g.decoder.Decode(ctx, z, maxLength)
	decodeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return g.fail(span, mode, fmt.Errorf("decode: %w", err))
	}

	res, err := run(ctx, g.catalog, scores, opts, g.logger)
	if err != nil {
		return g.fail(span, mode, err)
	}

	outcome := outcomeComplete
	if res.Truncated {
		outcome = outcomeTruncated
	}
	generationsTotal.WithLabelValues(mode, outcome).Inc()
	generationSteps.Observe(float64(res.Steps))
	span.SetAttributes(
		attribute.Int("steps", res.Steps),
		attribute.Bool("truncated", res.Truncated),
	)
	g.logger.Debug("generated derivation",
		slog.String("mode", mode),
		slog.Int("steps", res.Steps),
		slog.Bool("truncated", res.Truncated),
		slog.Any("rules", res.Rules),
	)
	return res, nil
}

func (g *Generator) fail(span trace.Span, mode string, err error) (Result, error) {
	generationsTotal.WithLabelValues(mode, outcomeError).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	g.logger.Warn("generation failed", slog.String("mode", mode), slog.String("error", err.Error()))
	return Result{}, err
}

// #endregion generator
