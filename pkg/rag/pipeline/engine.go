package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"net"
	"time"

	"tigaraksa-chat-be/internal/entity"
	"tigaraksa-chat-be/internal/pkg/logger"
	"tigaraksa-chat-be/pkg/embedding"
	"tigaraksa-chat-be/pkg/llm"
	"tigaraksa-chat-be/pkg/rag/mode"
	"tigaraksa-chat-be/pkg/rag/payload"
	"tigaraksa-chat-be/pkg/rag/persona"
	"tigaraksa-chat-be/pkg/rag/prompt"
	"tigaraksa-chat-be/pkg/rag/relevance"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const logModule = "ChatPipeline"

// CandidateStore returns the k stored images nearest to a vector, most similar first.
type CandidateStore interface {
	SearchSimilar(ctx context.Context, vector []float32, k int) ([]*entity.ImageCandidate, error)
}

type Config struct {
	SearchDirective   string
	Relevance         relevance.Config
	RetrievalTimeout  time.Duration
	CompletionTimeout time.Duration
	Temperature       float64
	TopP              float64
	MaxTokens         int
}

func DefaultConfig() Config {
	return Config{
		SearchDirective:   mode.DefaultSearchDirective,
		Relevance:         relevance.DefaultConfig(),
		RetrievalTimeout:  10 * time.Second,
		CompletionTimeout: 60 * time.Second,
		Temperature:       1,
		TopP:              1,
		MaxTokens:         8192,
	}
}

type Request struct {
	Persona  persona.Persona
	UserName string
	Message  string
	Selected *entity.SelectedImageContext
}

// Engine turns one chat request into an Outcome and renders it as fragments.
// It holds no per-request state and is safe for concurrent use.
type Engine struct {
	embedder  embedding.Embedder
	store     CandidateStore
	provider  llm.StreamingProvider
	resolver  *mode.Resolver
	validator *relevance.Validator
	cfg       Config
	logger    logger.ILogger
	tracer    trace.Tracer
}

func NewEngine(
	embedder embedding.Embedder,
	store CandidateStore,
	provider llm.StreamingProvider,
	cfg Config,
	log logger.ILogger,
) *Engine {
	def := DefaultConfig()
	if cfg.RetrievalTimeout <= 0 {
		cfg.RetrievalTimeout = def.RetrievalTimeout
	}
	if cfg.CompletionTimeout <= 0 {
		cfg.CompletionTimeout = def.CompletionTimeout
	}

	resolver := mode.NewResolver(cfg.SearchDirective)
	cfg.SearchDirective = resolver.Directive()

	return &Engine{
		embedder:  embedder,
		store:     store,
		provider:  provider,
		resolver:  resolver,
		validator: relevance.NewValidator(cfg.Relevance),
		cfg:       cfg,
		logger:    log,
		tracer:    otel.Tracer("tigaraksa-chat-be/pkg/rag/pipeline"),
	}
}

// Chat resolves and renders in one call.
func (e *Engine) Chat(ctx context.Context, req Request) iter.Seq[string] {
	return e.Render(e.Resolve(ctx, req))
}

// Resolve runs the decision tree for one turn. Network calls made here are the
// embedding, the retrieval and the opening of the completion stream.
func (e *Engine) Resolve(ctx context.Context, req Request) Outcome {
	ctx, span := e.tracer.Start(ctx, "pipeline.Resolve")
	defer span.End()

	res := e.resolver.Resolve(req.Message, !req.Selected.IsEmpty())
	span.SetAttributes(
		attribute.String("chat.mode", string(res.Mode)),
		attribute.String("chat.persona", string(req.Persona)),
	)

	switch res.Mode {
	case mode.ModeSearch:
		return e.resolveSearch(ctx, req, res)
	case mode.ModeImageFocus:
		builder := prompt.NewBuilder(req.Persona, req.UserName, res.Mode, e.cfg.SearchDirective).
			WithSelection(req.Selected)
		return e.openStream(ctx, req, res, builder.Build())
	default:
		builder := prompt.NewBuilder(req.Persona, req.UserName, res.Mode, e.cfg.SearchDirective)
		return e.openStream(ctx, req, res, builder.Build())
	}
}

func (e *Engine) resolveSearch(ctx context.Context, req Request, res mode.Resolution) Outcome {
	t := turn{mode: res.Mode}

	if res.NeedsTopic() {
		return &Notice{
			turn:   t,
			Reason: NoticeTopicRequired,
			Text:   fmt.Sprintf(msgTopicRequired, e.cfg.SearchDirective, e.cfg.SearchDirective),
		}
	}

	vector, err := e.embed(ctx, res.Topic)
	if err != nil {
		e.logger.Error(logModule, "Query embedding failed", map[string]interface{}{
			"error": err.Error(),
			"topic": res.Topic,
		})
		return &Apology{turn: t, Reason: ApologyEmbedding, Text: msgEmbeddingFailed, Err: err}
	}

	candidates := e.retrieve(ctx, vector, e.validator.FetchSize())
	valid := e.validator.Validate(res.Topic, candidates)

	e.logger.Info(logModule, "Search candidates validated", map[string]interface{}{
		"topic":     res.Topic,
		"retrieved": len(candidates),
		"kept":      len(valid),
	})

	if len(valid) == 0 {
		return &Notice{turn: t, Reason: NoticeNoRelevantImages, Text: msgNoRelevantImages}
	}

	encoded, err := payload.Encode(valid)
	if err != nil {
		e.logger.Error(logModule, "Failed to encode image payload", map[string]interface{}{"error": err.Error()})
		return &Apology{turn: t, Reason: ApologyInternal, Text: msgInternal, Err: err}
	}

	return &Images{
		turn:           t,
		Candidates:     valid,
		Payload:        encoded,
		Acknowledgment: req.Persona.Acknowledgment(req.UserName),
	}
}

func (e *Engine) embed(ctx context.Context, text string) ([]float32, error) {
	ctx, span := e.tracer.Start(ctx, "pipeline.Embed")
	defer span.End()

	vector, err := e.embedder.Embed(ctx, text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "embedding unavailable")
		return nil, err
	}
	return vector, nil
}

// retrieve never fails: a store error is logged and treated as zero candidates.
func (e *Engine) retrieve(ctx context.Context, vector []float32, k int) []*entity.ImageCandidate {
	ctx, span := e.tracer.Start(ctx, "pipeline.Retrieve", trace.WithAttributes(attribute.Int("retrieve.k", k)))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, e.cfg.RetrievalTimeout)
	defer cancel()

	candidates, err := e.store.SearchSimilar(ctx, vector, k)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "retrieval failed")
		e.logger.Warn("Retriever", "Vector search failed, treating as no candidates", map[string]interface{}{
			"error": err.Error(),
			"k":     k,
		})
		return nil
	}
	span.SetAttributes(attribute.Int("retrieve.count", len(candidates)))
	return candidates
}

func (e *Engine) openStream(ctx context.Context, req Request, res mode.Resolution, systemPrompt string) Outcome {
	ctx, span := e.tracer.Start(ctx, "pipeline.OpenCompletion")
	defer span.End()

	// The stream outlives Resolve, so its deadline is owned by the TextStream.
	streamCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.cfg.CompletionTimeout)

	reader, err := e.provider.ChatStream(streamCtx,
		[]llm.Message{llm.SystemMessage(systemPrompt), llm.UserMessage(req.Message)},
		llm.WithTemperature(e.cfg.Temperature),
		llm.WithTopP(e.cfg.TopP),
		llm.WithMaxTokens(e.cfg.MaxTokens),
	)
	if err != nil {
		cancel()
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		return e.completionApology(res.Mode, err)
	}

	return &TextStream{turn: turn{mode: res.Mode}, reader: reader, cancel: cancel}
}

func (e *Engine) completionApology(m mode.Mode, err error) *Apology {
	apology := &Apology{turn: turn{mode: m}, Err: err}

	var statusErr *llm.StatusError
	var netErr net.Error
	switch {
	case errors.As(err, &statusErr):
		apology.Reason = ApologyCompletionStatus
		apology.Text = fmt.Sprintf(msgCompletionStatus, statusErr.StatusCode)
		e.logger.Error("Completion", "Completion endpoint returned non-success status", map[string]interface{}{
			"provider": statusErr.Provider,
			"status":   statusErr.StatusCode,
			"body":     statusErr.Body,
		})
		return apology
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		apology.Reason = ApologyCompletionTimeout
		apology.Text = msgCompletionTimeout
	default:
		apology.Reason = ApologyCompletionTransport
		apology.Text = msgCompletionTransport
	}

	e.logger.Error("Completion", "Completion request failed", map[string]interface{}{
		"error":  err.Error(),
		"reason": string(apology.Reason),
	})
	return apology
}

// Render turns an Outcome into a finite, single-use sequence of fragments.
// Every path yields at least one fragment. Stopping iteration early aborts the
// upstream completion request.
func (e *Engine) Render(o Outcome) iter.Seq[string] {
	return func(yield func(string) bool) {
		switch v := o.(type) {
		case *Images:
			if !yield(v.Payload) {
				return
			}
			yield(v.Acknowledgment)
		case *Notice:
			yield(v.Text)
		case *Apology:
			yield(v.Text)
		case *TextStream:
			e.drain(v, yield)
		default:
			e.logger.Error(logModule, "Unknown outcome", map[string]interface{}{"outcome": fmt.Sprintf("%T", o)})
			yield(msgInternal)
		}
	}
}

func (e *Engine) drain(s *TextStream, yield func(string) bool) {
	defer s.Close()

	emitted := 0
	for {
		chunk, err := s.reader.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			yield(e.completionApology(s.Mode(), err).Text)
			return
		}

		emitted++
		if !yield(chunk) {
			return
		}
	}

	if emitted == 0 {
		e.logger.Warn("Completion", "Completion stream ended without content", nil)
		yield(msgEmptyCompletion)
	}
}
