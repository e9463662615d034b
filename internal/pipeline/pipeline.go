// Package pipeline runs the per-turn answer state machine:
// retrieve -> generate -> validate -> finalize.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"docchat/internal/domain"
)

// SystemPrompt is the fixed assistant persona and grounding instruction.
const SystemPrompt = "You are a helpful corporate documentation assistant. " +
	"Use the provided context to answer the user. " +
	"If the context is insufficient, say what is missing and ask a clarifying question."

// FallbackAnswer is appended when generation produced nothing, so every user
// turn still gets exactly one assistant reply.
const FallbackAnswer = "I could not generate an answer. Please try again."

const contextSeparator = "\n\n"

// ContextRetriever is the pipeline-facing subset of the retriever.
type ContextRetriever interface {
	Search(ctx context.Context, query string, k int) ([]domain.Chunk, error)
}

// Pipeline executes the answer stages sequentially per user turn and keeps
// conversation state per session ID in process memory. Turns against the
// same session are serialized; different sessions run independently.
type Pipeline struct {
	retriever ContextRetriever
	model     domain.ChatModel
	topK      int
	log       *zap.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	mu    sync.Mutex
	state State
}

// New creates a pipeline. topK <= 0 defaults to 4; a nil logger is replaced
// with a nop logger.
func New(retriever ContextRetriever, model domain.ChatModel, topK int, log *zap.Logger) *Pipeline {
	if topK <= 0 {
		topK = 4
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		retriever: retriever,
		model:     model,
		topK:      topK,
		log:       log,
		sessions:  make(map[string]*session),
	}
}

// Run executes one turn for the given session and returns the assistant
// reply. Stage failures degrade (empty context, fallback answer) rather than
// failing the turn; an error comes back only when the turn was never
// started: cancelled context or blank input.
func (p *Pipeline) Run(ctx context.Context, sessionID, userMessage string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	userMessage = strings.TrimSpace(userMessage)
	if userMessage == "" {
		return "", errors.New("empty user message")
	}

	sess := p.session(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	state := merge(sess.state, Update{
		Messages: []domain.Message{{Role: domain.RoleUser, Content: userMessage}},
	})
	for _, stage := range []func(context.Context, State) Update{
		p.retrieve,
		p.generate,
		p.validate,
		p.finalize,
	} {
		state = merge(state, stage(ctx, state))
	}
	sess.state = state
	return state.Messages[len(state.Messages)-1].Content, nil
}

// History returns a copy of the session transcript.
func (p *Pipeline) History(sessionID string) []domain.Message {
	sess := p.session(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	out := make([]domain.Message, len(sess.state.Messages))
	copy(out, sess.state.Messages)
	return out
}

func (p *Pipeline) session(id string) *session {
	p.mu.Lock()
	defer p.mu.Unlock()
	sess, ok := p.sessions[id]
	if !ok {
		sess = &session{}
		p.sessions[id] = sess
	}
	return sess
}

// retrieve looks up context for the latest user message. Retrieval failure
// and an empty index both degrade to an empty candidate list.
func (p *Pipeline) retrieve(ctx context.Context, s State) Update {
	question := lastUserMessage(s)
	docs, err := p.retriever.Search(ctx, question, p.topK)
	if err != nil {
		var rerr *domain.RetrievalError
		if !errors.As(err, &rerr) {
			err = &domain.RetrievalError{Err: err}
		}
		p.log.Warn("retrieval failed, answering without context", zap.Error(err))
		docs = nil
	}
	return Update{Docs: docs, SetDocs: true}
}

// generate asks the model for a draft answer given the question and the
// joined context. A *domain.GenerationError leaves the draft empty; finalize
// substitutes the fallback.
func (p *Pipeline) generate(ctx context.Context, s State) Update {
	question := lastUserMessage(s)
	parts := make([]string, len(s.Docs))
	for i, d := range s.Docs {
		parts[i] = d.Text
	}
	answer, err := p.model.Complete(ctx, SystemPrompt, question, strings.Join(parts, contextSeparator))
	if err != nil {
		p.log.Error("generation failed", zap.Error(err))
		return Update{SetAnswer: true}
	}
	return Update{Answer: answer, SetAnswer: true}
}

// validate is a reserved compliance hook. It intentionally passes the draft
// through unchanged.
func (p *Pipeline) validate(context.Context, State) Update {
	return Update{}
}

// finalize turns the draft (or the fallback) into the single assistant
// message of this turn. It is the only stage that writes to the transcript.
func (p *Pipeline) finalize(_ context.Context, s State) Update {
	answer := s.Answer
	if strings.TrimSpace(answer) == "" {
		answer = FallbackAnswer
	}
	return Update{Messages: []domain.Message{{Role: domain.RoleAssistant, Content: answer}}}
}
