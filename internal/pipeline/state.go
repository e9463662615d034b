package pipeline

import "docchat/internal/domain"

// State is the conversation state for one session: the full transcript, the
// chunks retrieved for the latest turn and the latest draft answer. It is
// only ever mutated by merging stage updates.
type State struct {
	Messages []domain.Message
	Docs     []domain.Chunk
	Answer   string
}

// Update is the partial state a single stage produces. Messages append to
// the transcript; Docs and Answer replace their fields only when the
// corresponding Set flag is raised, so a stage cannot clobber fields it
// never touched.
type Update struct {
	Messages  []domain.Message
	Docs      []domain.Chunk
	SetDocs   bool
	Answer    string
	SetAnswer bool
}

// merge applies an update to a snapshot and returns the new state. The
// input state is not modified.
func merge(s State, u Update) State {
	next := State{
		Messages: make([]domain.Message, 0, len(s.Messages)+len(u.Messages)),
		Docs:     s.Docs,
		Answer:   s.Answer,
	}
	next.Messages = append(next.Messages, s.Messages...)
	next.Messages = append(next.Messages, u.Messages...)
	if u.SetDocs {
		next.Docs = u.Docs
	}
	if u.SetAnswer {
		next.Answer = u.Answer
	}
	return next
}

// lastUserMessage returns the content of the most recent user turn.
func lastUserMessage(s State) string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == domain.RoleUser {
			return s.Messages[i].Content
		}
	}
	return ""
}
