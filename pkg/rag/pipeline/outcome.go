package pipeline

import (
	"context"

	"tigaraksa-chat-be/internal/entity"
	"tigaraksa-chat-be/pkg/llm"
	"tigaraksa-chat-be/pkg/rag/mode"
)

type Kind string

const (
	KindImages     Kind = "images"
	KindNotice     Kind = "notice"
	KindApology    Kind = "apology"
	KindTextStream Kind = "text_stream"
)

// Outcome is the result of the per-turn decision tree. Exactly one of
// *Images, *Notice, *Apology or *TextStream.
type Outcome interface {
	Kind() Kind
	Mode() mode.Mode
}

type turn struct {
	mode mode.Mode
}

func (t turn) Mode() mode.Mode {
	return t.mode
}

// Images is a search turn with validated candidates. It renders as the image
// payload followed by the persona acknowledgment; no completion call is made.
type Images struct {
	turn
	Candidates     []*entity.ImageCandidate
	Payload        string
	Acknowledgment string
}

func (*Images) Kind() Kind { return KindImages }

type NoticeReason string

const (
	NoticeNoRelevantImages NoticeReason = "no_relevant_images"
	NoticeTopicRequired    NoticeReason = "topic_required"
)

// Notice is a defined non-error outcome rendered as one canned fragment.
type Notice struct {
	turn
	Reason NoticeReason
	Text   string
}

func (*Notice) Kind() Kind { return KindNotice }

type ApologyReason string

const (
	ApologyEmbedding           ApologyReason = "embedding_unavailable"
	ApologyCompletionStatus    ApologyReason = "completion_status"
	ApologyCompletionTimeout   ApologyReason = "completion_timeout"
	ApologyCompletionTransport ApologyReason = "completion_transport"
	ApologyInternal            ApologyReason = "internal"
)

// Apology is an upstream failure recovered into one user-facing fragment.
type Apology struct {
	turn
	Reason ApologyReason
	Text   string
	Err    error
}

func (*Apology) Kind() Kind { return KindApology }

// TextStream republishes completion fragments as they arrive. It owns the
// upstream request; Close aborts it.
type TextStream struct {
	turn
	reader llm.StreamReader
	cancel context.CancelFunc
}

func (*TextStream) Kind() Kind { return KindTextStream }

func (s *TextStream) Close() error {
	defer s.cancel()
	return s.reader.Close()
}
