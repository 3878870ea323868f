package prompt

import (
	"fmt"
	"strings"

	"tigaraksa-chat-be/internal/entity"
	"tigaraksa-chat-be/pkg/rag/mode"
	"tigaraksa-chat-be/pkg/rag/persona"
)

const (
	AssistantName     = "Si Atang"
	NoSelectionMarker = "Tidak ada gambar yang dipilih."
)

// Builder composes the system prompt from four blocks: identity, persona,
// mode rules and grounding context.
type Builder struct {
	persona    persona.Persona
	userName   string
	mode       mode.Mode
	directive  string
	candidates []*entity.ImageCandidate
	selected   *entity.SelectedImageContext
}

func NewBuilder(p persona.Persona, userName string, m mode.Mode, directive string) *Builder {
	if directive == "" {
		directive = mode.DefaultSearchDirective
	}
	return &Builder{
		persona:   p,
		userName:  userName,
		mode:      m,
		directive: directive,
	}
}

// WithCandidates grounds a search turn in the validated candidates. It serves
// callers that request a narrated search turn; the chat engine answers search
// turns with the image payload and never calls it.
func (b *Builder) WithCandidates(candidates []*entity.ImageCandidate) *Builder {
	b.candidates = candidates
	return b
}

// WithSelection grounds an image-focus turn in the picked image.
func (b *Builder) WithSelection(selected *entity.SelectedImageContext) *Builder {
	b.selected = selected
	return b
}

func (b *Builder) Build() string {
	var prompt strings.Builder

	b.writeIdentity(&prompt)
	b.writePersona(&prompt)
	b.writeModeRules(&prompt)
	b.writeContext(&prompt)

	return prompt.String()
}

func (b *Builder) writeIdentity(prompt *strings.Builder) {
	prompt.WriteString("<identity>\n")
	prompt.WriteString(fmt.Sprintf("Kamu adalah \"%s\", asisten AI yang menemani pengguna menjelajahi koleksi gambar edukasi.\n", AssistantName))
	prompt.WriteString("Selalu jawab dalam bahasa Indonesia.\n")
	prompt.WriteString("Panjang jawaban: 1 sampai 3 kalimat pendek.\n")
	prompt.WriteString("</identity>\n\n")
}

func (b *Builder) writePersona(prompt *strings.Builder) {
	prompt.WriteString("<persona name=\"")
	prompt.WriteString(b.persona.Name())
	prompt.WriteString("\">\n")
	for _, d := range b.persona.Directives(b.userName) {
		prompt.WriteString("- ")
		prompt.WriteString(d)
		prompt.WriteString("\n")
	}
	prompt.WriteString("</persona>\n\n")
}

func (b *Builder) writeModeRules(prompt *strings.Builder) {
	prompt.WriteString("<rules mode=\"")
	prompt.WriteString(string(b.mode))
	prompt.WriteString("\">\n")

	switch b.mode {
	case mode.ModeSearch:
		prompt.WriteString("- Pengguna sedang mencari gambar. Jangan menjelaskan isi gambar.\n")
		prompt.WriteString("- Cukup sampaikan bahwa gambar sudah ditemukan, lalu minta pengguna memilih satu.\n")
	case mode.ModeImageFocus:
		prompt.WriteString("- Pengguna sedang membahas satu gambar yang sudah dipilih.\n")
		prompt.WriteString("- Jawab hanya berdasarkan prompt, caption, dan teks OCR gambar di bagian konteks.\n")
		prompt.WriteString("- Boleh mengaitkan ke topik lain selama masih berhubungan dengan gambar.\n")
		prompt.WriteString("- Tolak dengan sopan pertanyaan yang tidak berhubungan dengan gambar.\n")
	default:
		prompt.WriteString("- Ini percakapan biasa. Jawab singkat dan santai.\n")
		prompt.WriteString("- Jangan menyebutkan detail gambar apa pun yang belum dipilih pengguna.\n")
		prompt.WriteString(fmt.Sprintf("- Jika pengguna ingin melihat gambar, sarankan mengetik \"%s <topik>\".\n", b.directive))
	}

	prompt.WriteString("</rules>\n\n")
}

func (b *Builder) writeContext(prompt *strings.Builder) {
	prompt.WriteString("<context>\n")

	switch {
	case b.mode == mode.ModeSearch && len(b.candidates) > 0:
		for i, c := range b.candidates {
			ocr := "-"
			if c.OcrText != nil && strings.TrimSpace(*c.OcrText) != "" {
				ocr = *c.OcrText
			}
			prompt.WriteString(fmt.Sprintf("Gambar %d (ID: %d)\nPrompt: %s\nCaption: %s\nTeks OCR: %s\n\n", i+1, c.Id, c.Prompt, c.Caption, ocr))
		}
	case b.mode == mode.ModeImageFocus && !b.selected.IsEmpty():
		ocr := strings.TrimSpace(b.selected.OcrText)
		if ocr == "" {
			ocr = "-"
		}
		prompt.WriteString("Gambar yang dipilih:\n")
		prompt.WriteString(fmt.Sprintf("Prompt: %s\nCaption: %s\nTeks OCR: %s\n", b.selected.Prompt, b.selected.Caption, ocr))
	default:
		prompt.WriteString(NoSelectionMarker)
		prompt.WriteString("\n")
	}

	prompt.WriteString("</context>")
}
