package prompt

import (
	"strings"
	"testing"

	"tigaraksa-chat-be/internal/entity"
	"tigaraksa-chat-be/pkg/rag/mode"
	"tigaraksa-chat-be/pkg/rag/persona"

	"github.com/stretchr/testify/assert"
)

func TestBuild_BlockOrder(t *testing.T) {
	out := NewBuilder(persona.Friend, "Budi", mode.ModeDiscussion, "").Build()

	identity := strings.Index(out, "<identity>")
	personaIdx := strings.Index(out, "<persona")
	rules := strings.Index(out, "<rules")
	context := strings.Index(out, "<context>")

	assert.True(t, identity >= 0 && identity < personaIdx && personaIdx < rules && rules < context)
	assert.Contains(t, out, AssistantName)
	assert.Contains(t, out, `"Budi"`)
}

func TestBuild_DiscussionHasNoSelectionMarkerAndSuggestsDirective(t *testing.T) {
	out := NewBuilder(persona.Professor, "", mode.ModeDiscussion, "/gambar").Build()

	assert.Contains(t, out, NoSelectionMarker)
	assert.Contains(t, out, `"/gambar <topik>"`)
	assert.Contains(t, out, `mode="DISCUSSION"`)
}

func TestBuild_ImageFocusGroundsInSelection(t *testing.T) {
	out := NewBuilder(persona.Explorer, "", mode.ModeImageFocus, "").
		WithSelection(&entity.SelectedImageContext{Prompt: "Petani menanam padi", Caption: "farmers planting rice"}).
		Build()

	assert.Contains(t, out, "Gambar yang dipilih:")
	assert.Contains(t, out, "Prompt: Petani menanam padi")
	assert.Contains(t, out, "Caption: farmers planting rice")
	assert.Contains(t, out, "Teks OCR: -")
	assert.NotContains(t, out, NoSelectionMarker)
	assert.Contains(t, out, "Tolak dengan sopan")
}

func TestBuild_SearchListsCandidates(t *testing.T) {
	ocr := "AWAS"
	out := NewBuilder(persona.Generic, "", mode.ModeSearch, "").
		WithCandidates([]*entity.ImageCandidate{
			{Id: 3, Prompt: "ayam", Caption: "hen", OcrText: &ocr},
			{Id: 8, Prompt: "bebek", Caption: "duck"},
		}).
		Build()

	assert.Contains(t, out, "Gambar 1 (ID: 3)")
	assert.Contains(t, out, "Teks OCR: AWAS")
	assert.Contains(t, out, "Gambar 2 (ID: 8)")
	assert.Contains(t, out, "Jangan menjelaskan isi gambar")
}

func TestBuild_ImageFocusWithoutFieldsFallsBackToMarker(t *testing.T) {
	out := NewBuilder(persona.Generic, "", mode.ModeImageFocus, "").
		WithSelection(&entity.SelectedImageContext{}).
		Build()

	assert.Contains(t, out, NoSelectionMarker)
}
