package dto

import "tigaraksa-chat-be/internal/entity"

type SelectedImageDTO struct {
	Prompt  string `json:"prompt"`
	Caption string `json:"caption"`
	OcrText string `json:"ocr_text,omitempty"`
}

type ChatRequest struct {
	Role          string            `json:"role" validate:"required"`
	Message       string            `json:"message" validate:"required,max=4000"`
	UserName      string            `json:"user_name,omitempty" validate:"max=100"`
	SelectedImage *SelectedImageDTO `json:"selected_image,omitempty"`
}

// Selection returns nil when no usable image was selected.
func (r *ChatRequest) Selection() *entity.SelectedImageContext {
	if r.SelectedImage == nil {
		return nil
	}
	sel := &entity.SelectedImageContext{
		Prompt:  r.SelectedImage.Prompt,
		Caption: r.SelectedImage.Caption,
		OcrText: r.SelectedImage.OcrText,
	}
	if sel.IsEmpty() {
		return nil
	}
	return sel
}

// Frame types sent over the chat websocket.
const (
	FrameFragment = "fragment"
	FrameImages   = "images"
	FrameDone     = "done"
	FrameError    = "error"
)

type ChatFrame struct {
	Type   string          `json:"type"`
	Data   string          `json:"data,omitempty"`
	Images []ImageFrameDTO `json:"images,omitempty"`
}

type ImageFrameDTO struct {
	Id        int64   `json:"id"`
	URL       string  `json:"url"`
	Prompt    string  `json:"prompt"`
	Caption   string  `json:"caption"`
	OcrText   *string `json:"ocr_text"`
	ClipScore float64 `json:"clipScore"`
}
