package llm

import "context"

// ImageData is a base64-encoded image payload for multimodal prompts.
type ImageData struct {
	MIME   string
	Base64 string
}

// Block is one content block in a message: either text or an inline image.
type Block struct {
	Text  string
	Image *ImageData
}

// Message represents a single turn in the prompt.
type Message struct {
	Role   string
	Blocks []Block
}

// Request bundles the messages and sampling parameters for one model call.
type Request struct {
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Client defines the behaviour required by the analysis pipeline. Complete
// returns the concatenation of all text blocks in the model's reply.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// TextBlock wraps plain text as a content block.
func TextBlock(text string) Block {
	return Block{Text: text}
}

// ImageBlock wraps an encoded image as a content block.
func ImageBlock(mime, base64Data string) Block {
	return Block{Image: &ImageData{MIME: mime, Base64: base64Data}}
}
