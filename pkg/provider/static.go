package provider

import "context"

// Static returns a fixed reply. It backs dry runs and tests; with an empty
// Reply it echoes the prompt, which lets constraint checks exercise the
// rendered text itself.
type Static struct {
	Reply string
}

func (s Static) Name() string { return "static" }

func (s Static) Complete(_ context.Context, req Request) (*Response, error) {
	text := s.Reply
	if text == "" {
		text = req.Prompt
	}
	return &Response{Text: text, Model: "static"}, nil
}
