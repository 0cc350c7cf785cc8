package proxy

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/providers/deepseek"
)

// doneSentinel is the SSE payload that terminates an OpenAI-style stream.
const doneSentinel = "[DONE]"

// StreamTransformer rewrites an upstream SSE chat-completion stream for the
// client. It buffers arbitrary byte chunks into complete lines, and for each
// data: line either forwards it unchanged or re-frames the delta:
//
//   - with reasoning display enabled, reasoning_content deltas are fused
//     into the visible content stream between <think> and </think> markers
//   - with reasoning display disabled, reasoning_content is stripped and
//     only content deltas pass through
//
// Non-data lines, the [DONE] sentinel, and data lines whose payload does not
// parse as JSON are forwarded byte-for-byte: a single bad line must never
// kill a stream the client is already rendering.
//
// A transformer is single-use and not safe for concurrent use; create one
// per stream.
type StreamTransformer struct {
	showReasoning bool

	// inReasoning tracks whether the visible stream is currently inside an
	// open <think> segment. Reset only by emitting </think>.
	inReasoning bool

	// partial holds the trailing incomplete line between Feed calls.
	partial []byte

	// Last chunk identity seen, used to synthesize a closing chunk when the
	// upstream ends while a <think> segment is still open.
	lastID      string
	lastModel   string
	lastCreated int64
}

// NewStreamTransformer returns a transformer for one upstream stream.
func NewStreamTransformer(showReasoning bool) *StreamTransformer {
	return &StreamTransformer{showReasoning: showReasoning}
}

// Feed consumes the next chunk of upstream bytes and returns the bytes to
// forward to the client. Chunk boundaries are arbitrary: a data: line split
// across any byte boundary produces the same output as the unsplit line.
func (t *StreamTransformer) Feed(chunk []byte) []byte {
	t.partial = append(t.partial, chunk...)

	var out bytes.Buffer
	for {
		idx := bytes.IndexByte(t.partial, '\n')
		if idx < 0 {
			break
		}
		line := t.partial[:idx]
		t.partial = t.partial[idx+1:]
		t.processLine(&out, line)
	}
	return out.Bytes()
}

// Flush drains any trailing partial line and closes a still-open <think>
// segment. Call once, after the upstream body is exhausted.
func (t *StreamTransformer) Flush() []byte {
	var out bytes.Buffer
	if len(t.partial) > 0 {
		t.processLine(&out, t.partial)
		t.partial = nil
	}
	if t.inReasoning {
		t.writeClosingChunk(&out)
	}
	return out.Bytes()
}

// processLine transforms one complete line (without its trailing newline)
// and writes the result, newline-terminated, to out.
func (t *StreamTransformer) processLine(out *bytes.Buffer, line []byte) {
	trimmed := strings.TrimRight(string(line), "\r")

	payload, isData := strings.CutPrefix(trimmed, "data:")
	if !isData {
		t.forward(out, line)
		return
	}
	payload = strings.TrimSpace(payload)

	if payload == doneSentinel {
		// Close the reasoning segment before the stream terminator.
		if t.inReasoning {
			t.writeClosingChunk(out)
		}
		t.forward(out, line)
		return
	}

	var chunk deepseek.StreamChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		// Fail open: forward the malformed line untouched.
		t.forward(out, line)
		return
	}

	t.lastID = chunk.ID
	t.lastModel = chunk.Model
	t.lastCreated = chunk.Created

	if !t.needsRewrite(&chunk) {
		t.forward(out, line)
		return
	}

	t.rewriteDelta(&chunk)

	data, err := marshalChunk(&chunk)
	if err != nil {
		t.forward(out, line)
		return
	}
	out.WriteString("data: ")
	out.Write(data)
	out.WriteByte('\n')
}

// marshalChunk encodes a rewritten chunk without HTML escaping, so the
// <think> markers leave as literal bytes just like pass-through lines.
func marshalChunk(chunk *deepseek.StreamChunk) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(chunk); err != nil {
		return nil, err
	}
	// Encode appends a newline; the SSE framing adds its own.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// needsRewrite reports whether the chunk's delta has to change. Chunks that
// carry no reasoning and arrive outside a reasoning segment pass through
// verbatim, preserving any upstream fields the proxy does not model.
func (t *StreamTransformer) needsRewrite(chunk *deepseek.StreamChunk) bool {
	if len(chunk.Choices) == 0 {
		return false
	}
	delta := chunk.Choices[0].Delta
	if delta.ReasoningContent != "" {
		return true
	}
	// Content arriving while a <think> segment is open needs the closing
	// marker spliced in front.
	return t.inReasoning && (delta.Content != "" || chunk.Choices[0].FinishReason != nil)
}

// rewriteDelta applies the reasoning policy to the chunk's first choice.
func (t *StreamTransformer) rewriteDelta(chunk *deepseek.StreamChunk) {
	choice := &chunk.Choices[0]
	reasoning := choice.Delta.ReasoningContent
	content := choice.Delta.Content
	choice.Delta.ReasoningContent = ""

	if !t.showReasoning {
		choice.Delta.Content = content
		return
	}

	var b strings.Builder
	if reasoning != "" {
		if !t.inReasoning {
			b.WriteString("<think>")
			t.inReasoning = true
		}
		b.WriteString(reasoning)
	}
	if content != "" || choice.FinishReason != nil {
		if t.inReasoning {
			b.WriteString("</think>\n")
			t.inReasoning = false
		}
		b.WriteString(content)
	}
	choice.Delta.Content = b.String()
}

// writeClosingChunk emits a synthetic delta that closes an open <think>
// segment, reusing the identity of the last chunk seen.
func (t *StreamTransformer) writeClosingChunk(out *bytes.Buffer) {
	t.inReasoning = false

	closing := deepseek.StreamChunk{
		ID:      t.lastID,
		Object:  "chat.completion.chunk",
		Created: t.lastCreated,
		Model:   t.lastModel,
		Choices: []deepseek.StreamChoice{
			{Delta: deepseek.Delta{Content: "</think>\n"}},
		},
	}

	data, err := marshalChunk(&closing)
	if err != nil {
		return
	}
	out.WriteString("data: ")
	out.Write(data)
	out.WriteString("\n\n")
}

func (t *StreamTransformer) forward(out *bytes.Buffer, line []byte) {
	out.Write(line)
	out.WriteByte('\n')
}
