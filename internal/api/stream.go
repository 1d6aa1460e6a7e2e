// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"
)

// =============================================================================
// TEXT STREAM
// =============================================================================

// streamReadSize is the read buffer size for streamed chat responses.
const streamReadSize = 4096

// TextStream is a pull-based iterator over a streamed chat response body.
//
// The backend streams raw UTF-8 text with no framing; chunk boundaries are
// arbitrary and may split a multi-byte rune. The decoder carries incomplete
// trailing bytes into the next read so that every fragment returned by Next
// is valid UTF-8 and the in-order concatenation of all fragments equals the
// full response.
//
// A TextStream is single-use and not safe for concurrent Next calls.
type TextStream struct {
	body io.ReadCloser
	buf  []byte

	// carry holds the trailing bytes of an incomplete UTF-8 sequence from
	// the previous read.
	carry []byte

	done bool

	// err is the terminal transport error, if the stream died mid-read.
	err error
}

// NewTextStream wraps a response body. A nil body yields an empty stream,
// not an error.
func NewTextStream(body io.ReadCloser) *TextStream {
	return &TextStream{
		body: body,
		buf:  make([]byte, streamReadSize),
	}
}

// Next returns the next decoded text fragment. It returns io.EOF when the
// stream is exhausted, and any transport error otherwise. After a non-nil
// error the stream is dead; Next keeps returning the terminal condition.
func (s *TextStream) Next() (string, error) {
	if s.done || s.body == nil {
		if s.err != nil {
			return "", s.err
		}
		if len(s.carry) > 0 {
			tail := string(s.carry)
			s.carry = nil
			return tail, nil
		}
		return "", io.EOF
	}

	for {
		n, err := s.body.Read(s.buf)
		if n > 0 {
			fragment := s.decode(s.buf[:n])
			if err == io.EOF {
				s.finish()
			}
			if fragment != "" {
				return fragment, nil
			}
			// Everything read so far is a partial rune; keep reading.
			if err == nil {
				continue
			}
		}
		if err == io.EOF {
			s.finish()
			// Leftover carry bytes are an invalid tail; emit them as-is
			// rather than dropping streamed content.
			if len(s.carry) > 0 {
				tail := string(s.carry)
				s.carry = nil
				return tail, nil
			}
			return "", io.EOF
		}
		if err != nil {
			// Carried partial-rune bytes belong to a fragment that never
			// completed; they die with the stream.
			s.carry = nil
			s.err = fmt.Errorf("stream read failed: %w", err)
			s.finish()
			return "", s.err
		}
	}
}

// decode prepends any carried bytes, splits off a trailing incomplete UTF-8
// sequence, and returns the complete portion.
func (s *TextStream) decode(chunk []byte) string {
	data := chunk
	if len(s.carry) > 0 {
		data = append(s.carry, chunk...)
		s.carry = nil
	}

	complete := len(data)
	for complete > 0 {
		r, size := utf8.DecodeLastRune(data[:complete])
		if r != utf8.RuneError || size != 1 {
			break
		}
		// A lone error byte at the end may be the start of a rune whose
		// continuation bytes arrive in the next chunk.
		if !utf8.RuneStart(data[complete-1]) {
			complete--
			continue
		}
		complete--
		break
	}

	if complete < len(data) {
		s.carry = append([]byte(nil), data[complete:]...)
	}
	return string(data[:complete])
}

// finish marks the stream exhausted and releases the body.
func (s *TextStream) finish() {
	if !s.done {
		s.done = true
		if s.body != nil {
			s.body.Close()
		}
	}
}

// Close releases the underlying response body. Safe to call at any point,
// including after exhaustion.
func (s *TextStream) Close() error {
	if s.body == nil {
		return nil
	}
	s.done = true
	return s.body.Close()
}

// Chan drains the stream into a channel of fragments plus a one-shot error
// channel, for consumers that select rather than pull. The fragment channel
// is closed on completion; the error channel stays empty on clean EOF.
func (s *TextStream) Chan(ctx context.Context) (<-chan string, <-chan error) {
	fragments := make(chan string, 64)
	errs := make(chan error, 1)

	go func() {
		defer close(fragments)
		defer close(errs)
		defer s.Close()

		for {
			fragment, err := s.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				errs <- err
				return
			}
			select {
			case fragments <- fragment:
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
	}()

	return fragments, errs
}

// =============================================================================
// STREAMED CHAT ENDPOINTS
// =============================================================================

// ResearchChatRequest is the body of a streamed general-chat request.
type ResearchChatRequest struct {
	UserID    int64  `json:"user_id"`
	SessionID int64  `json:"session_id"`
	Query     string `json:"query"`
}

// ResearchChat issues a general-chat query against a session and returns
// the streamed response. The caller owns the returned stream and must drain
// or close it.
func (c *Client) ResearchChat(ctx context.Context, req ResearchChatRequest) (*TextStream, error) {
	return c.openStream(ctx, "/research/chat", req)
}

// DocumentChat asks a question about an uploaded document and returns the
// streamed answer.
func (c *Client) DocumentChat(ctx context.Context, pdfID, question string) (*TextStream, error) {
	return c.openStream(ctx, "/chat/"+pdfID, map[string]string{"question": question})
}

// openStream issues a streamed POST and hands the body to a TextStream.
func (c *Client) openStream(ctx context.Context, path string, reqBody any) (*TextStream, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	// No client timeout on streamed responses; cancellation comes from ctx.
	resp, err := sharedStreamingClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := readResponse(resp)
		resp.Body.Close()
		return nil, parseAPIError(resp.StatusCode, body)
	}

	return NewTextStream(resp.Body), nil
}
