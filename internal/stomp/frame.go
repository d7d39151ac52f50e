// Package stomp implements the client side of STOMP 1.2 carried over a
// websocket, which is how the game broker frames its publish/subscribe
// traffic. Only the subset the client needs is covered: CONNECT,
// SUBSCRIBE, SEND, MESSAGE, ERROR and heart-beats.
package stomp

import (
	"bytes"
	"fmt"
	"strings"
)

// Frame commands used by this client.
const (
	CmdConnect     = "CONNECT"
	CmdConnected   = "CONNECTED"
	CmdSubscribe   = "SUBSCRIBE"
	CmdUnsubscribe = "UNSUBSCRIBE"
	CmdSend        = "SEND"
	CmdMessage     = "MESSAGE"
	CmdError       = "ERROR"
	CmdDisconnect  = "DISCONNECT"
)

// Well-known header names.
const (
	HdrAcceptVersion = "accept-version"
	HdrHeartBeat     = "heart-beat"
	HdrDestination   = "destination"
	HdrID            = "id"
	HdrContentType   = "content-type"
	HdrMessage       = "message"
	HdrSubscription  = "subscription"
)

// Frame is one STOMP frame: command, headers and an optional body.
type Frame struct {
	Command string
	Headers map[string]string
	Body    []byte
}

// NewFrame builds a frame from alternating header key/value pairs.
func NewFrame(command string, headers ...string) *Frame {
	f := &Frame{Command: command, Headers: make(map[string]string, len(headers)/2)}
	for i := 0; i+1 < len(headers); i += 2 {
		f.Headers[headers[i]] = headers[i+1]
	}
	return f
}

// Header returns a header value, or "" when absent.
func (f *Frame) Header(key string) string {
	if f == nil || f.Headers == nil {
		return ""
	}
	return f.Headers[key]
}

var headerEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"\r", "\\r",
	"\n", "\\n",
	":", "\\c",
)

var headerUnescaper = strings.NewReplacer(
	"\\r", "\r",
	"\\n", "\n",
	"\\c", ":",
	"\\\\", "\\",
)

// Marshal renders the frame in wire form, NUL-terminated.
func (f *Frame) Marshal() []byte {
	var buf bytes.Buffer
	buf.WriteString(f.Command)
	buf.WriteByte('\n')
	for k, v := range f.Headers {
		buf.WriteString(headerEscaper.Replace(k))
		buf.WriteByte(':')
		buf.WriteString(headerEscaper.Replace(v))
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	buf.Write(f.Body)
	buf.WriteByte(0)
	return buf.Bytes()
}

// heartbeat is the single-LF frame peers exchange to signal liveness.
var heartbeat = []byte("\n")

// IsHeartbeat reports whether raw is a heart-beat rather than a frame.
func IsHeartbeat(raw []byte) bool {
	trimmed := bytes.TrimLeft(raw, "\r\n")
	return len(trimmed) == 0
}

// Parse decodes one wire frame. Heart-beats must be filtered out by the
// caller first via IsHeartbeat.
func Parse(raw []byte) (*Frame, error) {
	raw = bytes.TrimLeft(raw, "\r\n")
	raw = bytes.TrimSuffix(raw, []byte{0})

	head, body, ok := bytes.Cut(raw, []byte("\r\n\r\n"))
	if !ok {
		head, body, _ = bytes.Cut(raw, []byte("\n\n"))
	}
	lines := strings.Split(string(head), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, fmt.Errorf("stomp: empty frame")
	}

	f := &Frame{
		Command: strings.TrimRight(lines[0], "\r"),
		Headers: make(map[string]string, len(lines)-1),
		Body:    body,
	}
	for _, line := range lines[1:] {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("stomp: malformed header %q", line)
		}
		key := headerUnescaper.Replace(k)
		// STOMP 1.2: the first occurrence of a repeated header wins.
		if _, exists := f.Headers[key]; !exists {
			f.Headers[key] = headerUnescaper.Replace(v)
		}
	}
	return f, nil
}
