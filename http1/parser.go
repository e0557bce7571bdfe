package http1

import (
	"bytes"
	"strconv"
)

// HeaderEnd scans buf for the blank line that terminates the header
// block, tolerating a bare "\n" in addition to "\r\n". It returns the
// offset just past the terminator and true, or false if the header
// block is not yet complete (the caller should read more).
func HeaderEnd(buf []byte) (int, bool) {
	if i := bytes.Index(buf, []byte("\r\n\r\n")); i >= 0 {
		return i + 4, true
	}
	if i := bytes.Index(buf, []byte("\n\n")); i >= 0 {
		return i + 2, true
	}
	return 0, false
}

// peekContentLength looks up the Content-Length header in a parsed
// Header and reports its value. Absence is reported as (0, false);
// a present-but-unparseable value is reported as an error so the
// caller can reject the request outright rather than guess.
func peekContentLength(h *Header) (int, bool, error) {
	v := h.Get("Content-Length")
	if v == nil {
		return 0, false, nil
	}
	n, err := strconv.Atoi(string(v))
	if err != nil || n < 0 {
		return 0, true, ErrMalformedRequest
	}
	return n, true, nil
}

// Parse parses a complete request out of buf: start line, headers,
// and body. buf must already contain the full header block and, if
// Content-Length names one, the full body — callers are responsible
// for accumulating enough bytes (via HeaderEnd and the Content-Length
// header) before calling Parse; a body shorter than Content-Length is
// rejected with ErrMalformedRequest. Every slice Parse returns aliases buf.
func Parse(buf []byte) (*Request, error) {
	lineEnd, rest, ok := splitLine(buf)
	if !ok {
		return nil, ErrMalformedRequest
	}
	method, pathAndVersion, ok := splitToken(lineEnd)
	if !ok {
		return nil, ErrMalformedRequest
	}
	path, version, _ := splitToken(pathAndVersion)

	req := &Request{
		Method:  method,
		Path:    path,
		Version: version,
	}

	for {
		if len(rest) == 0 {
			return nil, ErrMalformedRequest
		}
		if isBlankLine(rest) {
			rest = consumeBlankLine(rest)
			break
		}
		var headerLine []byte
		headerLine, rest, ok = splitLine(rest)
		if !ok {
			return nil, ErrMalformedRequest
		}
		name, value, ok := splitHeaderLine(headerLine)
		if !ok {
			return nil, ErrMalformedRequest
		}
		req.Headers.Add(name, value)
	}

	if te := req.Headers.Get("Transfer-Encoding"); te != nil {
		if equalFoldString(te, "chunked") {
			return nil, ErrChunkedUnsupported
		}
	}

	n, present, err := peekContentLength(&req.Headers)
	if err != nil {
		return nil, err
	}
	if present {
		if len(rest) < n {
			return nil, ErrMalformedRequest
		}
		req.Body = rest[:n]
	}

	return req, nil
}

// splitLine cuts buf at the first line terminator (\r\n or bare \n)
// and returns the line without the terminator, the remainder, and
// whether a terminator was found at all.
func splitLine(buf []byte) (line, rest []byte, ok bool) {
	for i := 0; i < len(buf); i++ {
		if buf[i] == '\n' {
			end := i
			if end > 0 && buf[end-1] == '\r' {
				end--
			}
			return buf[:end], buf[i+1:], true
		}
	}
	return nil, nil, false
}

// splitToken splits on the first run of spaces, trimming the
// remainder's leading spaces so a chain of splitToken calls tokenizes
// a line like "GET /path HTTP/1.1" without extra bookkeeping.
func splitToken(buf []byte) (token, rest []byte, ok bool) {
	i := bytes.IndexByte(buf, ' ')
	if i < 0 {
		return buf, nil, len(buf) > 0
	}
	token = buf[:i]
	for i < len(buf) && buf[i] == ' ' {
		i++
	}
	return token, buf[i:], true
}

// splitHeaderLine splits "key: value" into key and OWS-trimmed value.
func splitHeaderLine(line []byte) (name, value []byte, ok bool) {
	i := bytes.IndexByte(line, ':')
	if i < 0 {
		return nil, nil, false
	}
	name = line[:i]
	if len(name) == 0 {
		return nil, nil, false
	}
	value = line[i+1:]
	for len(value) > 0 && (value[0] == ' ' || value[0] == '\t') {
		value = value[1:]
	}
	return name, value, true
}

func isBlankLine(buf []byte) bool {
	return len(buf) == 0 || buf[0] == '\n' || (buf[0] == '\r' && len(buf) > 1 && buf[1] == '\n')
}

func consumeBlankLine(buf []byte) []byte {
	if len(buf) == 0 {
		return buf
	}
	if buf[0] == '\r' && len(buf) > 1 && buf[1] == '\n' {
		return buf[2:]
	}
	return buf[1:]
}
