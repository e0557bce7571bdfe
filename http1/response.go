package http1

import (
	"bytes"
	"strconv"
)

// Response is a not-yet-serialized HTTP/1.1 response.
type Response struct {
	Status  int
	Headers Header
	Body    []byte
}

// NewResponse builds a Response with the given status and body. The
// caller is free to add further headers before Write; Content-Length
// is computed by Write itself and always wins over anything set here.
func NewResponse(status int, body []byte) *Response {
	return &Response{Status: status, Body: body}
}

var reasonPhrases = map[int]string{
	200: "OK",
	400: "Bad Request",
	404: "Not Found",
	405: "Method Not Allowed",
	500: "Internal Server Error",
}

func reasonPhrase(status int) string {
	if p, ok := reasonPhrases[status]; ok {
		return p
	}
	return "Unknown"
}

// Write serializes the response onto dst:
//
//	HTTP/1.1 <status> <reason>\r\n
//	<header>: <value>\r\n ...
//	Content-Length: <len(body)>\r\n
//	\r\n
//	<body>
//
// Content-Length is always derived from len(Body) and always
// overrides any Content-Length the caller set on Headers.
func (r *Response) Write(dst *bytes.Buffer) {
	dst.WriteString("HTTP/1.1 ")
	dst.WriteString(strconv.Itoa(r.Status))
	dst.WriteByte(' ')
	dst.WriteString(reasonPhrase(r.Status))
	dst.WriteString("\r\n")

	r.Headers.VisitAll(func(name, value []byte) {
		if equalFoldString(name, "Content-Length") {
			return
		}
		dst.Write(name)
		dst.WriteString(": ")
		dst.Write(value)
		dst.WriteString("\r\n")
	})

	dst.WriteString("Content-Length: ")
	dst.WriteString(strconv.Itoa(len(r.Body)))
	dst.WriteString("\r\n\r\n")
	dst.Write(r.Body)
}
