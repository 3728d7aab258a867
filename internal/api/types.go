// Package api holds the JSON contract shared by the interview client and server.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// InterviewID is the opaque interview identifier assigned by the backend.
// It remembers whether it arrived as a JSON number or a JSON string and
// is written back the same way.
type InterviewID struct {
	value  string
	quoted bool
}

// FromInt64 builds a numeric InterviewID from a database key.
func FromInt64(n int64) InterviewID {
	return InterviewID{value: strconv.FormatInt(n, 10)}
}

// FromString builds an InterviewID that travels as a JSON string.
func FromString(s string) InterviewID {
	return InterviewID{value: s, quoted: true}
}

// ParseID reads an id from text such as a URL segment. Canonical
// integers become numeric ids, anything else a string id.
func ParseID(s string) InterviewID {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(n, 10) == s {
		return FromInt64(n)
	}
	return FromString(s)
}

// IsZero reports whether no interview has been assigned yet.
func (id InterviewID) IsZero() bool {
	return id.value == ""
}

func (id InterviewID) String() string {
	return id.value
}

// Int64 returns the numeric form of the identifier.
func (id InterviewID) Int64() (int64, error) {
	n, err := strconv.ParseInt(id.value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("interview id %q is not numeric: %w", id.value, err)
	}
	return n, nil
}

func (id InterviewID) MarshalJSON() ([]byte, error) {
	if id.value == "" {
		return []byte("null"), nil
	}
	if id.quoted {
		return json.Marshal(id.value)
	}
	return []byte(id.value), nil
}

func (id *InterviewID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = InterviewID{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FromString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("interview_id: %w", err)
	}
	*id = InterviewID{value: n.String()}
	return nil
}

// StartRequest is the body of POST /api/start.
type StartRequest struct {
	Name       string `json:"name"`
	Experience string `json:"experience"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	InterviewID InterviewID `json:"interview_id"`
	Text        string      `json:"text"`
}

// SpeakRequest is the body of POST /api/speak.
type SpeakRequest struct {
	Text string `json:"text"`
}

// Reply is returned by both /api/start and /api/chat.
type Reply struct {
	InterviewID     InterviewID `json:"interview_id,omitzero"`
	Response        string      `json:"response"`
	InterviewOver   bool        `json:"interview_over"`
	FinalEvaluation string      `json:"final_evaluation,omitempty"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

const (
	PathStart  = "/api/start"
	PathChat   = "/api/chat"
	PathSpeak  = "/api/speak"
	PathReport = "/api/report/"
)

// ReportPath returns the report endpoint for an interview.
func ReportPath(id InterviewID) string {
	return PathReport + url.PathEscape(id.value)
}

var fileUnsafe = strings.NewReplacer("/", "_", "\\", "_", "..", "_")

// ReportFilename is the attachment name the server uses for a report.
func ReportFilename(id InterviewID) string {
	return fmt.Sprintf("interview_report_%s.txt", fileUnsafe.Replace(id.value))
}
