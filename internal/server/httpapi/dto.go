package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/waterwatch/internal/server/services"
	"github.com/relvacode/iso8601"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

type messageResponse struct {
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

type exportResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// readingRequest keeps raw values so that each field can be checked on its
// own. Metrics may be JSON numbers or numeric strings.
type readingRequest struct {
	Date     json.RawMessage `json:"date"`
	PH       json.RawMessage `json:"pH"`
	TSS      json.RawMessage `json:"TSS"`
	TDS      json.RawMessage `json:"TDS"`
	BOD      json.RawMessage `json:"BOD"`
	COD      json.RawMessage `json:"COD"`
	Chloride json.RawMessage `json:"chloride"`
	UserID   string          `json:"userId,omitempty"`
}

// Input converts the request into a services.ReadingInput. Unparseable
// values become nil and are reported by validation.
func (r readingRequest) Input() services.ReadingInput {
	return services.ReadingInput{
		Date:     parseDate(r.Date),
		PH:       parseNumber(r.PH),
		TSS:      parseNumber(r.TSS),
		TDS:      parseNumber(r.TDS),
		BOD:      parseNumber(r.BOD),
		COD:      parseNumber(r.COD),
		Chloride: parseNumber(r.Chloride),
	}
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func parseNumber(raw json.RawMessage) *float64 {
	if isNull(raw) {
		return nil
	}

	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil
		}
		text = strings.TrimSpace(text)
	} else {
		text = string(bytes.TrimSpace(raw))
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseDate(raw json.RawMessage) *time.Time {
	if isNull(raw) {
		return nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return nil
	}
	t, err := iso8601.ParseString(strings.TrimSpace(text))
	if err != nil {
		return nil
	}
	return &t
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

const maxBodyBytes = 1 << 20

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}
