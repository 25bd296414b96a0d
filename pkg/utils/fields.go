package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
)

// MaxBodyBytes 请求体大小上限（不含multipart文件）
const MaxBodyBytes = 1 << 20

var errNullBody = errors.New("body is null")

// Fields is a request body whose values are kept as raw JSON. Form values are
// stored as JSON strings so JSON and multipart bodies read the same way.
type Fields map[string]json.RawMessage

// DecodeFields parses a JSON object body.
func DecodeFields(body []byte) (Fields, error) {
	var f Fields
	if err := json.Unmarshal(body, &f); err != nil {
		return nil, err
	}
	if f == nil {
		return nil, errNullBody
	}
	return f, nil
}

// ParseFields reads a JSON, urlencoded or multipart body. The multipart form is
// returned so callers can reach uploaded files; it is nil for other bodies.
func ParseFields(w http.ResponseWriter, r *http.Request, maxMemory int64) (Fields, *multipart.Form, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			return nil, nil, err
		}
		return formFields(r.MultipartForm.Value), r.MultipartForm, nil
	case "application/x-www-form-urlencoded":
		r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
		if err := r.ParseForm(); err != nil {
			return nil, nil, err
		}
		return formFields(r.PostForm), nil, nil
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		return nil, nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return Fields{}, nil, nil
	}
	f, err := DecodeFields(body)
	return f, nil, err
}

func formFields(values map[string][]string) Fields {
	f := make(Fields, len(values))
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		raw, _ := json.Marshal(vals[0])
		f[key] = raw
	}
	return f
}

// Truthy reports whether the field is present and truthy.
func (f Fields) Truthy(key string) bool {
	return Truthy(f[key])
}

// String renders the field as text, see TemplateString.
func (f Fields) String(key string) string {
	return TemplateString(f[key])
}

// Optional renders the field as text, or "" when it is falsy.
func (f Fields) Optional(key string) string {
	if !f.Truthy(key) {
		return ""
	}
	return f.String(key)
}

// Truthy follows JavaScript truthiness for a raw JSON value; a missing value is falsy.
func Truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}

// TemplateString renders a raw JSON value the way a JavaScript template literal would.
func TemplateString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "undefined"
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "undefined"
	}
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		var items []json.RawMessage
		_ = json.Unmarshal(raw, &items)
		parts := make([]string, len(items))
		for i, item := range items {
			if s := TemplateString(item); s != "null" && s != "undefined" {
				parts[i] = s
			}
		}
		return strings.Join(parts, ",")
	default:
		return "[object Object]"
	}
}

// Entries decodes a non-empty JSON array of objects. ok is false when the value
// is missing, empty or not an array.
func Entries(raw json.RawMessage) ([]Fields, bool) {
	var list []json.RawMessage
	if !Truthy(raw) || json.Unmarshal(raw, &list) != nil || len(list) == 0 {
		return nil, false
	}

	out := make([]Fields, len(list))
	for i, item := range list {
		var f Fields
		// non-object items render every field as undefined
		_ = json.Unmarshal(item, &f)
		out[i] = f
	}
	return out, true
}
