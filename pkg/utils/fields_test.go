package utils

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTemplateString(t *testing.T) {
	cases := map[string]string{
		``:                "undefined",
		`null`:            "null",
		`"Food"`:          "Food",
		`150000`:          "150000",
		`12.50`:           "12.5",
		`true`:            "true",
		`[1,"a",null]`:    "1,a,",
		`{"nested":true}`: "[object Object]",
	}
	for raw, want := range cases {
		if got := TemplateString(json.RawMessage(raw)); got != want {
			t.Fatalf("TemplateString(%s) = %q, want %q", raw, got, want)
		}
	}
}

func TestTruthy(t *testing.T) {
	cases := map[string]bool{
		``:      false,
		`null`:  false,
		`""`:    false,
		`0`:     false,
		`false`: false,
		`"0"`:   true,
		`[]`:    true,
		`{}`:    true,
		`3`:     true,
	}
	for raw, want := range cases {
		if got := Truthy(json.RawMessage(raw)); got != want {
			t.Fatalf("Truthy(%s) = %v, want %v", raw, got, want)
		}
	}
}

func TestParseFieldsJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":150000,"note":""}`))
	req.Header.Set("Content-Type", "application/json")

	f, form, err := ParseFields(httptest.NewRecorder(), req, 1<<20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if form != nil {
		t.Fatalf("json bodies have no multipart form")
	}
	if f.String("amount") != "150000" {
		t.Fatalf("unexpected amount %q", f.String("amount"))
	}
	if f.Optional("note") != "" || f.Optional("missing") != "" {
		t.Fatalf("falsy fields should render empty")
	}
}

func TestParseFieldsMultipart(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("userId", "u1")
	part, _ := mw.CreateFormFile("photos", "receipt.jpg")
	_, _ = part.Write([]byte("jpeg"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	f, form, err := ParseFields(httptest.NewRecorder(), req, 1<<20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.String("userId") != "u1" {
		t.Fatalf("unexpected userId %q", f.String("userId"))
	}
	if form == nil || len(form.File["photos"]) != 1 {
		t.Fatalf("expected one uploaded photo")
	}
}

func TestParseFieldsEmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	f, _, err := ParseFields(httptest.NewRecorder(), req, 1<<20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Truthy("userId") {
		t.Fatalf("empty body has no fields")
	}
}

func TestEntries(t *testing.T) {
	if _, ok := Entries(json.RawMessage(`[]`)); ok {
		t.Fatalf("empty arrays are rejected")
	}
	if _, ok := Entries(json.RawMessage(`"text"`)); ok {
		t.Fatalf("non-arrays are rejected")
	}
	items, ok := Entries(json.RawMessage(`[{"category":"Food"},3]`))
	if !ok || len(items) != 2 {
		t.Fatalf("expected two entries")
	}
	if items[0].String("category") != "Food" || items[1].String("category") != "undefined" {
		t.Fatalf("unexpected rendering %q %q", items[0].String("category"), items[1].String("category"))
	}
}
