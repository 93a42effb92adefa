package genai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestClientGenerateTextRequest(t *testing.T) {
	const expectedURL = "http://genai.test/v1beta/models/gemini-3-flash-preview:generateContent"
	respBody := `{"candidates":[{"content":{"parts":[{"text":"Priorize a renovação do alvará dos bombeiros."}]}}]}`

	var capturedURL string
	var capturedHeaders http.Header

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		capturedHeaders = req.Header.Clone()

		bodyBytes, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read request body: %v", err)
		}
		var payload generateContentRequest
		if err := json.Unmarshal(bodyBytes, &payload); err != nil {
			t.Fatalf("unmarshal request body: %v", err)
		}
		if len(payload.Contents) != 1 || len(payload.Contents[0].Parts) != 1 {
			t.Fatalf("unexpected contents %+v", payload.Contents)
		}
		if payload.Contents[0].Parts[0].Text != "analise os vencimentos" {
			t.Fatalf("unexpected prompt %q", payload.Contents[0].Parts[0].Text)
		}
		if payload.GenerationConfig == nil || payload.GenerationConfig.Temperature != 0.4 {
			t.Fatalf("unexpected generation config %+v", payload.GenerationConfig)
		}

		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	client, err := NewClient("test-key",
		WithBaseURL("http://genai.test/v1beta"),
		WithHTTPClient(&http.Client{Transport: rt}),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	text, err := client.GenerateText(context.Background(), GenerateRequest{
		Prompt:      "analise os vencimentos",
		Temperature: 0.4,
	})
	if err != nil {
		t.Fatalf("generate text: %v", err)
	}
	if capturedURL != expectedURL {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if capturedHeaders.Get("X-Goog-Api-Key") != "test-key" {
		t.Fatal("api key header missing")
	}
	if text != "Priorize a renovação do alvará dos bombeiros." {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestClientGenerateTextErrors(t *testing.T) {
	if _, err := NewClient("  "); err == nil {
		t.Fatal("expected error for blank api key")
	}

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusTooManyRequests,
			Body:       io.NopCloser(strings.NewReader(`{"error":{"message":"quota"}}`)),
			Header:     http.Header{},
		}, nil
	})
	client, err := NewClient("test-key", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if _, err := client.GenerateText(context.Background(), GenerateRequest{Prompt: " "}); err == nil {
		t.Fatal("expected validation error for blank prompt")
	}
	if _, err := client.GenerateText(context.Background(), GenerateRequest{Prompt: "analise"}); err == nil {
		t.Fatal("expected dependency error for non-200 status")
	}
}

func TestClientGenerateTextEmptyCandidates(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"candidates":[]}`)),
			Header:     http.Header{},
		}, nil
	})
	client, err := NewClient("test-key", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if _, err := client.GenerateText(context.Background(), GenerateRequest{Prompt: "analise"}); err == nil {
		t.Fatal("expected error for empty candidates")
	}
}
