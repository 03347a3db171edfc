package providers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"aigate-api/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAILLMGenerate(t *testing.T) {
	var got openAIChatRequest
	up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"4"}}]}`)
	})

	llm := NewOpenAILLM(up.providerConfig(), http.DefaultClient)
	text, err := llm.Generate(context.Background(), "What is 2+2?", GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "4", text)
	assert.Equal(t, openAIChatModel, got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "What is 2+2?", got.Messages[0].Content)
}

func TestOpenAILLMSystemPromptCarriesLengthBound(t *testing.T) {
	var got openAIChatRequest
	up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`)
	})

	llm := NewOpenAILLM(up.providerConfig(), http.DefaultClient)
	_, err := llm.Generate(context.Background(), "q", GenerateOptions{MaxOutputChars: 100})
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, "under 100 characters")
}

func TestOpenAILLMRejectsBlankPrompt(t *testing.T) {
	up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})
	llm := NewOpenAILLM(up.providerConfig(), http.DefaultClient)

	for _, prompt := range []string{"", "   ", "\n\t"} {
		_, err := llm.Generate(context.Background(), prompt, GenerateOptions{})
		rerr := requireKind(t, err, shared.KindValidation)
		assert.Equal(t, []string{"prompt"}, rerr.Fields)
	}
	assert.Zero(t, up.calls.Load())
}

func TestOpenAILLMEmptyCompletion(t *testing.T) {
	up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"choices":[]}`)
	})
	llm := NewOpenAILLM(up.providerConfig(), http.DefaultClient)
	_, err := llm.Generate(context.Background(), "hi", GenerateOptions{})
	requireKind(t, err, shared.KindProviderFailure)
}

func TestOpenAILLMUpstreamErrors(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   shared.ErrorKind
	}{
		{429, `{"error":{"message":"You exceeded your current quota","type":"insufficient_quota","code":"insufficient_quota"}}`, shared.KindQuotaExceeded},
		{429, `{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`, shared.KindRateLimited},
		{401, `{"error":{"message":"Incorrect API key","code":"invalid_api_key"}}`, shared.KindProviderFailure},
		{502, `<html>bad gateway</html>`, shared.KindProviderFailure},
	}
	for _, tt := range tests {
		up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, tt.status, tt.body)
		})
		llm := NewOpenAILLM(up.providerConfig(), http.DefaultClient)
		_, err := llm.Generate(context.Background(), "hi", GenerateOptions{})
		rerr := requireKind(t, err, tt.want)
		assert.Equal(t, openAIName, rerr.Provider)
	}
}

func TestOpenAILLMMalformedBody(t *testing.T) {
	up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `not json`)
	})
	llm := NewOpenAILLM(up.providerConfig(), http.DefaultClient)
	_, err := llm.Generate(context.Background(), "hi", GenerateOptions{})
	requireKind(t, err, shared.KindProviderFailure)
}

func TestOpenAIEmbedder(t *testing.T) {
	up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"data":[{"embedding":[0.1,0.2,0.3]}]}`)
	})

	cfg := up.providerConfig()
	cfg.Dimensions = 3
	emb, err := NewOpenAIEmbedder(cfg, http.DefaultClient).Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, 3, emb.Dimensions)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, emb.Vector)

	cfg.Dimensions = 4
	_, err = NewOpenAIEmbedder(cfg, http.DefaultClient).Embed(context.Background(), "hello")
	requireKind(t, err, shared.KindProviderFailure)

	_, err = NewOpenAIEmbedder(cfg, http.DefaultClient).Embed(context.Background(), " ")
	requireKind(t, err, shared.KindValidation)
}

func TestOpenAISTTTranscribe(t *testing.T) {
	up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, openAITranscribeModel, r.FormValue("model"))

		f, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "audio.wav", header.Filename)
		data, _ := io.ReadAll(f)
		assert.Equal(t, "RIFFdata", string(data))

		writeJSON(w, http.StatusOK, `{"text":"hello world"}`)
	})

	stt := NewOpenAISTT(up.providerConfig(), http.DefaultClient)
	text, err := stt.Transcribe(context.Background(), []byte("RIFFdata"), TranscribeOptions{ContentType: "audio/wav"})
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestOpenAISTTEmptyTranscript(t *testing.T) {
	up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"text":""}`)
	})
	stt := NewOpenAISTT(up.providerConfig(), http.DefaultClient)
	_, err := stt.Transcribe(context.Background(), []byte("x"), TranscribeOptions{})
	requireKind(t, err, shared.KindProviderFailure)

	_, err = stt.Transcribe(context.Background(), nil, TranscribeOptions{})
	requireKind(t, err, shared.KindValidation)
	assert.Equal(t, int32(1), up.calls.Load())
}
