package providers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"testing"

	"aigate-api/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/speech/v1"
	"google.golang.org/api/texttospeech/v1"
)

const googleQuotaBody = `{"error":{"code":429,"message":"Quota exceeded for quota metric 'Requests' and limit 'Requests per minute'","errors":[{"reason":"rateLimitExceeded","message":"Quota exceeded"}],"status":"RESOURCE_EXHAUSTED"}}`

func TestGoogleTTSSynthesize(t *testing.T) {
	var got texttospeech.SynthesizeSpeechRequest
	up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/text:synthesize", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, `{"audioContent":"`+base64.StdEncoding.EncodeToString([]byte("mp3-bytes"))+`"}`)
	})

	tts, err := NewGoogleTTS(context.Background(), up.providerConfig(), testLimits())
	require.NoError(t, err)

	audio, err := tts.Synthesize(context.Background(), "Hallo", "de-DE-Neural2-B")
	require.NoError(t, err)
	assert.Equal(t, "mp3-bytes", string(audio.Bytes))
	assert.Equal(t, 9, audio.Length)
	assert.Equal(t, "de-DE-Neural2-B", got.Voice.Name)
	assert.Equal(t, "de-DE", got.Voice.LanguageCode)
	assert.Equal(t, "MP3", got.AudioConfig.AudioEncoding)
}

func TestGoogleTTSDefaultVoiceAndValidation(t *testing.T) {
	up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		var got texttospeech.SynthesizeSpeechRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, googleVoice, got.Voice.Name)
		writeJSON(w, http.StatusOK, `{"audioContent":"AAAA"}`)
	})
	tts, err := NewGoogleTTS(context.Background(), up.providerConfig(), testLimits())
	require.NoError(t, err)
	assert.Equal(t, googleVoice, tts.Info().Voice)

	_, err = tts.Synthesize(context.Background(), "", "")
	requireKind(t, err, shared.KindValidation)
	assert.Zero(t, up.calls.Load())

	_, err = tts.Synthesize(context.Background(), "hi", "")
	require.NoError(t, err)
}

func TestGoogleTTSEmptyAudio(t *testing.T) {
	up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"audioContent":""}`)
	})
	tts, err := NewGoogleTTS(context.Background(), up.providerConfig(), testLimits())
	require.NoError(t, err)
	_, err = tts.Synthesize(context.Background(), "hi", "")
	rerr := requireKind(t, err, shared.KindProviderFailure)
	assert.Contains(t, rerr.Message, "no data")
}

func TestGoogleTTSQuota(t *testing.T) {
	up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, googleQuotaBody)
	})
	tts, err := NewGoogleTTS(context.Background(), up.providerConfig(), testLimits())
	require.NoError(t, err)
	_, err = tts.Synthesize(context.Background(), "hi", "")
	rerr := requireKind(t, err, shared.KindQuotaExceeded)
	assert.Equal(t, googleName, rerr.Provider)
}

func TestGoogleSTTTranscribe(t *testing.T) {
	var got speech.RecognizeRequest
	up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/speech:recognize", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, `{"results":[{"alternatives":[{"transcript":"hello"}]},{"alternatives":[{"transcript":" world "}]}]}`)
	})

	stt, err := NewGoogleSTT(context.Background(), up.providerConfig())
	require.NoError(t, err)
	text, err := stt.Transcribe(context.Background(), []byte("fLaC"), TranscribeOptions{ContentType: "audio/flac"})
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
	assert.Equal(t, "FLAC", got.Config.Encoding)
	assert.Equal(t, googleLanguage, got.Config.LanguageCode)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("fLaC")), got.Audio.Content)
}

func TestGoogleSTTNoResults(t *testing.T) {
	up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})
	stt, err := NewGoogleSTT(context.Background(), up.providerConfig())
	require.NoError(t, err)
	_, err = stt.Transcribe(context.Background(), []byte("x"), TranscribeOptions{})
	requireKind(t, err, shared.KindProviderFailure)
}

func TestVoiceLanguage(t *testing.T) {
	assert.Equal(t, "en-GB", voiceLanguage("en-GB-Wavenet-A", "en-US"))
	assert.Equal(t, "en-US", voiceLanguage("custom", "en-US"))
}
