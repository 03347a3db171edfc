// Package routers
package routers

import (
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"aigate-api/internal/cost"
	"aigate-api/internal/ctx"
	"aigate-api/internal/handlers/gateway"
	"aigate-api/internal/identity"
	"aigate-api/internal/middleware"
	"aigate-api/internal/providers"
	"aigate-api/internal/shared"

	"github.com/labstack/echo/v4"
)

type GatewayRouter struct {
	gh *gateway.Handler
}

func RegisterGatewayRoutes(e *echo.Group, gh *gateway.Handler, verifier identity.Verifier, policy cost.Policy) {
	gr := GatewayRouter{gh: gh}

	v1 := e.Group("/v1", middleware.Authenticate(verifier))
	v1.GET("/providers", gr.ListProviders)

	fixed := func(endpoint string, op cost.Operation) echo.MiddlewareFunc {
		return middleware.CreditGate(endpoint, middleware.FixedCost(policy, op))
	}
	v1.POST("/llm/generate", gr.Generate, fixed(shared.ENDPOINTS.LLM, cost.OpLLM))
	v1.POST("/tts/synthesize", gr.Synthesize, fixed(shared.ENDPOINTS.TTS, cost.OpTTS))
	v1.POST("/stt/transcribe", gr.Transcribe, fixed(shared.ENDPOINTS.STT, cost.OpSTT))
	v1.POST("/image/generate", gr.GenerateImage, fixed(shared.ENDPOINTS.IMAGE, cost.OpImage))
	v1.POST("/embeddings", gr.Embed, fixed(shared.ENDPOINTS.EMBEDDING, cost.OpEmbedding))
	v1.POST("/voice/answer", gr.VoiceAnswer, fixed(shared.ENDPOINTS.VOICEANSWER, cost.OpVoiceAnswer))
	v1.POST("/files/convert", gr.ConvertFiles,
		middleware.CreditGate(shared.ENDPOINTS.CONVERT, middleware.PerFileCost(policy)))
	v1.POST("/files/embed", gr.EmbedFiles,
		middleware.CreditGate(shared.ENDPOINTS.EMBEDFILES, middleware.SizeScaledCost(policy)))
}

type ProviderList struct {
	Data []providers.Info `json:"data"`
}

func (gr *GatewayRouter) ListProviders(cc echo.Context) error {
	c := cc.(*ctx.Context)
	return c.Succeed(ProviderList{Data: gr.gh.Providers.Infos()})
}

func (gr *GatewayRouter) Generate(cc echo.Context) error {
	c := cc.(*ctx.Context)
	m := newMeta(c, shared.ENDPOINTS.LLM)

	var in gateway.LLMInput
	if err := readJSON(c, &in); err != nil {
		return c.Fail(err)
	}
	out, err := gr.gh.Generate(c.Request().Context(), m, in)
	return respond(c, m, out, err)
}

func (gr *GatewayRouter) Synthesize(cc echo.Context) error {
	c := cc.(*ctx.Context)
	m := newMeta(c, shared.ENDPOINTS.TTS)

	var in gateway.TTSInput
	if err := readJSON(c, &in); err != nil {
		return c.Fail(err)
	}
	out, err := gr.gh.Synthesize(c.Request().Context(), m, in)
	return respond(c, m, out, err)
}

func (gr *GatewayRouter) Transcribe(cc echo.Context) error {
	c := cc.(*ctx.Context)
	m := newMeta(c, shared.ENDPOINTS.STT)

	fh, err := c.FormFile("audio")
	if err != nil {
		if errors.Is(err, echo.ErrStatusRequestEntityTooLarge) {
			return c.Fail(err)
		}
		return c.Fail(&shared.RequestError{Kind: shared.KindValidation, Message: "audio file is required", Fields: []string{"audio"}, Err: err})
	}
	f, err := fh.Open()
	if err != nil {
		return c.Fail(&shared.RequestError{Kind: shared.KindValidation, Message: "failed to read audio file", Fields: []string{"audio"}, Err: err})
	}
	defer func() { _ = f.Close() }()
	audio, err := io.ReadAll(f)
	if err != nil {
		return c.Fail(&shared.RequestError{Kind: shared.KindValidation, Message: "failed to read audio file", Fields: []string{"audio"}, Err: err})
	}

	contentType := strings.TrimSpace(c.FormValue("contentType"))
	if contentType == "" {
		contentType = fh.Header.Get(echo.HeaderContentType)
	}
	out, err := gr.gh.Transcribe(c.Request().Context(), m, gateway.STTInput{Audio: audio, ContentType: contentType})
	return respond(c, m, out, err)
}

type imageRequest struct {
	Prompt          string `json:"prompt"`
	Width           int    `json:"width,omitempty"`
	Height          int    `json:"height,omitempty"`
	NegativePrompt  string `json:"negativePrompt,omitempty"`
	SeedImageBase64 string `json:"seedImageBase64,omitempty"`
}

func (gr *GatewayRouter) GenerateImage(cc echo.Context) error {
	c := cc.(*ctx.Context)
	m := newMeta(c, shared.ENDPOINTS.IMAGE)

	var req imageRequest
	if err := readJSON(c, &req); err != nil {
		return c.Fail(err)
	}
	in := gateway.ImageInput{
		Prompt:         req.Prompt,
		Width:          req.Width,
		Height:         req.Height,
		NegativePrompt: req.NegativePrompt,
	}
	if req.SeedImageBase64 != "" {
		seed, err := base64.StdEncoding.DecodeString(req.SeedImageBase64)
		if err != nil {
			return c.Fail(&shared.RequestError{Kind: shared.KindValidation, Message: "seedImageBase64 is not valid base64", Fields: []string{"seedImageBase64"}, Err: err})
		}
		in.SeedImage = seed
	}
	out, err := gr.gh.GenerateImage(c.Request().Context(), m, in)
	return respond(c, m, out, err)
}

func (gr *GatewayRouter) Embed(cc echo.Context) error {
	c := cc.(*ctx.Context)
	m := newMeta(c, shared.ENDPOINTS.EMBEDDING)

	var in gateway.EmbeddingInput
	if err := readJSON(c, &in); err != nil {
		return c.Fail(err)
	}
	out, err := gr.gh.Embed(c.Request().Context(), m, in)
	return respond(c, m, out, err)
}

func (gr *GatewayRouter) VoiceAnswer(cc echo.Context) error {
	c := cc.(*ctx.Context)
	m := newMeta(c, shared.ENDPOINTS.VOICEANSWER)

	var in gateway.VoiceAnswerInput
	if err := readJSON(c, &in); err != nil {
		return c.Fail(err)
	}
	out, err := gr.gh.VoiceAnswer(c.Request().Context(), m, in)
	return respond(c, m, out, err)
}

func (gr *GatewayRouter) ConvertFiles(cc echo.Context) error {
	c := cc.(*ctx.Context)
	m := newMeta(c, shared.ENDPOINTS.CONVERT)

	files, err := decodedFiles(c)
	if err != nil {
		return c.Fail(err)
	}
	out, err := gr.gh.ConvertFiles(c.Request().Context(), m, files)
	return respond(c, m, out, err)
}

func (gr *GatewayRouter) EmbedFiles(cc echo.Context) error {
	c := cc.(*ctx.Context)
	m := newMeta(c, shared.ENDPOINTS.EMBEDFILES)

	files, err := decodedFiles(c)
	if err != nil {
		return c.Fail(err)
	}
	out, err := gr.gh.EmbedFiles(c.Request().Context(), m, files)
	return respond(c, m, out, err)
}

// decodedFiles prefers the batch the credit gate already parsed.
func decodedFiles(c *ctx.Context) ([]shared.DecodedFile, error) {
	if files, ok := c.Get(shared.BatchFilesKey).([]shared.DecodedFile); ok {
		return files, nil
	}
	body, err := c.RequestBody()
	if err != nil {
		return nil, shared.BodyReadError(err)
	}
	return shared.ParseBatch(body)
}
