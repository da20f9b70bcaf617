package main

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/backsoul/citizenquiz/pkg/handlers"
	"github.com/backsoul/citizenquiz/pkg/models"
	"github.com/backsoul/citizenquiz/pkg/services"
	"github.com/backsoul/citizenquiz/pkg/services/servicestest"
	"github.com/backsoul/citizenquiz/pkg/websocket"
	"github.com/valyala/fasthttp"
)

func setupRouter(t *testing.T) {
	t.Helper()
	catalog := servicestest.NewCatalog()
	contentService = services.NewContentService(catalog)
	if _, err := contentService.LoadGamesFromFile("games.json"); err != nil {
		t.Fatalf("load games.json: %v", err)
	}
	resultsService = services.NewResultsService(&servicestest.Archive{}, nil, 0.7, 20)
	sessionService = services.NewSessionService(servicestest.NewKV(), contentService, resultsService, time.Hour)
	hub = websocket.NewHub()

	contentHandler = handlers.NewContentHandler(contentService, resultsService, "games.json")
	sessionHandler = handlers.NewSessionHandler(sessionService, discard{})
	resultsHandler = handlers.NewResultsHandler(resultsService, sessionService)
	feedbackHandler = handlers.NewFeedbackHandler(sessionService, hub)
}

type discard struct{}

func (discard) Publish(string, string, interface{}) {}

func request(method, uri, body string) *fasthttp.RequestCtx {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	if body != "" {
		ctx.Request.SetBodyString(body)
	}
	requestHandler(&ctx)
	return &ctx
}

func TestRoutes(t *testing.T) {
	setupRouter(t)

	tests := []struct {
		method, uri string
		want        int
	}{
		{fasthttp.MethodGet, "/api/games", fasthttp.StatusOK},
		{fasthttp.MethodGet, "/api/games/phishing", fasthttp.StatusOK},
		{fasthttp.MethodGet, "/api/games/phishing/next", fasthttp.StatusOK},
		{fasthttp.MethodGet, "/api/games/nope", fasthttp.StatusNotFound},
		{fasthttp.MethodGet, "/api/sessions/missing", fasthttp.StatusNotFound},
		{fasthttp.MethodGet, "/api/sessions/active", fasthttp.StatusOK},
		{fasthttp.MethodGet, "/api/players/ana/history", fasthttp.StatusOK},
		{fasthttp.MethodGet, "/api/leaderboard", fasthttp.StatusOK},
		{fasthttp.MethodPost, "/api/sessions/x/jump", fasthttp.StatusNotFound},
		{fasthttp.MethodGet, "/ws", fasthttp.StatusBadRequest},
		{fasthttp.MethodGet, "/nada", fasthttp.StatusNotFound},
		{fasthttp.MethodOptions, "/api/games", fasthttp.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.uri, func(t *testing.T) {
			ctx := request(tt.method, tt.uri, "")
			if got := ctx.Response.StatusCode(); got != tt.want {
				t.Fatalf("status = %d, want %d (%s)", got, tt.want, ctx.Response.Body())
			}
		})
	}
}

func TestSessionRoutes(t *testing.T) {
	setupRouter(t)

	ctx := request(fasthttp.MethodPost, "/api/sessions", `{"gameId":"passwords","playerName":"ana"}`)
	var created struct {
		Data models.SessionResponse `json:"data"`
	}
	if err := json.Unmarshal(ctx.Response.Body(), &created); err != nil || created.Data.Session == nil {
		t.Fatalf("create: %v %s", err, ctx.Response.Body())
	}
	base := "/api/sessions/" + created.Data.Session.ID

	steps := []struct {
		method, uri, body string
		want              int
	}{
		{fasthttp.MethodPost, base + "/submit", `{"itemId":"pw1","optionId":"c"}`, fasthttp.StatusOK},
		{fasthttp.MethodPost, base + "/advance", "{}", fasthttp.StatusOK},
		{fasthttp.MethodGet, base + "/summary", "", fasthttp.StatusConflict},
		{fasthttp.MethodPost, base + "/submit", `{"itemId":"pw2","optionId":"b"}`, fasthttp.StatusOK},
		{fasthttp.MethodPost, base + "/advance", "{}", fasthttp.StatusOK},
		{fasthttp.MethodGet, base + "/summary", "", fasthttp.StatusOK},
		{fasthttp.MethodPost, base + "/reset", "{}", fasthttp.StatusOK},
		{fasthttp.MethodPost, base + "/finish", "{}", fasthttp.StatusOK},
		{fasthttp.MethodGet, base, "", fasthttp.StatusNotFound},
	}
	for _, s := range steps {
		ctx := request(s.method, s.uri, s.body)
		if got := ctx.Response.StatusCode(); got != s.want {
			t.Fatalf("%s %s = %d, want %d (%s)", s.method, s.uri, got, s.want, ctx.Response.Body())
		}
	}
}
