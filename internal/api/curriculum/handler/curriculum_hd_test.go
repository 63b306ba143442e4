package curriculumHandler_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"KeikoHub/internal/api/curriculum"
	curriculumHandler "KeikoHub/internal/api/curriculum/handler"
	curriculumService "KeikoHub/internal/api/curriculum/service"
	"KeikoHub/internal/config"
	curriculumCore "KeikoHub/internal/curriculum"
	"KeikoHub/internal/middleware"
	"KeikoHub/pkg/audio"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	testdata := filepath.Join("..", "..", "..", "curriculum", "testdata")
	loader := curriculumCore.NewLoader(
		filepath.Join(testdata, "nomenclature.json"),
		filepath.Join(testdata, "videos.json"),
		logger)

	service := curriculumService.NewCurriculumService(logger, loader, audio.NewVoiceCatalog(""))
	mw := middleware.New(logger)

	app := fiber.New(fiber.Config{
		JSONEncoder: jsoniter.Marshal,
		JSONDecoder: jsoniter.Unmarshal,
	})
	app.Use(mw.NewRequestIDMiddleware())
	curriculumHandler.New(logger, config.NewValidator(), mw, service).Start(app.Group("/api/v1"))
	return app
}

func get(t *testing.T, app *fiber.App, target string, out interface{}) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, jsoniter.Unmarshal(body, out))
	}
	return resp.StatusCode
}

func gradePath(grade string) string {
	return "/api/v1/curriculum/grades/" + url.PathEscape(grade)
}

func TestGetGrades(t *testing.T) {
	app := newTestApp(t)

	var res curriculum.GradesResponse
	assert.Equal(t, http.StatusOK, get(t, app, "/api/v1/curriculum/grades", &res))
	assert.Contains(t, res.Grades, "1er Dan")
	assert.NotContains(t, res.Grades, "Malformed")
}

func TestGetPositions(t *testing.T) {
	app := newTestApp(t)

	var res curriculum.PositionsResponse
	require.Equal(t, http.StatusOK, get(t, app, gradePath("1er Dan")+"/positions", &res))
	assert.Equal(t, "1er Dan", res.Grade)

	var positions []string
	for _, p := range res.Positions {
		positions = append(positions, p.Position)
	}
	assert.Equal(t, []string{"Suwariwaza", "Hanmi Handachi", "Tachiwaza", "Armes"}, positions)
	assert.Equal(t, "Suwari waza", res.Positions[0].Label)

	assert.Equal(t, http.StatusNotFound, get(t, app, gradePath("9e Dan")+"/positions", nil))
}

func TestGetAttacks(t *testing.T) {
	app := newTestApp(t)

	var res curriculum.AttacksResponse
	require.Equal(t, http.StatusOK, get(t, app, gradePath("1er Dan")+"/positions/Tachiwaza/attacks", &res))
	assert.Equal(t, []string{"Shomen uchi", "Yokomen uchi", "Ushiro waza"}, res.Attacks)

	assert.Equal(t, http.StatusBadRequest, get(t, app, gradePath("1er Dan")+"/positions/Kumite/attacks", nil))
	assert.Equal(t, http.StatusNotFound, get(t, app, gradePath("5e Kyū")+"/positions/Armes/attacks", nil))
}

func TestGetTechniques(t *testing.T) {
	app := newTestApp(t)

	var res curriculum.TechniquesResponse
	target := gradePath("1er Dan") + "/positions/" + url.PathEscape("Suwari waza") + "/techniques?attack=" + url.QueryEscape("Shomen uchi")
	require.Equal(t, http.StatusOK, get(t, app, target, &res))
	assert.Equal(t, "Suwariwaza", res.Position)
	assert.Equal(t, []string{"Ikkyo", "Nikyo", "Sankyo"}, res.Techniques)

	target = gradePath("1er Dan") + "/positions/Armes/techniques?attack=" + url.QueryEscape("Tanto dori-Tsuki")
	require.Equal(t, http.StatusOK, get(t, app, target, &res))
	assert.Equal(t, []string{"Kote gaeshi"}, res.Techniques)

	assert.Equal(t, http.StatusBadRequest, get(t, app, gradePath("1er Dan")+"/positions/Armes/techniques", nil))
}

func TestGetVideos(t *testing.T) {
	app := newTestApp(t)

	var res curriculum.VideosResponse
	target := "/api/v1/curriculum/videos?attack=" + url.QueryEscape("Shomen uchi") + "&technique=Gokyo"
	require.Equal(t, http.StatusOK, get(t, app, target, &res))
	assert.Len(t, res.Videos, 2)

	target = "/api/v1/curriculum/videos?attack=" + url.QueryEscape("Yokomen uchi") + "&technique=Gokyo"
	require.Equal(t, http.StatusOK, get(t, app, target, &res))
	assert.Empty(t, res.Videos)

	assert.Equal(t, http.StatusBadRequest, get(t, app, "/api/v1/curriculum/videos?attack=Tsuki", nil))
}

func TestGetVoices(t *testing.T) {
	app := newTestApp(t)

	var res curriculum.VoicesResponse
	require.Equal(t, http.StatusOK, get(t, app, "/api/v1/curriculum/voices", &res))
	require.Len(t, res.Voices, 6)
	assert.Equal(t, "French/Male1", res.Voices[0].Ref)
}
