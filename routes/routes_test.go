package routes_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aferrand/survey-sim/app"
	"github.com/aferrand/survey-sim/config"
	"github.com/aferrand/survey-sim/database"
	"github.com/aferrand/survey-sim/routes"
	"github.com/aferrand/survey-sim/sim"
	"github.com/aferrand/survey-sim/store"
)

const carsSchema = `{"title":"List of Cars","fields":[` +
	`{"field_name":"Maker","input_type":"text","expected_length":50},` +
	`{"field_name":"Year","input_type":"integer","min_value":1970,"max_value":2023},` +
	`{"field_name":"Hybrid","input_type":"multiple_choice","choices":["Yes","No"]}]}`

func testHandler(t *testing.T) http.Handler {
	t.Helper()

	cfg := config.Config{DBUrl: filepath.Join(t.TempDir(), "test.sqlite")}
	db, err := database.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	catalog := store.New(db)
	return routes.Wire(app.App{
		Store:     catalog,
		Simulator: sim.New(catalog),
		Config:    cfg,
	})
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) (int, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("content-type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	resp := map[string]any{}
	if w.Body.Len() > 0 {
		// non-JSON error bodies (plain http.Error text) stay undecoded
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
	}
	return w.Code, resp
}

func ingestCars(t *testing.T, handler http.Handler) string {
	t.Helper()

	status, resp := doJSON(t, handler, "POST", "/api/surveys", carsSchema)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "List of Cars", resp["title"])
	require.NotEmpty(t, resp["id"])
	return resp["id"].(string)
}

func TestIngestAndGetSurvey(t *testing.T) {
	handler := testHandler(t)
	id := ingestCars(t, handler)

	status, resp := doJSON(t, handler, "GET", "/api/surveys/"+id, "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "List of Cars", resp["title"])

	questions := resp["questions"].([]any)
	require.Len(t, questions, 3)

	first := questions[0].(map[string]any)
	require.Equal(t, "Maker", first["question"])
	require.Equal(t, "text", first["type"])

	last := questions[2].(map[string]any)
	require.Equal(t, "multiple_choice", last["type"])
	require.Equal(t, []any{"Yes", "No"}, last["options"])
}

func TestIngestRejectsMalformedSchema(t *testing.T) {
	handler := testHandler(t)

	for name, body := range map[string]string{
		"not json":       `{"fake": `,
		"missing title":  `{"fields":[]}`,
		"missing fields": `{"title":"No Fields"}`,
	} {
		t.Run(name, func(t *testing.T) {
			status, _ := doJSON(t, handler, "POST", "/api/surveys", body)
			require.Equal(t, http.StatusBadRequest, status)
		})
	}
}

func TestIngestRejectsDuplicate(t *testing.T) {
	handler := testHandler(t)
	ingestCars(t, handler)

	status, _ := doJSON(t, handler, "POST", "/api/surveys", carsSchema)
	require.Equal(t, http.StatusConflict, status)

	status, resp := doJSON(t, handler, "GET", "/api/surveys", "")
	require.Equal(t, http.StatusOK, status)
	require.Len(t, resp["surveys"], 1)
}

func TestListSurveys(t *testing.T) {
	handler := testHandler(t)

	status, resp := doJSON(t, handler, "GET", "/api/surveys", "")
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, resp["surveys"])

	ingestCars(t, handler)
	status, resp = doJSON(t, handler, "POST", "/api/surveys", `{"title":"Second","fields":[]}`)
	require.Equal(t, http.StatusCreated, status)

	status, resp = doJSON(t, handler, "GET", "/api/surveys", "")
	require.Equal(t, http.StatusOK, status)
	surveys := resp["surveys"].([]any)
	require.Len(t, surveys, 2)
	require.Equal(t, "List of Cars", surveys[0].(map[string]any)["title"])
	require.Equal(t, "Second", surveys[1].(map[string]any)["title"])
}

func TestGetUnknownSurvey(t *testing.T) {
	handler := testHandler(t)

	status, _ := doJSON(t, handler, "GET", "/api/surveys/no-such-id", "")
	require.Equal(t, http.StatusNotFound, status)
}

func TestSimulationEndToEnd(t *testing.T) {
	handler := testHandler(t)
	id := ingestCars(t, handler)

	// two advances with no explicit index serve questions 1 and 2
	status, resp := doJSON(t, handler, "POST", "/api/surveys/"+id+"/simulate", "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "List of Cars", resp["survey_title"])
	require.Equal(t, float64(1), resp["ordinal"])
	require.Equal(t, "Maker", resp["question"])

	status, resp = doJSON(t, handler, "POST", "/api/surveys/"+id+"/simulate", "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, float64(2), resp["ordinal"])
	require.Equal(t, "Year", resp["question"])

	// answering the last question is valid with no next index
	status, resp = doJSON(t, handler, "POST", "/api/surveys/"+id+"/answers",
		`{"question_index":2,"answer":"No"}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, resp["valid"])
	require.NotContains(t, resp, "next_index")
	require.Equal(t, "No", resp["answer"])

	// the cursor followed the valid answer to the end of the survey
	status, resp = doJSON(t, handler, "POST", "/api/surveys/"+id+"/simulate", "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Survey completed successfully.", resp["message"])
}

func TestSimulateJumpAndInvalidIndex(t *testing.T) {
	handler := testHandler(t)
	id := ingestCars(t, handler)

	status, resp := doJSON(t, handler, "POST", "/api/surveys/"+id+"/simulate",
		`{"question_index":1}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Year", resp["question"])

	status, _ = doJSON(t, handler, "POST", "/api/surveys/"+id+"/simulate",
		`{"question_index":-1}`)
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, handler, "POST", "/api/surveys/"+id+"/simulate",
		`{"question_index":4}`)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestSimulateUnknownSurvey(t *testing.T) {
	handler := testHandler(t)

	status, _ := doJSON(t, handler, "POST", "/api/surveys/no-such-id/simulate", "")
	require.Equal(t, http.StatusNotFound, status)
}

func TestSubmitAnswerVerdicts(t *testing.T) {
	handler := testHandler(t)
	id := ingestCars(t, handler)

	// valid answer reports the next question
	status, resp := doJSON(t, handler, "POST", "/api/surveys/"+id+"/answers",
		`{"question_index":0,"answer":"Toyota"}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, resp["valid"])
	require.Equal(t, float64(1), resp["next_index"])
	require.Equal(t, "Year", resp["next_question"].(map[string]any)["question"])

	// numeric string fails the strict integer check, question is echoed
	status, resp = doJSON(t, handler, "POST", "/api/surveys/"+id+"/answers",
		`{"question_index":1,"answer":"2020"}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, false, resp["valid"])
	require.Equal(t, "Year", resp["question"].(map[string]any)["question"])
	require.NotContains(t, resp, "next_index")

	// in-range integer passes
	status, resp = doJSON(t, handler, "POST", "/api/surveys/"+id+"/answers",
		`{"question_index":1,"answer":2020}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, resp["valid"])

	// out-of-range index is a rejection, not a verdict
	status, _ = doJSON(t, handler, "POST", "/api/surveys/"+id+"/answers",
		`{"question_index":3,"answer":"x"}`)
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, handler, "POST", "/api/surveys/no-such-id/answers",
		`{"question_index":0,"answer":"x"}`)
	require.Equal(t, http.StatusNotFound, status)
}

func TestSubmitAnswerDefaultsToSessionCursor(t *testing.T) {
	handler := testHandler(t)
	id := ingestCars(t, handler)

	// no simulation yet: default index is 0
	status, resp := doJSON(t, handler, "POST", "/api/surveys/"+id+"/answers",
		`{"session_id":"alice","answer":"Toyota"}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, resp["valid"])

	// the valid answer advanced alice's cursor, so the next default
	// submission addresses the Year question
	status, resp = doJSON(t, handler, "POST", "/api/surveys/"+id+"/answers",
		`{"session_id":"alice","answer":1985}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, resp["valid"])
	require.Equal(t, "Year", resp["question"].(map[string]any)["question"])

	// a different session still starts at question 0
	status, resp = doJSON(t, handler, "POST", "/api/surveys/"+id+"/answers",
		`{"session_id":"bob","answer":"Honda"}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Maker", resp["question"].(map[string]any)["question"])
}
