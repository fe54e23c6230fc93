package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhammadolammi/interviewmate/internal/analysis"
	"github.com/muhammadolammi/interviewmate/internal/apierr"
	"github.com/muhammadolammi/interviewmate/internal/auth"
	"github.com/muhammadolammi/interviewmate/internal/events"
	"github.com/muhammadolammi/interviewmate/internal/formatter"
	"github.com/muhammadolammi/interviewmate/internal/interview"
	"github.com/muhammadolammi/interviewmate/internal/logger"
	"github.com/muhammadolammi/interviewmate/internal/schema"
	"github.com/muhammadolammi/interviewmate/internal/store"
	"github.com/muhammadolammi/interviewmate/internal/wizard"
)

const testSecret = "test-secret"

type fakeRequester struct {
	out    string
	chunks []string
	err    error
}

func (f *fakeRequester) Summarize(context.Context, string) (string, error) {
	return f.out, f.err
}

func (f *fakeRequester) SummarizeStream(_ context.Context, _ string, onChunk func(string)) (string, error) {
	var full strings.Builder
	for _, c := range f.chunks {
		full.WriteString(c)
		onChunk(c)
	}
	return full.String(), f.err
}

type fakeJobs struct {
	jobs []events.Job
	err  error
}

func (f *fakeJobs) Enqueue(_ context.Context, job events.Job) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

type testEnv struct {
	router *gin.Engine
	store  *store.Memory
	req    *fakeRequester
	jobs   *fakeJobs
	forms  *FormRegistry
}

func newEnv(t *testing.T, withJobs bool) *testEnv {
	t.Helper()
	return newEnvWrapped(t, withJobs, nil)
}

// newEnvWrapped lets a test put a decorator in front of the memory store.
func newEnvWrapped(t *testing.T, withJobs bool, wrap func(store.Store) store.Store) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	catalog, err := schema.NewCatalog()
	require.NoError(t, err)
	cache, err := formatter.NewCache(16)
	require.NoError(t, err)
	forms, err := NewFormRegistry(16)
	require.NoError(t, err)

	dir := auth.NewMemoryDirectory(map[string]string{
		"kim@elleo.com":  "",
		"lee@elleo.com":  "",
		"boss@elleo.com": auth.RoleAdmin,
	})
	env := &testEnv{store: store.NewMemory(), req: &fakeRequester{}, forms: forms}
	var st store.Store = env.store
	if wrap != nil {
		st = wrap(env.store)
	}
	deps := Deps{
		Log:       logger.Nop(),
		Store:     st,
		Auth:      auth.NewVerifier(testSecret, dir, logger.Nop()),
		Catalog:   catalog,
		Analysis:  analysis.NewService(env.req, analysis.Options{}, logger.Nop()),
		Formatter: cache,
		Forms:     forms,
	}
	if withJobs {
		env.jobs = &fakeJobs{}
		deps.Jobs = env.jobs
	}
	env.router = NewRouter(NewHandler(deps), []string{"http://localhost:5173"})
	return env
}

func token(t *testing.T, userID, email string) string {
	t.Helper()
	tok, err := auth.IssueToken(testSecret, userID, email, time.Hour)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, tok string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func sampleRecord(id, name string) interview.Record {
	a := interview.NewAnswers()
	a.SetText("q1_1", "I love making sushi")
	return interview.Record{
		ID:        id,
		BasicInfo: interview.BasicInfo{Name: name, Position: "Kitchen Hand", Store: "Bondi", Date: "2024-05-01"},
		Answers:   a,
		CreatedAt: 1000,
	}
}

func TestHealthCheck(t *testing.T) {
	env := newEnv(t, false)
	rec := env.do(t, http.MethodGet, "/healthcheck", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestAuthRequired(t *testing.T) {
	env := newEnv(t, false)

	rec := env.do(t, http.MethodGet, "/api/records", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decode[ErrorEnvelope](t, rec)
	assert.Equal(t, auth.MsgLoginRequired, body.Error.Message)

	rec = env.do(t, http.MethodGet, "/api/records", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNotWhitelistedIsSignedOut(t *testing.T) {
	env := newEnv(t, false)
	rec := env.do(t, http.MethodGet, "/api/me", token(t, "u9", "ghost@elleo.com"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	body := decode[ErrorEnvelope](t, rec)
	assert.Equal(t, auth.CodeSignedOut, body.Error.Code)
	assert.Equal(t, auth.MsgNotWhitelisted, body.Error.Message)
}

func TestTokenInQuery(t *testing.T) {
	env := newEnv(t, false)
	rec := env.do(t, http.MethodGet, "/api/me?token="+token(t, "u1", "kim@elleo.com"), "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMe(t *testing.T) {
	env := newEnv(t, false)

	rec := env.do(t, http.MethodGet, "/api/me", token(t, "u3", "boss@elleo.com"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Me             auth.Principal            `json:"me"`
		CreatableTypes []interview.InterviewType `json:"creatableTypes"`
	}](t, rec)
	assert.Equal(t, "u3", body.Me.UserID)
	assert.Equal(t, auth.RoleAdmin, body.Me.Role)
	assert.ElementsMatch(t, []interview.InterviewType{interview.TypeStandard, interview.TypeDepth, interview.TypeHR}, body.CreatableTypes)
}

func TestLogout(t *testing.T) {
	env := newEnv(t, false)
	rec := env.do(t, http.MethodPost, "/api/logout", token(t, "u1", "kim@elleo.com"), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGetSchema(t *testing.T) {
	env := newEnv(t, false)
	tok := token(t, "u1", "kim@elleo.com")

	rec := env.do(t, http.MethodGet, "/api/schemas/standard?lang=EN", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Schema schema.Schema `json:"schema"`
	}](t, rec)
	assert.Equal(t, interview.TypeStandard, body.Schema.Type)
	assert.NotEmpty(t, body.Schema.Stages)

	rec = env.do(t, http.MethodGet, "/api/schemas/unknown", tok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/schemas/DEPTH", tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFormatEndpoint(t *testing.T) {
	env := newEnv(t, false)
	rec := env.do(t, http.MethodPost, "/api/format", "", map[string]string{"text": "**최종 추천 여부: 추천**"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Blocks []formatter.Block `json:"blocks"`
	}](t, rec)
	require.Len(t, body.Blocks, 1)
	assert.Equal(t, formatter.KindVerdict, body.Blocks[0].Kind)
}

func TestRecordLifecycle(t *testing.T) {
	env := newEnv(t, false)
	kim := token(t, "u1", "kim@elleo.com")
	lee := token(t, "u2", "lee@elleo.com")
	boss := token(t, "u3", "boss@elleo.com")

	rec := env.do(t, http.MethodPut, "/api/records/r1", kim, sampleRecord("r1", "김민수"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = env.do(t, http.MethodPut, "/api/records/r2", lee, sampleRecord("", "Lee Jane"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	type listBody struct {
		Records []interview.Record `json:"records"`
		Total   int                `json:"total"`
	}

	mine := decode[listBody](t, env.do(t, http.MethodGet, "/api/records", kim, nil))
	require.Len(t, mine.Records, 1)
	assert.Equal(t, "r1", mine.Records[0].ID)
	assert.Equal(t, interview.TypeStandard, mine.Records[0].Type())

	all := decode[listBody](t, env.do(t, http.MethodGet, "/api/records", boss, nil))
	assert.Len(t, all.Records, 2)

	found := decode[listBody](t, env.do(t, http.MethodGet, "/api/records?q=%E3%84%B1", boss, nil))
	require.Len(t, found.Records, 1)
	assert.Equal(t, "r1", found.Records[0].ID)
	assert.Equal(t, 2, found.Total)

	rec = env.do(t, http.MethodGet, "/api/records/r1", lee, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/records/r1", lee, sampleRecord("r1", "hijack"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/records/r1", kim, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/records/r1", kim, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type brokenStore struct {
	store.Store
	err error
}

func (b brokenStore) Delete(context.Context, auth.Principal, string) error { return b.err }

func (b brokenStore) SetSummary(context.Context, auth.Principal, string, string) error {
	return b.err
}

func TestRemoteFailureMessages(t *testing.T) {
	env := newEnvWrapped(t, false, func(s store.Store) store.Store {
		return brokenStore{Store: s, err: apierr.Remote("store", errors.New("connection reset"))}
	})
	kim := token(t, "u1", "kim@elleo.com")
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/api/records/r1", kim, sampleRecord("r1", "Kim")).Code)

	rec := env.do(t, http.MethodDelete, "/api/records/r1", kim, nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, interview.MsgDeleteFailed, decode[ErrorEnvelope](t, rec).Error.Message)

	env.req.out = "summary"
	rec = env.do(t, http.MethodPost, "/api/records/r1/analyze", kim, nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, interview.MsgAnalysisSaveFailed, decode[ErrorEnvelope](t, rec).Error.Message)
}

func TestPutRecordValidation(t *testing.T) {
	env := newEnv(t, false)
	kim := token(t, "u1", "kim@elleo.com")

	rec := env.do(t, http.MethodPut, "/api/records/r1", kim, sampleRecord("r1", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, interview.MsgNameRequired, decode[ErrorEnvelope](t, rec).Error.Message)

	rec = env.do(t, http.MethodPut, "/api/records/r1", kim, sampleRecord("other", "Kim"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	bad := sampleRecord("r1", "Kim")
	bad.BasicInfo.VisaStatus = "Tourist"
	rec = env.do(t, http.MethodPut, "/api/records/r1", kim, bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPutRecordTypeGate(t *testing.T) {
	env := newEnv(t, false)
	depth := sampleRecord("d1", "Kim")
	depth.BasicInfo.InterviewType = interview.TypeDepth

	rec := env.do(t, http.MethodPut, "/api/records/d1", token(t, "u1", "kim@elleo.com"), depth)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "type_not_allowed", decode[ErrorEnvelope](t, rec).Error.Code)

	rec = env.do(t, http.MethodPut, "/api/records/d1", token(t, "u3", "boss@elleo.com"), depth)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnalyzeRecordStoresSummary(t *testing.T) {
	env := newEnv(t, false)
	kim := token(t, "u1", "kim@elleo.com")
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/api/records/r1", kim, sampleRecord("r1", "Kim")).Code)
	env.req.out = "```markdown\n**최종 추천 여부: 추천**\n```"

	rec := env.do(t, http.MethodPost, "/api/records/r1/analyze?lang=EN", kim, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[analysisPayload](t, rec)
	assert.Equal(t, analysis.StatusOK, body.Result.Status)
	require.NotEmpty(t, body.Blocks)
	assert.Equal(t, formatter.KindVerdict, body.Blocks[0].Kind)

	stored, err := env.store.Get(context.Background(), auth.Principal{UserID: "u1"}, "r1")
	require.NoError(t, err)
	assert.Equal(t, "**최종 추천 여부: 추천**", stored.AISummary)
}

func TestAnalyzeRecordFailureNotStored(t *testing.T) {
	env := newEnv(t, false)
	kim := token(t, "u1", "kim@elleo.com")
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/api/records/r1", kim, sampleRecord("r1", "Kim")).Code)
	env.req.err = errors.New("quota exceeded")

	rec := env.do(t, http.MethodPost, "/api/records/r1/analyze", kim, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[analysisPayload](t, rec)
	assert.Equal(t, analysis.MsgFailed, body.Result.Text)

	stored, err := env.store.Get(context.Background(), auth.Principal{UserID: "u1"}, "r1")
	require.NoError(t, err)
	assert.Empty(t, stored.AISummary)
}

func TestAnalyzeRecordStream(t *testing.T) {
	env := newEnv(t, false)
	kim := token(t, "u1", "kim@elleo.com")
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/api/records/r1", kim, sampleRecord("r1", "Kim")).Code)
	env.req.chunks = []string{"## 1. 지원자 ", "요약\n내용"}

	rec := env.do(t, http.MethodPost, "/api/records/r1/analyze?stream=1", kim, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	out := rec.Body.String()
	assert.Equal(t, 2, strings.Count(out, "event:chunk"))
	assert.Contains(t, out, "event:done")
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/event-stream"))

	stored, err := env.store.Get(context.Background(), auth.Principal{UserID: "u1"}, "r1")
	require.NoError(t, err)
	assert.Equal(t, "## 1. 지원자 요약\n내용", stored.AISummary)
}

func TestAnalyzeRecordAsync(t *testing.T) {
	env := newEnv(t, true)
	kim := token(t, "u1", "kim@elleo.com")
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/api/records/r1", kim, sampleRecord("r1", "Kim")).Code)

	rec := env.do(t, http.MethodPost, "/api/records/r1/analyze?async=1&lang=EN", kim, nil)
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, env.jobs.jobs, 1)
	assert.Equal(t, events.Job{RecordID: "r1", Type: interview.TypeStandard, Language: interview.LangEN, RequestedBy: "u1"}, env.jobs.jobs[0])

	env.jobs.err = errors.New("broker down")
	rec = env.do(t, http.MethodPost, "/api/records/r1/analyze?async=1", kim, nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAnalyzeRecordAsyncWithoutQueue(t *testing.T) {
	env := newEnv(t, false)
	kim := token(t, "u1", "kim@elleo.com")
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/api/records/r1", kim, sampleRecord("r1", "Kim")).Code)

	rec := env.do(t, http.MethodPost, "/api/records/r1/analyze?async=1", kim, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestFormFlow(t *testing.T) {
	env := newEnv(t, false)
	kim := token(t, "u1", "kim@elleo.com")

	rec := env.do(t, http.MethodPost, "/api/forms", kim, map[string]string{"type": "STANDARD", "language": "EN"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[formPayload](t, rec)
	sid := created.SessionID
	require.NotEmpty(t, sid)
	assert.Equal(t, "stage1", created.Form.ActiveStageID)
	base := "/api/forms/" + sid

	rec = env.do(t, http.MethodPost, base+"/save", kim, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	failed := decode[ErrorEnvelope](t, rec)
	assert.Equal(t, []wizard.Effect{{Kind: wizard.EffectAlert, Message: interview.MsgNameRequired}}, failed.Effects)

	rec = env.do(t, http.MethodPatch, base+"/basic-info", kim, map[string]any{"name": "Kim", "hasSushiExperience": true})
	require.Equal(t, http.StatusOK, rec.Code)
	patched := decode[formPayload](t, rec)
	assert.Equal(t, "Kim", patched.Form.BasicInfo.Name)
	assert.True(t, patched.Form.BasicInfo.HasSushiExperience)
	assert.NotEmpty(t, patched.Form.BasicInfo.Date)

	rec = env.do(t, http.MethodPut, base+"/answers/q1_1", kim, map[string]string{"value": "Friend recommended"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodPut, base+"/answers/nope", kim, map[string]string{"value": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, base+"/save", kim, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	saved := decode[formPayload](t, rec)
	assert.Equal(t, []wizard.Effect{{Kind: wizard.EffectAlert, Message: interview.MsgCheckpointSaved}}, saved.Effects)

	rec = env.do(t, http.MethodPost, base+"/next", kim, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	moved := decode[formPayload](t, rec)
	assert.Equal(t, 1, moved.Form.ActiveStage)
	assert.Equal(t, []wizard.Effect{{Kind: wizard.EffectScrollToStage, StageID: "stage2"}}, moved.Effects)

	rec = env.do(t, http.MethodPost, base+"/stages/stage5", kim, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodPost, base+"/consent", kim, map[string]any{"section": "s5_notice", "checked": true})
	require.Equal(t, http.StatusOK, rec.Code)
	consented := decode[formPayload](t, rec)
	assert.Equal(t, "true", consented.Form.Answers["notice-s5_notice-0"])
	assert.Equal(t, "true", consented.Form.Answers["consent-s5_notice"])

	rec = env.do(t, http.MethodPost, base+"/notices", kim, map[string]any{"section": "s5_notice", "index": 2, "checked": false})
	require.Equal(t, http.StatusOK, rec.Code)
	unchecked := decode[formPayload](t, rec)
	assert.Equal(t, "false", unchecked.Form.Answers["consent-s5_notice"])

	rec = env.do(t, http.MethodPost, base+"/next", kim, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	closed := decode[formPayload](t, rec)
	assert.Equal(t, []wizard.Effect{{Kind: wizard.EffectClose}}, closed.Effects)
	assert.Equal(t, 0, env.forms.Len())

	rec = env.do(t, http.MethodGet, base, kim, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	list, err := env.store.List(context.Background(), auth.Principal{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.Form.ID, list[0].ID)
	assert.Equal(t, "Friend recommended", list[0].Answers.TextFor("q1_1"))
	assert.Equal(t, interview.False, list[0].Answers.Check("consent-s5_notice"))
}

func TestFormBelongsToOpener(t *testing.T) {
	env := newEnv(t, false)
	rec := env.do(t, http.MethodPost, "/api/forms", token(t, "u1", "kim@elleo.com"), map[string]string{"type": "STANDARD"})
	require.Equal(t, http.StatusCreated, rec.Code)
	sid := decode[formPayload](t, rec).SessionID

	rec = env.do(t, http.MethodGet, "/api/forms/"+sid, token(t, "u2", "lee@elleo.com"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFormTypeGate(t *testing.T) {
	env := newEnv(t, false)
	rec := env.do(t, http.MethodPost, "/api/forms", token(t, "u1", "kim@elleo.com"), map[string]string{"type": "HR"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestFormFromExistingRecord(t *testing.T) {
	env := newEnv(t, false)
	kim := token(t, "u1", "kim@elleo.com")
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/api/records/r1", kim, sampleRecord("r1", "Kim")).Code)

	rec := env.do(t, http.MethodPost, "/api/forms", kim, map[string]string{"recordId": "r1", "language": "EN"})
	require.Equal(t, http.StatusCreated, rec.Code)
	form := decode[formPayload](t, rec).Form
	assert.Equal(t, "r1", form.ID)
	assert.Equal(t, "2024-05-01", form.BasicInfo.Date)
	assert.Contains(t, form.Expanded, "q1_1")
}

func TestFormAnalyze(t *testing.T) {
	env := newEnv(t, false)
	kim := token(t, "u1", "kim@elleo.com")
	rec := env.do(t, http.MethodPost, "/api/forms", kim, map[string]string{"type": "STANDARD", "language": "EN"})
	require.Equal(t, http.StatusCreated, rec.Code)
	base := "/api/forms/" + decode[formPayload](t, rec).SessionID

	rec = env.do(t, http.MethodPost, base+"/analyze", kim, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, interview.MsgAnalyzeNeedsInfo, decode[ErrorEnvelope](t, rec).Effects[0].Message)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPatch, base+"/basic-info", kim, map[string]any{"name": "Kim"}).Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, base+"/answers/q1_2", kim, map[string]string{"value": "Two years"}).Code)
	env.req.out = "## 1. 지원자 요약\n성실함"

	rec = env.do(t, http.MethodPost, base+"/analyze", kim, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[formPayload](t, rec)
	require.NotNil(t, body.Analysis)
	assert.Equal(t, analysis.StatusOK, body.Analysis.Result.Status)
	assert.Equal(t, env.req.out, body.Form.AISummary)

	list, err := env.store.List(context.Background(), auth.Principal{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, env.req.out, list[0].AISummary)
}

// sseData returns the data line of the first event named name.
func sseData(t *testing.T, body, name string) string {
	t.Helper()
	lines := strings.Split(body, "\n")
	for i, l := range lines {
		if l == "event:"+name && i+1 < len(lines) {
			return strings.TrimPrefix(lines[i+1], "data:")
		}
	}
	t.Fatalf("no %q event in %q", name, body)
	return ""
}

func TestFormAnalyzeStreamDeliversEffects(t *testing.T) {
	env := newEnv(t, false)
	kim := token(t, "u1", "kim@elleo.com")
	rec := env.do(t, http.MethodPost, "/api/forms", kim, map[string]string{"type": "STANDARD", "language": "EN"})
	require.Equal(t, http.StatusCreated, rec.Code)
	base := "/api/forms/" + decode[formPayload](t, rec).SessionID
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPatch, base+"/basic-info", kim, map[string]any{"name": "Kim"}).Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, base+"/answers/q1_2", kim, map[string]string{"value": "Two years"}).Code)
	env.req.err = errors.New("deadline exceeded")

	rec = env.do(t, http.MethodPost, base+"/analyze?stream=1", kim, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var done streamDone
	require.NoError(t, json.Unmarshal([]byte(sseData(t, rec.Body.String(), "done")), &done))
	assert.Equal(t, analysis.StatusFailed, done.Result.Status)
	assert.Equal(t, []wizard.Effect{{Kind: wizard.EffectAlert, Message: analysis.MsgFailed}}, done.Effects)

	next := decode[formPayload](t, env.do(t, http.MethodGet, base, kim, nil))
	assert.Empty(t, next.Effects)
}

func TestFormResumeUpload(t *testing.T) {
	env := newEnv(t, false)
	kim := token(t, "u1", "kim@elleo.com")
	rec := env.do(t, http.MethodPost, "/api/forms", kim, map[string]string{"type": "STANDARD"})
	require.Equal(t, http.StatusCreated, rec.Code)
	base := "/api/forms/" + decode[formPayload](t, rec).SessionID

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "resume.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("5 years sushi chef"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, base+"/resume", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+kim)
	out := httptest.NewRecorder()
	env.router.ServeHTTP(out, req)
	require.Equal(t, http.StatusOK, out.Code, out.Body.String())
	form := decode[formPayload](t, out).Form
	require.NotNil(t, form.Resume)
	assert.Equal(t, "resume.txt", form.Resume.FileName)

	rec = env.do(t, http.MethodDelete, base+"/resume", kim, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[formPayload](t, rec).Form.Resume)
}

func TestCORSPreflight(t *testing.T) {
	env := newEnv(t, false)
	req := httptest.NewRequest(http.MethodOptions, "/api/records", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}
