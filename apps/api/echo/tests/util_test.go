package tests

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"reflect"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/astravon/portal/apps/api/echo"
	"github.com/astravon/portal/core"
	"github.com/astravon/portal/core/podcast"
	"github.com/astravon/portal/core/post"
	"github.com/astravon/portal/core/school"
	"github.com/astravon/portal/core/session"
	"github.com/astravon/portal/core/user"
	emailsvc "github.com/astravon/portal/services/email"
	"github.com/astravon/portal/services/realtime"
	uploadsvc "github.com/astravon/portal/services/upload"
	"github.com/astravon/portal/storage/database/inmem"
	"github.com/astravon/portal/tests"
)

var errMissingToken = httpErr{Message: "missing or malformed jwt"}

type fixture struct {
	app       *echoapi.Server
	conf      *core.Config
	usrRepo   user.Repository
	postRepo  post.Repository
	mailSvc   *emailsvc.ConsoleServiceMock
	hub       *realtime.Hub
	mediaDir  string
	schoolSvc *school.Service
}

func setup(t *testing.T) *fixture {
	t.Helper()

	conf := testutil.NewConfig()
	logger := testutil.NewLogger()
	validate, translator := testutil.NewValidator()
	require.NoError(t, core.ParseEmailTemplates(conf))

	// set up DB & repos
	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	postRepo := inmemdb.NewPostRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	hub := realtime.NewHub(logger)
	t.Cleanup(hub.Close)
	mediaDir := t.TempDir()
	schoolSvc := school.NewService(inmemdb.NewSchoolRepository(db))

	// set up server
	app := echoapi.NewServer(echoapi.Deps{
		Conf:           conf,
		Logger:         logger,
		Validate:       validate,
		Translator:     translator,
		Guard:          session.NewGuard(conf.AdminMails...),
		Hub:            hub,
		Uploader:       uploadsvc.NewDiskUploader(mediaDir, conf.Upload.PublicURL),
		UserSvc:        user.NewService(usrRepo, mailSvc, conf),
		PostSvc:        post.NewService(postRepo, hub),
		SchoolSvc:      schoolSvc,
		PodcastSvc:     podcast.NewService(inmemdb.NewPodcastRepository(db)),
		DisableReqLogs: true,
	})

	return &fixture{
		app:       app,
		conf:      conf,
		usrRepo:   usrRepo,
		postRepo:  postRepo,
		mailSvc:   mailSvc,
		hub:       hub,
		mediaDir:  mediaDir,
		schoolSvc: schoolSvc,
	}
}

type httpErr struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"error,omitempty"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func (f *fixture) run(t *testing.T, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		if tt.method == "" {
			tt.method = http.MethodGet
		}
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			f.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func (f *fixture) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	f.app.ServeHTTP(rec, req)
	return rec
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

// newMultipartRequest builds a form with fields and at most one file part.
func newMultipartRequest(
	t *testing.T,
	path, token string,
	fields map[string]string,
	fileField, filename, contentType string,
	content []byte,
) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("WriteField(): %v", err)
		}
	}
	if fileField != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+fileField+`"; filename="`+filename+`"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("CreatePart(): %v", err)
		}
		_, _ = part.Write(content)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("multipart.Close(): %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func (f *fixture) getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := echoapi.GenerateToken(echoapi.GetUserClaims(usr, f.conf), f.conf)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func itoa(i int) string { return strconv.Itoa(i) }

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func envelope(t *testing.T, msg string, data interface{}) []byte {
	return marchallObj(t, core.OK(msg, data))
}

func failure(t *testing.T, msg string, fields ...map[string]string) []byte {
	e := httpErr{Message: msg}
	if len(fields) > 0 {
		e.Fields = fields[0]
	}
	return marchallObj(t, e)
}

func jsonUnmarshal(rec *httptest.ResponseRecorder, dest interface{}) error {
	return json.Unmarshal(rec.Body.Bytes(), dest)
}

// decodeData unmarshals the `data` member of an envelope.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	env := struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decodeData(): %v; body %s", err, rec.Body.String())
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		t.Fatalf("decodeData(): %v; body %s", err, rec.Body.String())
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	if len(b1) == 0 && len(b2) == 0 {
		return true, nil
	}
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
