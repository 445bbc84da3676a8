package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/matdori/matdori-backend/config"
	"github.com/matdori/matdori-backend/internal/app/model"
	"github.com/matdori/matdori-backend/internal/app/repository"
	"github.com/matdori/matdori-backend/internal/app/service"
	"github.com/matdori/matdori-backend/internal/db"
	"github.com/matdori/matdori-backend/internal/middleware"
	"github.com/matdori/matdori-backend/internal/session"
	"github.com/matdori/matdori-backend/internal/storage"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testCookie = "sessionId"

type stubMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func (m *stubMailer) SendVerificationCode(_ context.Context, email, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[email] = code
	return nil
}

func (m *stubMailer) code(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[email]
}

type stubStorage struct {
	mu      sync.Mutex
	seq     int
	reject  map[string]bool
	deleted []string
}

func (s *stubStorage) Upload(_ context.Context, a storage.Attachment) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reject[a.Filename] {
		return "", fmt.Errorf("%w: rejected", storage.ErrStorageFailure)
	}
	s.seq++
	return fmt.Sprintf("https://bucket.test/jokbos/%d-%s", s.seq, a.Filename), nil
}

func (s *stubStorage) Delete(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, url)
	return nil
}

type testEnv struct {
	router   *gin.Engine
	db       *gorm.DB
	registry *session.Registry
	mailer   *stubMailer
	files    *stubStorage
}

func setupControllerTest(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	storeRepo := repository.NewStoreRepository(testDB)
	jokboRepo := repository.NewJokboRepository(testDB)

	registry := session.NewRegistry(session.NewMemoryStore(), time.Hour)
	mailer := &stubMailer{codes: map[string]string{}}
	files := &stubStorage{reject: map[string]bool{}}

	verificationService := service.NewVerificationService(userRepo, mailer, config.VerificationConfig{
		CodeTTL:     5 * time.Minute,
		MaxAttempts: 5,
	})
	authService := service.NewAuthService(userRepo, registry, verificationService, true)
	jokboService := service.NewJokboService(jokboRepo, storeRepo, repository.NewOrphanRepository(testDB), files,
		service.JokboServiceConfig{UploadWorkers: 2, UploadPolicy: config.UploadPolicyLenient})
	commentService := service.NewCommentService(repository.NewCommentRepository(testDB), jokboRepo)
	favoriteService := service.NewFavoriteService(repository.NewFavoriteRepository(testDB), storeRepo)

	sessions := middleware.NewSessionMiddleware(registry, testCookie)
	authCtrl := NewAuthController(authService, sessions, SessionCookie{TTL: time.Hour})
	verificationCtrl := NewVerificationController(verificationService)
	jokboCtrl := NewJokboController(jokboService, 1<<20)
	commentCtrl := NewCommentController(commentService, sessions)
	favoriteCtrl := NewFavoriteController(favoriteService)

	r := gin.New()
	r.Use(middleware.LoggingMiddleware())
	r.POST("/sign-up", authCtrl.SignUp)
	r.POST("/login", authCtrl.Login)
	r.POST("/logout", authCtrl.Logout)
	r.POST("/email-authentication", verificationCtrl.IssueCode)
	r.POST("/authentication-number", verificationCtrl.CheckCode)
	r.GET("/jokbos/:jokboIndex", jokboCtrl.GetJokbo)
	r.GET("/jokbo-count", jokboCtrl.CountJokbos)
	r.POST("/jokbos/:jokboIndex/comment", commentCtrl.CreateComment)
	r.GET("/jokbos/:jokboIndex/comments", commentCtrl.ListComments)

	users := r.Group("/users/:userIndex", sessions.RequireUser("userIndex"))
	users.PUT("/password", authCtrl.UpdatePassword)
	users.POST("/jokbo", jokboCtrl.CreateJokbo)
	users.DELETE("/jokbos/:jokboIndex", jokboCtrl.DeleteJokbo)
	users.POST("/favorite-store", favoriteCtrl.AddFavoriteStore)
	users.GET("/favorite-stores", favoriteCtrl.ListFavoriteStores)
	users.DELETE("/favorite-stores/:favoriteStoreIndex", favoriteCtrl.RemoveFavoriteStore)

	return &testEnv{router: r, db: testDB, registry: registry, mailer: mailer, files: files}
}

// loggedInUser creates a verified user and a live session for it.
func (e *testEnv) loggedInUser(t *testing.T, email string) (*model.User, string) {
	user := &model.User{Email: email, PasswordHash: "unused", Nickname: "맛도리" + email[:1], EmailVerified: true}
	require.NoError(t, e.db.Create(user).Error)
	sess, err := e.registry.Issue(context.Background(), user.ID)
	require.NoError(t, err)
	return user, sess.Token
}

func (e *testEnv) store(t *testing.T, name string) *model.Store {
	store := &model.Store{Name: name, Category: "한식", ImgURL: "https://img.test/" + name}
	require.NoError(t, e.db.Create(store).Error)
	return store
}

func (e *testEnv) do(method, path string, body io.Reader, contentType, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doJSON(method, path string, payload interface{}, token string) *httptest.ResponseRecorder {
	var body io.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewReader(b)
	}
	return e.do(method, path, body, "application/json", token)
}

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	env := decode(t, w)
	require.True(t, env.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
}

type multipartFile struct {
	name string
	data []byte
}

func multipartBody(t *testing.T, fields map[string]string, files []multipartFile) (io.Reader, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		part, err := mw.CreateFormFile("images", f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}
