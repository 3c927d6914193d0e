package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caddy/internal/modules/aiusage"
	"caddy/internal/modules/auth"
	"caddy/internal/modules/course"
	"caddy/internal/modules/location"
	"caddy/internal/modules/profile"
	"caddy/internal/modules/recommend"
	"caddy/internal/service"
	"caddy/internal/shot"
	"caddy/internal/types"
	"caddy/internal/weather"
)

var nop = zerolog.Nop()

func init() {
	gin.SetMode(gin.TestMode)
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWriteServiceError_Mapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
		body string
	}{
		{fmt.Errorf("%w: bad", shot.ErrInvalidInput), http.StatusBadRequest, "invalid input: bad"},
		{location.ErrNoPoints, http.StatusNotFound, "no location points available"},
		{shot.ErrNoRecords, http.StatusNotFound, "no club records available"},
		{profile.ErrNotFound, http.StatusNotFound, "golfer profile not found"},
		{profile.ErrConflict, http.StatusConflict, "email already exists"},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized, "invalid email or password"},
		{fmt.Errorf("use: %w", aiusage.ErrInsufficientTokens), http.StatusTooManyRequests, "monthly caddie quota exhausted"},
		{weather.ErrUnavailable, http.StatusServiceUnavailable, "weather provider unavailable"},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			r := gin.New()
			r.GET("/", func(c *gin.Context) { writeServiceError(c, &nop, tt.err) })
			w := do(r, http.MethodGet, "/", nil)
			assert.Equal(t, tt.code, w.Code)
			var resp errorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.body, resp.Error)
		})
	}
}

func TestWriteServiceError_InvalidRecords(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		writeServiceError(c, &nop, &recommend.InvalidRecordsError{Records: []*shot.InvalidClubError{
			{Index: 2, Club: "3Wood", Field: "rollout_distance", Reason: "is missing"},
		}})
	})
	w := do(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{
		"error": "invalid club records",
		"invalid_clubs": [{"index": 2, "club_name": "3Wood", "field": "rollout_distance", "reason": "is missing"}]
	}`, w.Body.String())
}

type stubRecommend struct {
	golferReq  recommend.GolferRequest
	weatherReq recommend.WeatherRequest
	rec        *recommend.Recommendation
	weather    *recommend.WeatherResult
	err        error
}

func (s *stubRecommend) Simple(_ context.Context, req recommend.GolferRequest) (*recommend.Recommendation, error) {
	s.golferReq = req
	return s.rec, s.err
}

func (s *stubRecommend) Conditions(_ context.Context, req recommend.GolferRequest) (*recommend.Recommendation, error) {
	s.golferReq = req
	return s.rec, s.err
}

func (s *stubRecommend) Weather(_ context.Context, req recommend.WeatherRequest) (*recommend.WeatherResult, error) {
	s.weatherReq = req
	return s.weather, s.err
}

type stubShots struct {
	limit int
	id    int64
}

func (s *stubShots) TrackShot(_ context.Context, in profile.ShotInput) (*profile.Shot, error) {
	return &profile.Shot{ID: 1, GolferID: in.GolferID, Club: in.Club}, nil
}

func (s *stubShots) ShotHistory(_ context.Context, golferID int64, limit int) ([]profile.Shot, error) {
	s.id, s.limit = golferID, limit
	return []profile.Shot{}, nil
}

func shotRouter(rec *stubRecommend, shots *stubShots) *gin.Engine {
	h := NewShotHandler(rec, shots, &nop)
	r := gin.New()
	r.POST("/recommend", h.Recommend)
	r.POST("/recommend/weather", h.RecommendWeather)
	r.POST("/shots", h.Track)
	r.GET("/shots", h.History)
	return r
}

func TestShotHandler_Recommend(t *testing.T) {
	rec := &stubRecommend{rec: &recommend.Recommendation{Club: "7Iron", Carry: 150}}
	w := do(shotRouter(rec, &stubShots{}), http.MethodPost, "/recommend", `{"golfer_id": 3, "target_distance": 150, "wind_speed": 4}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"recommended_club":"7Iron"`)
	assert.Equal(t, int64(3), rec.golferReq.GolferID)
	assert.Equal(t, 150.0, *rec.golferReq.TargetDistance)
}

func TestShotHandler_RecommendBadJSON(t *testing.T) {
	w := do(shotRouter(&stubRecommend{}, &stubShots{}), http.MethodPost, "/recommend", `{"golfer_id":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShotHandler_WeatherFallbackIs200(t *testing.T) {
	rec := &stubRecommend{weather: &recommend.WeatherResult{
		Success:     false,
		Alternative: &recommend.Alternative{ClosestClub: "Driver", Suggestion: shot.Advisory("Driver")},
	}}
	body := `{
		"golfer_profile": {"avg_distances": {"Driver": 240, "7Iron": 150}, "dispersion": {"Driver": 20, "7Iron": 8}},
		"course_details": {"latitude": 36.5, "longitude": -121.9, "target_distance": 300}
	}`
	w := do(shotRouter(rec, &stubShots{}), http.MethodPost, "/recommend/weather", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
	assert.Contains(t, w.Body.String(), `"closest_club":"Driver"`)
	require.Len(t, rec.weatherReq.GolferProfile.Clubs, 2)
	assert.Equal(t, "Driver", rec.weatherReq.GolferProfile.Clubs[0].Name)
}

func TestShotHandler_WeatherRejectsNonNumericAverage(t *testing.T) {
	body := `{"golfer_profile": {"avg_distances": {"Driver": "far"}}, "course_details": {"target_distance": 300}}`
	w := do(shotRouter(&stubRecommend{}, &stubShots{}), http.MethodPost, "/recommend/weather", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShotHandler_History(t *testing.T) {
	shots := &stubShots{}
	r := shotRouter(&stubRecommend{}, shots)

	w := do(r, http.MethodGet, "/shots?golfer_id=5&limit=20", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"shots": []}`, w.Body.String())
	assert.Equal(t, int64(5), shots.id)
	assert.Equal(t, 20, shots.limit)

	w = do(r, http.MethodGet, "/shots?golfer_id=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShotHandler_Track(t *testing.T) {
	w := do(shotRouter(&stubRecommend{}, &stubShots{}), http.MethodPost, "/shots",
		`{"golfer_id": 5, "club_name": "PW", "distance": 110, "accuracy": 3}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Shot tracked successfully")
}

type stubLocations struct {
	match location.Match
	err   error
	q     types.Point
}

func (s *stubLocations) Closest(_ context.Context, q types.Point, _ string) (location.Match, error) {
	s.q = q
	return s.match, s.err
}

func (s *stubLocations) Nearby(context.Context, types.Point, float64) ([]location.Match, error) {
	return []location.Match{s.match}, s.err
}

func (s *stubLocations) Add(_ context.Context, p location.Point) (*location.Point, error) {
	p.ID = 11
	return &p, s.err
}

func locationRouter(svc *stubLocations) *gin.Engine {
	h := NewLocationHandler(svc, &nop)
	r := gin.New()
	r.GET("/closest", h.Closest)
	r.GET("/nearby", h.Nearby)
	r.POST("/locations", h.Add)
	return r
}

func TestLocationHandler_Closest(t *testing.T) {
	svc := &stubLocations{match: location.Match{
		Point:          location.Point{ID: 1, Name: "Origin", Category: "pin"},
		DistanceMeters: 0,
	}}
	w := do(locationRouter(svc), http.MethodGet, "/closest?latitude=0&longitude=0", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Origin"`)
	assert.Contains(t, w.Body.String(), `"distance_meters":0`)
}

func TestLocationHandler_ClosestMissingQuery(t *testing.T) {
	w := do(locationRouter(&stubLocations{}), http.MethodGet, "/closest?latitude=1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"longitude is required"}`, w.Body.String())
}

func TestLocationHandler_NoPoints(t *testing.T) {
	w := do(locationRouter(&stubLocations{err: location.ErrNoPoints}), http.MethodGet, "/closest?latitude=1&longitude=2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLocationHandler_Nearby(t *testing.T) {
	svc := &stubLocations{match: location.Match{Point: location.Point{ID: 2, Name: "Tee 1"}, DistanceMeters: 12.5}}
	w := do(locationRouter(svc), http.MethodGet, "/nearby?latitude=1&longitude=2&radius_m=100", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"distance_meters":12.5`)

	w = do(locationRouter(svc), http.MethodGet, "/nearby?latitude=1&longitude=2", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLocationHandler_Add(t *testing.T) {
	w := do(locationRouter(&stubLocations{}), http.MethodPost, "/locations",
		`{"name": "Hole 7 pin", "category": "pin", "latitude": 36.5, "longitude": -121.9}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":11`)
	assert.Contains(t, w.Body.String(), `"latitude":36.5`)
}

type stubCourses struct {
	imported string
}

func (s *stubCourses) Create(_ context.Context, in course.CreateInput) (*course.Course, error) {
	return &course.Course{ID: 1, Name: in.Name}, nil
}

func (s *stubCourses) Get(_ context.Context, id int64) (*course.Course, error) {
	if id != 1 {
		return nil, course.ErrNotFound
	}
	return &course.Course{ID: 1, Name: "Pebble Beach Golf Links"}, nil
}

func (s *stubCourses) Search(context.Context, string) ([]course.Course, error) {
	return []course.Course{}, nil
}

func (s *stubCourses) ImportKML(_ context.Context, r io.Reader) (*course.ImportResult, error) {
	b, _ := io.ReadAll(r)
	s.imported = string(b)
	return &course.ImportResult{Courses: []course.Course{}, Points: 1}, nil
}

func courseRouter(svc *stubCourses) *gin.Engine {
	h := NewCourseHandler(svc, &nop)
	r := gin.New()
	r.GET("/courses", h.List)
	r.GET("/courses/:id", h.Get)
	r.POST("/courses/import", h.Import)
	return r
}

func TestCourseHandler_Get(t *testing.T) {
	r := courseRouter(&stubCourses{})
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/courses/1", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/courses/2", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/courses/x", nil).Code)
}

func TestCourseHandler_Import(t *testing.T) {
	svc := &stubCourses{}
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("kml_file", "course.kml")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("<kml></kml>"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/courses/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	courseRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "KML file uploaded successfully")
	assert.Equal(t, "<kml></kml>", svc.imported)
}

func TestCourseHandler_ImportWithoutFile(t *testing.T) {
	w := do(courseRouter(&stubCourses{}), http.MethodPost, "/courses/import", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"No file provided"}`, w.Body.String())
}

type stubCaddie struct {
	req service.CaddieRequest
	err error
}

func (s *stubCaddie) Closest(_ context.Context, req service.CaddieRequest) (*service.CaddieReply, error) {
	s.req = req
	if s.err != nil {
		return nil, s.err
	}
	return &service.CaddieReply{
		Match: location.Match{Point: location.Point{Name: "Pin 1"}, DistanceMeters: 80},
		Tip:   "Knock down a 9 iron.", Generated: true, Provider: "stub",
	}, nil
}

type stubQuota struct {
	uid string
	err error
}

func (s *stubQuota) Remaining(_ context.Context, uid string) (aiusage.Usage, error) {
	s.uid = uid
	return aiusage.Usage{UID: uid, TokensRemaining: 37, Month: "2026-10"}, s.err
}

func TestCaddieHandler(t *testing.T) {
	svc := &stubCaddie{}
	h := NewCaddieHandler(svc, &stubQuota{}, &nop)
	r := gin.New()
	r.POST("/caddie", func(c *gin.Context) { c.Set("auth.uid", "u9"); h.Closest(c) })

	w := do(r, http.MethodPost, "/caddie", `{"latitude": 1, "longitude": 2, "club": "9Iron"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tip":"Knock down a 9 iron."`)
	assert.Equal(t, "u9", svc.req.UID)
	assert.Equal(t, types.Point{Lat: 1, Lng: 2}, svc.req.Position)

	svc.err = aiusage.ErrInsufficientTokens
	w = do(r, http.MethodPost, "/caddie", `{"latitude": 1, "longitude": 2}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestCaddieHandler_Quota(t *testing.T) {
	quota := &stubQuota{}
	h := NewCaddieHandler(nil, quota, &nop)
	r := gin.New()
	r.GET("/quota", func(c *gin.Context) { c.Set("auth.uid", "u9"); h.Quota(c) })

	w := do(r, http.MethodGet, "/quota", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"uid":"u9","tokens_remaining":37,"month":"2026-10"}`, w.Body.String())
	assert.Equal(t, "u9", quota.uid)

	quota.err = errors.New("conn reset")
	w = do(r, http.MethodGet, "/quota", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// stubAuth keeps registered users in memory, keyed by email.
type stubAuth struct {
	passwords map[string]string
}

func (s *stubAuth) Register(_ context.Context, in auth.RegisterInput) (*auth.User, error) {
	if _, ok := s.passwords[in.Email]; ok {
		return nil, fmt.Errorf("register %s: %w", in.Email, auth.ErrEmailTaken)
	}
	s.passwords[in.Email] = in.Password
	return &auth.User{ID: int64(len(s.passwords)), Email: in.Email, Name: in.Name}, nil
}

func (s *stubAuth) Login(_ context.Context, in auth.LoginInput) (*auth.Session, error) {
	if pw, ok := s.passwords[in.Email]; !ok || pw != in.Password {
		return nil, auth.ErrInvalidCredentials
	}
	return &auth.Session{Token: "tok", TokenType: "Bearer", User: auth.User{Email: in.Email}}, nil
}

func TestAuthHandler_RegisterAndLogin(t *testing.T) {
	h := NewAuthHandler(&stubAuth{passwords: map[string]string{}}, &nop)
	r := gin.New()
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)

	reg := map[string]string{"email": "ana@example.com", "password": "fairway-123", "name": "Ana"}
	w := do(r, http.MethodPost, "/register", reg)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"email":"ana@example.com"`)
	assert.NotContains(t, w.Body.String(), "fairway-123")

	w = do(r, http.MethodPost, "/register", reg)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "email already registered")

	w = do(r, http.MethodPost, "/login", map[string]string{"email": "ana@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"invalid email or password"}`, w.Body.String())

	w = do(r, http.MethodPost, "/login", map[string]string{"email": "ana@example.com", "password": "fairway-123"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"access_token":"tok"`)
}

func TestAuthHandler_BadJSON(t *testing.T) {
	h := NewAuthHandler(&stubAuth{passwords: map[string]string{}}, &nop)
	r := gin.New()
	r.POST("/register", h.Register)

	w := do(r, http.MethodPost, "/register", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// stubProfiles rejects a second profile for the same email.
type stubProfiles struct {
	emails map[string]int64
}

func (s *stubProfiles) Create(_ context.Context, in profile.CreateInput) (*profile.Golfer, error) {
	if _, ok := s.emails[in.Email]; ok {
		return nil, profile.ErrConflict
	}
	id := int64(len(s.emails) + 1)
	s.emails[in.Email] = id
	return &profile.Golfer{ID: id, Name: in.Name, Email: in.Email}, nil
}

func (s *stubProfiles) UpdateClubs(_ context.Context, in profile.UpdateInput) (int64, error) {
	id, ok := s.emails[in.Email]
	if !ok {
		return 0, profile.ErrNotFound
	}
	return id, nil
}

func (s *stubProfiles) GetByEmail(context.Context, string) (*profile.Profile, error) {
	return nil, profile.ErrNotFound
}

func (s *stubProfiles) AllClubs(context.Context) ([]profile.Club, error) {
	return []profile.Club{}, nil
}

func TestProfileHandler_Create(t *testing.T) {
	h := NewProfileHandler(&stubProfiles{emails: map[string]int64{}}, &nop)
	r := gin.New()
	r.POST("/profiles", h.Create)
	r.PUT("/profiles", h.Update)

	body := map[string]any{
		"name": "Ana", "email": "ana@example.com",
		"clubs": []map[string]any{{"club_name": "7Iron", "carry_distance": 150}},
	}
	w := do(r, http.MethodPost, "/profiles", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.JSONEq(t, `{"message":"Profile created successfully","golfer_id":1}`, w.Body.String())

	w = do(r, http.MethodPost, "/profiles", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"email already exists"}`, w.Body.String())

	w = do(r, http.MethodPut, "/profiles", map[string]any{"email": "bo@example.com", "clubs": []any{}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthHandler(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("dial tcp: refused") }

	r := gin.New()
	r.GET("/up", NewHealthHandler(map[string]Check{"db": ok, "redis": ok}, &nop).Health)
	r.GET("/down", NewHealthHandler(map[string]Check{"db": ok, "redis": down}, &nop).Health)

	w := do(r, http.MethodGet, "/up", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"db":"ok","redis":"ok"}}`, w.Body.String())

	w = do(r, http.MethodGet, "/down", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"degraded","checks":{"db":"ok","redis":"down"}}`, w.Body.String())
}
