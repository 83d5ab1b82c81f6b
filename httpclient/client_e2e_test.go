// httpclient/client_e2e_test.go
package httpclient_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/deploymenttheory/go-api-rest-client/authenticationhandler"
	"github.com/deploymenttheory/go-api-rest-client/httpclient"
	"github.com/deploymenttheory/go-api-rest-client/logger"
	"github.com/deploymenttheory/go-api-rest-client/response"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUsername     = "admin"
	testPassword     = "password123"
	testClientID     = "7f3c2a5e-9b1d-4e8f-a6c4-2d5e8f1a3b7c"
	testClientSecret = "ValidSecret12345678"
)

type Person struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type PeopleFilter struct {
	Name string `json:"name"`
}

// PeopleClient is a typed client for the people API.
type PeopleClient struct {
	*httpclient.Client
}

func (p PeopleClient) ListPeople(ctx context.Context, filter PeopleFilter) ([]Person, error) {
	return httpclient.Get[[]Person](ctx, p.Client, "/people", func(r *httpclient.Request) {
		r.AddQueryString(filter)
	})
}

func (p PeopleClient) GetPerson(ctx context.Context, id int) (Person, error) {
	return httpclient.Get[Person](ctx, p.Client, "/people/{id}", func(r *httpclient.Request) {
		r.AddURLSegment("id", id)
	})
}

func (p PeopleClient) GetPersonAsync(ctx context.Context, id int) *httpclient.Future[Person] {
	return httpclient.GetAsync[Person](ctx, p.Client, "/people/{id}", func(r *httpclient.Request) {
		r.AddURLSegment("id", id)
	})
}

func (p PeopleClient) CreatePerson(ctx context.Context, person Person) (Person, error) {
	return httpclient.Post[Person](ctx, p.Client, "/people", person)
}

func (p PeopleClient) UpdatePerson(ctx context.Context, person Person) (Person, error) {
	return httpclient.Put[Person](ctx, p.Client, "/people/{id}", person, func(r *httpclient.Request) {
		r.AddURLSegment("id", person.ID)
	})
}

func (p PeopleClient) DeletePerson(ctx context.Context, id int) error {
	_, err := httpclient.Delete[string](ctx, p.Client, "/people/{id}", nil, func(r *httpclient.Request) {
		r.AddURLSegment("id", id)
	})
	return err
}

// peopleServer is an in-memory people API protected by bearer tokens.
type peopleServer struct {
	tokenCalls  atomic.Int32
	tokens      sync.Map
	mu          sync.Mutex
	people      map[int]Person
	nextID      int
	methodNames []string
}

func newPeopleServer(t *testing.T) (*peopleServer, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &peopleServer{people: map[int]Person{1: {ID: 1, Name: "Ann"}, 2: {ID: 2, Name: "Bob"}}, nextID: 3}
	router := gin.New()
	router.POST(authenticationhandler.DefaultBearerTokenPath, gin.BasicAuth(gin.Accounts{testUsername: testPassword}), s.issueToken)
	router.POST(authenticationhandler.DefaultOAuthTokenPath, s.issueOAuthToken)

	people := router.Group("/people", s.requireBearer)
	people.GET("", s.list)
	people.GET("/:id", s.get)
	people.POST("", s.create)
	people.PUT("/:id", s.update)
	people.DELETE("/:id", s.delete)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return s, server
}

func (s *peopleServer) newToken(subject string) (string, error) {
	n := s.tokenCalls.Add(1)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"jti": strconv.Itoa(int(n)),
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("people-api-secret"))
	if err == nil {
		s.tokens.Store(token, subject)
	}
	return token, err
}

func (s *peopleServer) issueToken(c *gin.Context) {
	token, err := s.newToken(c.MustGet(gin.AuthUserKey).(string))
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (s *peopleServer) issueOAuthToken(c *gin.Context) {
	if c.PostForm("grant_type") != "client_credentials" ||
		c.PostForm("client_id") != testClientID ||
		c.PostForm("client_secret") != testClientSecret {
		c.JSON(http.StatusOK, gin.H{"error": "invalid_client", "error_description": "Client authentication failed"})
		return
	}
	token, err := s.newToken(c.PostForm("client_id"))
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer", "expires_in": 3600})
}

func (s *peopleServer) requireBearer(c *gin.Context) {
	token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if _, ok := s.tokens.Load(token); !found || !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"errors": []gin.H{{"message": "Invalid bearer token"}}})
		return
	}
	s.mu.Lock()
	s.methodNames = append(s.methodNames, c.GetHeader(httpclient.APIMethodNameHeader))
	s.mu.Unlock()
	c.Next()
}

func (s *peopleServer) list(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := []Person{}
	for id := 1; id < s.nextID; id++ {
		if p, ok := s.people[id]; ok && strings.Contains(p.Name, c.Query("name")) {
			result = append(result, p)
		}
	}
	c.JSON(http.StatusOK, result)
}

func (s *peopleServer) lookup(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err == nil {
		_, ok := s.people[id]
		if ok {
			return id, true
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"errors": []gin.H{{"message": fmt.Sprintf("Person %s not found", c.Param("id"))}}})
	return 0, false
}

func (s *peopleServer) get(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.lookup(c); ok {
		c.JSON(http.StatusOK, s.people[id])
	}
}

func (s *peopleServer) create(c *gin.Context) {
	var p Person
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{{"message": err.Error()}}})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextID
	s.nextID++
	s.people[p.ID] = p
	c.JSON(http.StatusCreated, p)
}

func (s *peopleServer) update(c *gin.Context) {
	var p Person
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{{"message": err.Error()}}})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.lookup(c); ok {
		p.ID = id
		s.people[id] = p
		c.JSON(http.StatusOK, p)
	}
}

func (s *peopleServer) delete(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.lookup(c); ok {
		delete(s.people, id)
		c.Status(http.StatusNoContent)
	}
}

func (s *peopleServer) seenMethodNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.methodNames...)
}

func newPeopleClient(t *testing.T, baseURL string) PeopleClient {
	t.Helper()
	client, err := httpclient.BuildClient(httpclient.ClientConfig{
		BaseURL:           baseURL,
		HideSensitiveData: true,
	}, true, httpclient.WithLogger(logger.NewNopLogger()), httpclient.WithTracer(t.Logf))
	require.NoError(t, err)
	return PeopleClient{client}
}

func TestPeopleAPIWithBearerToken(t *testing.T) {
	server, ts := newPeopleServer(t)
	api := newPeopleClient(t, ts.URL)
	ctx := context.Background()

	auth, err := authenticationhandler.NewTokenAuthenticator(api.Client, authenticationhandler.AuthConfig{
		Username: testUsername,
		Password: testPassword,
	})
	require.NoError(t, err)
	assert.Equal(t, authenticationhandler.NotAuthenticated, auth.State())

	people, err := api.ListPeople(ctx, PeopleFilter{})
	require.NoError(t, err)
	assert.Equal(t, []Person{{ID: 1, Name: "Ann"}, {ID: 2, Name: "Bob"}}, people)
	assert.Equal(t, authenticationhandler.Authenticated, auth.State())

	token, ok := auth.Token()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, time.Minute)

	created, err := api.CreatePerson(ctx, Person{Name: "Cid"})
	require.NoError(t, err)
	assert.Equal(t, Person{ID: 3, Name: "Cid"}, created)

	updated, err := api.UpdatePerson(ctx, Person{ID: 3, Name: "Cyd"})
	require.NoError(t, err)
	assert.Equal(t, "Cyd", updated.Name)

	futures := make([]*httpclient.Future[Person], 3)
	for i := range futures {
		futures[i] = api.GetPersonAsync(ctx, i+1)
	}
	for i, f := range futures {
		p, err := f.Await(ctx)
		require.NoError(t, err)
		assert.Equal(t, i+1, p.ID)
	}

	require.NoError(t, api.DeletePerson(ctx, 3))
	_, err = api.GetPerson(ctx, 3)
	var apiErr *response.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Person 3 not found", apiErr.Message)

	filtered, err := api.ListPeople(ctx, PeopleFilter{Name: "A"})
	require.NoError(t, err)
	assert.Equal(t, []Person{{ID: 1, Name: "Ann"}}, filtered)

	assert.Equal(t, int32(1), server.tokenCalls.Load())
	assert.Equal(t, []string{"ListPeople", "CreatePerson", "UpdatePerson"}, server.seenMethodNames()[:3])
	assert.Contains(t, server.seenMethodNames(), "GetPersonAsync")
	assert.Contains(t, server.seenMethodNames(), "DeletePerson")

	api.Logout()
	assert.Equal(t, authenticationhandler.NotAuthenticated, auth.State())
	_, err = api.GetPerson(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), server.tokenCalls.Load())
}

func TestPeopleAPIConcurrentCallsShareOneToken(t *testing.T) {
	server, ts := newPeopleServer(t)
	api := newPeopleClient(t, ts.URL)
	_, err := authenticationhandler.NewTokenAuthenticator(api.Client, authenticationhandler.AuthConfig{
		Username: testUsername,
		Password: testPassword,
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = api.GetPerson(context.Background(), 1)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), server.tokenCalls.Load())
}

func TestPeopleAPIWrongPassword(t *testing.T) {
	server, ts := newPeopleServer(t)
	api := newPeopleClient(t, ts.URL)
	auth, err := authenticationhandler.NewTokenAuthenticator(api.Client, authenticationhandler.AuthConfig{
		Username: testUsername,
		Password: "not-the-password",
	})
	require.NoError(t, err)

	_, err = api.ListPeople(context.Background(), PeopleFilter{})
	require.Error(t, err)
	assert.Equal(t, "authentication failed: Unauthorized", err.Error())
	assert.Equal(t, http.StatusUnauthorized, response.StatusCodeOf(err))
	assert.Equal(t, authenticationhandler.NotAuthenticated, auth.State())
	assert.Equal(t, int32(0), server.tokenCalls.Load())
	assert.Empty(t, server.seenMethodNames())
}

func TestPeopleAPIWithOAuth(t *testing.T) {
	server, ts := newPeopleServer(t)
	api := newPeopleClient(t, ts.URL)
	ctx := context.Background()

	auth, err := authenticationhandler.NewTokenAuthenticator(api.Client, authenticationhandler.AuthConfig{
		ClientID:     testClientID,
		ClientSecret: testClientSecret,
		Scope:        "people.read",
	})
	require.NoError(t, err)

	p, err := api.GetPerson(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Bob", p.Name)
	assert.Equal(t, "Bearer", auth.Headers()["Authorization"][:6])
	assert.Equal(t, int32(1), server.tokenCalls.Load())
}

func TestPeopleAPIOAuthErrorInSuccessfulResponse(t *testing.T) {
	server, ts := newPeopleServer(t)
	api := newPeopleClient(t, ts.URL)

	_, err := authenticationhandler.NewTokenAuthenticator(api.Client, authenticationhandler.AuthConfig{
		ClientID:     testClientID,
		ClientSecret: "WrongSecret12345678",
	})
	require.NoError(t, err)

	_, err = api.GetPerson(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, "authentication failed: Client authentication failed", err.Error())

	var apiErr *response.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusOK, apiErr.StatusCode)
	assert.Equal(t, int32(0), server.tokenCalls.Load())
}

func TestPeopleAPIWithoutAuthenticator(t *testing.T) {
	_, ts := newPeopleServer(t)
	api := newPeopleClient(t, ts.URL)

	_, err := api.GetPerson(context.Background(), 1)
	var apiErr *response.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid bearer token", apiErr.Message)
}
