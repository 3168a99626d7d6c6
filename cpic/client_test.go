package cpic

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giygas/cpic-brick/table"
)

func newFakeAPI(t *testing.T) *httptest.Server {
	t.Helper()

	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		r.Get("/gene", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"Gene Symbol": "CYP2D6", "chr": "22"}]`))
		})
		r.Get("/drug", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})
		r.Get("/guideline", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"message": "not a list"}`))
		})
		r.Get("/pair", func(w http.ResponseWriter, r *http.Request) {
			// "Pharmacogénomique" encoded as ISO-8859-1
			_, _ = w.Write([]byte("[{\"name\": \"Pharmacog\xe9nomique\"}]"))
		})
		r.Get("/allele", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[{"ua": ` + strconv.Quote(r.Header.Get("User-Agent")) + `}]`))
		})
		r.Get("/diplotype", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[{"broken": `))
		})
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func TestFetchDecodesRecords(t *testing.T) {
	server := newFakeAPI(t)
	client := NewClient(server.URL+"/v1/", WithRateLimit(0))

	records, err := client.Fetch(context.Background(), Endpoint{Name: "gene", Path: "gene"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, table.Record{
		{Key: "Gene Symbol", Value: table.String("CYP2D6")},
		{Key: "chr", Value: table.String("22")},
	}, records[0])
}

func TestFetchHTTPError(t *testing.T) {
	server := newFakeAPI(t)
	client := NewClient(server.URL + "/v1")

	_, err := client.Fetch(context.Background(), Endpoint{Name: "drug", Path: "drug"})
	require.Error(t, err)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	assert.Equal(t, server.URL+"/v1/drug", httpErr.URL)
}

func TestFetchNotFound(t *testing.T) {
	server := newFakeAPI(t)
	client := NewClient(server.URL + "/v1")

	_, err := client.Fetch(context.Background(), Endpoint{Name: "nope", Path: "nope"})

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
}

func TestFetchRejectsNonArray(t *testing.T) {
	server := newFakeAPI(t)
	client := NewClient(server.URL + "/v1")

	_, err := client.Fetch(context.Background(), Endpoint{Name: "guideline", Path: "guideline"})
	assert.ErrorIs(t, err, table.ErrNotArray)
}

func TestFetchDecodesLatin1(t *testing.T) {
	server := newFakeAPI(t)
	client := NewClient(server.URL + "/v1")

	records, err := client.Fetch(context.Background(), Endpoint{Name: "pair", Path: "pair"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	value, ok := records[0].Get("name")
	require.True(t, ok)
	assert.Equal(t, "Pharmacogénomique", value.Text)
}

func TestFetchSendsUserAgent(t *testing.T) {
	server := newFakeAPI(t)
	client := NewClient(server.URL+"/v1", WithUserAgent("brick-test/0.1"))

	records, err := client.Fetch(context.Background(), Endpoint{Name: "allele", Path: "allele"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	value, _ := records[0].Get("ua")
	assert.Equal(t, "brick-test/0.1", value.Text)
}

func TestFetchRejectsInvalidJSON(t *testing.T) {
	server := newFakeAPI(t)
	client := NewClient(server.URL + "/v1")

	_, err := client.Fetch(context.Background(), Endpoint{Name: "diplotype", Path: "diplotype"})
	assert.ErrorIs(t, err, table.ErrInvalidJSON)
}

func TestFetchTransportError(t *testing.T) {
	server := newFakeAPI(t)
	url := server.URL
	server.Close()

	client := NewClient(url+"/v1", WithTimeout(2*time.Second))
	_, err := client.Fetch(context.Background(), Endpoint{Name: "gene", Path: "gene"})
	require.Error(t, err)

	var httpErr *HTTPError
	assert.False(t, errors.As(err, &httpErr))
}

func TestFetchHonoursContext(t *testing.T) {
	server := newFakeAPI(t)
	client := NewClient(server.URL + "/v1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Fetch(ctx, Endpoint{Name: "gene", Path: "gene"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRateLimitSpacesRequests(t *testing.T) {
	server := newFakeAPI(t)
	client := NewClient(server.URL+"/v1", WithRateLimit(20))
	ep := Endpoint{Name: "gene", Path: "gene"}

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := client.Fetch(context.Background(), ep)
		require.NoError(t, err)
	}

	// the first token is available immediately, the next two take 50ms each
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestEndpoints(t *testing.T) {
	names := make([]string, len(Endpoints))
	for i, ep := range Endpoints {
		names[i] = ep.Name
		assert.Equal(t, ep.Name, ep.Path)
	}
	assert.Equal(t, []string{"gene", "allele", "drug", "guideline", "recommendation", "diplotype", "pair"}, names)

	ep, ok := EndpointByName("pair")
	assert.True(t, ok)
	assert.Equal(t, "pair", ep.Path)

	_, ok = EndpointByName("variant")
	assert.False(t, ok)
}
