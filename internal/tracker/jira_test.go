package tracker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/boardcfg/internal/models"
)

func newJiraTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rest/api/2/project/DEMO", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "me@example.com" || pass != "token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"key":"DEMO","issueTypes":[
			{"id":"1","name":"Story","subtask":false},
			{"id":"2","name":"Sub-task","subtask":true,"description":"child work"}]}`))
	})
	mux.HandleFunc("GET /rest/api/2/issuetype", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"9","name":"Epic","subtask":false}]`))
	})
	mux.HandleFunc("GET /rest/api/2/project/DEMO/statuses", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"name":"Story","statuses":[
			{"name":"К выполнению","untranslatedName":"To Do","statusCategory":{"key":"new"}},
			{"name":"In Progress","untranslatedName":"In Progress","statusCategory":{"key":"indeterminate"}},
			{"name":"Done","untranslatedName":"Done","statusCategory":{"key":"done"}}]}]`))
	})
	mux.HandleFunc("GET /rest/api/2/issueLinkType", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"issueLinkTypes":[{"id":"10000","name":"Blocks","inward":"is blocked by","outward":"blocks"}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestJiraClient_ListIssueTypes(t *testing.T) {
	srv := newJiraTestServer(t)
	c := NewJiraClient(JiraConfig{BaseURL: srv.URL + "/", Email: "me@example.com", APIToken: "token", ProjectKey: "DEMO"}, nil)

	types, err := c.ListIssueTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 2)
	assert.Equal(t, models.TrackerIssueType{ID: "2", Name: "Sub-task", Subtask: true, Description: "child work"}, types[1])
}

func TestJiraClient_ListIssueTypes_WithoutProject(t *testing.T) {
	srv := newJiraTestServer(t)
	c := NewJiraClient(JiraConfig{BaseURL: srv.URL}, srv.Client())

	types, err := c.ListIssueTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, "Epic", types[0].Name)
}

func TestJiraClient_ListStatusesByIssueType(t *testing.T) {
	srv := newJiraTestServer(t)
	c := NewJiraClient(JiraConfig{BaseURL: srv.URL, ProjectKey: "DEMO"}, nil)

	groups, err := c.ListStatusesByIssueType(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Story", groups[0].IssueTypeName)
	require.Len(t, groups[0].Statuses, 3)
	assert.Equal(t, models.TrackerStatus{Name: "К выполнению", UntranslatedName: "To Do", Category: models.TrackerCategoryNew}, groups[0].Statuses[0])
	assert.Equal(t, models.TrackerCategoryIndeterminate, groups[0].Statuses[1].Category)
	assert.Equal(t, models.TrackerCategoryDone, groups[0].Statuses[2].Category)
}

func TestJiraClient_ListStatusesRequiresProject(t *testing.T) {
	c := NewJiraClient(JiraConfig{BaseURL: "http://unused"}, nil)
	_, err := c.ListStatusesByIssueType(context.Background())
	assert.ErrorIs(t, err, ErrProjectKeyRequired)
}

func TestJiraClient_ListLinkTypes(t *testing.T) {
	srv := newJiraTestServer(t)
	c := NewJiraClient(JiraConfig{BaseURL: srv.URL}, nil)

	links, err := c.ListLinkTypes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.TrackerLinkType{{ID: "10000", Name: "Blocks", Inward: "is blocked by", Outward: "blocks"}}, links)
}

func TestJiraClient_HTTPError(t *testing.T) {
	srv := newJiraTestServer(t)
	c := NewJiraClient(JiraConfig{BaseURL: srv.URL, Email: "me@example.com", APIToken: "wrong", ProjectKey: "DEMO"}, nil)

	_, err := c.ListIssueTypes(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestParseCategory(t *testing.T) {
	assert.Equal(t, models.TrackerCategoryNew, ParseCategory("new"))
	assert.Equal(t, models.TrackerCategoryIndeterminate, ParseCategory("indeterminate"))
	assert.Equal(t, models.TrackerCategoryDone, ParseCategory("done"))
	assert.Equal(t, models.TrackerCategoryUndefined, ParseCategory("undefined"))
	assert.Equal(t, models.TrackerCategoryUndefined, ParseCategory(""))
}
