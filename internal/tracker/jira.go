package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/joescharf/boardcfg/internal/models"
)

// ErrProjectKeyRequired is returned when per-issue-type statuses are requested
// without a project key.
var ErrProjectKeyRequired = errors.New("jira project key is required to list statuses")

// JiraConfig holds connection settings for a Jira instance.
type JiraConfig struct {
	BaseURL    string
	Email      string
	APIToken   string
	ProjectKey string
}

// JiraClient reads taxonomy metadata from the Jira REST API (v2).
type JiraClient struct {
	cfg    JiraConfig
	client *http.Client
}

// NewJiraClient creates a Jira client. A nil httpClient gets a default with a timeout.
func NewJiraClient(cfg JiraConfig, httpClient *http.Client) *JiraClient {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &JiraClient{cfg: cfg, client: httpClient}
}

type jiraIssueType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Subtask     bool   `json:"subtask"`
	Description string `json:"description"`
}

type jiraStatus struct {
	Name             string `json:"name"`
	UntranslatedName string `json:"untranslatedName"`
	StatusCategory   struct {
		Key string `json:"key"`
	} `json:"statusCategory"`
}

type jiraIssueTypeStatuses struct {
	Name     string       `json:"name"`
	Statuses []jiraStatus `json:"statuses"`
}

type jiraLinkType struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Inward  string `json:"inward"`
	Outward string `json:"outward"`
}

func (j *JiraClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.cfg.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	if j.cfg.Email != "" || j.cfg.APIToken != "" {
		req.SetBasicAuth(j.cfg.Email, j.cfg.APIToken)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := j.client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// ListIssueTypes returns the project's issue types, or all issue types when
// no project key is configured.
func (j *JiraClient) ListIssueTypes(ctx context.Context) ([]models.TrackerIssueType, error) {
	var raw []jiraIssueType
	if j.cfg.ProjectKey != "" {
		var project struct {
			IssueTypes []jiraIssueType `json:"issueTypes"`
		}
		if err := j.get(ctx, "/rest/api/2/project/"+url.PathEscape(j.cfg.ProjectKey), &project); err != nil {
			return nil, err
		}
		raw = project.IssueTypes
	} else if err := j.get(ctx, "/rest/api/2/issuetype", &raw); err != nil {
		return nil, err
	}

	out := make([]models.TrackerIssueType, len(raw))
	for i, it := range raw {
		out[i] = models.TrackerIssueType{ID: it.ID, Name: it.Name, Subtask: it.Subtask, Description: it.Description}
	}
	return out, nil
}

// ListStatusesByIssueType returns the statuses available to each issue type of the project.
func (j *JiraClient) ListStatusesByIssueType(ctx context.Context) ([]models.IssueTypeStatuses, error) {
	if j.cfg.ProjectKey == "" {
		return nil, ErrProjectKeyRequired
	}
	var raw []jiraIssueTypeStatuses
	if err := j.get(ctx, "/rest/api/2/project/"+url.PathEscape(j.cfg.ProjectKey)+"/statuses", &raw); err != nil {
		return nil, err
	}

	out := make([]models.IssueTypeStatuses, len(raw))
	for i, group := range raw {
		statuses := make([]models.TrackerStatus, len(group.Statuses))
		for k, st := range group.Statuses {
			statuses[k] = models.TrackerStatus{
				Name:             st.Name,
				UntranslatedName: st.UntranslatedName,
				Category:         ParseCategory(st.StatusCategory.Key),
			}
		}
		out[i] = models.IssueTypeStatuses{IssueTypeName: group.Name, Statuses: statuses}
	}
	return out, nil
}

// ListLinkTypes returns the instance's issue link types.
func (j *JiraClient) ListLinkTypes(ctx context.Context) ([]models.TrackerLinkType, error) {
	var resp struct {
		IssueLinkTypes []jiraLinkType `json:"issueLinkTypes"`
	}
	if err := j.get(ctx, "/rest/api/2/issueLinkType", &resp); err != nil {
		return nil, err
	}

	out := make([]models.TrackerLinkType, len(resp.IssueLinkTypes))
	for i, lt := range resp.IssueLinkTypes {
		out[i] = models.TrackerLinkType{ID: lt.ID, Name: lt.Name, Inward: lt.Inward, Outward: lt.Outward}
	}
	return out, nil
}
