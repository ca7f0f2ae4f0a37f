//go:build unit

package gitlab //nolint:testpackage // tests unexported functions

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/mrhelper/internal/domain/entities"
)

var foo = entities.Project{ID: 2, Name: "Foo", WebURL: "https://gitlab.example.com/ios/Foo"}

func newTestRepository(t *testing.T, mux *http.ServeMux) *GitLabHostingRepository {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	repo, err := NewHostingRepository(server.URL, "glpat-test")
	require.NoError(t, err)
	return repo.(*GitLabHostingRepository)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestGitLabHostingRepository(t *testing.T) {
	t.Parallel()

	t.Run("ListProjects", func(t *testing.T) {
		t.Parallel()

		t.Run("should follow pagination", func(t *testing.T) {
			t.Parallel()

			// given
			mux := http.NewServeMux()
			mux.HandleFunc("/api/v4/projects", func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "glpat-test", r.Header.Get("Private-Token"))
				if r.URL.Query().Get("page") == "2" {
					writeJSON(w, http.StatusOK, `[{"id":3,"name":"Bar","path_with_namespace":"ios/Bar"}]`)
					return
				}
				w.Header().Set("X-Next-Page", "2")
				writeJSON(w, http.StatusOK,
					`[{"id":2,"name":"Foo","path_with_namespace":"ios/Foo","web_url":"https://gitlab.example.com/ios/Foo"}]`)
			})
			repo := newTestRepository(t, mux)

			// when
			projects, err := repo.ListProjects(context.Background())

			// then
			require.NoError(t, err)
			require.Len(t, projects, 2)
			assert.Equal(t, foo.ID, projects[0].ID)
			assert.Equal(t, "ios/Foo", projects[0].PathWithNamespace)
			assert.Equal(t, "Bar", projects[1].Name)
		})

		t.Run("should fail on an authentication error", func(t *testing.T) {
			t.Parallel()

			// given
			mux := http.NewServeMux()
			mux.HandleFunc("/api/v4/projects", func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusUnauthorized, `{"message":"401 Unauthorized"}`)
			})
			repo := newTestRepository(t, mux)

			// when
			projects, err := repo.ListProjects(context.Background())

			// then
			require.Error(t, err)
			assert.Nil(t, projects)
		})
	})

	t.Run("SearchProjects", func(t *testing.T) {
		t.Parallel()

		t.Run("should send the keyword as search parameter", func(t *testing.T) {
			t.Parallel()

			// given
			var search string
			mux := http.NewServeMux()
			mux.HandleFunc("/api/v4/projects", func(w http.ResponseWriter, r *http.Request) {
				search = r.URL.Query().Get("search")
				writeJSON(w, http.StatusOK, `[]`)
			})
			repo := newTestRepository(t, mux)

			// when
			projects, err := repo.SearchProjects(context.Background(), "Foo")

			// then
			require.NoError(t, err)
			assert.Empty(t, projects)
			assert.Equal(t, "Foo", search)
		})
	})

	t.Run("ListMergedMergeRequests", func(t *testing.T) {
		t.Parallel()

		t.Run("should request merged merge requests of the project", func(t *testing.T) {
			t.Parallel()

			// given
			mux := http.NewServeMux()
			mux.HandleFunc("/api/v4/projects/2/merge_requests", func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "merged", r.URL.Query().Get("state"))
				writeJSON(w, http.StatusOK, `[{
					"iid": 7, "title": "Fix login", "state": "merged", "source_branch": "fix-login",
					"web_url": "https://gitlab.example.com/ios/Foo/-/merge_requests/7", "labels": ["bug"]
				}]`)
			})
			repo := newTestRepository(t, mux)

			// when
			mrs, err := repo.ListMergedMergeRequests(context.Background(), foo)

			// then
			require.NoError(t, err)
			assert.Equal(t, []entities.MergeRequest{{
				IID:          7,
				Title:        "Fix login",
				WebURL:       "https://gitlab.example.com/ios/Foo/-/merge_requests/7",
				State:        "merged",
				SourceBranch: "fix-login",
				Labels:       []string{"bug"},
			}}, mrs)
		})
	})

	t.Run("ListOpenMergeRequests", func(t *testing.T) {
		t.Parallel()

		t.Run("should filter by source branch", func(t *testing.T) {
			t.Parallel()

			// given
			mux := http.NewServeMux()
			mux.HandleFunc("/api/v4/projects/2/merge_requests", func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "opened", r.URL.Query().Get("state"))
				assert.Equal(t, "jane/mr1700000000", r.URL.Query().Get("source_branch"))
				writeJSON(w, http.StatusOK, `[{"iid": 99, "web_url": "https://gitlab.example.com/ios/Foo/-/merge_requests/99"}]`)
			})
			repo := newTestRepository(t, mux)

			// when
			mrs, err := repo.ListOpenMergeRequests(context.Background(), foo, "jane/mr1700000000")

			// then
			require.NoError(t, err)
			require.Len(t, mrs, 1)
			assert.Equal(t, int64(99), mrs[0].IID)
		})
	})

	t.Run("ListMergeRequestCommits", func(t *testing.T) {
		t.Parallel()

		t.Run("should list every commit of the merge request", func(t *testing.T) {
			t.Parallel()

			// given
			mux := http.NewServeMux()
			mux.HandleFunc("/api/v4/projects/2/merge_requests/7/commits", func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Get("page") == "2" {
					writeJSON(w, http.StatusOK, `[{"id":"abc123","title":"Second"}]`)
					return
				}
				w.Header().Set("X-Next-Page", "2")
				writeJSON(w, http.StatusOK, `[{"id":"0000000","title":"First","author_name":"Jane"}]`)
			})
			repo := newTestRepository(t, mux)

			// when
			commits, err := repo.ListMergeRequestCommits(context.Background(), foo, entities.MergeRequest{IID: 7})

			// then
			require.NoError(t, err)
			require.Len(t, commits, 2)
			assert.Equal(t, "Jane", commits[0].AuthorName)
			assert.Equal(t, "abc123", commits[1].ID)
		})
	})

	t.Run("GetCommitURL", func(t *testing.T) {
		t.Parallel()

		t.Run("should return the web URL of the commit", func(t *testing.T) {
			t.Parallel()

			// given
			mux := http.NewServeMux()
			mux.HandleFunc("/api/v4/projects/2/repository/commits/abc123", func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusOK, `{"id":"abc123","web_url":"https://gitlab.example.com/ios/Foo/-/commit/abc123"}`)
			})
			repo := newTestRepository(t, mux)

			// when
			url, err := repo.GetCommitURL(context.Background(), foo, "abc123")

			// then
			require.NoError(t, err)
			assert.Equal(t, "https://gitlab.example.com/ios/Foo/-/commit/abc123", url)
		})

		t.Run("should fail for an unknown commit", func(t *testing.T) {
			t.Parallel()

			// given
			mux := http.NewServeMux()
			mux.HandleFunc("/api/v4/projects/2/repository/commits/", func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusNotFound, `{"message":"404 Commit Not Found"}`)
			})
			repo := newTestRepository(t, mux)

			// when
			_, err := repo.GetCommitURL(context.Background(), foo, "ffffff")

			// then
			require.Error(t, err)
		})
	})

	t.Run("UpdateMergeRequest", func(t *testing.T) {
		t.Parallel()

		t.Run("should send the description and labels", func(t *testing.T) {
			t.Parallel()

			// given
			var method, body string
			mux := http.NewServeMux()
			mux.HandleFunc("/api/v4/projects/2/merge_requests/99", func(w http.ResponseWriter, r *http.Request) {
				method = r.Method
				raw, _ := io.ReadAll(r.Body)
				body = string(raw)
				writeJSON(w, http.StatusOK, `{"iid":99}`)
			})
			repo := newTestRepository(t, mux)

			// when
			err := repo.UpdateMergeRequest(context.Background(), foo, entities.MergeRequest{IID: 99},
				entities.MergeRequestUpdate{Description: "related", AddLabels: []string{"webhook-0", "id-1"}})

			// then
			require.NoError(t, err)
			assert.Equal(t, http.MethodPut, method)
			assert.Contains(t, body, `"description":"related"`)
			assert.Contains(t, body, "webhook-0")
			assert.Contains(t, body, "id-1")
		})
	})

	t.Run("Labels", func(t *testing.T) {
		t.Parallel()

		t.Run("should list and create project labels", func(t *testing.T) {
			t.Parallel()

			// given
			var created string
			mux := http.NewServeMux()
			mux.HandleFunc("/api/v4/projects/2/labels", func(w http.ResponseWriter, r *http.Request) {
				if r.Method == http.MethodPost {
					raw, _ := io.ReadAll(r.Body)
					created = string(raw)
					writeJSON(w, http.StatusCreated, `{"id":1,"name":"id-0"}`)
					return
				}
				writeJSON(w, http.StatusOK, `[{"name":"webhook-0","description":"https://hook","color":"#8899aa"}]`)
			})
			repo := newTestRepository(t, mux)

			// when
			labels, listErr := repo.ListLabels(context.Background(), foo)
			createErr := repo.CreateLabel(context.Background(), foo,
				entities.Label{Name: "id-0", Description: "ou_self", Color: "#8899aa"})

			// then
			require.NoError(t, listErr)
			require.NoError(t, createErr)
			assert.Equal(t, []entities.Label{{Name: "webhook-0", Description: "https://hook", Color: "#8899aa"}}, labels)
			assert.Contains(t, created, `"name":"id-0"`)
			assert.Contains(t, created, `"description":"ou_self"`)
		})
	})

	t.Run("should fail every call without a client", func(t *testing.T) {
		t.Parallel()

		// given
		repo := &GitLabHostingRepository{}
		ctx := context.Background()

		// when
		_, projectsErr := repo.ListProjects(ctx)
		_, mrsErr := repo.ListMergedMergeRequests(ctx, foo)
		_, commitErr := repo.GetCommitURL(ctx, foo, "abc123")
		updateErr := repo.UpdateMergeRequest(ctx, foo, entities.MergeRequest{}, entities.MergeRequestUpdate{})

		// then
		require.ErrorIs(t, projectsErr, errClientNotInitialized)
		require.ErrorIs(t, mrsErr, errClientNotInitialized)
		require.ErrorIs(t, commitErr, errClientNotInitialized)
		require.ErrorIs(t, updateErr, errClientNotInitialized)
	})
}
