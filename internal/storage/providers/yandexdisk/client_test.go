package yandexdisk

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/cardbox/internal/entities"
)

func testDocument() *entities.Document {
	doc := entities.NewDocument()
	doc.Cards = []entities.Card{
		{ID: 1, Theme: "Травмы", Question: "Q1", Answer: "A1", Difficulty: entities.DifficultyEasy},
		{ID: 2, Theme: "Простуда", Question: "Q2", Answer: "A2", Difficulty: entities.DifficultyHard},
	}
	doc.Themes = []string{"Простуда", "Травмы"}
	doc.NextID = 3
	return doc
}

func TestClientLoadTwoPhaseDownload(t *testing.T) {
	var authHeader string

	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("/resources/download", func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		assert.Equal(t, "/homeopathy_cards.json", r.URL.Query().Get("path"))
		json.NewEncoder(w).Encode(hrefResponse{Href: server.URL + "/file", Method: "GET"})
	})
	mux.HandleFunc("/file", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(testDocument())
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	client := NewClient("secret-token", "homeopathy_cards.json").WithBaseURL(server.URL)

	doc, err := client.Load()
	require.NoError(t, err)
	assert.Equal(t, "OAuth secret-token", authHeader)
	require.Len(t, doc.Cards, 2)
	assert.Equal(t, "Q1", doc.Cards[0].Question)
	assert.Equal(t, 3, doc.NextID)
}

func TestClientLoadMissingFileReturnsDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient("token", "cards.json").WithBaseURL(server.URL)

	doc, err := client.Load()
	require.NoError(t, err)
	assert.Empty(t, doc.Cards)
	assert.Equal(t, 1, doc.NextID)
}

func TestClientLoadServerErrorReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient("token", "cards.json").WithBaseURL(server.URL)

	_, err := client.Load()
	assert.Error(t, err)
}

func TestClientLoadInvalidJSONReturnsError(t *testing.T) {
	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("/resources/download", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(hrefResponse{Href: server.URL + "/file"})
	})
	mux.HandleFunc("/file", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "{broken json")
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	client := NewClient("token", "cards.json").WithBaseURL(server.URL)

	_, err := client.Load()
	assert.Error(t, err)
}

func TestClientSaveTwoPhaseUpload(t *testing.T) {
	var uploaded []byte

	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("/resources/upload", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("overwrite"))
		json.NewEncoder(w).Encode(hrefResponse{Href: server.URL + "/put", Method: "PUT"})
	})
	mux.HandleFunc("/put", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		uploaded, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	client := NewClient("token", "cards.json").WithBaseURL(server.URL)

	require.True(t, client.Save(testDocument()))

	var doc entities.Document
	require.NoError(t, json.Unmarshal(uploaded, &doc))
	assert.Len(t, doc.Cards, 2)
}

func TestClientSaveFailures(t *testing.T) {
	tests := []struct {
		name      string
		putStatus int
	}{
		{"quota exceeded", http.StatusInsufficientStorage},
		{"no write permission", http.StatusForbidden},
		{"server error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			var server *httptest.Server
			mux.HandleFunc("/resources/upload", func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(hrefResponse{Href: server.URL + "/put"})
			})
			mux.HandleFunc("/put", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.putStatus)
			})
			server = httptest.NewServer(mux)
			defer server.Close()

			client := NewClient("token", "cards.json").WithBaseURL(server.URL)
			assert.False(t, client.Save(testDocument()))
		})
	}
}

func TestClientSaveUploadURLDenied(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient("bad-token", "cards.json").WithBaseURL(server.URL)
	assert.False(t, client.Save(testDocument()))
}

func TestClientFileExists(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected bool
	}{
		{"present", http.StatusOK, true},
		{"absent", http.StatusNotFound, false},
		{"server error", http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewClient("token", "cards.json").WithBaseURL(server.URL)
			assert.Equal(t, tt.expected, client.FileExists())
		})
	}
}

func TestClientTestConnection(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected bool
	}{
		{"valid token", http.StatusOK, `{"user":{"display_name":"tester"},"used_space":1,"total_space":2}`, true},
		{"invalid token", http.StatusUnauthorized, "", false},
		{"access denied", http.StatusForbidden, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			client := NewClient("token", "cards.json").WithBaseURL(server.URL)
			assert.Equal(t, tt.expected, client.TestConnection())
		})
	}
}

func TestClientDelete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "true", r.URL.Query().Get("permanently"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient("token", "cards.json").WithBaseURL(server.URL)
	assert.True(t, client.Delete())
}
