package yandexdisk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mrlokans/cardbox/internal/entities"
)

const (
	diskAPIURL = "https://cloud-api.yandex.net/v1/disk"

	requestTimeout = 10 * time.Second
	pingTimeout    = 5 * time.Second
)

// Client stores the card document as a single file on Yandex Disk through
// its REST API. Both download and upload are two-phase: the API hands out a
// temporary signed URL first, then the actual bytes are transferred against
// that URL. The two phases are not atomic with each other; a crash in
// between is resolved by the next load's cache-refresh logic.
//
// Every method degrades failures to a default document or a false result.
// Nothing here returns an error to the caller.
type Client struct {
	token      string
	remotePath string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given OAuth token and remote file path
// (relative to the disk root).
func NewClient(token, remotePath string) *Client {
	return &Client{
		token:      token,
		remotePath: remotePath,
		baseURL:    diskAPIURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// WithBaseURL overrides the API endpoint. Used by tests.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = strings.TrimSuffix(base, "/")
	return c
}

// RemotePath returns the configured file path on the disk.
func (c *Client) RemotePath() string {
	return c.remotePath
}

func (c *Client) newRequest(method, rawURL string) (*http.Request, error) {
	req, err := http.NewRequest(method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "OAuth "+c.token)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) resourceURL(endpoint string, params url.Values) string {
	params.Set("path", "/"+strings.TrimPrefix(c.remotePath, "/"))
	return c.baseURL + endpoint + "?" + params.Encode()
}

// hrefResponse is the API's answer to download/upload URL requests.
type hrefResponse struct {
	Href      string `json:"href"`
	Method    string `json:"method"`
	Templated bool   `json:"templated"`
}

// FileExists checks whether the remote file is present.
func (c *Client) FileExists() bool {
	req, err := c.newRequest(http.MethodGet, c.resourceURL("/resources", url.Values{}))
	if err != nil {
		log.Printf("yandexdisk: %v", err)
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("yandexdisk: existence check failed: %v", err)
		return false
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true
	case http.StatusNotFound:
		return false
	default:
		log.Printf("yandexdisk: unexpected status %d checking %s", resp.StatusCode, c.remotePath)
		return false
	}
}

// Load downloads the document from the disk. A missing remote file is not
// an error: it yields an empty default document. Protocol and network
// failures are returned as errors so the hybrid coordinator can fall back
// to the local copy.
func (c *Client) Load() (*entities.Document, error) {
	req, err := c.newRequest(http.MethodGet, c.resourceURL("/resources/download", url.Values{}))
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to request download URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		log.Printf("yandexdisk: %s not found on disk, starting with empty data", c.remotePath)
		return entities.NewDocument(), nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download URL request returned status %d", resp.StatusCode)
	}

	var href hrefResponse
	if err := json.NewDecoder(resp.Body).Decode(&href); err != nil {
		return nil, fmt.Errorf("could not decode download URL response: %w", err)
	}
	if href.Href == "" {
		return nil, fmt.Errorf("download URL response contains no href")
	}

	fileResp, err := c.httpClient.Get(href.Href)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer fileResp.Body.Close()

	if fileResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download returned status %d", fileResp.StatusCode)
	}

	var doc entities.Document
	if err := json.NewDecoder(fileResp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("remote file contains invalid JSON: %w", err)
	}

	doc.Normalize()
	log.Printf("yandexdisk: loaded %d cards from disk", len(doc.Cards))
	return &doc, nil
}

// Save uploads the document, overwriting the previous remote copy.
func (c *Client) Save(doc *entities.Document) bool {
	params := url.Values{}
	params.Set("overwrite", "true")

	req, err := c.newRequest(http.MethodGet, c.resourceURL("/resources/upload", params))
	if err != nil {
		log.Printf("yandexdisk: %v", err)
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("yandexdisk: failed to request upload URL: %v", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		log.Printf("yandexdisk: upload URL request returned status %d: %s", resp.StatusCode, string(body))
		return false
	}

	var href hrefResponse
	if err := json.NewDecoder(resp.Body).Decode(&href); err != nil || href.Href == "" {
		log.Printf("yandexdisk: could not decode upload URL response: %v", err)
		return false
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		log.Printf("yandexdisk: failed to marshal document: %v", err)
		return false
	}

	putReq, err := http.NewRequest(http.MethodPut, href.Href, bytes.NewReader(data))
	if err != nil {
		log.Printf("yandexdisk: failed to create upload request: %v", err)
		return false
	}
	putReq.Header.Set("Content-Type", "application/json")

	putResp, err := c.httpClient.Do(putReq)
	if err != nil {
		log.Printf("yandexdisk: upload failed: %v", err)
		return false
	}
	defer putResp.Body.Close()

	switch {
	case putResp.StatusCode >= 200 && putResp.StatusCode < 300:
		log.Printf("yandexdisk: saved %d cards to disk", len(doc.Cards))
		return true
	case putResp.StatusCode == http.StatusInsufficientStorage:
		log.Printf("yandexdisk: upload rejected, disk quota exceeded")
		return false
	case putResp.StatusCode == http.StatusForbidden:
		log.Printf("yandexdisk: upload rejected, no write permission")
		return false
	default:
		log.Printf("yandexdisk: upload returned status %d", putResp.StatusCode)
		return false
	}
}

// Delete permanently removes the remote file.
func (c *Client) Delete() bool {
	params := url.Values{}
	params.Set("permanently", "true")

	req, err := c.newRequest(http.MethodDelete, c.resourceURL("/resources", params))
	if err != nil {
		log.Printf("yandexdisk: %v", err)
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("yandexdisk: delete failed: %v", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK &&
		resp.StatusCode != http.StatusAccepted {
		log.Printf("yandexdisk: delete returned status %d", resp.StatusCode)
		return false
	}
	return true
}

// TestConnection issues a lightweight disk metadata request to verify the
// token works. 401/403 are reported as explicit auth failures.
func (c *Client) TestConnection() bool {
	req, err := c.newRequest(http.MethodGet, c.baseURL+"/")
	if err != nil {
		log.Printf("yandexdisk: %v", err)
		return false
	}

	client := &http.Client{Timeout: pingTimeout}
	resp, err := client.Do(req)
	if err != nil {
		log.Printf("yandexdisk: connection test failed: %v", err)
		return false
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var info struct {
			User struct {
				DisplayName string `json:"display_name"`
			} `json:"user"`
			UsedSpace  int64 `json:"used_space"`
			TotalSpace int64 `json:"total_space"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&info); err == nil {
			log.Printf("yandexdisk: connected as %q, %.2f GB of %.2f GB used",
				info.User.DisplayName,
				float64(info.UsedSpace)/(1<<30),
				float64(info.TotalSpace)/(1<<30))
		}
		return true
	case http.StatusUnauthorized:
		log.Printf("yandexdisk: connection test failed: invalid token")
		return false
	case http.StatusForbidden:
		log.Printf("yandexdisk: connection test failed: access denied")
		return false
	default:
		log.Printf("yandexdisk: connection test returned status %d", resp.StatusCode)
		return false
	}
}
