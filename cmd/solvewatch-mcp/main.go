package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// classifyRequest mirrors the Solvewatch API request model.
type classifyRequest struct {
	URL          string `json:"url"`
	FetchMode    string `json:"fetch_mode,omitempty"`
	SkipMetadata bool   `json:"skip_metadata,omitempty"`
	MaxAge       int    `json:"max_age,omitempty"`
}

// classification mirrors the API's classification object.
type classification struct {
	Platform         string `json:"platform"`
	IsProblemPage    bool   `json:"is_problem_page"`
	IsSubmissionPage bool   `json:"is_submission_page"`
}

// problemMetadata mirrors the API's metadata object.
type problemMetadata struct {
	Title      string   `json:"title"`
	Difficulty string   `json:"difficulty"`
	Tags       []string `json:"tags"`
	URL        string   `json:"url"`
	Platform   string   `json:"platform"`
	Statement  string   `json:"statement"`
	Excerpt    string   `json:"excerpt"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// classifyResponse mirrors the Solvewatch API response model.
type classifyResponse struct {
	Success        bool             `json:"success"`
	Classification classification   `json:"classification"`
	Metadata       *problemMetadata `json:"metadata"`
	FinalURL       string           `json:"final_url"`
	EngineUsed     string           `json:"engine_used"`
	Error          *apiError        `json:"error"`
}

// watchResponse mirrors the Solvewatch watch API response.
type watchResponse struct {
	Success        bool             `json:"success"`
	WatchID        string           `json:"watch_id"`
	Classification classification   `json:"classification"`
	Metadata       *problemMetadata `json:"metadata"`
	Error          *apiError        `json:"error"`
}

// watchStatusResponse mirrors the Solvewatch watch status API response.
type watchStatusResponse struct {
	Success        bool           `json:"success"`
	WatchID        string         `json:"watch_id"`
	URL            string         `json:"url"`
	Classification classification `json:"classification"`
	Observing      bool           `json:"observing"`
	Attempts       int            `json:"attempts"`
	Solved         bool           `json:"solved"`
	ElapsedSec     int            `json:"elapsed_sec"`
	LastSolve      *struct {
		Solved       bool  `json:"solved"`
		Timestamp    int64 `json:"timestamp"`
		TimeSpentSec int   `json:"time_spent_sec"`
		Attempts     int   `json:"attempts"`
	} `json:"last_solve"`
	Error *apiError `json:"error"`
}

func main() {
	apiURL := os.Getenv("SOLVEWATCH_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("SOLVEWATCH_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "SOLVEWATCH_API_KEY is required")
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"solvewatch",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	classifyTool := mcp.NewTool("classify_page",
		mcp.WithDescription("Classify a URL against known coding-practice platforms (LeetCode, Codeforces, GeeksforGeeks) and extract problem metadata (title, difficulty, tags, statement) when the page is a problem page."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the page to classify"),
		),
		mcp.WithString("fetch_mode",
			mcp.Description("Fetching strategy: 'auto' (default, HTTP with browser escalation), 'http' (pure HTTP only), or 'browser' (headless Chrome only)"),
			mcp.Enum("auto", "http", "browser"),
		),
		mcp.WithBoolean("skip_metadata",
			mcp.Description("Skip problem metadata extraction, returning the classification only"),
		),
	)
	s.AddTool(classifyTool, handleClassifyPage(apiURL, apiKey))

	watchTool := mcp.NewTool("watch_problem",
		mcp.WithDescription("Open a coding-practice page in a headless browser and observe it for submission verdicts. Returns a watch ID to poll with watch_status."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the problem or submission page to watch"),
		),
		mcp.WithBoolean("stealth",
			mcp.Description("Enable anti-bot-detection evasions for the watched page"),
		),
	)
	s.AddTool(watchTool, handleWatchProblem(apiURL, apiKey))

	statusTool := mcp.NewTool("watch_status",
		mcp.WithDescription("Report a watch's current state: attempts counted, whether an accepted verdict was seen, and time spent."),
		mcp.WithString("watch_id",
			mcp.Required(),
			mcp.Description("The watch ID returned by watch_problem"),
		),
	)
	s.AddTool(statusTool, handleWatchStatus(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a POST request to the Solvewatch API and returns the response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// apiGet sends a GET request to the Solvewatch API and returns the response body.
func apiGet(ctx context.Context, client *http.Client, apiURL, apiKey, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-Key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func formatClassification(cls classification) string {
	return fmt.Sprintf("Platform: %s\nProblem page: %t\nSubmission page: %t",
		cls.Platform, cls.IsProblemPage, cls.IsSubmissionPage)
}

func formatMetadata(m *problemMetadata) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\n\nTitle: %s\n", m.Title))
	if m.Difficulty != "" {
		sb.WriteString(fmt.Sprintf("Difficulty: %s\n", m.Difficulty))
	}
	if len(m.Tags) > 0 {
		sb.WriteString(fmt.Sprintf("Tags: %s\n", strings.Join(m.Tags, ", ")))
	}
	if m.Statement != "" {
		sb.WriteString("\n" + m.Statement)
	} else if m.Excerpt != "" {
		sb.WriteString("\n" + m.Excerpt)
	}
	return sb.String()
}

func handleClassifyPage(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		reqBody := classifyRequest{
			URL:          url,
			FetchMode:    request.GetString("fetch_mode", ""),
			SkipMetadata: request.GetBool("skip_metadata", false),
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/classify", reqBody)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("classify request failed: %v", err)), nil
		}

		var resp classifyResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !resp.Success {
			errMsg := "classification failed"
			if resp.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", resp.Error.Code, resp.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		result := formatClassification(resp.Classification)
		if resp.EngineUsed != "" {
			result += fmt.Sprintf("\nEngine: %s", resp.EngineUsed)
		}
		if resp.Metadata != nil {
			result += formatMetadata(resp.Metadata)
		}

		return mcp.NewToolResultText(result), nil
	}
}

func handleWatchProblem(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		payload := map[string]interface{}{
			"url":     url,
			"stealth": request.GetBool("stealth", false),
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/watch", payload)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("watch request failed: %v", err)), nil
		}

		var resp watchResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !resp.Success {
			errMsg := "watch failed"
			if resp.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", resp.Error.Code, resp.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		result := fmt.Sprintf("Watch ID: %s\n%s", resp.WatchID, formatClassification(resp.Classification))
		if resp.Metadata != nil {
			result += formatMetadata(resp.Metadata)
		}

		return mcp.NewToolResultText(result), nil
	}
}

func handleWatchStatus(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 30 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		watchID, err := request.RequireString("watch_id")
		if err != nil {
			return mcp.NewToolResultError("watch_id is required"), nil
		}

		respBody, err := apiGet(ctx, client, apiURL, apiKey, "/api/v1/watch/"+watchID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("status request failed: %v", err)), nil
		}

		var resp watchStatusResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !resp.Success {
			errMsg := "status lookup failed"
			if resp.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", resp.Error.Code, resp.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Watch %s: %s\n", resp.WatchID, resp.URL))
		sb.WriteString(formatClassification(resp.Classification))
		sb.WriteString(fmt.Sprintf("\nObserving: %t\nAttempts: %d\nSolved: %t\nElapsed: %ds",
			resp.Observing, resp.Attempts, resp.Solved, resp.ElapsedSec))
		if resp.LastSolve != nil {
			sb.WriteString(fmt.Sprintf("\nLast solve: %d attempts in %ds",
				resp.LastSolve.Attempts, resp.LastSolve.TimeSpentSec))
		}

		return mcp.NewToolResultText(sb.String()), nil
	}
}
