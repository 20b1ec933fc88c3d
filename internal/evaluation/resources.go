package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"design-practice-service/internal/models"

	openai "github.com/sashabaranov/go-openai"
)

const youtubeSearchURL = "https://www.googleapis.com/youtube/v3/search"
const maxVideos = 5

// YouTubeFetcher recommends videos via the YouTube Data API v3. Without an
// API key it returns an empty list; it never fails the evaluation.
type YouTubeFetcher struct {
	Client *http.Client
	APIKey string
}

func NewYouTubeFetcher(apiKey string) *YouTubeFetcher {
	return &YouTubeFetcher{
		Client: &http.Client{Timeout: 10 * time.Second},
		APIKey: apiKey,
	}
}

func (f *YouTubeFetcher) Fetch(ctx context.Context, problem *models.Problem, missing []string) ([]models.Resource, error) {
	if f.APIKey == "" {
		log.Println("Video fetch skipped: YOUTUBE_API_KEY not configured")
		return []models.Resource{}, nil
	}

	query := []string{problem.Title}
	if len(problem.Categories) > 0 {
		query = append(query, problem.Categories[0])
	}
	query = append(query, "system design tutorial")

	params := url.Values{
		"part":              {"snippet"},
		"q":                 {strings.Join(query, " ")},
		"type":              {"video"},
		"maxResults":        {fmt.Sprint(maxVideos)},
		"key":               {f.APIKey},
		"relevanceLanguage": {"en"},
		"safeSearch":        {"strict"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, youtubeSearchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("youtube search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube search: status %d", resp.StatusCode)
	}

	var payload struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
			Snippet struct {
				Title        string `json:"title"`
				ChannelTitle string `json:"channelTitle"`
			} `json:"snippet"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("youtube response: %w", err)
	}

	videos := []models.Resource{}
	for _, item := range payload.Items {
		if item.ID.VideoID == "" {
			continue
		}
		videos = append(videos, models.Resource{
			Title:   item.Snippet.Title,
			URL:     "https://www.youtube.com/watch?v=" + item.ID.VideoID,
			Channel: item.Snippet.ChannelTitle,
			Reason:  "Recommended video about " + problem.Title,
		})
		if len(videos) == maxVideos {
			break
		}
	}
	return videos, nil
}

const docsSystemPrompt = `You are a system design educator. Suggest 4-6 documentation sources: official cloud docs, system design blogs, educational resources.

Return ONLY a JSON array:
[{"title": "Resource title", "url": "real URL", "source": "source name", "reason": "why helpful"}, ...]

Prefer real, well-known URLs.`

// DocsFetcher asks a chat model for documentation suggestions and falls
// back to a curated list when the model is unavailable or returns nothing.
type DocsFetcher struct {
	client *openai.Client
	model  string
}

func NewDocsFetcher(apiKey, baseURL, model string) *DocsFetcher {
	if apiKey == "" {
		return &DocsFetcher{model: model}
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &DocsFetcher{client: openai.NewClientWithConfig(cfg), model: model}
}

func (f *DocsFetcher) Fetch(ctx context.Context, problem *models.Problem, missing []string) ([]models.Resource, error) {
	if docs := f.fetchSuggested(ctx, problem, missing); len(docs) > 0 {
		return docs, nil
	}
	return fallbackDocs(problem), nil
}

func (f *DocsFetcher) fetchSuggested(ctx context.Context, problem *models.Problem, missing []string) []models.Resource {
	if f.client == nil {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Problem: %s\n", problem.Title)
	if len(problem.Categories) > 0 {
		fmt.Fprintf(&b, "Categories: %s\n", strings.Join(truncateList(problem.Categories, 3), ", "))
	}
	fmt.Fprintf(&b, "Missing: %s\n\nSuggest docs/articles.", strings.Join(truncateList(missing, 5), ", "))

	resp, err := f.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       f.model,
		Temperature: 0.7,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: docsSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: b.String()},
		},
	})
	if err != nil || len(resp.Choices) == 0 {
		if err != nil {
			log.Printf("Docs suggestion failed, using fallback list: %v", err)
		}
		return nil
	}

	var docs []models.Resource
	if err := json.Unmarshal([]byte(stripCodeFence(resp.Choices[0].Message.Content)), &docs); err != nil {
		log.Printf("Docs suggestion unreadable, using fallback list: %v", err)
		return nil
	}
	if len(docs) > 6 {
		docs = docs[:6]
	}
	return docs
}

func fallbackDocs(problem *models.Problem) []models.Resource {
	return []models.Resource{
		{
			Title:  "System Design Primer",
			URL:    "https://github.com/donnemartin/system-design-primer",
			Source: "GitHub",
			Reason: "Comprehensive system design resource",
		},
		{
			Title:  "AWS Architecture Center",
			URL:    "https://aws.amazon.com/architecture/",
			Source: "AWS",
			Reason: "Learn cloud architecture patterns",
		},
		{
			Title:  "Google Cloud Architecture Framework",
			URL:    "https://cloud.google.com/architecture/framework",
			Source: "Google Cloud",
			Reason: "Best practices for system design",
		},
		{
			Title:  problem.Title + " - System Design",
			URL:    "https://www.google.com/search?q=" + url.QueryEscape(problem.Title+" system design"),
			Source: "Google Search",
			Reason: "Search for specific implementation guides",
		},
	}
}

func truncateList(items []string, max int) []string {
	if len(items) > max {
		return items[:max]
	}
	return items
}
