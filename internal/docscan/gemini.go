package docscan

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// transcribePrompt asks the vision model for a faithful plain-text reading of
// one document page.
const transcribePrompt = `Transcribe all text visible in this document image, line by line, from top to bottom. Output the plain text only: no commentary, no markdown, no code blocks. Preserve the original line breaks.`

// Gemini implements the TextService interface using Google Gemini vision.
// The job mode runs transcriptions in-process: StartTextJob spawns the work
// and the job table tracks its status until results are fetched.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
	source DocumentSource

	mu   sync.Mutex
	jobs map[string]*textJob
	seq  int
}

type textJob struct {
	status JobStatus
	text   string
	pages  int
	err    error
}

// NewGemini creates a new Gemini TextService instance
func NewGemini(apiKey string, modelName string, source DocumentSource) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-pro"
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  client.GenerativeModel(modelName),
		source: source,
		jobs:   make(map[string]*textJob),
	}, nil
}

// DetectText transcribes a document synchronously and returns its text and
// page count
func (g *Gemini) DetectText(ctx context.Context, ref string) (string, int, error) {
	data, err := g.source.Get(ref)
	if err != nil {
		return "", 0, fmt.Errorf("fetching document %s: %w", ref, err)
	}

	pages, err := renderDocumentPages(data, ref)
	if err != nil {
		return "", 0, fmt.Errorf("preparing document %s: %w", ref, err)
	}

	var texts []string
	for i, page := range pages {
		text, err := g.transcribePage(ctx, page)
		if err != nil {
			return "", 0, fmt.Errorf("transcribing page %d: %w", i+1, err)
		}
		texts = append(texts, text)
	}

	return strings.Join(texts, "\n"), len(pages), nil
}

func (g *Gemini) transcribePage(ctx context.Context, pagePNG []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	resp, err := g.model.GenerateContent(ctx,
		genai.ImageData("png", pagePNG),
		genai.Text(transcribePrompt),
	)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response from gemini")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return text.String(), nil
}

// StartTextJob begins transcribing a document in the background
func (g *Gemini) StartTextJob(_ context.Context, ref string) (string, error) {
	g.mu.Lock()
	g.seq++
	jobID := fmt.Sprintf("job-%d", g.seq)
	job := &textJob{status: JobRunning}
	g.jobs[jobID] = job
	g.mu.Unlock()

	go func() {
		// Detached from the request context: the job outlives the call
		// that started it and is observed through polling.
		text, pages, err := g.DetectText(context.Background(), ref)

		g.mu.Lock()
		defer g.mu.Unlock()
		if err != nil {
			job.status = JobFailed
			job.err = err
			return
		}
		job.status = JobSucceeded
		job.text = text
		job.pages = pages
	}()

	return jobID, nil
}

// PollTextJob reports the status of a job
func (g *Gemini) PollTextJob(_ context.Context, jobID string) (JobStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	job, ok := g.jobs[jobID]
	if !ok {
		return "", fmt.Errorf("unknown job: %s", jobID)
	}
	return job.status, nil
}

// FetchTextResults returns the text and page count of a succeeded job.
// Results are handed out once; the entry is dropped so completed jobs do
// not accumulate in the table.
func (g *Gemini) FetchTextResults(_ context.Context, jobID string) (string, int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	job, ok := g.jobs[jobID]
	if !ok {
		return "", 0, fmt.Errorf("unknown job: %s", jobID)
	}
	if job.status != JobSucceeded {
		return "", 0, fmt.Errorf("job %s has no results (status %s)", jobID, job.status)
	}
	delete(g.jobs, jobID)
	return job.text, job.pages, nil
}

// Close closes the Gemini client
func (g *Gemini) Close() error {
	return g.client.Close()
}
