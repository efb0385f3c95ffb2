package gdocai

import (
	"context"
	"fmt"
	"os"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"
)

// Config holds the Document AI processor settings
type Config struct {
	ProjectID   string `yaml:"project_id"`
	Location    string `yaml:"location"`
	ProcessorID string `yaml:"processor_id"`
}

// Validate reports the first missing setting
func (c *Config) Validate() error {
	switch {
	case c.ProjectID == "":
		return fmt.Errorf("document AI project_id is not set")
	case c.Location == "":
		return fmt.Errorf("document AI location is not set")
	case c.ProcessorID == "":
		return fmt.Errorf("document AI processor_id is not set")
	}
	return nil
}

// Client sends page images to one Document AI processor.
// It is safe for concurrent use.
type Client struct {
	client *documentai.DocumentProcessorClient
	name   string
}

// NewClient connects to the regional Document AI endpoint of cfg.Location
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", cfg.Location)

	// Instantiate Document AI client using credentials from environment variable
	client, err := documentai.NewDocumentProcessorClient(
		ctx,
		option.WithEndpoint(endpoint),
		option.WithCredentialsFile(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Document AI client: %w", err)
	}

	return &Client{
		client: client,
		name: fmt.Sprintf(
			"projects/%s/locations/%s/processors/%s",
			cfg.ProjectID, cfg.Location, cfg.ProcessorID,
		),
	}, nil
}

// Close releases the underlying connection
func (c *Client) Close() error {
	return c.client.Close()
}

// ProcessDocument sends raw document bytes of the given MIME type to Document AI
// and returns the raw Document proto response
func (c *Client) ProcessDocument(ctx context.Context, content []byte, mimeType string) (*documentaipb.Document, error) {
	req := &documentaipb.ProcessRequest{
		Name: c.name,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  content,
				MimeType: mimeType,
			},
		},
		SkipHumanReview: true,
	}

	resp, err := c.client.ProcessDocument(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to process document: %w", err)
	}

	return resp.Document, nil
}
