package form

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"storyline/app/services"
)

// HTTPSubmitter posts the input as JSON to the comment endpoint.
type HTTPSubmitter struct {
	URL    string
	Client *http.Client
}

func (h *HTTPSubmitter) Submit(ctx context.Context, in Input) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to submit comment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var answer struct {
			Message string `json:"message"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(data, &answer) == nil && answer.Message != "" {
			return fmt.Errorf("comment endpoint responded %d: %s", resp.StatusCode, answer.Message)
		}
		return fmt.Errorf("comment endpoint responded %d", resp.StatusCode)
	}
	return nil
}

// ServiceSubmitter calls the comment service in-process.
type ServiceSubmitter struct {
	Comments *services.CommentService
}

func (s *ServiceSubmitter) Submit(ctx context.Context, in Input) error {
	_, err := s.Comments.Submit(ctx, services.CommentInput{
		PostID:  in.ID,
		Name:    in.Name,
		Email:   in.Email,
		Comment: in.Comment,
	})
	return err
}
