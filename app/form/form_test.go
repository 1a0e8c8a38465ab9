package form

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"storyline/app/cms/mock"
	"storyline/app/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() Input {
	return Input{ID: "post-1", Name: "Bob", Email: "bob@example.com", Comment: "Great read"}
}

// endpoint counts requests and answers with status.
func endpoint(t *testing.T, status int) (*httptest.Server, *atomic.Int32, *[]Input) {
	t.Helper()
	var hits atomic.Int32
	var received []Input
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		var in Input
		_ = json.NewDecoder(r.Body).Decode(&in)
		received = append(received, in)
		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte(`{"message":"Couldn't submit comment","err":"boom"}`))
			return
		}
		w.Write([]byte(`{"name":"John Doe"}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits, &received
}

func TestInput_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
		want   Errors
	}{
		{"valid", func(*Input) {}, nil},
		{"missing name", func(in *Input) { in.Name = "" }, Errors{"name": "The Name Field is required"}},
		{"missing email", func(in *Input) { in.Email = "" }, Errors{"email": "The Email Field is required"}},
		{"missing comment", func(in *Input) { in.Comment = "" }, Errors{"comment": "The Comment Field is required"}},
		{"missing id is allowed", func(in *Input) { in.ID = "" }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			assert.Equal(t, tt.want, in.Validate())
		})
	}
}

func TestInput_ValidateAllEmpty(t *testing.T) {
	errs := Input{}.Validate()
	assert.Len(t, errs, 3)
	assert.Equal(t, "The Comment Field is required; The Email Field is required; The Name Field is required", errs.Error())
}

func TestSession_MissingCommentSendsNothing(t *testing.T) {
	srv, hits, _ := endpoint(t, http.StatusOK)
	session := NewSession(&HTTPSubmitter{URL: srv.URL}, nil)

	in := validInput()
	in.Comment = ""
	err := session.Submit(context.Background(), in)

	var errs Errors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "The Comment Field is required", errs["comment"])
	assert.Equal(t, Unsubmitted, session.State)
	assert.Zero(t, hits.Load())
}

func TestSession_Success(t *testing.T) {
	srv, hits, received := endpoint(t, http.StatusOK)
	session := NewSession(&HTTPSubmitter{URL: srv.URL}, nil)

	require.NoError(t, session.Submit(context.Background(), validInput()))
	assert.Equal(t, Submitted, session.State)
	assert.EqualValues(t, 1, hits.Load())
	assert.Equal(t, []Input{validInput()}, *received)

	// Submitted is terminal.
	require.NoError(t, session.Submit(context.Background(), validInput()))
	assert.EqualValues(t, 1, hits.Load())
}

func TestSession_FailureStaysUnsubmitted(t *testing.T) {
	srv, hits, _ := endpoint(t, http.StatusInternalServerError)
	session := NewSession(&HTTPSubmitter{URL: srv.URL}, nil)

	err := session.Submit(context.Background(), validInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Couldn't submit comment")
	assert.Equal(t, Unsubmitted, session.State)
	assert.Nil(t, session.Errors)
	assert.EqualValues(t, 1, hits.Load())
}

func TestSession_ErrorsClearedOnRetry(t *testing.T) {
	srv, _, _ := endpoint(t, http.StatusOK)
	session := NewSession(&HTTPSubmitter{URL: srv.URL}, nil)

	in := validInput()
	in.Name = ""
	require.Error(t, session.Submit(context.Background(), in))
	assert.NotNil(t, session.Errors)

	require.NoError(t, session.Submit(context.Background(), validInput()))
	assert.Nil(t, session.Errors)
	assert.Equal(t, Submitted, session.State)
}

func TestServiceSubmitter(t *testing.T) {
	client := mock.NewClient()
	session := NewSession(&ServiceSubmitter{Comments: services.NewCommentService(client)}, nil)

	require.NoError(t, session.Submit(context.Background(), validInput()))
	assert.Equal(t, Submitted, session.State)
	assert.Equal(t, 1, client.CreatedCount())
}

func TestFromRequest(t *testing.T) {
	values := url.Values{"_id": {"post-1"}, "name": {" Bob "}, "email": {"bob@example.com"}, "comment": {"Hi"}}
	r := httptest.NewRequest(http.MethodPost, "/post/hello", strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	in := FromRequest(r)
	assert.Equal(t, Input{ID: "post-1", Name: "Bob", Email: "bob@example.com", Comment: "Hi"}, in)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "unsubmitted", Unsubmitted.String())
	assert.Equal(t, "submitted", Submitted.String())
}
