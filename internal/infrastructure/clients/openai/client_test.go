package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sehatlabs/labtestdiscovery/backend/pkg/config"
	apperrors "github.com/sehatlabs/labtestdiscovery/backend/pkg/errors"
)

func testConfig() *config.OpenAIConfig {
	return &config.OpenAIConfig{
		APIKey:         "test-key",
		Model:          "gpt-4o-mini",
		RateLimitRPM:   600,
		RateLimitBurst: 10,
	}
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(&config.OpenAIConfig{})
	assert.Error(t, err)

	_, err = NewClient(nil)
	assert.Error(t, err)
}

func TestAnswerMedicalQuestion_Success(t *testing.T) {
	var gotPath, gotAuth string
	var gotPayload map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"output": []map[string]interface{}{
				{
					"content": []map[string]string{
						{"type": "output_text", "text": "A CBC measures blood cells.\nSUGGESTIONS: Book a CBC"},
					},
				},
			},
		})
	}))
	defer server.Close()

	client, err := NewClientWithOptions(testConfig(), server.URL, server.Client())
	require.NoError(t, err)

	answer, err := client.AnswerMedicalQuestion(context.Background(), "doc context", "what is a cbc")
	require.NoError(t, err)

	assert.Equal(t, "/responses", gotPath)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotPayload["model"])
	assert.Contains(t, answer, "A CBC measures blood cells.")
}

func TestAnswerMedicalQuestion_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewClientWithOptions(testConfig(), server.URL, server.Client())
	require.NoError(t, err)

	_, err = client.AnswerMedicalQuestion(context.Background(), "", "what is a cbc")
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeExternal, appErr.Type)
}

func TestAnswerMedicalQuestion_MissingOutputText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"output": []interface{}{}})
	}))
	defer server.Close()

	client, err := NewClientWithOptions(testConfig(), server.URL, server.Client())
	require.NoError(t, err)

	_, err = client.AnswerMedicalQuestion(context.Background(), "", "what is a cbc")
	assert.Error(t, err)
}

func TestAnswerMedicalQuestion_EmptyQuestion(t *testing.T) {
	client, err := NewClientWithOptions(testConfig(), "http://unused.invalid", nil)
	require.NoError(t, err)

	_, err = client.AnswerMedicalQuestion(context.Background(), "", "  ")
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
}
