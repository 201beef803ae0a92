package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatHandler(t *testing.T, captured *ChatRequest, header *http.Header, reply string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		if header != nil {
			*header = r.Header.Clone()
		}
		if captured != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(reply))
	}
}

func TestChatSendsModelAndMessages(t *testing.T) {
	var captured ChatRequest
	reply := `{"choices": [{"index": 0, "message": {"role": "assistant", "content": "hello back"}}]}`
	srv := httptest.NewServer(chatHandler(t, &captured, nil, reply))
	defer srv.Close()

	client := NewClient(srv.URL, "", "llama3.2:3b")
	resp, err := client.Chat(context.Background(), []Message{
		{Role: RoleSystem, Content: "be terse"},
		{Role: RoleUser, Content: "hello"},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "llama3.2:3b", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, RoleUser, captured.Messages[1].Role)
	assert.False(t, captured.Stream)
	assert.Equal(t, "hello back", resp.Content())

	_, ok := resp.FirstToolCall()
	assert.False(t, ok)
}

func TestChatToolsOmittedWhenNil(t *testing.T) {
	var rawBody map[string]json.RawMessage
	reply := `{"choices": []}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rawBody))
		w.Write([]byte(reply))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", "llama3.2:3b")
	_, err := client.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil)
	require.NoError(t, err)

	_, present := rawBody["tools"]
	assert.False(t, present)
}

func TestChatCarriesToolDeclaration(t *testing.T) {
	var captured ChatRequest
	reply := `{"choices": []}`
	srv := httptest.NewServer(chatHandler(t, &captured, nil, reply))
	defer srv.Close()

	client := NewClient(srv.URL, "", "llama3.2:3b")
	tool := NewFunctionTool("start_inspection", "Starts the drone inspection.")
	_, err := client.Chat(context.Background(), []Message{{Role: RoleUser, Content: "fly"}}, []Tool{tool})
	require.NoError(t, err)

	require.Len(t, captured.Tools, 1)
	assert.Equal(t, "function", captured.Tools[0].Type)
	assert.Equal(t, "start_inspection", captured.Tools[0].Function.Name)
	assert.Equal(t, "object", captured.Tools[0].Function.Parameters["type"])
}

func TestChatDecodesToolCall(t *testing.T) {
	reply := `{
		"choices": [{
			"index": 0,
			"message": {
				"role": "assistant",
				"content": "",
				"tool_calls": [{
					"id": "call_abc",
					"type": "function",
					"function": {"name": "start_inspection", "arguments": "{}"}
				}]
			}
		}]
	}`
	srv := httptest.NewServer(chatHandler(t, nil, nil, reply))
	defer srv.Close()

	client := NewClient(srv.URL, "", "llama3.2:3b")
	resp, err := client.Chat(context.Background(), []Message{{Role: RoleUser, Content: "fly the drone"}}, nil)
	require.NoError(t, err)

	call, ok := resp.FirstToolCall()
	require.True(t, ok)
	assert.Equal(t, "call_abc", call.ID)
	assert.Equal(t, "start_inspection", call.Function.Name)
}

func TestChatHeaders(t *testing.T) {
	t.Run("bearer token when key set", func(t *testing.T) {
		var header http.Header
		srv := httptest.NewServer(chatHandler(t, nil, &header, `{"choices": []}`))
		defer srv.Close()

		client := NewClient(srv.URL, "secret-key", "llama3.2:3b")
		_, err := client.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil)
		require.NoError(t, err)

		assert.Equal(t, "Bearer secret-key", header.Get("Authorization"))
		assert.Equal(t, "application/json", header.Get("Content-Type"))
	})

	t.Run("no auth header without key", func(t *testing.T) {
		var header http.Header
		srv := httptest.NewServer(chatHandler(t, nil, &header, `{"choices": []}`))
		defer srv.Close()

		client := NewClient(srv.URL, "", "llama3.2:3b")
		_, err := client.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil)
		require.NoError(t, err)

		assert.Empty(t, header.Get("Authorization"))
	})
}

func TestChatNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "model not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", "missing-model")
	_, err := client.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=404")
}

func TestPreloadSendsSingleUserMessage(t *testing.T) {
	var captured ChatRequest
	srv := httptest.NewServer(chatHandler(t, &captured, nil, `{"choices": []}`))
	defer srv.Close()

	client := NewClient(srv.URL, "", "llama3.2:3b")
	require.NoError(t, client.Preload(context.Background()))

	require.Len(t, captured.Messages, 1)
	assert.Equal(t, RoleUser, captured.Messages[0].Role)
	assert.Empty(t, captured.Tools)
}

func TestModel(t *testing.T) {
	client := NewClient("http://localhost:11434/v1", "", "llama3.2:3b")
	assert.Equal(t, "llama3.2:3b", client.Model())
}
