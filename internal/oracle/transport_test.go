package oracle

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// #region openai-tests

func TestOpenAICompleter_Complete(t *testing.T) {
	var got openAIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer lm-studio", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" собрал скворечник из досок \n"}}]}`))
	}))
	defer srv.Close()

	cfg := DefaultEndpointConfig()
	cfg.BaseURL = srv.URL + "/v1/"
	c := NewOpenAICompleter(cfg)

	text, err := c.Complete(context.Background(), CompletionRequest{Prompt: "придумай", Temperature: 0})
	require.NoError(t, err)
	assert.Equal(t, "собрал скворечник из досок", text)

	assert.Equal(t, "local-model", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "придумай", got.Messages[0].Content)
	assert.Equal(t, 0.0, got.Temperature)
}

func TestOpenAICompleter_SendsSystemMessage(t *testing.T) {
	var got openAIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"7"}}]}`))
	}))
	defer srv.Close()

	cfg := DefaultEndpointConfig()
	cfg.BaseURL = srv.URL
	_, err := NewOpenAICompleter(cfg).Complete(context.Background(), CompletionRequest{System: "ты судья", Prompt: "оцени"})
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
}

func TestOpenAICompleter_Errors(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
	}{
		"http status": {http.StatusInternalServerError, `{"error":{"message":"model not loaded"}}`},
		"api error":   {http.StatusOK, `{"error":{"message":"context length exceeded"}}`},
		"no choices":  {http.StatusOK, `{"choices":[]}`},
		"bad json":    {http.StatusOK, `not json`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			cfg := DefaultEndpointConfig()
			cfg.BaseURL = srv.URL
			_, err := NewOpenAICompleter(cfg).Complete(context.Background(), CompletionRequest{Prompt: "x"})
			assert.Error(t, err)
		})
	}
}

// #endregion openai-tests

// #region grpc-tests

type fakeOracleServer struct {
	last *structpb.Struct
	fail bool
}

func (f *fakeOracleServer) Complete(_ context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {
	f.last = req
	if f.fail {
		return nil, status.Error(codes.Unavailable, "model loading")
	}
	return wrapperspb.String("научился играть на гитаре"), nil
}

func startOracleServer(t *testing.T, impl OracleServer) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterOracleServer(srv, impl)
	go func() { _ = srv.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Close()
		srv.Stop()
	})
	return conn
}

func TestGRPCCompleter_Complete(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	t.Run("round trip", func(t *testing.T) {
		impl := &fakeOracleServer{}
		c := NewGRPCCompleterWithConn(startOracleServer(t, impl), "local-model")

		text, err := c.Complete(context.Background(), CompletionRequest{Prompt: "придумай действие", Temperature: 0.9})
		require.NoError(t, err)
		assert.Equal(t, "научился играть на гитаре", text)

		fields := impl.last.GetFields()
		assert.Equal(t, "придумай действие", fields["prompt"].GetStringValue())
		assert.Equal(t, "local-model", fields["model"].GetStringValue())
		assert.InDelta(t, 0.9, fields["temperature"].GetNumberValue(), 1e-9)
	})

	t.Run("server error", func(t *testing.T) {
		c := NewGRPCCompleterWithConn(startOracleServer(t, &fakeOracleServer{fail: true}), "local-model")
		_, err := c.Complete(context.Background(), CompletionRequest{Prompt: "x"})
		require.Error(t, err)
		assert.Equal(t, codes.Unavailable, status.Code(err))
	})
}

// #endregion grpc-tests
