// Package tracing wires optional Langfuse tracing into the Eino callback
// chain. Tracing is opt-in: it activates only when the Langfuse keys are
// present in the environment, so local runs need no tracing backend.
package tracing

import (
	"os"

	"github.com/cloudwego/eino-ext/callbacks/langfuse"
	"github.com/cloudwego/eino/callbacks"
)

// defaultHost targets a local Langfuse deployment (docker-compose).
const defaultHost = "http://localhost:3000"

// Setup builds the Langfuse callback handler from LANGFUSE_PUBLIC_KEY,
// LANGFUSE_SECRET_KEY, and LANGFUSE_HOST. The returned flush function must
// be called before process exit so buffered trace events are delivered.
// When the keys are absent, Setup returns (nil, nil, false) and tracing is
// silently disabled.
func Setup() (callbacks.Handler, func(), bool) {
	publicKey := os.Getenv("LANGFUSE_PUBLIC_KEY")
	secretKey := os.Getenv("LANGFUSE_SECRET_KEY")
	if publicKey == "" || secretKey == "" {
		return nil, nil, false
	}

	host := os.Getenv("LANGFUSE_HOST")
	if host == "" {
		host = defaultHost
	}

	handler, flusher := langfuse.NewLangfuseHandler(&langfuse.Config{
		Host:      host,
		PublicKey: publicKey,
		SecretKey: secretKey,
	})

	return handler, flusher, true
}
