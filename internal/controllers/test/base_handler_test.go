// Package controllers_test 提供 controllers 层的黑盒测试。
package controllers_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/storycut/services-edit/internal/controllers"
)

func TestBaseHandlerExtractCredentials(t *testing.T) {
	handler := controllers.NewBaseHandler(controllers.HandlerTimeouts{})

	header := http.Header{}
	header.Set("Authorization", "Bearer access-token-123")
	header.Set("device-token", "device-456")

	creds := handler.ExtractCredentials(header)
	if creds.AccessToken != "access-token-123" {
		t.Fatalf("expected bearer prefix stripped, got %q", creds.AccessToken)
	}
	if creds.DeviceToken != "device-456" {
		t.Fatalf("expected device token device-456, got %q", creds.DeviceToken)
	}
}

func TestBaseHandlerExtractCredentialsRawToken(t *testing.T) {
	handler := controllers.NewBaseHandler(controllers.HandlerTimeouts{})

	header := http.Header{}
	header.Set("Authorization", "raw-token")

	creds := handler.ExtractCredentials(header)
	if creds.AccessToken != "raw-token" {
		t.Fatalf("expected raw token passthrough, got %q", creds.AccessToken)
	}
	if creds.DeviceToken != "" {
		t.Fatalf("expected empty device token, got %q", creds.DeviceToken)
	}
}

func TestBaseHandlerWithTimeout(t *testing.T) {
	handler := controllers.NewBaseHandler(controllers.HandlerTimeouts{Command: 200 * time.Millisecond})
	ctx, cancel := handler.WithTimeout(context.Background(), controllers.HandlerTypeCommand)
	defer cancel()

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatalf("expected deadline to be set")
	}
	remaining := time.Until(deadline)
	if remaining < 150*time.Millisecond || remaining > 250*time.Millisecond {
		t.Fatalf("expected timeout near 200ms, got %v", remaining)
	}
}

func TestBaseHandlerTimeoutFallbacks(t *testing.T) {
	handler := controllers.NewBaseHandler(controllers.HandlerTimeouts{Query: time.Second})

	ctx, cancel := handler.WithTimeout(context.Background(), controllers.HandlerTypeCommand)
	defer cancel()
	if _, ok := ctx.Deadline(); !ok {
		t.Fatalf("command timeout should fall back to default")
	}
}
