package payment

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateCheckoutCarriesMetadata(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		_, _ = w.Write([]byte(`{"id":"cs_1","url":"https://pay.example/cs_1","paid":false}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "sk_test")
	session, err := c.CreateCheckout(context.Background(), "report-1", "https://app/ok", "https://app/no")
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/checkout/sessions" {
		t.Fatalf("path = %q", gotPath)
	}
	meta, _ := gotBody["metadata"].(map[string]any)
	if meta["report_session"] != "report-1" {
		t.Fatalf("metadata = %v", gotBody["metadata"])
	}
	if session.ID != "cs_1" || session.URL == "" {
		t.Fatalf("session = %+v", session)
	}
}

func TestGetCheckoutPaidFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"cs_1","paid":true,"metadata":{"report_session":"report-1"}}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "sk_test")
	session, err := c.GetCheckout(context.Background(), "cs_1")
	if err != nil {
		t.Fatal(err)
	}
	if !session.Paid || session.Metadata["report_session"] != "report-1" {
		t.Fatalf("session = %+v", session)
	}
}

func TestVerifyWebhookRoundTrip(t *testing.T) {
	body := []byte(`{"type":"checkout.completed","session":{"id":"cs_1","paid":true,"metadata":{"report_session":"r1"}}}`)
	sig := SignWebhook(body, "whsec")

	event, err := VerifyWebhook(body, sig, "whsec")
	if err != nil {
		t.Fatal(err)
	}
	if event.Type != "checkout.completed" || !event.Session.Paid {
		t.Fatalf("event = %+v", event)
	}
	if event.Session.Metadata["report_session"] != "r1" {
		t.Fatalf("metadata lost: %+v", event.Session)
	}
}

func TestVerifyWebhookRejectsBadSignature(t *testing.T) {
	body := []byte(`{"type":"checkout.completed"}`)
	_, err := VerifyWebhook(body, "deadbeef", "whsec")
	if !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}

	// A valid signature over different content must also fail.
	sig := SignWebhook([]byte("other"), "whsec")
	if _, err := VerifyWebhook(body, sig, "whsec"); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}
