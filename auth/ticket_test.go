package auth

import (
	"testing"
	"time"

	"github.com/gamehall/backend/config"
)

func withTestConfig(t *testing.T, ttl time.Duration) {
	t.Helper()
	old := config.AppConfig
	config.AppConfig = &config.Config{
		TicketSecret: "test-secret",
		TicketTTL:    ttl,
	}
	t.Cleanup(func() { config.AppConfig = old })
}

func TestTicketRoundTrip(t *testing.T) {
	withTestConfig(t, time.Hour)

	ticket, err := GenerateTicket("lobby-1", "alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ValidateTicket(ticket)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.LobbyID != "lobby-1" || claims.PlayerName != "alice" {
		t.Fatalf("claims %+v", claims)
	}
}

func TestValidateTicket_RejectsTampering(t *testing.T) {
	withTestConfig(t, time.Hour)

	ticket, err := GenerateTicket("lobby-1", "alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := ValidateTicket(ticket + "x"); err == nil {
		t.Fatal("tampered ticket accepted")
	}
	if _, err := ValidateTicket("not-a-ticket"); err == nil {
		t.Fatal("garbage ticket accepted")
	}

	config.AppConfig.TicketSecret = "rotated"
	if _, err := ValidateTicket(ticket); err == nil {
		t.Fatal("ticket accepted after secret rotation")
	}
}

func TestValidateTicket_RejectsExpired(t *testing.T) {
	withTestConfig(t, -time.Minute)

	ticket, err := GenerateTicket("lobby-1", "alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ValidateTicket(ticket); err == nil {
		t.Fatal("expired ticket accepted")
	}
}
