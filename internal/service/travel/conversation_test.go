package travel

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"

	"travelcopilot/internal/models"
)

func TestCreateConversationSingleActive(t *testing.T) {
	svc := newTestService(t)
	agent := seedAgent(t, svc, "priya")

	first, err := svc.CreateConversation(context.Background(), agent.ID, nil, nil)
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	second, err := svc.CreateConversation(context.Background(), agent.ID, nil, nil)
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}

	active, err := svc.ActiveConversation(context.Background(), agent.ID)
	if err != nil {
		t.Fatalf("active conversation: %v", err)
	}
	if active.ID != second.ID {
		t.Fatalf("expected %d active, got %d", second.ID, active.ID)
	}
	old, err := svc.GetConversation(context.Background(), agent.ID, first.ID)
	if err != nil {
		t.Fatalf("get conversation: %v", err)
	}
	if old.IsActive {
		t.Fatalf("previous conversation still active")
	}
}

func TestCreateConversationValidatesLinks(t *testing.T) {
	svc := newTestService(t)
	agent := seedAgent(t, svc, "priya")
	other := seedAgent(t, svc, "vikram")
	customer := seedCustomer(t, svc, other.ID)

	if _, err := svc.CreateConversation(context.Background(), agent.ID, &customer.ID, nil); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows for foreign customer, got %v", err)
	}
}

func TestActiveConversationNone(t *testing.T) {
	svc := newTestService(t)
	agent := seedAgent(t, svc, "priya")

	if _, err := svc.ActiveConversation(context.Background(), agent.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestAppendMessagePositions(t *testing.T) {
	svc := newTestService(t)
	agent := seedAgent(t, svc, "priya")
	conv, err := svc.CreateConversation(context.Background(), agent.ID, nil, nil)
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}

	for i := 0; i < 5; i++ {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		msg, err := svc.AppendMessage(context.Background(), conv.ID, role, fmt.Sprintf("message %d", i), false, nil)
		if err != nil {
			t.Fatalf("append message %d: %v", i, err)
		}
		if msg.Position != i {
			t.Fatalf("message %d got position %d", i, msg.Position)
		}
	}

	got, err := svc.GetConversation(context.Background(), agent.ID, conv.ID)
	if err != nil {
		t.Fatalf("get conversation: %v", err)
	}
	if len(got.Messages) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(got.Messages))
	}
	for i, m := range got.Messages {
		if m.Position != i {
			t.Fatalf("message %d has position %d", i, m.Position)
		}
	}
}

func TestAppendMessageConcurrent(t *testing.T) {
	svc := newTestService(t)
	agent := seedAgent(t, svc, "priya")
	conv, err := svc.CreateConversation(context.Background(), agent.ID, nil, nil)
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}

	const n = 10
	var wg sync.WaitGroup
	wg.Add(n)
	errCh := make(chan error, n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			_, err := svc.AppendMessage(context.Background(), conv.ID, models.RoleUser, fmt.Sprintf("racer %d", i), false, nil)
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("concurrent append: %v", err)
		}
	}

	got, err := svc.GetConversation(context.Background(), agent.ID, conv.ID)
	if err != nil {
		t.Fatalf("get conversation: %v", err)
	}
	if len(got.Messages) != n {
		t.Fatalf("expected %d messages, got %d", n, len(got.Messages))
	}
	seen := make(map[int]bool)
	for _, m := range got.Messages {
		if seen[m.Position] {
			t.Fatalf("duplicate position %d", m.Position)
		}
		seen[m.Position] = true
	}
	for i := 0; i < n; i++ {
		if !seen[i] {
			t.Fatalf("position %d missing", i)
		}
	}
}

func TestAppendMessageStoresMetadata(t *testing.T) {
	svc := newTestService(t)
	agent := seedAgent(t, svc, "priya")
	conv, err := svc.CreateConversation(context.Background(), agent.ID, nil, nil)
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}

	metadata := &models.MessageMetadata{
		SearchResults: &models.SearchResults{
			Flights: []models.FlightOffer{{Airline: "Air India", FlightNumber: "AI101", Price: 8500}},
		},
	}
	if _, err := svc.AppendMessage(context.Background(), conv.ID, models.RoleAssistant, "found one", false, metadata); err != nil {
		t.Fatalf("append message: %v", err)
	}

	got, err := svc.GetConversation(context.Background(), agent.ID, conv.ID)
	if err != nil {
		t.Fatalf("get conversation: %v", err)
	}
	m := got.Messages[0]
	if m.Metadata == nil || m.Metadata.SearchResults == nil || len(m.Metadata.SearchResults.Flights) != 1 {
		t.Fatalf("metadata not round-tripped: %+v", m.Metadata)
	}
	if m.Metadata.SearchResults.Flights[0].FlightNumber != "AI101" {
		t.Fatalf("unexpected flight: %+v", m.Metadata.SearchResults.Flights[0])
	}
}

func TestSetConversationContext(t *testing.T) {
	svc := newTestService(t)
	agent := seedAgent(t, svc, "priya")
	conv, err := svc.CreateConversation(context.Background(), agent.ID, nil, nil)
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}

	intent := models.SearchIntent{HasSearchIntent: true, SearchType: models.OfferFlight, Destination: "Goa"}
	err = svc.SetConversationContext(context.Background(), conv.ID, &models.ConversationContext{LastIntent: &intent})
	if err != nil {
		t.Fatalf("set context: %v", err)
	}

	got, err := svc.GetConversation(context.Background(), agent.ID, conv.ID)
	if err != nil {
		t.Fatalf("get conversation: %v", err)
	}
	if got.Context == nil || got.Context.LastIntent == nil || got.Context.LastIntent.Destination != "Goa" {
		t.Fatalf("context not stored: %+v", got.Context)
	}

	if err := svc.SetConversationContext(context.Background(), 9999, &models.ConversationContext{}); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestGetConversationOwnership(t *testing.T) {
	svc := newTestService(t)
	agent := seedAgent(t, svc, "priya")
	other := seedAgent(t, svc, "vikram")
	conv, err := svc.CreateConversation(context.Background(), agent.ID, nil, nil)
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}

	if _, err := svc.GetConversation(context.Background(), other.ID, conv.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}
