package travel

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"travelcopilot/internal/models"
)

// CreateConversation opens a new copilot conversation for the agent and
// deactivates any previously active one, so at most one conversation per
// agent is active.
func (s *Service) CreateConversation(ctx context.Context, agentID int64, customerID, tripID *int64) (*models.Conversation, error) {
	if agentID <= 0 {
		return nil, errors.New("invalid agent id")
	}
	if customerID != nil && *customerID > 0 {
		if _, err := s.GetCustomer(ctx, agentID, *customerID); err != nil {
			return nil, err
		}
	}
	if tripID != nil && *tripID > 0 {
		if _, err := s.GetTrip(ctx, agentID, *tripID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET is_active = 0, updated_at = ? WHERE agent_id = ? AND is_active = 1`,
		now, agentID,
	); err != nil {
		return nil, fmt.Errorf("deactivate conversations: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (agent_id, customer_id, trip_id, context, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, NULL, 1, ?, ?)`,
		agentID, nullableID(customerID), nullableID(tripID), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("conversation id: %w", err)
	}

	return &models.Conversation{
		ID:         id,
		AgentID:    agentID,
		CustomerID: normalizeID(customerID),
		TripID:     normalizeID(tripID),
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// GetConversation loads a conversation and its messages in chronological
// order, enforcing agent ownership.
func (s *Service) GetConversation(ctx context.Context, agentID, conversationID int64) (*models.Conversation, error) {
	conv, err := s.conversationRow(ctx, agentID, conversationID)
	if err != nil {
		return nil, err
	}
	messages, err := s.conversationMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	conv.Messages = messages
	return conv, nil
}

// ActiveConversation returns the agent's current active conversation, or
// sql.ErrNoRows when none exists.
func (s *Service) ActiveConversation(ctx context.Context, agentID int64) (*models.Conversation, error) {
	if agentID <= 0 {
		return nil, errors.New("invalid agent id")
	}
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM conversations WHERE agent_id = ? AND is_active = 1 ORDER BY updated_at DESC, id DESC LIMIT 1`,
		agentID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("query active conversation: %w", err)
	}
	return s.GetConversation(ctx, agentID, id)
}

// AppendMessage atomically appends a message at the next position. The
// position is computed inside the insert, so concurrent appends never
// overwrite each other; a position collision retries with a fresh
// computation.
func (s *Service) AppendMessage(ctx context.Context, conversationID int64, role models.Role, content string, isVoice bool, metadata *models.MessageMetadata) (*models.Message, error) {
	if conversationID <= 0 {
		return nil, errors.New("invalid conversation id")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.New("content cannot be empty")
	}

	metaJSON, err := marshalNullable(metadata)
	if err != nil {
		return nil, fmt.Errorf("encode message metadata: %w", err)
	}

	now := time.Now().UTC()
	var msgID int64
	for attempt := 0; ; attempt++ {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO messages (conversation_id, position, role, content, is_voice, metadata, created_at)
			 SELECT ?, COALESCE(MAX(position) + 1, 0), ?, ?, ?, ?, ?
			 FROM messages WHERE conversation_id = ?`,
			conversationID, role, content, isVoice, metaJSON, now, conversationID,
		)
		if err != nil {
			if isUniqueViolation(err) && attempt < 5 {
				continue
			}
			return nil, fmt.Errorf("append message: %w", err)
		}
		msgID, err = res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("message id: %w", err)
		}
		break
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET updated_at = ? WHERE id = ?`, now, conversationID,
	); err != nil {
		return nil, fmt.Errorf("touch conversation: %w", err)
	}

	var position int
	if err := s.db.QueryRowContext(ctx,
		`SELECT position FROM messages WHERE id = ?`, msgID,
	).Scan(&position); err != nil {
		return nil, fmt.Errorf("read message position: %w", err)
	}

	return &models.Message{
		ID:             msgID,
		ConversationID: conversationID,
		Position:       position,
		Role:           role,
		Content:        content,
		IsVoice:        isVoice,
		Metadata:       metadata,
		CreatedAt:      now,
	}, nil
}

// SetConversationContext stores the latest pipeline outcome on the
// conversation row.
func (s *Service) SetConversationContext(ctx context.Context, conversationID int64, convCtx *models.ConversationContext) error {
	if conversationID <= 0 {
		return errors.New("invalid conversation id")
	}
	ctxJSON, err := marshalNullable(convCtx)
	if err != nil {
		return fmt.Errorf("encode conversation context: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET context = ?, updated_at = ? WHERE id = ?`,
		ctxJSON, time.Now().UTC(), conversationID,
	)
	if err != nil {
		return fmt.Errorf("update conversation context: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Service) conversationRow(ctx context.Context, agentID, conversationID int64) (*models.Conversation, error) {
	if agentID <= 0 || conversationID <= 0 {
		return nil, errors.New("invalid id")
	}
	var (
		conv       models.Conversation
		customerID sql.NullInt64
		tripID     sql.NullInt64
		contextRaw sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, agent_id, customer_id, trip_id, context, is_active, created_at, updated_at
		 FROM conversations WHERE id = ? AND agent_id = ?`, conversationID, agentID,
	).Scan(&conv.ID, &conv.AgentID, &customerID, &tripID, &contextRaw, &conv.IsActive, &conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("query conversation: %w", err)
	}
	if customerID.Valid {
		id := customerID.Int64
		conv.CustomerID = &id
	}
	if tripID.Valid {
		id := tripID.Int64
		conv.TripID = &id
	}
	if contextRaw.Valid && contextRaw.String != "" {
		var c models.ConversationContext
		if err := json.Unmarshal([]byte(contextRaw.String), &c); err != nil {
			return nil, fmt.Errorf("decode conversation context: %w", err)
		}
		conv.Context = &c
	}
	return &conv, nil
}

func (s *Service) conversationMessages(ctx context.Context, conversationID int64) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, position, role, content, is_voice, metadata, created_at
		 FROM messages WHERE conversation_id = ? ORDER BY position`, conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var (
			m    models.Message
			meta sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Position, &m.Role, &m.Content,
			&m.IsVoice, &meta, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if meta.Valid && meta.String != "" {
			var md models.MessageMetadata
			if err := json.Unmarshal([]byte(meta.String), &md); err != nil {
				return nil, fmt.Errorf("decode message metadata: %w", err)
			}
			m.Metadata = &md
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil || *id <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func normalizeID(id *int64) *int64 {
	if id == nil || *id <= 0 {
		return nil
	}
	return id
}
