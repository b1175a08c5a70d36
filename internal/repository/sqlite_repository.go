package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"chatdesk/internal/model"
)

type sqliteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) Repository {
	return &sqliteRepository{db: db}
}

// --- Sessions ---

func (r *sqliteRepository) CreateSession(ctx context.Context, session *model.Session) error {
	query := "INSERT INTO sessions (id, group_id, user_id, title, status, last_message, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
	_, err := r.db.ExecContext(ctx, query,
		session.ID, session.GroupID, session.UserID, session.Title,
		session.Status, session.LastMessage, session.CreatedAt, session.UpdatedAt,
	)
	return err
}

func (r *sqliteRepository) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	query := "SELECT id, group_id, user_id, title, status, last_message, created_at, updated_at FROM sessions WHERE id = ?"
	row := r.db.QueryRowContext(ctx, query, sessionID)

	var session model.Session
	var lastMessage sql.NullString
	err := row.Scan(&session.ID, &session.GroupID, &session.UserID, &session.Title,
		&session.Status, &lastMessage, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if lastMessage.Valid {
		session.LastMessage = lastMessage.String
	}
	return &session, nil
}

func (r *sqliteRepository) GetSessions(ctx context.Context, groupID string) ([]*model.Session, error) {
	query := "SELECT id, group_id, user_id, title, status, last_message, created_at, updated_at FROM sessions WHERE group_id = ? ORDER BY updated_at DESC"
	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*model.Session
	for rows.Next() {
		var session model.Session
		var lastMessage sql.NullString
		if err := rows.Scan(&session.ID, &session.GroupID, &session.UserID, &session.Title,
			&session.Status, &lastMessage, &session.CreatedAt, &session.UpdatedAt); err != nil {
			return nil, err
		}
		if lastMessage.Valid {
			session.LastMessage = lastMessage.String
		}
		sessions = append(sessions, &session)
	}
	return sessions, rows.Err()
}

func (r *sqliteRepository) UpdateSessionTitle(ctx context.Context, sessionID, newTitle string) error {
	query := "UPDATE sessions SET title = ?, updated_at = ? WHERE id = ?"
	return r.execExpectingRow(ctx, query, newTitle, time.Now().UTC(), sessionID)
}

func (r *sqliteRepository) UpdateSessionStatus(ctx context.Context, sessionID string, status model.SessionStatus) error {
	query := "UPDATE sessions SET status = ?, updated_at = ? WHERE id = ?"
	return r.execExpectingRow(ctx, query, status, time.Now().UTC(), sessionID)
}

func (r *sqliteRepository) UpdateSessionLastMessage(ctx context.Context, sessionID, summary string) error {
	query := "UPDATE sessions SET last_message = ?, updated_at = ? WHERE id = ?"
	return r.execExpectingRow(ctx, query, summary, time.Now().UTC(), sessionID)
}

// DeleteSession removes the session row; messages and citations follow via
// ON DELETE CASCADE.
func (r *sqliteRepository) DeleteSession(ctx context.Context, sessionID string) error {
	query := "DELETE FROM sessions WHERE id = ?"
	return r.execExpectingRow(ctx, query, sessionID)
}

// --- Messages ---

// AddMessage inserts the message and bumps the owning session's timestamp in
// one transaction.
func (r *sqliteRepository) AddMessage(ctx context.Context, message *model.Message) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	var metadata sql.NullString
	if len(message.Metadata) > 0 && string(message.Metadata) != "null" {
		metadata.String = string(message.Metadata)
		metadata.Valid = true
	}

	insertQuery := "INSERT INTO messages (id, session_id, role, content, metadata, created_at) VALUES (?, ?, ?, ?, ?, ?)"
	_, err = tx.ExecContext(ctx, insertQuery,
		message.ID, message.SessionID, message.Role, message.Content, metadata, message.CreatedAt)
	if err != nil {
		return fmt.Errorf("could not insert message: %w", err)
	}

	updateQuery := "UPDATE sessions SET updated_at = ? WHERE id = ?"
	if _, err = tx.ExecContext(ctx, updateQuery, time.Now().UTC(), message.SessionID); err != nil {
		return fmt.Errorf("could not update session timestamp: %w", err)
	}

	return tx.Commit()
}

func (r *sqliteRepository) GetMessagesBySessionID(ctx context.Context, sessionID string) ([]model.Message, error) {
	query := "SELECT id, session_id, role, content, metadata, created_at FROM messages WHERE session_id = ? ORDER BY created_at ASC"
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var msg model.Message
		var metadata sql.NullString
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &metadata, &msg.CreatedAt); err != nil {
			return nil, err
		}
		if metadata.Valid {
			msg.Metadata = json.RawMessage(metadata.String)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// --- Citations ---

func (r *sqliteRepository) AddCitations(ctx context.Context, messageID string, citations []model.Citation) error {
	if len(citations) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := "INSERT INTO citations (id, message_id, source_kind, title, snippet, source_ref, metadata) VALUES (?, ?, ?, ?, ?, ?, ?)"
	for _, c := range citations {
		var metadata sql.NullString
		if len(c.Metadata) > 0 && string(c.Metadata) != "null" {
			metadata.String = string(c.Metadata)
			metadata.Valid = true
		}
		if _, err := tx.ExecContext(ctx, query,
			c.ID, messageID, c.SourceKind, c.Title, c.Snippet, c.SourceRef, metadata); err != nil {
			return fmt.Errorf("could not insert citation: %w", err)
		}
	}
	return tx.Commit()
}

func (r *sqliteRepository) GetCitationsByMessageID(ctx context.Context, messageID string) ([]model.Citation, error) {
	query := "SELECT id, message_id, source_kind, title, snippet, source_ref, metadata FROM citations WHERE message_id = ?"
	rows, err := r.db.QueryContext(ctx, query, messageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var citations []model.Citation
	for rows.Next() {
		var c model.Citation
		var sourceRef, metadata sql.NullString
		if err := rows.Scan(&c.ID, &c.MessageID, &c.SourceKind, &c.Title, &c.Snippet, &sourceRef, &metadata); err != nil {
			return nil, err
		}
		if sourceRef.Valid {
			c.SourceRef = sourceRef.String
		}
		if metadata.Valid {
			c.Metadata = json.RawMessage(metadata.String)
		}
		citations = append(citations, c)
	}
	return citations, rows.Err()
}

// --- Feedback ---

// AddFeedback appends a feedback row. Feedback is append-only; there is no
// update or delete path.
func (r *sqliteRepository) AddFeedback(ctx context.Context, feedback *model.Feedback) error {
	query := "INSERT INTO feedback (id, message_id, user_id, rating, note, created_at) VALUES (?, ?, ?, ?, ?, ?)"
	_, err := r.db.ExecContext(ctx, query,
		feedback.ID, feedback.MessageID, feedback.UserID, feedback.Rating, feedback.Note, feedback.CreatedAt)
	return err
}

func (r *sqliteRepository) GetFeedbackByMessageID(ctx context.Context, messageID string) ([]model.Feedback, error) {
	query := "SELECT id, message_id, user_id, rating, note, created_at FROM feedback WHERE message_id = ? ORDER BY created_at ASC"
	rows, err := r.db.QueryContext(ctx, query, messageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.Feedback
	for rows.Next() {
		var f model.Feedback
		var note sql.NullString
		if err := rows.Scan(&f.ID, &f.MessageID, &f.UserID, &f.Rating, &note, &f.CreatedAt); err != nil {
			return nil, err
		}
		if note.Valid {
			f.Note = note.String
		}
		items = append(items, f)
	}
	return items, rows.Err()
}

// --- Tenant settings ---

func (r *sqliteRepository) GetTenantSettings(ctx context.Context, groupID string) (*model.TenantSettings, error) {
	query := "SELECT group_id, title, subtitle, avatar_url, suggested_questions, webhook_url, simulation_enabled FROM tenant_settings WHERE group_id = ?"
	row := r.db.QueryRowContext(ctx, query, groupID)

	var settings model.TenantSettings
	var questions string
	err := row.Scan(&settings.GroupID, &settings.Title, &settings.Subtitle, &settings.AvatarURL,
		&questions, &settings.WebhookURL, &settings.SimulationEnabled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(questions), &settings.SuggestedQuestions); err != nil {
		return nil, fmt.Errorf("could not decode suggested questions: %w", err)
	}
	return &settings, nil
}

func (r *sqliteRepository) SaveTenantSettings(ctx context.Context, settings *model.TenantSettings) error {
	questions, err := json.Marshal(settings.SuggestedQuestions)
	if err != nil {
		return fmt.Errorf("could not encode suggested questions: %w", err)
	}
	query := `
		INSERT INTO tenant_settings (group_id, title, subtitle, avatar_url, suggested_questions, webhook_url, simulation_enabled)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(group_id) DO UPDATE SET
			title = excluded.title,
			subtitle = excluded.subtitle,
			avatar_url = excluded.avatar_url,
			suggested_questions = excluded.suggested_questions,
			webhook_url = excluded.webhook_url,
			simulation_enabled = excluded.simulation_enabled
	`
	_, err = r.db.ExecContext(ctx, query,
		settings.GroupID, settings.Title, settings.Subtitle, settings.AvatarURL,
		string(questions), settings.WebhookURL, settings.SimulationEnabled)
	return err
}

// --- Analytics ---

func (r *sqliteRepository) GetGroupAnalytics(ctx context.Context, groupID string) (*model.GroupAnalytics, error) {
	analytics := &model.GroupAnalytics{
		GroupID:        groupID,
		MessagesByRole: make(map[string]int),
	}

	row := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions WHERE group_id = ?", groupID)
	if err := row.Scan(&analytics.SessionCount); err != nil {
		return nil, err
	}

	roleQuery := `
		SELECT m.role, COUNT(*)
		FROM messages m JOIN sessions s ON m.session_id = s.id
		WHERE s.group_id = ?
		GROUP BY m.role
	`
	rows, err := r.db.QueryContext(ctx, roleQuery, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var role string
		var count int
		if err := rows.Scan(&role, &count); err != nil {
			return nil, err
		}
		analytics.MessagesByRole[role] = count
		analytics.MessageCount += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	dayQuery := `
		SELECT date(m.created_at), COUNT(*)
		FROM messages m JOIN sessions s ON m.session_id = s.id
		WHERE s.group_id = ?
		GROUP BY date(m.created_at)
		ORDER BY date(m.created_at)
	`
	dayRows, err := r.db.QueryContext(ctx, dayQuery, groupID)
	if err != nil {
		return nil, err
	}
	defer dayRows.Close()
	for dayRows.Next() {
		var dc model.DailyCount
		if err := dayRows.Scan(&dc.Day, &dc.Count); err != nil {
			return nil, err
		}
		analytics.MessagesByDay = append(analytics.MessagesByDay, dc)
	}
	if err := dayRows.Err(); err != nil {
		return nil, err
	}

	feedbackQuery := `
		SELECT
			COALESCE(SUM(CASE WHEN f.rating = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN f.rating = -1 THEN 1 ELSE 0 END), 0)
		FROM feedback f
		JOIN messages m ON f.message_id = m.id
		JOIN sessions s ON m.session_id = s.id
		WHERE s.group_id = ?
	`
	row = r.db.QueryRowContext(ctx, feedbackQuery, groupID)
	if err := row.Scan(&analytics.FeedbackUpvotes, &analytics.FeedbackDownvotes); err != nil {
		return nil, err
	}

	return analytics, nil
}

// execExpectingRow runs an UPDATE/DELETE and maps "no rows affected" to
// ErrNotFound.
func (r *sqliteRepository) execExpectingRow(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
