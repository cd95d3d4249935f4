package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/eringen/folio/db"
)

// Contact is a message submitted through the contact form. Read and Replied
// only ever move from false to true.
type Contact struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	Replied   bool      `json:"replied"`
	CreatedAt time.Time `json:"created_at"`
}

// ContactInput is a new contact submission.
type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

const contactColumns = `id, name, email, subject, message, read, replied, created_at`

// Contacts reads and writes the contacts table.
type Contacts struct {
	db *db.Engine
}

// NewContacts returns a Contacts repository over e.
func NewContacts(e *db.Engine) *Contacts {
	return &Contacts{db: e}
}

func scanContact(s scanner) (Contact, error) {
	var c Contact
	var read, replied int
	var created string
	if err := s.Scan(&c.ID, &c.Name, &c.Email, &c.Subject, &c.Message, &read, &replied, &created); err != nil {
		return Contact{}, err
	}
	c.Read = read == 1
	c.Replied = replied == 1
	var err error
	if c.CreatedAt, err = parseTime(created); err != nil {
		return Contact{}, err
	}
	return c, nil
}

func (r *Contacts) list(ctx context.Context, query string, args ...any) ([]Contact, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying contacts: %w", err)
	}
	defer rows.Close()

	var contacts []Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// List returns every contact, newest first.
func (r *Contacts) List(ctx context.Context) ([]Contact, error) {
	return r.list(ctx, `SELECT `+contactColumns+` FROM contacts ORDER BY created_at DESC, id DESC`)
}

// Unread returns unread contacts, newest first.
func (r *Contacts) Unread(ctx context.Context) ([]Contact, error) {
	return r.list(ctx, `SELECT `+contactColumns+` FROM contacts WHERE read = 0 ORDER BY created_at DESC, id DESC`)
}

// Get returns the contact with id, or nil.
func (r *Contacts) Get(ctx context.Context, id int64) (*Contact, error) {
	row, err := r.db.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	c, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading contact: %w", err)
	}
	return &c, nil
}

// Create stores a new, unread contact.
func (r *Contacts) Create(ctx context.Context, in ContactInput) (*Contact, error) {
	res, err := r.db.Execute(ctx,
		`INSERT INTO contacts (name, email, subject, message, created_at) VALUES (?, ?, ?, ?, ?)`,
		in.Name, in.Email, in.Subject, in.Message, timestamp())
	if err != nil {
		return nil, fmt.Errorf("creating contact: %w", err)
	}
	return r.Get(ctx, res.LastInsertID)
}

// MarkRead flags the contact as read and returns it, or nil if absent.
func (r *Contacts) MarkRead(ctx context.Context, id int64) (*Contact, error) {
	if _, err := r.db.Execute(ctx, `UPDATE contacts SET read = 1 WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("marking contact %d read: %w", id, err)
	}
	return r.Get(ctx, id)
}

// MarkReplied flags the contact as replied, which also marks it read.
func (r *Contacts) MarkReplied(ctx context.Context, id int64) (*Contact, error) {
	if _, err := r.db.Execute(ctx, `UPDATE contacts SET replied = 1, read = 1 WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("marking contact %d replied: %w", id, err)
	}
	return r.Get(ctx, id)
}

// Delete removes a contact and reports how many rows were deleted.
func (r *Contacts) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.Execute(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("deleting contact %d: %w", id, err)
	}
	return res.RowsAffected, nil
}

// UnreadCount returns how many contacts have not been read.
func (r *Contacts) UnreadCount(ctx context.Context) (int, error) {
	row, err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM contacts WHERE read = 0`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("counting unread contacts: %w", err)
	}
	return n, nil
}
