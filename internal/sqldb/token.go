package sqldb

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"time"

	"github.com/medialist/rest/internal/model"
)

type TokenDB struct {
	*sql.DB
	get    *sql.Stmt
	insert *sql.Stmt
	author *sql.Stmt
	delete *sql.Stmt
}

func NewTokenDB(db *sql.DB) *TokenDB {

	db.Exec(
		`CREATE TABLE IF NOT EXISTS token (
			key TEXT PRIMARY KEY,
			author_id INTEGER NOT NULL UNIQUE REFERENCES author(id) ON DELETE CASCADE,
			created_on TIMESTAMP NOT NULL
		);`)

	var tokenDB = &TokenDB{}
	tokenDB.DB = db
	tokenDB.get = mustPrepare(db, `SELECT key FROM token WHERE author_id = ? LIMIT 1`)
	tokenDB.insert = mustPrepare(db, `INSERT INTO token (key, author_id, created_on) VALUES (?, ?, ?)`)
	tokenDB.author = mustPrepare(db,
		`SELECT a.id, a.username, a.email, a.first_name, a.bio, a.verified, a.staff, a.secret_key, a.created_on
		 FROM token t JOIN author a ON a.id = t.author_id WHERE t.key = ? LIMIT 1`)
	tokenDB.delete = mustPrepare(db, `DELETE FROM token WHERE author_id = ?`)
	return tokenDB
}

// Key returns the author's opaque token, creating one on first use.
// The UNIQUE(author_id) constraint absorbs a concurrent first issue.
func (db *TokenDB) Key(authorID int64) (string, error) {
	var key string
	err := db.get.QueryRow(authorID).Scan(&key)
	if err == nil {
		return key, nil
	}
	if err != sql.ErrNoRows {
		return "", err
	}

	key, err = randomKey()
	if err != nil {
		return "", err
	}
	if _, err = db.insert.Exec(key, authorID, time.Now().UTC()); err != nil {
		if isConstraint(err) {
			// Another request issued the token first; use theirs.
			err = db.get.QueryRow(authorID).Scan(&key)
		}
		if err != nil {
			return "", err
		}
	}
	return key, nil
}

// Author resolves a token key to the full author record.
func (db *TokenDB) Author(key string) (*model.Author, error) {
	var a = &model.Author{}
	err := db.author.QueryRow(key).Scan(&a.ID, &a.Username, &a.Email, &a.FirstName, &a.Bio, &a.Verified, &a.Staff, &a.SecretKey, &a.CreatedOn)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Delete revokes the author's token.
func (db *TokenDB) Delete(authorID int64) error {
	_, err := db.delete.Exec(authorID)
	return err
}

func randomKey() (string, error) {
	var b [20]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
