// Package sqldb is the relational store behind the API. Each resource
// gets its own XxxDB with prepared statements; the UNIQUE constraints
// declared here are the authority for every uniqueness rule, the
// handlers' pre-checks are only a courtesy.
package sqldb

import (
	"database/sql"
	"errors"
	"net/url"

	"github.com/mattn/go-sqlite3"
	"github.com/xo/dburl"

	"github.com/medialist/rest/internal/model"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

type DB struct {
	*sql.DB
	Authors   *AuthorDB
	Tokens    *TokenDB
	Topics    *TopicDB
	Articles  *ArticleDB
	Bookmarks *BookmarkDB
}

// Open connects per the dburl scheme, e.g. "sqlite:medialist.db".
// Foreign key enforcement is a per-connection sqlite setting, so it
// goes into the DSN where it reaches every connection the pool opens,
// not just the first one.
func Open(rawurl string) (*DB, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("_foreign_keys", "on")
	u.RawQuery = q.Encode()

	db, err := dburl.Open(u.String())
	if err != nil {
		return nil, err
	}
	return New(db)
}

// New wires the per-resource stores over one shared pool. The pool must
// already enforce foreign keys on every connection; Open arranges that
// through the driver's _foreign_keys DSN option.
func New(db *sql.DB) (*DB, error) {
	var d = &DB{DB: db}
	d.Authors = NewAuthorDB(db)
	d.Tokens = NewTokenDB(db)
	d.Topics = NewTopicDB(db)
	d.Articles = NewArticleDB(db)
	d.Bookmarks = NewBookmarkDB(db, d.Articles)
	return d, nil
}

// AuthorByToken resolves an opaque token key to its author. Satisfies
// auth.AuthorSource.
func (d *DB) AuthorByToken(key string) (*model.Author, error) {
	return d.Tokens.Author(key)
}

func mustPrepare(db *sql.DB, query string) *sql.Stmt {
	stmt, err := db.Prepare(query)
	if err != nil {
		panic(err)
	}
	return stmt
}

// isConstraint reports whether err is a sqlite UNIQUE (or other
// constraint) violation.
func isConstraint(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.Code == sqlite3.ErrConstraint
	}
	return false
}
