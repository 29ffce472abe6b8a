package sqldb

import (
	"database/sql"
	"strings"
	"time"

	"github.com/medialist/rest/internal/model"
)

const articleCols = `a.id, a.title, a.slug, a.content, a.draft, a.objectivity, a.thumbnail_url,
	a.topic_id, a.author_id, a.created_on, a.updated_on, t.name, u.username`

const selectArticle = `SELECT ` + articleCols + ` FROM article a
	LEFT JOIN topic t ON t.id = a.topic_id
	LEFT JOIN author u ON u.id = a.author_id`

type ArticleDB struct {
	*sql.DB
	insert       *sql.Stmt
	insertTag    *sql.Stmt
	byID         *sql.Stmt
	bySlug       *sql.Stmt
	recent       *sql.Stmt
	byTopic      *sql.Stmt
	titleTaken   *sql.Stmt
	lastIDBySlug *sql.Stmt
	tags         *sql.Stmt
	delete       *sql.Stmt
}

func NewArticleDB(db *sql.DB) *ArticleDB {

	db.Exec(
		`CREATE TABLE IF NOT EXISTS article (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL COLLATE NOCASE,
			slug TEXT NOT NULL COLLATE NOCASE,
			content TEXT NOT NULL,
			draft INTEGER NOT NULL DEFAULT 0,
			objectivity REAL NOT NULL DEFAULT 0,
			thumbnail_url TEXT NOT NULL DEFAULT '',
			topic_id INTEGER REFERENCES topic(id) ON DELETE SET NULL,
			author_id INTEGER REFERENCES author(id) ON DELETE SET NULL,
			created_on TIMESTAMP NOT NULL,
			updated_on TIMESTAMP NOT NULL,
			UNIQUE(title),
			UNIQUE(slug)
		);`)
	db.Exec(
		`CREATE TABLE IF NOT EXISTS article_tag (
			article_id INTEGER NOT NULL REFERENCES article(id) ON DELETE CASCADE,
			tag TEXT NOT NULL COLLATE NOCASE,
			UNIQUE(article_id, tag)
		);`)

	var articleDB = &ArticleDB{}
	articleDB.DB = db
	articleDB.insert = mustPrepare(db,
		`INSERT INTO article (title, slug, content, draft, objectivity, thumbnail_url, topic_id, author_id, created_on, updated_on)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	articleDB.insertTag = mustPrepare(db, `INSERT OR IGNORE INTO article_tag (article_id, tag) VALUES (?, ?)`)
	articleDB.byID = mustPrepare(db, selectArticle+` WHERE a.id = ? AND a.draft = 0 LIMIT 1`)
	articleDB.bySlug = mustPrepare(db, selectArticle+` WHERE a.slug = ? AND a.draft = 0 LIMIT 1`)
	articleDB.recent = mustPrepare(db, selectArticle+` WHERE a.draft = 0 ORDER BY a.created_on DESC, a.id DESC LIMIT ?`)
	articleDB.byTopic = mustPrepare(db, selectArticle+` WHERE a.topic_id = ? AND a.draft = 0 ORDER BY a.created_on DESC, a.id DESC`)
	articleDB.titleTaken = mustPrepare(db, `SELECT 1 FROM article WHERE title = ? LIMIT 1`)
	articleDB.lastIDBySlug = mustPrepare(db, `SELECT id FROM article WHERE slug = ? ORDER BY id DESC LIMIT 1`)
	articleDB.tags = mustPrepare(db, `SELECT tag FROM article_tag WHERE article_id = ? ORDER BY tag`)
	articleDB.delete = mustPrepare(db, `DELETE FROM article WHERE id = ?`)
	return articleDB
}

// Insert persists an article and its tag set in one transaction. The
// slug and objectivity fields must already be populated. A duplicate
// title or slug surfaces as ErrConflict.
func (db *ArticleDB) Insert(a *model.Article) error {
	now := time.Now().UTC()
	if a.CreatedOn.IsZero() {
		a.CreatedOn = now
	}
	if a.UpdatedOn.IsZero() {
		a.UpdatedOn = now
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	res, err := tx.Stmt(db.insert).Exec(a.Title, a.Slug, a.Content, a.Draft, a.Objectivity,
		a.ThumbnailURL, a.TopicID, a.AuthorID, a.CreatedOn, a.UpdatedOn)
	if err != nil {
		tx.Rollback()
		if isConstraint(err) {
			return ErrConflict
		}
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return err
	}

	for _, tag := range a.Tags {
		if _, err = tx.Stmt(db.insertTag).Exec(id, tag); err != nil {
			tx.Rollback()
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	a.ID = id
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(s scanner) (*model.Article, error) {
	var (
		a        = &model.Article{}
		topicID  sql.NullInt64
		authorID sql.NullInt64
		topic    sql.NullString
		username sql.NullString
	)
	err := s.Scan(&a.ID, &a.Title, &a.Slug, &a.Content, &a.Draft, &a.Objectivity, &a.ThumbnailURL,
		&topicID, &authorID, &a.CreatedOn, &a.UpdatedOn, &topic, &username)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if topicID.Valid {
		a.TopicID = &topicID.Int64
	}
	if authorID.Valid {
		a.AuthorID = &authorID.Int64
	}
	if topic.Valid {
		a.Topic = &topic.String
	}
	if username.Valid {
		a.Author = &username.String
	}
	return a, nil
}

func (db *ArticleDB) loadTags(a *model.Article) error {
	rows, err := db.tags.Query(a.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	a.Tags = []string{}
	for rows.Next() {
		var tag string
		if err = rows.Scan(&tag); err != nil {
			return err
		}
		a.Tags = append(a.Tags, tag)
	}
	return rows.Err()
}

func (db *ArticleDB) collect(rows *sql.Rows) ([]*model.Article, error) {
	defer rows.Close()

	var all = []*model.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, a := range all {
		if err := db.loadTags(a); err != nil {
			return nil, err
		}
	}
	return all, nil
}

// Get returns a published article by id. Drafts report ErrNotFound.
func (db *ArticleDB) Get(id int64) (*model.Article, error) {
	a, err := scanArticle(db.byID.QueryRow(id))
	if err != nil {
		return nil, err
	}
	return a, db.loadTags(a)
}

// GetBySlug returns a published article, matching the slug without
// regard to case. Drafts report ErrNotFound.
func (db *ArticleDB) GetBySlug(slug string) (*model.Article, error) {
	a, err := scanArticle(db.bySlug.QueryRow(slug))
	if err != nil {
		return nil, err
	}
	return a, db.loadTags(a)
}

// Recent returns the n newest published articles.
func (db *ArticleDB) Recent(n int) ([]*model.Article, error) {
	rows, err := db.recent.Query(n)
	if err != nil {
		return nil, err
	}
	return db.collect(rows)
}

// ByTopic returns a topic's published articles, newest first.
func (db *ArticleDB) ByTopic(topicID int64) ([]*model.Article, error) {
	rows, err := db.byTopic.Query(topicID)
	if err != nil {
		return nil, err
	}
	return db.collect(rows)
}

// Tagged returns published articles carrying every one of the given
// tags, newest first.
func (db *ArticleDB) Tagged(tags []string) ([]*model.Article, error) {
	if len(tags) == 0 {
		return []*model.Article{}, nil
	}

	query := selectArticle + `
		JOIN article_tag g ON g.article_id = a.id
		WHERE a.draft = 0 AND g.tag IN (?` + strings.Repeat(", ?", len(tags)-1) + `)
		GROUP BY a.id
		HAVING COUNT(DISTINCT g.tag) = ?
		ORDER BY a.created_on DESC, a.id DESC`

	args := make([]interface{}, 0, len(tags)+1)
	for _, tag := range tags {
		args = append(args, tag)
	}
	args = append(args, len(tags))

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	return db.collect(rows)
}

// TitleTaken reports whether an article with this title exists,
// ignoring case.
func (db *ArticleDB) TitleTaken(title string) (bool, error) {
	var one int
	err := db.titleTaken.QueryRow(title).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// LastIDBySlug is the slug.CheckFunc for articles.
func (db *ArticleDB) LastIDBySlug(slug string) (int64, bool, error) {
	var id int64
	err := db.lastIDBySlug.QueryRow(slug).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (db *ArticleDB) Delete(id int64) error {
	_, err := db.delete.Exec(id)
	return err
}
