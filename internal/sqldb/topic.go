package sqldb

import (
	"database/sql"
	"time"

	"github.com/medialist/rest/internal/model"
)

const topicCols = `t.id, t.name, t.description, t.slug, t.thumbnail_url, t.author_id, t.created_on, a.username`

type TopicDB struct {
	*sql.DB
	insert       *sql.Stmt
	bySlug       *sql.Stmt
	byID         *sql.Stmt
	nameTaken    *sql.Stmt
	lastIDBySlug *sql.Stmt
	all          *sql.Stmt
	update       *sql.Stmt
	delete       *sql.Stmt
}

func NewTopicDB(db *sql.DB) *TopicDB {

	db.Exec(
		`CREATE TABLE IF NOT EXISTS topic (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL COLLATE NOCASE,
			description TEXT NOT NULL DEFAULT '',
			slug TEXT NOT NULL COLLATE NOCASE,
			thumbnail_url TEXT NOT NULL DEFAULT '',
			author_id INTEGER REFERENCES author(id) ON DELETE SET NULL,
			created_on TIMESTAMP NOT NULL,
			UNIQUE(name),
			UNIQUE(slug)
		);`)

	const selectTopic = `SELECT ` + topicCols + ` FROM topic t LEFT JOIN author a ON a.id = t.author_id`

	var topicDB = &TopicDB{}
	topicDB.DB = db
	topicDB.insert = mustPrepare(db,
		`INSERT INTO topic (name, description, slug, thumbnail_url, author_id, created_on) VALUES (?, ?, ?, ?, ?, ?)`)
	topicDB.bySlug = mustPrepare(db, selectTopic+` WHERE t.slug = ? LIMIT 1`)
	topicDB.byID = mustPrepare(db, selectTopic+` WHERE t.id = ? LIMIT 1`)
	topicDB.nameTaken = mustPrepare(db, `SELECT 1 FROM topic WHERE name = ? LIMIT 1`)
	topicDB.lastIDBySlug = mustPrepare(db, `SELECT id FROM topic WHERE slug = ? ORDER BY id DESC LIMIT 1`)
	topicDB.all = mustPrepare(db, selectTopic+` ORDER BY t.created_on DESC, t.id DESC`)
	topicDB.update = mustPrepare(db, `UPDATE topic SET name = ?, description = ?, thumbnail_url = ? WHERE id = ?`)
	topicDB.delete = mustPrepare(db, `DELETE FROM topic WHERE id = ?`)
	return topicDB
}

// Insert persists a new topic with its already-generated slug. A
// duplicate name or slug surfaces as ErrConflict.
func (db *TopicDB) Insert(t *model.Topic) error {
	if t.CreatedOn.IsZero() {
		t.CreatedOn = time.Now().UTC()
	}
	res, err := db.insert.Exec(t.Name, t.Description, t.Slug, t.ThumbnailURL, t.AuthorID, t.CreatedOn)
	if err != nil {
		if isConstraint(err) {
			return ErrConflict
		}
		return err
	}
	t.ID, err = res.LastInsertId()
	return err
}

func scanTopic(row *sql.Row) (*model.Topic, error) {
	var (
		t        = &model.Topic{}
		authorID sql.NullInt64
		username sql.NullString
	)
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Slug, &t.ThumbnailURL, &authorID, &t.CreatedOn, &username)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if authorID.Valid {
		t.AuthorID = &authorID.Int64
	}
	if username.Valid {
		t.Author = &username.String
	}
	return t, nil
}

// GetBySlug matches case-insensitively via the slug column collation.
func (db *TopicDB) GetBySlug(slug string) (*model.Topic, error) {
	return scanTopic(db.bySlug.QueryRow(slug))
}

func (db *TopicDB) Get(id int64) (*model.Topic, error) {
	return scanTopic(db.byID.QueryRow(id))
}

// NameTaken reports whether a topic with this name exists, ignoring
// case.
func (db *TopicDB) NameTaken(name string) (bool, error) {
	var one int
	err := db.nameTaken.QueryRow(name).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// LastIDBySlug is the slug.CheckFunc for topics: the id of the most
// recently created topic holding the slug, if any.
func (db *TopicDB) LastIDBySlug(slug string) (int64, bool, error) {
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

func (db *TopicDB) All() ([]*model.Topic, error) {

	var all = []*model.Topic{}

	rows, err := db.all.Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			t        = &model.Topic{}
			authorID sql.NullInt64
			username sql.NullString
		)
		err = rows.Scan(&t.ID, &t.Name, &t.Description, &t.Slug, &t.ThumbnailURL, &authorID, &t.CreatedOn, &username)
		if err != nil {
			return nil, err
		}
		if authorID.Valid {
			t.AuthorID = &authorID.Int64
		}
		if username.Valid {
			t.Author = &username.String
		}
		all = append(all, t)
	}

	return all, rows.Err()
}

// Update writes name, description and thumbnail; the slug never
// changes after creation. A duplicate name surfaces as ErrConflict.
func (db *TopicDB) Update(t *model.Topic) error {
	_, err := db.update.Exec(t.Name, t.Description, t.ThumbnailURL, t.ID)
	if isConstraint(err) {
		return ErrConflict
	}
	return err
}

func (db *TopicDB) Delete(id int64) error {
	_, err := db.delete.Exec(id)
	return err
}
