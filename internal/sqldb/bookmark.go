package sqldb

import (
	"database/sql"

	"github.com/medialist/rest/internal/model"
)

type BookmarkDB struct {
	*sql.DB
	articles *ArticleDB
	insert   *sql.Stmt
	del      *sql.Stmt
	exists   *sql.Stmt
	list     *sql.Stmt
	ids      *sql.Stmt
}

func NewBookmarkDB(db *sql.DB, articles *ArticleDB) *BookmarkDB {

	db.Exec(
		`CREATE TABLE IF NOT EXISTS bookmark (
			id INTEGER PRIMARY KEY,
			author_id INTEGER NOT NULL REFERENCES author(id) ON DELETE CASCADE,
			article_id INTEGER NOT NULL REFERENCES article(id) ON DELETE CASCADE,
			UNIQUE(author_id, article_id)
		);`)

	var bookmarkDB = &BookmarkDB{}
	bookmarkDB.DB = db
	bookmarkDB.articles = articles
	bookmarkDB.insert = mustPrepare(db, `INSERT INTO bookmark (author_id, article_id) VALUES (?, ?)`)
	bookmarkDB.del = mustPrepare(db, `DELETE FROM bookmark WHERE author_id = ? AND article_id = ?`)
	bookmarkDB.exists = mustPrepare(db, `SELECT 1 FROM bookmark WHERE author_id = ? AND article_id = ? LIMIT 1`)
	bookmarkDB.list = mustPrepare(db, selectArticle+`
		JOIN bookmark b ON b.article_id = a.id
		WHERE b.author_id = ? AND a.draft = 0
		ORDER BY b.id DESC`)
	bookmarkDB.ids = mustPrepare(db, `SELECT article_id FROM bookmark WHERE author_id = ? ORDER BY id DESC`)
	return bookmarkDB
}

// Toggle flips the bookmark state for the pair and reports whether one
// was created. The insert is attempted first so the UNIQUE(author_id,
// article_id) constraint, not a pre-check, decides which way the
// toggle goes.
func (db *BookmarkDB) Toggle(authorID, articleID int64) (created bool, err error) {
	_, err = db.insert.Exec(authorID, articleID)
	if err == nil {
		return true, nil
	}
	if !isConstraint(err) {
		return false, err
	}
	_, err = db.del.Exec(authorID, articleID)
	return false, err
}

// Exists reports whether the pair is currently bookmarked.
func (db *BookmarkDB) Exists(authorID, articleID int64) (bool, error) {
	var one int
	err := db.exists.QueryRow(authorID, articleID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// Articles returns the author's bookmarked published articles, most
// recently bookmarked first.
func (db *BookmarkDB) Articles(authorID int64) ([]*model.Article, error) {
	rows, err := db.list.Query(authorID)
	if err != nil {
		return nil, err
	}
	return db.articles.collect(rows)
}

// ArticleIDs returns the bare ids of the author's bookmarked articles.
func (db *BookmarkDB) ArticleIDs(authorID int64) ([]int64, error) {
	rows, err := db.ids.Query(authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids = []int64{}
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
