package sqldb

import (
	"database/sql"
	"time"

	"github.com/medialist/rest/internal/model"
)

const authorCols = `id, username, email, first_name, bio, verified, staff, secret_key, created_on`

type AuthorDB struct {
	*sql.DB
	insert      *sql.Stmt
	byID        *sql.Stmt
	byUsername  *sql.Stmt
	byEmail     *sql.Stmt
	bySecretKey *sql.Stmt
	credentials *sql.Stmt
	verify      *sql.Stmt
	promote     *sql.Stmt
	update      *sql.Stmt
	delete      *sql.Stmt
	all         *sql.Stmt
}

func NewAuthorDB(db *sql.DB) *AuthorDB {

	db.Exec(
		`CREATE TABLE IF NOT EXISTS author (
			id INTEGER PRIMARY KEY,
			username TEXT NOT NULL COLLATE NOCASE,
			email TEXT NOT NULL COLLATE NOCASE,
			password TEXT NOT NULL,
			first_name TEXT NOT NULL DEFAULT '',
			bio TEXT NOT NULL DEFAULT '',
			verified INTEGER NOT NULL DEFAULT 0,
			staff INTEGER NOT NULL DEFAULT 0,
			secret_key TEXT NOT NULL,
			created_on TIMESTAMP NOT NULL,
			UNIQUE(username),
			UNIQUE(email),
			UNIQUE(secret_key)
		);`)

	var authorDB = &AuthorDB{}
	authorDB.DB = db
	authorDB.insert = mustPrepare(db,
		`INSERT INTO author (username, email, password, first_name, bio, verified, staff, secret_key, created_on)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	authorDB.byID = mustPrepare(db, `SELECT `+authorCols+` FROM author WHERE id = ? LIMIT 1`)
	authorDB.byUsername = mustPrepare(db, `SELECT `+authorCols+` FROM author WHERE username = ? LIMIT 1`)
	authorDB.byEmail = mustPrepare(db, `SELECT `+authorCols+` FROM author WHERE email = ? LIMIT 1`)
	authorDB.bySecretKey = mustPrepare(db, `SELECT `+authorCols+` FROM author WHERE secret_key = ? LIMIT 1`)
	authorDB.credentials = mustPrepare(db, `SELECT id, password FROM author WHERE username = ? LIMIT 1`)
	authorDB.verify = mustPrepare(db, `UPDATE author SET verified = 1 WHERE id = ?`)
	authorDB.promote = mustPrepare(db, `UPDATE author SET verified = 1, staff = 1 WHERE id = ?`)
	authorDB.update = mustPrepare(db, `UPDATE author SET username = ?, first_name = ?, bio = ? WHERE id = ?`)
	authorDB.delete = mustPrepare(db, `DELETE FROM author WHERE id = ?`)
	authorDB.all = mustPrepare(db, `SELECT `+authorCols+` FROM author ORDER BY created_on DESC, id DESC LIMIT ? OFFSET ?`)
	return authorDB
}

// Insert persists a new author. The password arrives already hashed.
// A duplicate username, email or secret key surfaces as ErrConflict.
func (db *AuthorDB) Insert(a *model.Author, passwordHash string) error {
	if a.CreatedOn.IsZero() {
		a.CreatedOn = time.Now().UTC()
	}
	res, err := db.insert.Exec(a.Username, a.Email, passwordHash, a.FirstName, a.Bio, a.Verified, a.Staff, a.SecretKey, a.CreatedOn)
	if err != nil {
		if isConstraint(err) {
			return ErrConflict
		}
		return err
	}
	a.ID, err = res.LastInsertId()
	return err
}

func (db *AuthorDB) scanRow(row *sql.Row) (*model.Author, error) {
	var a = &model.Author{}
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.FirstName, &a.Bio, &a.Verified, &a.Staff, &a.SecretKey, &a.CreatedOn)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (db *AuthorDB) Get(id int64) (*model.Author, error) {
	return db.scanRow(db.byID.QueryRow(id))
}

// GetByUsername matches case-insensitively, like the username column's
// collation.
func (db *AuthorDB) GetByUsername(username string) (*model.Author, error) {
	return db.scanRow(db.byUsername.QueryRow(username))
}

func (db *AuthorDB) GetByEmail(email string) (*model.Author, error) {
	return db.scanRow(db.byEmail.QueryRow(email))
}

func (db *AuthorDB) GetBySecretKey(key string) (*model.Author, error) {
	return db.scanRow(db.bySecretKey.QueryRow(key))
}

// Credentials returns the id and password hash for a username, for the
// authentication exchange only.
func (db *AuthorDB) Credentials(username string) (int64, string, error) {
	var (
		id   int64
		hash string
	)
	err := db.credentials.QueryRow(username).Scan(&id, &hash)
	if err == sql.ErrNoRows {
		return 0, "", ErrNotFound
	}
	return id, hash, err
}

// Verify marks the author as having completed email activation.
func (db *AuthorDB) Verify(id int64) error {
	_, err := db.verify.Exec(id)
	return err
}

// Promote makes the author a verified staff member.
func (db *AuthorDB) Promote(id int64) error {
	_, err := db.promote.Exec(id)
	return err
}

// Update writes the mutable profile fields. A duplicate username
// surfaces as ErrConflict.
func (db *AuthorDB) Update(a *model.Author) error {
	_, err := db.update.Exec(a.Username, a.FirstName, a.Bio, a.ID)
	if isConstraint(err) {
		return ErrConflict
	}
	return err
}

// Delete removes the author. Their articles and topics survive with a
// null author; bookmarks and token cascade away.
func (db *AuthorDB) Delete(id int64) error {
	_, err := db.delete.Exec(id)
	return err
}

func (db *AuthorDB) All(limit, offset int) ([]*model.Author, error) {

	var all = []*model.Author{}

	rows, err := db.all.Query(limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var a = &model.Author{}
		err = rows.Scan(&a.ID, &a.Username, &a.Email, &a.FirstName, &a.Bio, &a.Verified, &a.Staff, &a.SecretKey, &a.CreatedOn)
		if err != nil {
			return nil, err
		}
		all = append(all, a)
	}

	return all, rows.Err()
}
