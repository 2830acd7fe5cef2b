/*
Package catalog implements an optional SQLite database recording every tile
unpacked from a set of archives, so identical tiles can be found across
archives.
*/
package catalog

import (
	"crypto/sha1"
	"database/sql"
	"fmt"

	"github.com/bodgit/artpng/art"
	_ "github.com/mattn/go-sqlite3" // database/sql driver
)

// Catalog is a tile catalog backed by SQLite.
type Catalog struct {
	db *sql.DB
}

// Duplicate lists the tile numbers sharing the same size and pixel data.
type Duplicate struct {
	SHA1   string
	Width  uint16
	Height uint16
	Tiles  []uint32
}

// Open opens or creates the catalog at file.
func Open(file string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS pixels (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, data BLOB NOT NULL, UNIQUE(sha1, width, height))"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS tile (number INTEGER PRIMARY KEY NOT NULL, archive TEXT NOT NULL, anim INTEGER NOT NULL, pixels_id INTEGER, FOREIGN KEY(pixels_id) REFERENCES pixels(id))"); err != nil {
		db.Close()
		return nil, err
	}

	return &Catalog{
		db: db,
	}, nil
}

// Close closes the catalog.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func addPixels(tx *sql.Tx, t art.Tile, pix []byte) (int64, error) {
	sha := fmt.Sprintf("%X", sha1.Sum(pix))

	var id int64
	switch err := tx.QueryRow("SELECT id FROM pixels WHERE sha1 = ? AND width = ? AND height = ?", sha, t.Width, t.Height).Scan(&id); err {
	case sql.ErrNoRows:
		result, err := tx.Exec("INSERT INTO pixels (sha1, width, height, data) VALUES (?, ?, ?, ?)", sha, t.Width, t.Height, pix)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	case nil:
		return id, nil
	default:
		return 0, err
	}
}

// Record stores every tile of a, replacing any tiles previously recorded with
// the same numbers. Empty tiles are recorded without pixels.
func (c *Catalog) Record(name string, a *art.Archive) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}

	for i, t := range a.Tiles {
		var pixels sql.NullInt64
		if !t.Empty() {
			if pixels.Int64, err = addPixels(tx, t, a.Pixels(i)); err != nil {
				tx.Rollback()
				return err
			}
			pixels.Valid = true
		}

		if _, err = tx.Exec("INSERT OR REPLACE INTO tile (number, archive, anim, pixels_id) VALUES (?, ?, ?, ?)", a.First+uint32(i), name, uint32(t.Anim), pixels); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// Duplicates returns every set of two or more tiles with identical pixels,
// in the order the pixels were first recorded.
func (c *Catalog) Duplicates() ([]Duplicate, error) {
	rows, err := c.db.Query("SELECT p.id, p.sha1, p.width, p.height, t.number FROM tile AS t JOIN pixels AS p ON t.pixels_id = p.id WHERE t.pixels_id IN (SELECT pixels_id FROM tile WHERE pixels_id IS NOT NULL GROUP BY pixels_id HAVING COUNT(*) > 1) ORDER BY p.id, t.number")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dups []Duplicate
	var last int64
	for rows.Next() {
		var id int64
		var sha string
		var width, height uint16
		var number uint32
		if err := rows.Scan(&id, &sha, &width, &height, &number); err != nil {
			return nil, err
		}
		if len(dups) == 0 || id != last {
			dups = append(dups, Duplicate{SHA1: sha, Width: width, Height: height})
		}
		last = id
		dups[len(dups)-1].Tiles = append(dups[len(dups)-1].Tiles, number)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return dups, nil
}
