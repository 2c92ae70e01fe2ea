// Package sqlxrepos implements the core repositories against PostgreSQL.
package sqlxrepos

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/masolab/soko/core/cart"
)

type cartRepository struct {
	db *sqlx.DB
}

var _ cart.Repository = (*cartRepository)(nil) // interface compliance check

func NewCartRepository(db *sqlx.DB) cart.Repository {
	return &cartRepository{db: db}
}

type cartRow struct {
	ID        int       `db:"id"`
	UserID    int       `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}

type cartItemRow struct {
	ID       int       `db:"id"`
	CartID   int       `db:"cart_id"`
	CourseID int       `db:"course_id"`
	Quantity int       `db:"quantity"`
	AddedAt  time.Time `db:"added_at"`
}

func (repo *cartRepository) GetOrCreateCart(userID int) (cart.Cart, error) {
	// the unique user_id constraint makes the upsert race-free
	var row cartRow
	err := repo.db.Get(
		&row,
		`INSERT INTO cart (user_id, created_at) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		 RETURNING id, user_id, created_at`,
		userID, time.Now().UTC(),
	)
	if err != nil {
		return cart.Cart{}, errors.Wrap(err, "getting or creating cart")
	}
	return cart.Cart(row), nil
}

func (repo *cartRepository) QueryItemsByCart(cartID int) ([]cart.Item, error) {
	var rows []cartItemRow
	err := repo.db.Select(
		&rows,
		`SELECT id, cart_id, course_id, quantity, added_at FROM cart_item
		 WHERE cart_id = $1 ORDER BY id`,
		cartID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying cart items")
	}
	items := make([]cart.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, cart.Item(row))
	}
	return items, nil
}

func (repo *cartRepository) CreateItem(item cart.Item) (cart.Item, error) {
	err := repo.db.QueryRow(
		`INSERT INTO cart_item (cart_id, course_id, quantity, added_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		item.CartID, item.CourseID, item.Quantity, item.AddedAt,
	).Scan(&item.ID)
	if err != nil {
		return cart.Item{}, errors.Wrap(err, "inserting cart item")
	}
	return item, nil
}

func (repo *cartRepository) GetItemByID(id int) (cart.Item, error) {
	var row cartItemRow
	err := repo.db.Get(
		&row,
		`SELECT id, cart_id, course_id, quantity, added_at FROM cart_item WHERE id = $1`,
		id,
	)
	if err != nil {
		return cart.Item{}, trapNoRowsErr(err, cart.ErrNotFound, "finding cart item")
	}
	return cart.Item(row), nil
}

func (repo *cartRepository) DeleteItem(id int) error {
	if _, err := repo.db.Exec(`DELETE FROM cart_item WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting cart item")
	}
	return nil
}
