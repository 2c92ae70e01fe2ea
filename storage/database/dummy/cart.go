package dummydb

import (
	"sort"
	"time"

	"github.com/masolab/soko/core/cart"
)

type cartRepository struct {
	db *DB
}

var _ cart.Repository = (*cartRepository)(nil) // interface compliance check

func NewCartRepository(db *DB) cart.Repository {
	return &cartRepository{db: db}
}

func (repo *cartRepository) GetOrCreateCart(userID int) (cart.Cart, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, crt := range repo.db.carts {
		if crt.UserID == userID {
			return *crt, nil
		}
	}

	repo.db.cartSeq++
	crt := cart.Cart{
		ID:        repo.db.cartSeq,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	repo.db.carts[crt.ID] = &crt
	return crt, nil
}

func (repo *cartRepository) QueryItemsByCart(cartID int) ([]cart.Item, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	items := make([]cart.Item, 0)
	for _, item := range repo.db.cartItems {
		if item.CartID == cartID {
			items = append(items, *item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (repo *cartRepository) CreateItem(item cart.Item) (cart.Item, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.cartItemSeq++
	item.ID = repo.db.cartItemSeq
	repo.db.cartItems[item.ID] = &item
	return item, nil
}

func (repo *cartRepository) GetItemByID(id int) (cart.Item, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if item, ok := repo.db.cartItems[id]; ok {
		return *item, nil
	}
	return cart.Item{}, cart.ErrNotFound
}

func (repo *cartRepository) DeleteItem(id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	delete(repo.db.cartItems, id)
	return nil
}
