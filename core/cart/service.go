package cart

import (
	"errors"
	"time"

	"github.com/masolab/soko/core/course"
	"github.com/masolab/soko/core/user"
)

var (
	// errors
	ErrNotFound = errors.New("cart item not found")
)

type (
	Repository interface {
		GetOrCreateCart(userID int) (Cart, error)
		QueryItemsByCart(cartID int) ([]Item, error)
		CreateItem(item Item) (Item, error)
		GetItemByID(id int) (Item, error)
		DeleteItem(id int) error
	}

	// CourseGetter resolves the courses referenced by cart items.
	CourseGetter interface {
		GetByID(id int) (course.Course, error)
	}

	Service struct {
		repo    Repository
		courses CourseGetter
	}
)

func NewService(repo Repository, courses CourseGetter) *Service {
	return &Service{repo: repo, courses: courses}
}

// Get returns `usr`'s cart with its lines, creating the cart on first use.
// The scope is always the calling user; foreign carts are unreachable.
func (svc *Service) Get(usr user.User) (Cart, []Line, error) {
	crt, err := svc.repo.GetOrCreateCart(usr.ID)
	if err != nil {
		return Cart{}, nil, err
	}
	items, err := svc.repo.QueryItemsByCart(crt.ID)
	if err != nil {
		return Cart{}, nil, err
	}

	lines := make([]Line, 0, len(items))
	for _, item := range items {
		crs, err := svc.courses.GetByID(item.CourseID)
		if err != nil {
			if err == course.ErrNotFound {
				continue // course removed from the catalog; skip the stale line
			}
			return Cart{}, nil, err
		}
		lines = append(lines, Line{Item: item, Course: crs})
	}
	return crt, lines, nil
}

// AddItem puts a course into `usr`'s cart.
func (svc *Service) AddItem(usr user.User, ni NewItem) (Line, error) {
	crs, err := svc.courses.GetByID(ni.CourseID)
	if err != nil {
		return Line{}, err
	}
	crt, err := svc.repo.GetOrCreateCart(usr.ID)
	if err != nil {
		return Line{}, err
	}
	item, err := svc.repo.CreateItem(Item{
		CartID:   crt.ID,
		CourseID: ni.CourseID,
		Quantity: ni.Quantity,
		AddedAt:  time.Now().UTC(),
	})
	if err != nil {
		return Line{}, err
	}
	return Line{Item: item, Course: crs}, nil
}

// GetItem returns one of `usr`'s cart lines. Items in other users' carts are
// reported as not found, never as forbidden.
func (svc *Service) GetItem(usr user.User, id int) (Line, error) {
	item, err := svc.getOwnItem(usr, id)
	if err != nil {
		return Line{}, err
	}
	crs, err := svc.courses.GetByID(item.CourseID)
	if err != nil {
		return Line{}, err
	}
	return Line{Item: item, Course: crs}, nil
}

// RemoveItem deletes one of `usr`'s cart lines.
func (svc *Service) RemoveItem(usr user.User, id int) error {
	if _, err := svc.getOwnItem(usr, id); err != nil {
		return err
	}
	return svc.repo.DeleteItem(id)
}

func (svc *Service) getOwnItem(usr user.User, id int) (Item, error) {
	item, err := svc.repo.GetItemByID(id)
	if err != nil {
		return Item{}, err
	}
	crt, err := svc.repo.GetOrCreateCart(usr.ID)
	if err != nil {
		return Item{}, err
	}
	if item.CartID != crt.ID {
		return Item{}, ErrNotFound
	}
	return item, nil
}
