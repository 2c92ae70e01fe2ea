package echoapi

import (
	"github.com/masolab/soko/core/cart"
	"github.com/masolab/soko/core/course"
	"github.com/masolab/soko/core/user"
)

// Response projections. Each (entity, context) pair gets its own named struct;
// no reflective mapping.

type PaginatedResponse struct {
	Count    int         `json:"count"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Results  interface{} `json:"results"`
}

type AuthTokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type RegisterResponse struct {
	User user.User `json:"user"`
	AuthTokens
}

type AccessTokenResponse struct {
	Access string `json:"access"`
}

type SuccessResponse struct {
	Success string `json:"success"`
}

type CourseListItem struct {
	course.Course
	CategoryName string `json:"category_name"`
}

type ReviewResponse struct {
	course.Review
	ReviewerUsername string `json:"reviewer_username"`
}

type CourseDetailResponse struct {
	course.Detail
	CreatorUsername string           `json:"creator_username"`
	Reviews         []ReviewResponse `json:"reviews"`
}

type CategoryDetailResponse struct {
	course.Category
	Courses []course.Course `json:"courses"`
}

type CartLineResponse struct {
	cart.Line
	TotalPrice int `json:"total_price"`
}

type CartResponse struct {
	cart.Cart
	Items []CartLineResponse `json:"items"`
	Total int                `json:"total"`
}

func newCartResponse(crt cart.Cart, lines []cart.Line) CartResponse {
	res := CartResponse{Cart: crt, Items: make([]CartLineResponse, 0, len(lines))}
	for _, line := range lines {
		total := line.TotalPrice()
		res.Items = append(res.Items, CartLineResponse{Line: line, TotalPrice: total})
		res.Total += total
	}
	return res
}
