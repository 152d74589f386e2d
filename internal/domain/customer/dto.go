// internal/domain/customer/dto.go
package customer

type CreateCustomerRequest struct {
	FullName       string `json:"full_name" binding:"required"`
	Email          string `json:"email" binding:"omitempty,email"`
	Phone          string `json:"phone"`
	SubscriptionID int64  `json:"subscription_id"`
}

type UpdateCustomerRequest struct {
	FullName       *string `json:"full_name"`
	Email          *string `json:"email"`
	Phone          *string `json:"phone"`
	SubscriptionID *int64  `json:"subscription_id"`
	IsActive       *bool   `json:"is_active"`
}

type CustomerListFilters struct {
	IsActive       *bool  `form:"is_active"`
	SubscriptionID int64  `form:"subscription_id"`
	Search         string `form:"search"`
	Page           int    `form:"page"`
	PageSize       int    `form:"page_size"`
	SortBy         string `form:"sort_by"`
	SortOrder      string `form:"sort_order"`
}

type CustomerListResponse struct {
	Customers  []Customer `json:"customers"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}
