package api

import (
	"time"

	"github.com/dvcrn/expense-client/internal/credentials"
)

type LoginRequest struct {
	EmailOrUsername string `json:"emailOrUsername"`
	Password        string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthData struct {
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
	User         *credentials.User `json:"user"`
}

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color"`
	IsDefault bool      `json:"isDefault"`
	UserID    string    `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateCategory struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

type UpdateCategory struct {
	Name  *string `json:"name,omitempty"`
	Icon  *string `json:"icon,omitempty"`
	Color *string `json:"color,omitempty"`
}

type Expense struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	// Date is an ISO-8601 date or timestamp as sent by the backend.
	Date      string    `json:"date"`
	Notes     string    `json:"notes,omitempty"`
	Category  *Category `json:"category"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateExpense struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	CategoryID string  `json:"categoryId"`
	Date       string  `json:"date,omitempty"`
	Notes      string  `json:"notes,omitempty"`
}

type UpdateExpense struct {
	Name       *string  `json:"name,omitempty"`
	Amount     *float64 `json:"amount,omitempty"`
	CategoryID *string  `json:"categoryId,omitempty"`
	Date       *string  `json:"date,omitempty"`
	Notes      *string  `json:"notes,omitempty"`
}

// ExpenseQuery filters GET /expenses. Zero values are omitted.
type ExpenseQuery struct {
	Page       int
	Limit      int
	SortBy     string
	Order      string
	StartDate  string
	EndDate    string
	CategoryID string
	MinAmount  *float64
	MaxAmount  *float64
	Search     string
}

type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

type ExpensePage struct {
	Expenses   []Expense  `json:"expenses"`
	Pagination Pagination `json:"pagination"`
}

type PeriodType string

const (
	PeriodWeekly  PeriodType = "WEEKLY"
	PeriodMonthly PeriodType = "MONTHLY"
)

type Budget struct {
	ID         string     `json:"id"`
	Amount     float64    `json:"amount"`
	PeriodType PeriodType `json:"periodType"`
	StartDate  string     `json:"startDate"`
	EndDate    string     `json:"endDate"`
	IsActive   bool       `json:"isActive"`
	UserID     string     `json:"userId"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

type BudgetStatus struct {
	Budget
	SpentAmount     float64 `json:"spentAmount"`
	RemainingAmount float64 `json:"remainingAmount"`
	Percentage      float64 `json:"percentage"`
	DaysRemaining   int     `json:"daysRemaining"`
	IsOverBudget    bool    `json:"isOverBudget"`
}

type CreateBudget struct {
	Amount     float64    `json:"amount"`
	PeriodType PeriodType `json:"periodType"`
	StartDate  string     `json:"startDate"`
	EndDate    string     `json:"endDate,omitempty"`
}

type UpdateBudget struct {
	Amount     *float64    `json:"amount,omitempty"`
	PeriodType *PeriodType `json:"periodType,omitempty"`
	StartDate  *string     `json:"startDate,omitempty"`
	EndDate    *string     `json:"endDate,omitempty"`
	IsActive   *bool       `json:"isActive,omitempty"`
}

type CategoryStat struct {
	CategoryID    string  `json:"categoryId"`
	CategoryName  string  `json:"categoryName"`
	CategoryIcon  string  `json:"categoryIcon"`
	CategoryColor string  `json:"categoryColor"`
	Total         float64 `json:"total"`
	Count         int     `json:"count"`
	Percentage    float64 `json:"percentage"`
}

type DailyStat struct {
	Date         string  `json:"date"`
	TotalAmount  float64 `json:"totalAmount"`
	ExpenseCount int     `json:"expenseCount"`
}

type MonthlyStat struct {
	Month        string  `json:"month"`
	Year         int     `json:"year"`
	TotalAmount  float64 `json:"totalAmount"`
	ExpenseCount int     `json:"expenseCount"`
	AverageDaily float64 `json:"averageDaily"`
}

type DashboardBudget struct {
	BudgetID      string  `json:"budgetId"`
	Amount        float64 `json:"amount"`
	Spent         float64 `json:"spent"`
	Remaining     float64 `json:"remaining"`
	Percentage    float64 `json:"percentage"`
	DaysRemaining int     `json:"daysRemaining"`
}

type Dashboard struct {
	TodayTotal           float64          `json:"todayTotal"`
	WeekTotal            float64          `json:"weekTotal"`
	MonthTotal           float64          `json:"monthTotal"`
	AverageDailySpending float64          `json:"averageDailySpending"`
	BudgetStatus         *DashboardBudget `json:"budgetStatus,omitempty"`
	TopCategories        []CategoryStat   `json:"topCategories"`
	RecentExpenses       []Expense        `json:"recentExpenses"`
}

type Profile struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
	ExpenseCount int        `json:"expenseCount,omitempty"`
	TotalSpent   float64    `json:"totalSpent,omitempty"`
}

type UpdateProfile struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

type ChangePassword struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type DeleteAccount struct {
	Password string `json:"password"`
}
