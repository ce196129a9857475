package dto

// TradeForm is submitted by both the buy and the sell page.
// Fields stay raw strings; the trade use case owns their validation and its messages.
type TradeForm struct {
	Symbol string `form:"symbol"`
	Shares string `form:"shares"`
}

// QuoteForm is submitted by the quote page
type QuoteForm struct {
	Symbol string `form:"symbol"`
}

// LoginForm is submitted by the login page
type LoginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

// RegisterForm is submitted by the registration page
type RegisterForm struct {
	Username     string `form:"username"`
	Password     string `form:"password"`
	Confirmation string `form:"confirmation"`
}
