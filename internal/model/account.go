package model

import "time"

// Account is a signed-up identity as persisted by the account store.
type Account struct {
	AccountID string    `json:"accountId" db:"account_id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Document  string    `json:"document" db:"document"`
	Password  string    `json:"-" db:"password"`
	CreatedAt time.Time `json:"-" db:"created_at"`
}

// AccountView is the public projection of an Account. It never carries the password.
type AccountView struct {
	AccountID string `json:"accountId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Document  string `json:"document"`
}

// View strips the credential from the account.
func (a *Account) View() AccountView {
	return AccountView{
		AccountID: a.AccountID,
		Name:      a.Name,
		Email:     a.Email,
		Document:  a.Document,
	}
}

type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Document string `json:"document"`
	Password string `json:"password"`
}

type SignupOutput struct {
	AccountID string `json:"accountId"`
}
