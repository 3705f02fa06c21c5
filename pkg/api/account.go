package api

// Account identifies the authenticated account the client acts as.
// The client holds at most one current account at a time; mutating it
// notifies the transport adapter and broadcasts an account-changed event.
type Account struct {
	// ID is the stable account identifier.
	ID string `json:"id"`

	// Username is the display handle of the account.
	Username string `json:"username"`

	// Token is the bearer token used for authenticated calls.
	Token string `json:"token"`
}
