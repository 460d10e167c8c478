package models

// DemoUser is the fixed user record returned by the demo authenticator.
type DemoUser struct {
	ID       string      `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	UserType string      `json:"userType"`
	Profile  UserProfile `json:"profile"`
}

type UserProfile struct {
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Address   UserAddress `json:"address"`
}

type UserAddress struct {
	State    string `json:"state"`
	District string `json:"district"`
}

// DemoAccount returns the demo user. The value is constant for the life of the process.
func DemoAccount(username string) DemoUser {
	return DemoUser{
		ID:       "demo-user-id",
		Username: username,
		Email:    "demo@smartagri.com",
		UserType: "farmer",
		Profile: UserProfile{
			FirstName: "Demo",
			LastName:  "User",
			Address:   UserAddress{State: "Karnataka", District: "Bangalore"},
		},
	}
}
